/*
 * convergence.go, part of goxtal.
 *
 * Copyright 2026 The goxtal developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package xplot produces plots for refinement results.
package xplot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/xtalgo/goxtal/refine"
)

func basicConvergencePlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Macrocycle"
	p.Y.Label.Text = "R"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	return p
}

/*Convergence produces a plot, in png format, of the R-work and R-free values in
  history against the macrocycle number. The .png extension is appended to
  plotname. Returns an error or nil.*/
func Convergence(history []*refine.Stats, title, plotname string) error {
	if history == nil {
		panic("Given nil history")
	}
	if len(history) == 0 {
		return fmt.Errorf("Convergence: empty history")
	}
	work := make(plotter.XYs, len(history))
	free := make(plotter.XYs, len(history))
	for key, val := range history {
		work[key].X = float64(key + 1)
		work[key].Y = val.RWork
		free[key].X = float64(key + 1)
		free[key].Y = val.RFree
	}
	p := basicConvergencePlot(title)
	lwork, pwork, err := plotter.NewLinePoints(work)
	if err != nil {
		return err
	}
	lwork.Color = color.RGBA{B: 255, A: 255}
	pwork.GlyphStyle.Color = color.RGBA{B: 255, A: 255}
	lfree, pfree, err := plotter.NewLinePoints(free)
	if err != nil {
		return err
	}
	lfree.Color = color.RGBA{R: 255, A: 255}
	pfree.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	p.Add(lwork, pwork, lfree, pfree)
	p.Legend.Add("R-work", lwork, pwork)
	p.Legend.Add("R-free", lfree, pfree)
	p.Legend.Top = true
	filename := fmt.Sprintf("%s.png", plotname)
	if err := p.Save(12*vg.Centimeter, 10*vg.Centimeter, filename); err != nil {
		return err
	}
	return nil
}
