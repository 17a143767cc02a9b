/*
 * refine.go, part of goxtal.
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

package refine

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	xtal "github.com/xtalgo/goxtal"
	"github.com/xtalgo/goxtal/mtz"
)

//Handle allows to set up and run a refinement with different programs. Note that
//the default settings of each program are NOT considered part of the API, so they
//can always change.
type Handle interface {

	//SetName sets the name for the job, used for the input and output files.
	SetName(name string)

	//SetCommand sets the external command to be run.
	SetCommand(name string)

	//BuildInput builds the input files for a refinement of the structure S
	//against the reflection data in data, with the settings in Q.
	BuildInput(S *xtal.Structure, data *mtz.DataSet, Q *Params) error

	//Run runs the refinement program on a previously built input. It waits or
	//not for the program to finish depending on the value of wait.
	Run(wait bool) error

	//Stats parses the final R-work and R-free from the program's log.
	//It returns an error if the run did not produce them.
	Stats() (*Stats, error)

	//RefinedStructure reads the refined model produced by the run.
	RefinedStructure() (*xtal.Structure, error)

	//RefinedData reads the refined reflection data produced by the run.
	RefinedData() (*mtz.DataSet, error)
}

//Params contains the refinement settings. Only the fields every program
//understands live here; program-specific strings can be passed in Extra.
type Params struct {
	//Macrocycles is the number of refinement macrocycles to run.
	Macrocycles int `yaml:"macrocycles"`
	//Labels selects the data columns to refine against, e.g.
	//"F-obs,SIGF-obs". An empty string lets the program decide.
	Labels string `yaml:"labels,omitempty"`
	//Extra parameters, passed to the program verbatim, after the ones above.
	Extra []string `yaml:"extra,omitempty"`
}

//SetDefaults sets the default refinement settings: 3 macrocycles and
//program-chosen data labels.
func (Q *Params) SetDefaults() {
	Q.Macrocycles = 3
}

//Format returns the command-line tokens for the settings in Q, in the
//key=value form phenix.refine expects.
func (Q *Params) Format() []string {
	formatted := make([]string, 0, len(Q.Extra)+2)
	formatted = append(formatted, fmt.Sprintf("main.number_of_macro_cycles=%d", Q.Macrocycles))
	if Q.Labels != "" {
		formatted = append(formatted, "refinement.input.xray_data.labels="+Q.Labels)
	}
	formatted = append(formatted, Q.Extra...)
	return formatted
}

//Stats holds the two quality metrics a refinement reports: the residuals over
//the working set and over the held-out (free) reflection set. Both are parsed
//from the program's log and are non-negative.
type Stats struct {
	RWork float64
	RFree float64
}

//the log lines to match look like "Final R-work = 0.1893, R-free = 0.2162".
var (
	rvalues      = regexp.MustCompile(`R-work\s*=\s*([0-9.]+).*?R-free\s*=\s*([0-9.]+)`)
	finalRvalues = regexp.MustCompile(`Final R-work\s*=\s*([0-9.]+).*?R-free\s*=\s*([0-9.]+)`)
)

//extractRValues extracts the first labeled R-work/R-free pair from text.
//It returns an error if the pattern is absent.
func extractRValues(text string) (float64, float64, error) {
	match := rvalues.FindStringSubmatch(text)
	if match == nil {
		return 0, 0, Error{ErrNoStats, "", "", "", []string{"extractRValues"}, true}
	}
	rwork, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, 0, Error{ErrNoStats, "", "", err.Error(), []string{"strconv.ParseFloat", "extractRValues"}, true}
	}
	rfree, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, 0, Error{ErrNoStats, "", "", err.Error(), []string{"strconv.ParseFloat", "extractRValues"}, true}
	}
	return rwork, rfree, nil
}

//extractRHistory extracts every labeled R-work/R-free pair from text, in
//order of appearance. A refinement log contains one pair per macrocycle.
func extractRHistory(text string) []*Stats {
	matches := rvalues.FindAllStringSubmatch(text, -1)
	history := make([]*Stats, 0, len(matches))
	for _, match := range matches {
		rwork, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		rfree, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			continue
		}
		history = append(history, &Stats{RWork: rwork, RFree: rfree})
	}
	return history
}

//ReadStatsFromLog reads the refinement log logfile and returns the final
//R-work/R-free pair. It prefers the pair on the "Final" line and falls back to
//the first labeled pair when no such line exists.
func ReadStatsFromLog(logfile string) (*Stats, error) {
	buf, err := os.ReadFile(logfile)
	if err != nil {
		return nil, Error{ErrNoStats, "", logfile, err.Error(), []string{"os.ReadFile", "ReadStatsFromLog"}, true}
	}
	text := string(buf)
	if match := finalRvalues.FindStringSubmatch(text); match != nil {
		text = match[0]
	}
	rwork, rfree, err := extractRValues(text)
	if err != nil {
		return nil, errDecorate(err, "ReadStatsFromLog "+logfile)
	}
	return &Stats{RWork: rwork, RFree: rfree}, nil
}

//ReadHistoryFromLog reads the refinement log logfile and returns every
//R-work/R-free pair it reports, one per macrocycle, in log order.
func ReadHistoryFromLog(logfile string) ([]*Stats, error) {
	buf, err := os.ReadFile(logfile)
	if err != nil {
		return nil, Error{ErrNoStats, "", logfile, err.Error(), []string{"os.ReadFile", "ReadHistoryFromLog"}, true}
	}
	history := extractRHistory(string(buf))
	if len(history) == 0 {
		return nil, Error{ErrNoStats, "", logfile, "", []string{"ReadHistoryFromLog"}, true}
	}
	return history, nil
}

//Refine is the one-shot entry point: it builds the input for a refinement of S
//against data with the settings in Q (nil means defaults), runs phenix.refine,
//waits for it, and returns the refined structure, the refined reflection data
//and the quality metrics. The scratch directory is removed before returning.
func Refine(S *xtal.Structure, data *mtz.DataSet, Q *Params) (*xtal.Structure, *mtz.DataSet, *Stats, error) {
	O := NewPhenixHandle()
	defer O.Clean()
	if err := O.BuildInput(S, data, Q); err != nil {
		return nil, nil, nil, errDecorate(err, "Refine")
	}
	if err := O.Run(true); err != nil {
		return nil, nil, nil, errDecorate(err, "Refine")
	}
	refined, err := O.RefinedStructure()
	if err != nil {
		return nil, nil, nil, errDecorate(err, "Refine")
	}
	dataset, err := O.RefinedData()
	if err != nil {
		return nil, nil, nil, errDecorate(err, "Refine")
	}
	stats, err := O.Stats()
	if err != nil {
		return nil, nil, nil, errDecorate(err, "Refine")
	}
	return refined, dataset, stats, nil
}
