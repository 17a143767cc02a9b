/*
 * refine_test.go, part of goxtal.
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
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	xtal "github.com/xtalgo/goxtal"
	"github.com/xtalgo/goxtal/mtz"
)

const sampleLog = `Starting refinement.
Start R-work = 0.4000, R-free = 0.4500
R-work = 0.2500, R-free = 0.3000
Final R-work = 0.1893, R-free = 0.2162
`

func TestParamsFormat(Te *testing.T) {
	Q := new(Params)
	Q.SetDefaults()
	tokens := Q.Format()
	if len(tokens) != 1 || tokens[0] != "main.number_of_macro_cycles=3" {
		Te.Errorf("Default tokens wrong: %v", tokens)
	}
	Q.Macrocycles = 5
	Q.Labels = "FW-F,FW-SIGF"
	Q.Extra = []string{"refinement.main.ordered_solvent=true"}
	tokens = Q.Format()
	want := []string{
		"main.number_of_macro_cycles=5",
		"refinement.input.xray_data.labels=FW-F,FW-SIGF",
		"refinement.main.ordered_solvent=true",
	}
	if len(tokens) != len(want) {
		Te.Fatalf("Wrong number of tokens: %v", tokens)
	}
	for i, tok := range tokens {
		if tok != want[i] {
			Te.Errorf("Token %d wrong: %q, want %q", i, tok, want[i])
		}
	}
}

func TestExtractRValues(Te *testing.T) {
	rwork, rfree, err := extractRValues("Final R-work = 0.1893, R-free = 0.2162")
	if err != nil {
		Te.Fatal(err)
	}
	if rwork != 0.1893 || rfree != 0.2162 {
		Te.Errorf("R values wrong: %6.4f %6.4f", rwork, rfree)
	}
	//the first pair wins when several are present, as in the original
	//single-pass search.
	rwork, _, err = extractRValues(sampleLog)
	if err != nil {
		Te.Fatal(err)
	}
	if rwork != 0.4000 {
		Te.Errorf("Expected the first R-work, got %6.4f", rwork)
	}
	for _, text := range []string{
		"",
		"no R values in here",
		"R-free = 0.2162 before R-work = 0.1893", //wrong order
		"R-work = zero, R-free = one",
	} {
		if _, _, err := extractRValues(text); err == nil {
			Te.Errorf("Expected an error for %q", text)
		}
	}
}

func TestReadStatsFromLog(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "sample.log")
	if err := os.WriteFile(name, []byte(sampleLog), 0644); err != nil {
		Te.Fatal(err)
	}
	stats, err := ReadStatsFromLog(name)
	if err != nil {
		Te.Fatal(err)
	}
	//the Final pair, not the first one.
	if stats.RWork != 0.1893 || stats.RFree != 0.2162 {
		Te.Errorf("Final stats wrong: %+v", stats)
	}
	history, err := ReadHistoryFromLog(name)
	if err != nil {
		Te.Fatal(err)
	}
	if len(history) != 3 {
		Te.Fatalf("Expected 3 pairs in the history, got %d", len(history))
	}
	if history[0].RWork != 0.4000 || history[2].RFree != 0.2162 {
		Te.Errorf("History wrong: %+v %+v", history[0], history[2])
	}
	//a log with a single unlabeled pair still yields stats.
	name2 := filepath.Join(dir, "nofinal.log")
	if err := os.WriteFile(name2, []byte("R-work = 0.3000, R-free = 0.3300\n"), 0644); err != nil {
		Te.Fatal(err)
	}
	stats, err = ReadStatsFromLog(name2)
	if err != nil {
		Te.Fatal(err)
	}
	if stats.RWork != 0.3000 {
		Te.Errorf("Fallback stats wrong: %+v", stats)
	}
	//and one with none at all fails.
	name3 := filepath.Join(dir, "empty.log")
	if err := os.WriteFile(name3, []byte("nothing to see\n"), 0644); err != nil {
		Te.Fatal(err)
	}
	if _, err := ReadStatsFromLog(name3); err == nil {
		Te.Error("Expected an error for a log without R values")
	}
}

func TestParamsFromFile(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "params.yaml")
	text := "macrocycles: 5\nlabels: FW-F,FW-SIGF\nextra:\n  - refinement.main.ordered_solvent=true\n"
	if err := os.WriteFile(name, []byte(text), 0644); err != nil {
		Te.Fatal(err)
	}
	Q, err := ParamsFromFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	if Q.Macrocycles != 5 || Q.Labels != "FW-F,FW-SIGF" || len(Q.Extra) != 1 {
		Te.Errorf("Params read wrong: %+v", Q)
	}
	//an empty file means defaults.
	name2 := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(name2, nil, 0644); err != nil {
		Te.Fatal(err)
	}
	Q, err = ParamsFromFile(name2)
	if err != nil {
		Te.Fatal(err)
	}
	if Q.Macrocycles != 3 {
		Te.Errorf("Default macrocycles wrong: %d", Q.Macrocycles)
	}
	name3 := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(name3, []byte("macrocycles: -2\n"), 0644); err != nil {
		Te.Fatal(err)
	}
	if _, err := ParamsFromFile(name3); err == nil {
		Te.Error("Expected an error for a non-positive macrocycle count")
	}
}

//testInput builds a small structure and dataset to feed the handle with.
func testInput(Te *testing.T) (*xtal.Structure, *mtz.DataSet) {
	cell, err := xtal.NewUnitCell(58.41, 86.22, 46.42, 90, 90, 90)
	if err != nil {
		Te.Fatal(err)
	}
	atoms := []*xtal.Atom{
		{Name: "N", Id: 1, Molname: "MET", Molid: 1, Chain: 'A', Occupancy: 1, Symbol: "N"},
		{Name: "CA", Id: 2, Molname: "MET", Molid: 1, Chain: 'A', Occupancy: 1, Symbol: "C"},
	}
	coords := mat.NewDense(2, 3, []float64{27.34, 24.43, 2.614, 26.266, 25.413, 2.842})
	S, err := xtal.NewStructure(atoms, coords, []float64{9.67, 10.38})
	if err != nil {
		Te.Fatal(err)
	}
	S.Cell = cell
	S.Group = xtal.SpaceGroup{Symbol: "P 21 21 21", Number: 19}
	D, err := mtz.NewDataSet([]int{1, 2, 3}, []int{0, 1, 1}, []int{1, 1, 0},
		[]float64{120.5, 340.25, 88.0}, []float64{3.1, 5.5, 2.0}, cell, S.Group)
	if err != nil {
		Te.Fatal(err)
	}
	if err := mtz.AddRFree(D, 0.05, false); err != nil {
		Te.Fatal(err)
	}
	return S, D
}

func TestBuildInput(Te *testing.T) {
	S, D := testInput(Te)
	O := NewPhenixHandle()
	O.SetName("input")
	O.SetWorkDir(Te.TempDir())
	Q := new(Params)
	Q.SetDefaults()
	Q.Macrocycles = 1
	if err := O.BuildInput(S, D, Q); err != nil {
		Te.Fatal(err)
	}
	defer O.Clean()
	for _, name := range []string{"input.pdb", "input.mtz"} {
		if _, err := os.Stat(filepath.Join(O.Dir(), name)); err != nil {
			Te.Errorf("Input file %s not written: %v", name, err)
		}
	}
	pdb, mtzfile, logfile := O.Outputs()
	if filepath.Base(pdb) != "input_refine_001.pdb" ||
		filepath.Base(mtzfile) != "input_refine_001.mtz" ||
		filepath.Base(logfile) != "input_refine_001.log" {
		Te.Errorf("Output naming wrong: %s %s %s", pdb, mtzfile, logfile)
	}
	if err := O.BuildInput(nil, nil, Q); err == nil {
		Te.Error("Expected an error for nil inputs")
	}
}

//TestPhenixRun exercises the whole call path with a stand-in for phenix.refine:
//a shell script that copies its inputs to the expected output names and writes
//a plausible log.
func TestPhenixRun(Te *testing.T) {
	S, D := testInput(Te)
	dir := Te.TempDir()
	script := filepath.Join(dir, "fake-phenix.sh")
	text := "#!/bin/sh\n" +
		"cp input.pdb input_refine_001.pdb\n" +
		"cp input.mtz input_refine_001.mtz\n" +
		fmt.Sprintf("cat > input_refine_001.log <<'EOF'\n%sEOF\n", sampleLog)
	if err := os.WriteFile(script, []byte(text), 0755); err != nil {
		Te.Fatal(err)
	}
	logdir := Te.TempDir()
	O := NewPhenixHandle()
	O.SetName("input")
	O.SetCommand(script)
	O.SetWorkDir(Te.TempDir())
	O.SetLogDir(logdir)
	Q := new(Params)
	Q.SetDefaults()
	Q.Macrocycles = 1
	if err := O.BuildInput(S, D, Q); err != nil {
		Te.Fatal(err)
	}
	if err := O.Run(true); err != nil {
		Te.Fatal(err)
	}
	stats, err := O.Stats()
	if err != nil {
		Te.Fatal(err)
	}
	if stats.RWork != 0.1893 || stats.RFree != 0.2162 {
		Te.Errorf("Stats wrong: %+v", stats)
	}
	history, err := O.History()
	if err != nil {
		Te.Fatal(err)
	}
	if len(history) != 3 {
		Te.Errorf("Expected 3 pairs in the history, got %d", len(history))
	}
	refined, err := O.RefinedStructure()
	if err != nil {
		Te.Fatal(err)
	}
	if refined.Len() != S.Len() {
		Te.Errorf("Refined structure has %d atoms, want %d", refined.Len(), S.Len())
	}
	data, err := O.RefinedData()
	if err != nil {
		Te.Fatal(err)
	}
	if data.Len() != D.Len() {
		Te.Errorf("Refined data has %d reflections, want %d", data.Len(), D.Len())
	}
	if math.Abs(data.Cell.A-58.41) > 1e-3 {
		Te.Errorf("Refined data cell wrong: %+v", data.Cell)
	}
	//the log copy requested with SetLogDir.
	if _, err := os.Stat(filepath.Join(logdir, "input_refine_001.log")); err != nil {
		Te.Errorf("Log not copied to the log directory: %v", err)
	}
	wrk := O.Dir()
	if err := O.Clean(); err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat(wrk); !os.IsNotExist(err) {
		Te.Error("Clean left the scratch directory behind")
	}
}

//TestPhenixRunFails checks that a non-zero exit status of the external program
//is surfaced as an error.
func TestPhenixRunFails(Te *testing.T) {
	S, D := testInput(Te)
	dir := Te.TempDir()
	script := filepath.Join(dir, "failing-phenix.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 3\n"), 0755); err != nil {
		Te.Fatal(err)
	}
	O := NewPhenixHandle()
	O.SetName("input")
	O.SetCommand(script)
	O.SetWorkDir(Te.TempDir())
	if err := O.BuildInput(S, D, nil); err != nil {
		Te.Fatal(err)
	}
	defer O.Clean()
	if err := O.Run(true); err == nil {
		Te.Error("Expected an error for a failing refinement program")
	}
	if _, err := O.Stats(); err == nil {
		Te.Error("Expected an error asking for stats of a failed run")
	}
	O2 := NewPhenixHandle()
	if err := O2.Run(true); err == nil {
		Te.Error("Expected an error running with no input built")
	}
}
