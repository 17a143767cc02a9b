/*
 * phenix.go, part of goxtal.
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
//In order to use this part of the library you need the phenix.refine program,
//which must be obtained from the PHENIX project. Please cite the PHENIX
//references if you used the program.

package refine

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	xtal "github.com/xtalgo/goxtal"
	"github.com/xtalgo/goxtal/mtz"
)

//Phenix is the program name used in errors involving phenix.refine.
const Phenix = "phenix.refine"

//The suffix phenix.refine appends to the job name when naming its output
//files, for the first run in a directory.
const outSuffix = "_refine_001"

//PhenixHandle runs refinements with the phenix.refine program. Each handle owns
//one scratch directory per built input, so independent handles never share
//state and can run concurrently from the same parent directory.
type PhenixHandle struct {
	command   string
	inputname string
	parent    string //where scratch directories are created. Empty means os.TempDir().
	wrkdir    string //the scratch directory of the current job.
	logdir    string //if set, the refinement log is copied here after a run.
	options   []string
}

//NewPhenixHandle initializes and returns a PhenixHandle with the default
//settings.
func NewPhenixHandle() *PhenixHandle {
	run := new(PhenixHandle)
	run.SetDefaults()
	return run
}

//PhenixHandle methods

//SetDefaults sets the command to "phenix.refine", expected to be in the PATH,
//and the job name to "goxtal".
func (O *PhenixHandle) SetDefaults() {
	O.command = os.ExpandEnv("phenix.refine")
	O.inputname = "goxtal"
}

//Command returns the external command the handle will run.
func (O *PhenixHandle) Command() string {
	return O.command
}

//SetName sets the name for the job, which phenix.refine uses as the prefix of
//every input and output file.
func (O *PhenixHandle) SetName(name string) {
	O.inputname = name
}

//SetCommand sets the external command to be run.
func (O *PhenixHandle) SetCommand(name string) {
	O.command = name
}

//SetWorkDir sets the directory under which the scratch directory of each job
//is created. The default is the system temporary directory.
func (O *PhenixHandle) SetWorkDir(parent string) {
	O.parent = parent
}

//SetLogDir instructs the handle to copy the refinement log to dir after every
//successful run, so it survives Clean. No copy is made by default.
func (O *PhenixHandle) SetLogDir(dir string) {
	O.logdir = dir
}

//Dir returns the scratch directory of the current job. It is empty until
//BuildInput has been called.
func (O *PhenixHandle) Dir() string {
	return O.wrkdir
}

//BuildInput writes the coordinate and reflection-data files for a refinement of
//S against data into a fresh scratch directory, and assembles the command-line
//options from Q. A nil Q means default settings.
func (O *PhenixHandle) BuildInput(S *xtal.Structure, data *mtz.DataSet, Q *Params) error {
	if S == nil || data == nil {
		return Error{ErrMissingInput, Phenix, O.inputname, "", []string{"BuildInput"}, true}
	}
	if O.inputname == "" {
		O.inputname = "goxtal"
	}
	parent := O.parent
	if parent == "" {
		parent = os.TempDir()
	}
	//the unique run id keeps simultaneous refinements under the same parent
	//from trampling each other's fixed-name outputs.
	O.wrkdir = filepath.Join(parent, "goxtal_refine_"+uuid.New().String())
	if err := os.MkdirAll(O.wrkdir, 0755); err != nil {
		return Error{ErrCantInput, Phenix, O.inputname, err.Error(), []string{"os.MkdirAll", "BuildInput"}, true}
	}
	if err := xtal.PDBWrite(filepath.Join(O.wrkdir, O.inputname+".pdb"), S); err != nil {
		return Error{ErrCantInput, Phenix, O.inputname, err.Error(), []string{"xtal.PDBWrite", "BuildInput"}, true}
	}
	if err := data.Write(filepath.Join(O.wrkdir, O.inputname+".mtz")); err != nil {
		return Error{ErrCantInput, Phenix, O.inputname, err.Error(), []string{"mtz.DataSet.Write", "BuildInput"}, true}
	}
	if Q == nil {
		Q = new(Params)
		Q.SetDefaults()
	}
	O.options = make([]string, 0, len(Q.Extra)+5)
	O.options = append(O.options, O.command)
	O.options = append(O.options, O.inputname+".pdb")
	O.options = append(O.options, O.inputname+".mtz")
	O.options = append(O.options, Q.Format()...)
	return nil
}

//Run runs the refinement set up by BuildInput. It waits or not for the program
//to exit depending on wait. Not waiting works only on unix-compatible systems,
//as it uses sh and nohup; none of the parsing methods will work until the
//program has actually finished. A non-zero exit status of the program is
//returned as an error.
func (O *PhenixHandle) Run(wait bool) (err error) {
	if O.wrkdir == "" {
		return Error{ErrNoInput, Phenix, O.inputname, "", []string{"Run"}, true}
	}
	com := fmt.Sprintf("%s > %s.out 2>&1", strings.Join(O.options, " "), O.inputname)
	if wait {
		log.Print(com) //the command echo goes to stderr
		command := exec.Command("sh", "-c", com)
		command.Dir = O.wrkdir
		err = command.Run()
	} else {
		command := exec.Command("sh", "-c", "nohup "+com)
		command.Dir = O.wrkdir
		err = command.Start()
	}
	if err != nil {
		return Error{ErrNotRunning, Phenix, O.inputname, err.Error(), []string{"exec.Run/Start", "Run"}, true}
	}
	if !wait {
		return nil
	}
	if err := O.checkOutputs(); err != nil {
		return errDecorate(err, "Run")
	}
	if O.logdir != "" {
		if err := copyFile(O.logPath(), filepath.Join(O.logdir, O.inputname+outSuffix+".log")); err != nil {
			return Error{ErrNoOutput, Phenix, O.inputname, err.Error(), []string{"copyFile", "Run"}, true}
		}
	}
	return nil
}

//Outputs returns the paths of the three files a successful run produces: the
//refined coordinates, the refined reflection data and the log. The names
//follow phenix.refine's own convention, <name>_refine_001.<ext>.
func (O *PhenixHandle) Outputs() (pdb, mtzfile, logfile string) {
	return O.outPath("pdb"), O.outPath("mtz"), O.outPath("log")
}

func (O *PhenixHandle) outPath(ext string) string {
	return filepath.Join(O.wrkdir, O.inputname+outSuffix+"."+ext)
}

func (O *PhenixHandle) logPath() string {
	return O.outPath("log")
}

//checkOutputs verifies that the three expected output files exist. There is no
//recovery: a missing file means the run failed, whatever its exit status said.
func (O *PhenixHandle) checkOutputs() error {
	for _, ext := range []string{"pdb", "mtz", "log"} {
		if _, err := os.Stat(O.outPath(ext)); err != nil {
			return Error{ErrNoOutput, Phenix, O.inputname, O.outPath(ext), []string{"os.Stat", "checkOutputs"}, true}
		}
	}
	return nil
}

//Stats returns the final R-work and R-free parsed from the refinement log of a
//finished run.
func (O *PhenixHandle) Stats() (*Stats, error) {
	if err := O.checkOutputs(); err != nil {
		return nil, errDecorate(err, "Stats")
	}
	stats, err := ReadStatsFromLog(O.logPath())
	if err != nil {
		return nil, errDecorate(err, "Stats")
	}
	return stats, nil
}

//History returns every R-work/R-free pair the refinement log reports, one per
//macrocycle, in log order.
func (O *PhenixHandle) History() ([]*Stats, error) {
	if err := O.checkOutputs(); err != nil {
		return nil, errDecorate(err, "History")
	}
	history, err := ReadHistoryFromLog(O.logPath())
	if err != nil {
		return nil, errDecorate(err, "History")
	}
	return history, nil
}

//RefinedStructure reads the refined model from a finished run.
func (O *PhenixHandle) RefinedStructure() (*xtal.Structure, error) {
	if err := O.checkOutputs(); err != nil {
		return nil, errDecorate(err, "RefinedStructure")
	}
	S, err := xtal.PDBRead(O.outPath("pdb"))
	if err != nil {
		return nil, Error{ErrNoGeometry, Phenix, O.inputname, err.Error(), []string{"xtal.PDBRead", "RefinedStructure"}, true}
	}
	return S, nil
}

//RefinedData reads the refined reflection data from a finished run.
func (O *PhenixHandle) RefinedData() (*mtz.DataSet, error) {
	if err := O.checkOutputs(); err != nil {
		return nil, errDecorate(err, "RefinedData")
	}
	D, err := mtz.Read(O.outPath("mtz"))
	if err != nil {
		return nil, Error{ErrNoData, Phenix, O.inputname, err.Error(), []string{"mtz.Read", "RefinedData"}, true}
	}
	return D, nil
}

//Clean removes the scratch directory of the current job, with everything in
//it. The handle can build a new input afterwards.
func (O *PhenixHandle) Clean() error {
	if O.wrkdir == "" {
		return nil
	}
	err := os.RemoveAll(O.wrkdir)
	O.wrkdir = ""
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
