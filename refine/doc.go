/*
 * doc.go, part of goxtal.
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

//Package refine implements communication with external crystallographic
//refinement programs, in such a way that the refinement settings are as
//separated as possible from the choice of program performing the refinement.
//Right now only phenix.refine is supported. Note that the refinement itself
//happens entirely inside the external program; this package only marshals the
//input files, runs the program and parses the quality metrics from its log.
package refine
