// This file is part of Scenepipe.
//
// Scenepipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Scenepipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Scenepipe.  If not, see <https://www.gnu.org/licenses/>.

// Package modalflag wraps the flag package with support for program modes.
// A mode is a command line argument that selects a different way of running
// the program, each with its own set of flags. Modes can be nested.
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "HEADLESS")
//	p, err := md.Parse()
//	switch p {
//	case modalflag.ParseHelp:
//		return
//	case modalflag.ParseError:
//		return err
//	}
//
//	switch md.Mode() {
//	case "HEADLESS":
//		md.NewMode()
//		duration := md.AddDuration("duration", time.Second, "run time")
//		...
//	}
//
// The first sub-mode is the default and is selected if the first argument
// after the flags is not a recognised mode. Mode comparisons are case
// insensitive.
package modalflag
