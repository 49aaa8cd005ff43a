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

// Package prefs facilitates the storage of preferential values in the
// scenepipe system. It is a simple key/value store with values being
// represented by the Bool, Int, Float and String types.
//
// A Disk instance collates preference values and associates them with a file
// on disk. The file format is one "key :: value" pair per line, preceded by
// the WarningBoilerPlate header. Saving a Disk preserves entries in the file
// that were added by another Disk instance, so more than one component can
// share the same preferences file.
//
// Values can be overridden from the command line with the command line stack.
// A prefs string of the form "key::value; key::value" is pushed with
// PushCommandLineStack() and consulted whenever a Disk is loaded. Values from
// the command line are used for the current session only and are never saved
// to disk unless the value is subsequently changed.
package prefs
