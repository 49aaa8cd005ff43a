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

// Package paths contains functions to prepare paths for scenepipe resources.
//
// The ResourcePath() function modifies the supplied resource string such that
// it is prepended with the appropriate config directory. The returned path is
// created if it does not already exist.
//
// The default build places resources in a directory called ".scenepipe" in
// the current working directory. Builds with the "release" build tag place
// resources in the user's config directory, as returned by
// os.UserConfigDir().
//
//	pth, err := paths.ResourcePath("", prefs.DefaultPrefsFile)
//	/home/user/.config/scenepipe/preferences
package paths
