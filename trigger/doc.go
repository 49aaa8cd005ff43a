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

// Package trigger implements a cross-goroutine notification. An Event runs
// its callback on its own goroutine every time it is triggered. Triggers that
// arrive before the callback has had a chance to run are coalesced into a
// single call.
//
// On Linux the Event is an eventfd and the callback goroutine polls it. This
// allows the same file descriptor to be added to an external event loop if
// required. Other platforms use a channel.
package trigger
