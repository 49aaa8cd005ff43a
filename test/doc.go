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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect functions record a test failure and allow the test to continue.
// The Demand functions are fatal to the test. Both accept optional tags which
// are prefixed to the failure message, useful when a check happens inside a
// loop.
//
// The ExpectSuccess and ExpectFailure functions test for success or failure
// under generic conditions. A nil value is considered a success because of how
// errors usually work (nil to indicate no error).
//
// ExpectCompletion is for the concurrent parts of the pipeline. It fails the
// test if a channel is not closed within a timeout, which is how a deadlock
// shows itself in a test rather than as a hung test binary.
package test
