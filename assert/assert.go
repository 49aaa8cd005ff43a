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

package assert

import "fmt"

// Always panics with the message if the condition is false.
func Always(cond bool, msg string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assert: "+msg, args...))
	}
}

// Never panics with the message if the condition is true.
func Never(cond bool, msg string, args ...any) {
	if cond {
		panic(fmt.Sprintf("assert: "+msg, args...))
	}
}

// Fatal panics if err is not nil. Used for failures that leave the program
// in a state that cannot continue, such as being unable to create a graphics
// context.
func Fatal(err error, context string) {
	if err != nil {
		panic(fmt.Sprintf("assert: %s: %v", context, err))
	}
}
