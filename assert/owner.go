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

//go:build !assertions

package assert

// Owner records the goroutine that claimed a resource. Without the
// "assertions" build tag the checks do nothing.
type Owner struct{}

// NewOwner is the preferred method of initialisation for the Owner type.
func NewOwner(_ string) *Owner {
	return &Owner{}
}

// Claim the resource for the calling goroutine.
func (o *Owner) Claim() {}

// Release the resource.
func (o *Owner) Release() {}

// Check panics if the resource has been claimed by a different goroutine.
func (o *Owner) Check() {}
