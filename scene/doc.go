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

// Package scene is a small demonstration scene graph that implements the
// pipeline.Core interface. It is used by the scenepipe command and by the
// performance package.
//
// The scene is a list of named nodes, each with a position and a colour.
// Nodes are moved by messages sent to the scene with Send() and by
// animations started with Animate(). Both can be used from any goroutine.
//
// Every update writes a complete Frame into the slot given by the pipeline.
// The render step reads the Frame from its own slot and passes it to the
// Painter. The pipeline guarantees that the two slots are never the same so
// the frames themselves need no locking.
package scene
