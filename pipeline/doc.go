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

// Package pipeline is the update/render synchronisation core of scenepipe.
//
// Three goroutines take part in the pipeline. The VSyncNotifier paces the
// cadence, the UpdateThread drives the scene's Update step and the
// RenderThread owns the graphics context and drives the scene's Render step.
// All three rendezvous through a single Synchronisation instance.
//
// Update writes frames into a small ring of FrameSlots and Render consumes
// them in order. Update may only be one frame ahead of Render (with the
// default of two slots) and the VSyncNotifier may only be one tick ahead of
// Update. Both limits are enforced by blocking the producer.
//
// The Controller type assembles the pipeline from a Services value and is the
// only type most programs need to use directly:
//
//	ctl, err := pipeline.NewController(services, opts)
//	if err != nil {
//		return err
//	}
//	ctl.Start()
//	...
//	ctl.Stop()
//
// Shutdown is cooperative. Stop() wakes every waiting goroutine, each
// goroutine notices that the pipeline is no longer running and exits, and
// the controller joins all three before returning.
//
// A surface can be replaced while the pipeline is running with
// Controller.ReplaceSurface(). The call returns once the render goroutine has
// switched to the new surface, at which point the old surface is no longer
// in use and can be destroyed.
package pipeline
