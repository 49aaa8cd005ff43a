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

package headless

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jetsetilly/scenepipe/pipeline"
)

// ErrContext is returned by EGL.CreateContext() when the EGL has been set up
// to fail.
var ErrContext = errors.New("headless: cannot create context")

// EGL implements the pipeline.EGL interface.
type EGL struct {
	crit sync.Mutex

	failContext bool

	contextCreated   bool
	contextCurrent   bool
	terminated       bool
	syncModes        []pipeline.SyncMode
	surfacesReplaced int
}

// CreateContext implements the pipeline.EGL interface.
func (e *EGL) CreateContext() error {
	e.crit.Lock()
	defer e.crit.Unlock()
	if e.failContext {
		return ErrContext
	}
	e.contextCreated = true
	return nil
}

// MakeContextCurrent implements the pipeline.EGL interface.
func (e *EGL) MakeContextCurrent() error {
	e.crit.Lock()
	defer e.crit.Unlock()
	if !e.contextCreated {
		return ErrContext
	}
	e.contextCurrent = true
	return nil
}

// SetRefreshSync implements the pipeline.EGL interface.
func (e *EGL) SetRefreshSync(mode pipeline.SyncMode) {
	e.crit.Lock()
	defer e.crit.Unlock()
	e.syncModes = append(e.syncModes, mode)
}

// TerminateGles implements the pipeline.EGL interface.
func (e *EGL) TerminateGles() {
	e.crit.Lock()
	defer e.crit.Unlock()
	e.contextCurrent = false
	e.contextCreated = false
	e.terminated = true
}

func (e *EGL) surfaceReplaced() {
	e.crit.Lock()
	defer e.crit.Unlock()
	e.surfacesReplaced++
}

// SyncModes returns every sync mode requested, in order.
func (e *EGL) SyncModes() []pipeline.SyncMode {
	e.crit.Lock()
	defer e.crit.Unlock()
	c := make([]pipeline.SyncMode, len(e.syncModes))
	copy(c, e.syncModes)
	return c
}

// Terminated returns true if TerminateGles() has been called.
func (e *EGL) Terminated() bool {
	e.crit.Lock()
	defer e.crit.Unlock()
	return e.terminated
}

// SurfacesReplaced returns the number of surfaces that have been replaced
// while using this EGL.
func (e *EGL) SurfacesReplaced() int {
	e.crit.Lock()
	defer e.crit.Unlock()
	return e.surfacesReplaced
}

// EGLFactory implements the pipeline.EGLFactory interface.
type EGLFactory struct {
	failContext bool

	created   atomic.Int64
	destroyed atomic.Int64

	crit sync.Mutex
	egl  *EGL
}

// NewEGLFactory is the preferred method of initialisation for the
// EGLFactory type. If failContext is true then every EGL created by the
// factory will fail to create a context.
func NewEGLFactory(failContext bool) *EGLFactory {
	return &EGLFactory{failContext: failContext}
}

// Create implements the pipeline.EGLFactory interface.
func (f *EGLFactory) Create() pipeline.EGL {
	f.crit.Lock()
	defer f.crit.Unlock()
	f.created.Add(1)
	f.egl = &EGL{failContext: f.failContext}
	return f.egl
}

// Destroy implements the pipeline.EGLFactory interface.
func (f *EGLFactory) Destroy() {
	f.destroyed.Add(1)
}

// EGL returns the most recent EGL created by the factory. Returns nil if
// Create() has not been called.
func (f *EGLFactory) EGL() *EGL {
	f.crit.Lock()
	defer f.crit.Unlock()
	return f.egl
}

// Created returns the number of calls to Create().
func (f *EGLFactory) Created() int {
	return int(f.created.Load())
}

// Destroyed returns the number of calls to Destroy().
func (f *EGLFactory) Destroyed() int {
	return int(f.destroyed.Load())
}

// GL implements the pipeline.GL interface.
type GL struct{}

// GetString implements the pipeline.GL interface.
func (GL) GetString(name uint32) string {
	switch name {
	case pipeline.GLVendor:
		return "scenepipe"
	case pipeline.GLRenderer:
		return "headless"
	case pipeline.GLVersion:
		return "none"
	}
	return ""
}
