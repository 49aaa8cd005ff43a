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

package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jetsetilly/scenepipe/modalflag"
	"github.com/jetsetilly/scenepipe/pipeline"
	"github.com/jetsetilly/scenepipe/scene"
	"github.com/jetsetilly/scenepipe/sdlplatform"
	"github.com/veandco/go-sdl2/sdl"
)

func run(md *modalflag.Modes, sync *mainSync, c *common) error {
	md.NewMode()
	md.AdditionalHelp(`keys: p pause/resume, u update once, s new window, v cycle vsync mode,
      1-3 vsyncs per render, n notify, d dump state, cursor keys move the player,
      mouse click moves the player, q quit`)

	width := md.AddInt("width", 640, "window width")
	height := md.AddInt("height", 480, "window height")
	hardware := md.AddBool("displaysync", true, "pace vsync with the display refresh rate")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	// create gui on the main thread
	sync.creator <- func() (GuiCreator, error) {
		return newSdlGui(c, int32(*width), int32(*height), *hardware)
	}

	var gui *sdlGui
	select {
	case g := <-sync.creation:
		gui = g.(*sdlGui)
	case err := <-sync.creationError:
		return err
	}

	gui.sess.start()

	select {
	case <-gui.quit:
	case <-sync.interrupt:
	}

	// the pipeline must be stopped before the gui is destroyed by the main
	// thread
	return gui.sess.end()
}

// sdlGui implements the GuiCreator interface.
type sdlGui struct {
	plt     *sdlplatform.Platform
	window  *sdlplatform.Window
	retired []*sdlplatform.Window

	scn  *scene.Scene
	sess *session

	width    int32
	height   int32
	player   [2]float64
	syncMode pipeline.SyncMode
	windows  int

	quit     chan struct{}
	quitOnce sync.Once
}

// must be called from the main thread.
func newSdlGui(c *common, width, height int32, hardware bool) (*sdlGui, error) {
	gui := &sdlGui{
		width:    width,
		height:   height,
		player:   [2]float64{64, 64},
		syncMode: pipeline.SyncVerticalRetrace,
		windows:  1,
		quit:     make(chan struct{}),
	}

	var err error

	gui.plt, err = sdlplatform.NewPlatform()
	if err != nil {
		return nil, err
	}

	gui.window, err = sdlplatform.NewWindow("scenepipe", width, height)
	if err != nil {
		gui.plt.Destroy()
		return nil, err
	}

	factory := &sdlplatform.EGLFactory{}
	gui.scn = demoScene(sdlplatform.NewPainter(factory))

	services := pipeline.Services{
		Core:       gui.scn,
		Surface:    gui.window,
		EGLFactory: factory,
		GL:         sdlplatform.GL{},
	}
	if hardware {
		services.VSyncMonitor = sdlplatform.NewDisplayMonitor(gui.plt)
	}

	gui.sess, err = newSession(c, services, os.Stdout)
	if err != nil {
		_ = gui.window.Destroy()
		gui.plt.Destroy()
		return nil, err
	}

	return gui, nil
}

func (gui *sdlGui) requestQuit() {
	gui.quitOnce.Do(func() {
		close(gui.quit)
	})
}

// Service implements the GuiCreator interface.
func (gui *sdlGui) Service() {
	if !gui.plt.Service(int(pipeline.FrameBudget.Milliseconds()), gui.event) {
		gui.requestQuit()
	}
}

// Destroy implements the GuiCreator interface.
func (gui *sdlGui) Destroy(output io.Writer) {
	for _, w := range gui.retired {
		if err := w.Destroy(); err != nil {
			fmt.Fprintln(output, err)
		}
	}
	if err := gui.window.Destroy(); err != nil {
		fmt.Fprintln(output, err)
	}
	gui.plt.Destroy()
}

// returns false if the event is a request to quit.
func (gui *sdlGui) event(ev sdl.Event) bool {
	ctl := gui.sess.ctl

	switch ev := ev.(type) {
	case *sdl.WindowEvent:
		switch ev.Event {
		case sdl.WINDOWEVENT_CLOSE:
			return false
		case sdl.WINDOWEVENT_EXPOSED, sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_RESTORED:
			ctl.RequestUpdate()
		}

	case *sdl.MouseButtonEvent:
		if ev.Type == sdl.MOUSEBUTTONDOWN && ev.Button == sdl.BUTTON_LEFT {
			gui.player = [2]float64{float64(ev.X), float64(ev.Y)}
			gui.movePlayer(0, 0)
		}

	case *sdl.KeyboardEvent:
		if ev.Type != sdl.KEYDOWN {
			break // switch
		}

		switch ev.Keysym.Sym {
		case sdl.K_ESCAPE, sdl.K_q:
			return false
		case sdl.K_p, sdl.K_SPACE:
			gui.sess.togglePause()
		case sdl.K_u:
			ctl.RequestUpdateOnce()
		case sdl.K_s:
			gui.newWindow()
		case sdl.K_v:
			gui.syncMode = nextVSyncMode(gui.syncMode)
			ctl.SetVSyncMode(gui.syncMode)
		case sdl.K_1:
			ctl.SetRenderRefreshRate(1)
		case sdl.K_2:
			ctl.SetRenderRefreshRate(2)
		case sdl.K_3:
			ctl.SetRenderRefreshRate(3)
		case sdl.K_n:
			gui.scn.Notify()
			ctl.RequestUpdate()
		case sdl.K_d:
			if err := dumpState(ctl, os.Stdout); err != nil {
				fmt.Printf("* %v\n", err)
			}
		case sdl.K_UP:
			gui.movePlayer(0, -8)
		case sdl.K_DOWN:
			gui.movePlayer(0, 8)
		case sdl.K_LEFT:
			gui.movePlayer(-8, 0)
		case sdl.K_RIGHT:
			gui.movePlayer(8, 0)
		}
	}

	return true
}

func (gui *sdlGui) movePlayer(dx, dy float64) {
	gui.player[0] += dx
	gui.player[1] += dy
	gui.scn.Send(scene.Message{Node: "player", X: gui.player[0], Y: gui.player[1]})
	gui.sess.ctl.RequestUpdate()
}

// move rendering to a new window. the previous window is hidden and destroyed
// with the gui.
func (gui *sdlGui) newWindow() {
	gui.windows++

	w, err := sdlplatform.NewWindow(fmt.Sprintf("scenepipe (%d)", gui.windows), gui.width, gui.height)
	if err != nil {
		fmt.Printf("* %v\n", err)
		return
	}

	if !gui.sess.ctl.ReplaceSurface(w) {
		_ = w.Destroy()
		return
	}

	gui.window.Hide()
	gui.retired = append(gui.retired, gui.window)
	gui.window = w
}
