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
	"time"

	"github.com/jetsetilly/scenepipe/keyboard"
	"github.com/jetsetilly/scenepipe/logger"
	"github.com/jetsetilly/scenepipe/modalflag"
	"github.com/jetsetilly/scenepipe/pipeline"
	"github.com/jetsetilly/scenepipe/scene"
	"github.com/jetsetilly/scenepipe/surface/headless"
)

const headlessHelp = `keys: p pause/resume, u update once, r request update, s swap surface,
      l lose surface, v cycle vsync mode, 1-3 vsyncs per render, n notify, d dump state,
      cursor keys move the player, q quit`

func runHeadless(md *modalflag.Modes, sync *mainSync, c *common, output io.Writer) error {
	md.NewMode()
	md.AdditionalHelp(headlessHelp)

	duration := md.AddDuration("duration", 0, "run duration. zero runs until quit")
	pixmap := md.AddBool("pixmap", false, "start with a pixmap surface")
	period := md.AddDuration("vsync", 0, "period of simulated hardware vsync. zero uses the software timer")
	useKeyboard := md.AddBool("keyboard", true, "read keys from the terminal")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	var monitor pipeline.VSyncMonitor
	if *period > 0 {
		monitor = headless.NewMonitor(*period, true)
	}

	surface := headless.NewWindow("window")
	if *pixmap {
		surface = headless.NewPixmap("pixmap")
	}

	scn := demoScene(nil)

	sess, err := newSession(c, pipeline.Services{
		Core:         scn,
		Surface:      surface,
		EGLFactory:   headless.NewEGLFactory(false),
		GL:           headless.GL{},
		VSyncMonitor: monitor,
	}, output)
	if err != nil {
		return err
	}

	sess.start()

	h := &headlessKeys{
		sess:     sess,
		scn:      scn,
		surface:  surface,
		output:   output,
		player:   [2]float64{64, 64},
		syncMode: pipeline.SyncVerticalRetrace,
	}

	// pixmap surfaces wait for every frame to be acknowledged
	quitAck := make(chan struct{})
	ackDone := make(chan struct{})
	go func() {
		defer close(ackDone)
		ticker := time.NewTicker(pipeline.FrameBudget)
		defer ticker.Stop()
		for {
			select {
			case <-quitAck:
				return
			case <-ticker.C:
				sess.ctl.RenderSync()
			}
		}
	}()

	keys := make(chan keyboard.Key)
	var kb *keyboard.Keyboard
	if *useKeyboard {
		kb, err = keyboard.Open("/dev/tty")
		if err != nil {
			logger.Logf(logger.Allow, "headless", "keyboard unavailable: %v", err)
			kb = nil
		} else {
			fmt.Fprintln(output, headlessHelp)
			go func() {
				err := kb.Run(func(k keyboard.Key) bool {
					keys <- k
					return k.Rune != 'q'
				})
				if err != nil {
					logger.Log(logger.Allow, "headless", err)
				}
			}()
		}
	}

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}

	done := false
	for !done {
		select {
		case <-sync.interrupt:
			done = true
		case <-timeout:
			done = true
		case k := <-keys:
			done = !h.key(k)
		}
	}

	if kb != nil {
		// unblock a pending key
		go func() {
			for range keys {
			}
		}()
		_ = kb.Close()
		kb.Wait()
		close(keys)
	}

	err = sess.end()
	close(quitAck)
	<-ackDone

	fmt.Fprintf(output, "%d updates, %d renders, %d stalls\n", scn.Updates(), scn.Renders(), sess.ctl.Stalls())

	return err
}

// headlessKeys handles key presses for the HEADLESS mode.
type headlessKeys struct {
	sess     *session
	scn      *scene.Scene
	surface  *headless.Surface
	output   io.Writer
	player   [2]float64
	syncMode pipeline.SyncMode
	swaps    int
}

// returns false if the key is a request to quit.
func (h *headlessKeys) key(k keyboard.Key) bool {
	ctl := h.sess.ctl

	switch k.Cursor {
	case keyboard.CursorUp:
		h.movePlayer(0, -8)
	case keyboard.CursorDown:
		h.movePlayer(0, 8)
	case keyboard.CursorForward:
		h.movePlayer(8, 0)
	case keyboard.CursorBackward:
		h.movePlayer(-8, 0)
	}

	switch k.Rune {
	case 'q', keyboard.KeyInterrupt:
		return false
	case 'p':
		if h.sess.togglePause() {
			fmt.Fprintln(h.output, "paused")
		} else {
			fmt.Fprintln(h.output, "resumed")
		}
	case 'u':
		ctl.RequestUpdateOnce()
	case 'r':
		ctl.RequestUpdate()
	case 's':
		h.swapSurface()
	case 'l':
		ctl.SurfaceLost()
		fmt.Fprintln(h.output, "surface lost")
	case 'v':
		h.syncMode = nextVSyncMode(h.syncMode)
		ctl.SetVSyncMode(h.syncMode)
		fmt.Fprintf(h.output, "vsync mode: %s\n", h.syncMode)
	case '1', '2', '3':
		n := int(k.Rune - '0')
		ctl.SetRenderRefreshRate(n)
		fmt.Fprintf(h.output, "vsyncs per render: %d\n", n)
	case 'n':
		h.scn.Notify()
		ctl.RequestUpdate()
	case 'd':
		if err := dumpState(ctl, h.output); err != nil {
			fmt.Fprintf(h.output, "* %v\n", err)
		}
	}

	return true
}

func (h *headlessKeys) movePlayer(dx, dy float64) {
	h.player[0] += dx
	h.player[1] += dy
	h.scn.Send(scene.Message{Node: "player", X: h.player[0], Y: h.player[1]})
	h.sess.ctl.RequestUpdate()
}

// swap between window and pixmap surfaces.
func (h *headlessKeys) swapSurface() {
	h.swaps++

	var next *headless.Surface
	if h.surface.Type() == pipeline.WindowSurface {
		next = headless.NewPixmap(fmt.Sprintf("pixmap %d", h.swaps))
	} else {
		next = headless.NewWindow(fmt.Sprintf("window %d", h.swaps))
	}

	if !h.sess.ctl.ReplaceSurface(next) {
		fmt.Fprintln(h.output, "* surface not replaced")
		return
	}

	h.surface = next
	fmt.Fprintf(h.output, "surface is now %s\n", next)
}
