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

	"github.com/jetsetilly/scenepipe/logger"
	"github.com/jetsetilly/scenepipe/modalflag"
	"github.com/jetsetilly/scenepipe/performance"
	"github.com/jetsetilly/scenepipe/pipeline"
	"github.com/jetsetilly/scenepipe/prefs"
	"github.com/jetsetilly/scenepipe/scene"
	"github.com/jetsetilly/scenepipe/trigger"
)

// flags common to every mode.
type common struct {
	prefs     *string
	log       *bool
	statsview *bool
	memviz    *bool
	markers   *time.Duration
}

func addCommonFlags(md *modalflag.Modes) *common {
	return &common{
		prefs:     md.AddString("prefs", "", "preferences for this run only. eg. pipeline.frameSlots::3"),
		log:       md.AddBool("log", false, "echo log to stdout"),
		statsview: md.AddBool("statsview", false, "launch the statsview server"),
		memviz:    md.AddBool("memviz", false, "dump pipeline state to a dot file on exit"),
		markers:   md.AddDuration("markers", 0, "log pipeline timing statistics at this interval"),
	}
}

// options returns the pipeline options from the preferences file, amended by
// the -prefs flag.
func (c *common) options() (pipeline.Options, error) {
	// a missing preferences file is created on first load. that must happen
	// before the command line values are applied or they would be saved
	p, err := pipeline.NewPreferences()
	if err != nil {
		return pipeline.Options{}, err
	}
	if *c.prefs == "" {
		return p.Options(), nil
	}

	// values from the command line stack are not retained beyond this
	// point
	prefs.PushCommandLineStack(*c.prefs)
	defer func() {
		for prefs.SizeCommandLineStack() > 0 {
			prefs.PopCommandLineStack()
		}
	}()

	p, err = pipeline.NewPreferences()
	if err != nil {
		return pipeline.Options{}, err
	}

	return p.Options(), nil
}

// the scene used by the RUN and HEADLESS modes.
func demoScene(painter scene.Painter) *scene.Scene {
	scn := scene.NewScene(painter)
	scn.AddNode(scene.Node{Name: "player", X: 64, Y: 64, Width: 32, Height: 32, Colour: [3]float32{0.9, 0.8, 0.2}})
	scn.AddNode(scene.Node{Name: "box", X: 160, Y: 96, Width: 48, Height: 48, Colour: [3]float32{0.2, 0.6, 0.9}})
	scn.AddNode(scene.Node{Name: "bar", X: 32, Y: 320, Width: 256, Height: 8, Colour: [3]float32{0.8, 0.3, 0.3}})
	scn.Animate("box", 320, 160, 0)
	return scn
}

// session is a running pipeline and the services that surround it.
type session struct {
	ctl     *pipeline.Controller
	srv     *performance.Server
	notify  *trigger.Event
	memviz  bool
	output  io.Writer
	started bool
}

func newSession(c *common, services pipeline.Services, output io.Writer) (*session, error) {
	opts, err := c.options()
	if err != nil {
		return nil, err
	}

	sess := &session{
		srv:    performance.NewServer(*c.markers),
		memviz: *c.memviz,
		output: output,
	}

	sess.notify, err = trigger.NewEvent(func() {
		logger.Log(logger.Allow, "notification", "scene notification received")
	})
	if err != nil {
		return nil, err
	}

	services.Trigger = sess.notify
	services.Markers = sess.srv

	sess.ctl, err = pipeline.NewController(services, opts)
	if err != nil {
		_ = sess.notify.Close()
		return nil, err
	}

	return sess, nil
}

func (sess *session) start() {
	sess.srv.Start()
	sess.ctl.Start()
	sess.started = true
}

// end the session. the pipeline is stopped and the state is dumped if
// requested.
func (sess *session) end() error {
	sess.ctl.Stop()
	sess.srv.Stop()

	var err error
	if sess.memviz && sess.started {
		err = dumpState(sess.ctl, sess.output)
	}

	if cerr := sess.notify.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("notification: %w", cerr)
	}

	return err
}

// togglePause pauses or resumes the pipeline. Returns true if the pipeline is
// now paused.
func (sess *session) togglePause() bool {
	if sess.ctl.State().Paused {
		sess.ctl.Resume()
		return false
	}
	sess.ctl.Pause()
	return true
}

// nextVSyncMode returns the mode that follows the current one.
func nextVSyncMode(mode pipeline.SyncMode) pipeline.SyncMode {
	switch mode {
	case pipeline.SyncImmediate:
		return pipeline.SyncVerticalRetrace
	case pipeline.SyncVerticalRetrace:
		return pipeline.SyncAdaptive
	}
	return pipeline.SyncImmediate
}
