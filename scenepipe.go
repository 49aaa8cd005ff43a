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
	"os/signal"
	"time"

	"github.com/jetsetilly/scenepipe/logger"
	"github.com/jetsetilly/scenepipe/modalflag"
	"github.com/jetsetilly/scenepipe/paths"
	"github.com/jetsetilly/scenepipe/performance"
	"github.com/jetsetilly/scenepipe/pipeline"
	"github.com/jetsetilly/scenepipe/statsview"
	"github.com/jetsetilly/scenepipe/version"
)

type stateReq = string

const (
	// main thread should end as soon as possible.
	//
	// takes optional int argument, indicating the status code.
	reqQuit stateReq = "QUIT"
)

type stateRequest struct {
	req  stateReq
	args any
}

// GuiCreator facilitates the creation, servicing and destruction of GUIs
// that need to be run in the main thread.
type GuiCreator interface {
	// cleanup resources used by the gui
	Destroy(io.Writer)

	// Service() should not pause or loop longer than necessary. It MUST ONLY
	// by called as part of a larger loop from the main thread.
	Service()
}

// communication between the main() function and the launch() function. this
// is required because SDL requires window event handling (including
// creation) to occur on the main thread.
type mainSync struct {
	state   chan stateRequest
	creator chan func() (GuiCreator, error)

	// the result of creator will be returned on either of these two channels.
	creation      chan GuiCreator
	creationError chan error

	// closed on interrupt signal
	interrupt chan struct{}
}

// how long the main thread waits for something to happen when there is no
// gui to service.
const idleService = 10 * time.Millisecond

// #mainthread
func main() {
	sync := &mainSync{
		state:         make(chan stateRequest),
		creator:       make(chan func() (GuiCreator, error)),
		creation:      make(chan GuiCreator),
		creationError: make(chan error),
		interrupt:     make(chan struct{}),
	}

	// the value to use with os.Exit(). can be changed with reqQuit
	// stateRequest
	exitVal := 0

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	// launch program as a go routine. further communication is through
	// the mainSync instance
	go launch(sync, os.Args[1:])

	done := false
	var gui GuiCreator
	for !done {
		select {
		case <-intChan:
			fmt.Println("\r")

			// the launched mode is given the chance to stop the pipeline
			// before the gui is destroyed
			select {
			case <-sync.interrupt:
			default:
				close(sync.interrupt)
			}

		case creator := <-sync.creator:
			if gui != nil {
				gui.Destroy(os.Stderr)
			}

			g, err := creator()
			if err != nil {
				gui = nil
				sync.creationError <- err
			} else {
				gui = g
				sync.creation <- gui
			}

		case state := <-sync.state:
			switch state.req {
			case reqQuit:
				done = true
				if gui != nil {
					gui.Destroy(os.Stderr)
				}

				if state.args != nil {
					if v, ok := state.args.(int); ok {
						exitVal = v
					} else {
						panic(fmt.Sprintf("cannot convert %s arguments into int", reqQuit))
					}
				}
			}

		default:
			if gui != nil {
				gui.Service()
			} else {
				time.Sleep(idleService)
			}
		}
	}

	fmt.Print("\r")
	os.Exit(exitVal)
}

// launch is called from main() as a goroutine. uses mainSync instance to
// indicate gui creation and to quit.
func launch(sync *mainSync, args []string) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)

	c := addCommonFlags(md)
	md.AddSubModes("RUN", "HEADLESS", "PERFORMANCE", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		sync.state <- stateRequest{req: reqQuit}
		return

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		sync.state <- stateRequest{req: reqQuit, args: 10}
		return
	}

	if *c.log {
		logger.SetEcho(os.Stdout, false)
	}
	logger.Log(logger.Allow, "scenepipe", version.String())

	if *c.statsview {
		if statsview.Available() {
			stop := statsview.Launch(os.Stdout)
			defer stop()
		} else {
			fmt.Println("* statsview not available in this build")
		}
	}

	switch md.Mode() {
	case "RUN":
		err = run(md, sync, c)

	case "HEADLESS":
		err = runHeadless(md, sync, c, os.Stdout)

	case "PERFORMANCE":
		err = perform(md, c, os.Stdout)

	case "VERSION":
		fmt.Println(version.String())
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		sync.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	sync.state <- stateRequest{req: reqQuit}
}

func perform(md *modalflag.Modes, c *common, output io.Writer) error {
	md.NewMode()
	md.AdditionalHelp("runs the pipeline with a headless surface and reports the frame rate")

	duration := md.AddDuration("duration", 5*time.Second, "run duration (note: there is an overhead of up to 2s)")
	uncapped := md.AddBool("uncapped", false, "run without vsync pacing")
	profile := md.AddString("profile", "none", "run performance profilers: cpu, mem, trace, all (comma separated)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	prf, err := performance.ParseProfileString(*profile)
	if err != nil {
		return err
	}

	opts, err := c.options()
	if err != nil {
		return err
	}

	return performance.Check(output, prf, *uncapped, *duration, opts)
}

// dumpState writes the state of the pipeline to a uniquely named file in the
// current directory.
func dumpState(ctl *pipeline.Controller, output io.Writer) error {
	fn := fmt.Sprintf("%s.dot", paths.UniqueFilename("memviz", "state"))
	if err := writeState(ctl, fn); err != nil {
		return err
	}
	fmt.Fprintf(output, "pipeline state written to %s\n", fn)
	return nil
}

// the state file is only complete once it has been closed successfully
func writeState(ctl *pipeline.Controller, fn string) (rerr error) {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()
	return ctl.DumpState(f)
}
