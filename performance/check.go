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

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/scenepipe/pipeline"
	"github.com/jetsetilly/scenepipe/scene"
	"github.com/jetsetilly/scenepipe/surface/headless"
)

// the longest time allowed for the frame rate to settle before measurement
// begins
const maxLeadTime = 2 * time.Second

// Check the performance of the pipeline by running a headless pipeline with
// a continuously animated scene.
//
// If uncapped is true then the pipeline is paced by a vsync monitor that
// never waits. Otherwise the software timer is used and the expected frame
// rate is 60fps.
//
// The pipeline will run for the specified duration and will create a cpu,
// memory profile, a trace (or a combination of those) as defined by the
// Profile argument.
func Check(output io.Writer, profile Profile, uncapped bool, duration time.Duration, opts pipeline.Options) error {
	if duration <= 0 {
		return fmt.Errorf("performance: duration must be positive")
	}

	scn := scene.NewScene(nil)
	scn.AddNode(scene.Node{Name: "box", Width: 32, Height: 32})
	scn.Animate("box", 256, 128, 0)

	var monitor pipeline.VSyncMonitor
	if uncapped {
		monitor = headless.NewMonitor(0, true)
	}

	srv := NewServer(0)

	ctl, err := pipeline.NewController(pipeline.Services{
		Core:         scn,
		Surface:      headless.NewWindow("performance"),
		EGLFactory:   headless.NewEGLFactory(false),
		GL:           headless.GL{},
		VSyncMonitor: monitor,
		Markers:      srv,
	}, opts)
	if err != nil {
		return fmt.Errorf("performance: %w", err)
	}

	lead := min(duration/4, maxLeadTime)

	var startFrame, endFrame uint64

	runner := func() error {
		ctl.Start()
		defer ctl.Stop()

		// allow the frame rate to settle down before measuring
		time.Sleep(lead)
		startFrame = scn.Updates()
		srv.Reset()

		time.Sleep(duration)
		endFrame = scn.Updates()

		return nil
	}

	if err := RunProfiler(profile, "performance", runner); err != nil {
		return fmt.Errorf("performance: %w", err)
	}

	expected := 1.0 / (pipeline.FrameBudget.Seconds() * float64(max(opts.VSyncsPerRender, 1)))
	if uncapped {
		expected = 0
	}

	numFrames := int(endFrame - startFrame)
	fps, accuracy := CalcFPS(numFrames, duration.Seconds(), expected)
	if uncapped {
		fmt.Fprintf(output, "%.2f fps (%d frames in %.2f seconds) uncapped\n", fps, numFrames, duration.Seconds())
	} else {
		fmt.Fprintf(output, "%.2f fps (%d frames in %.2f seconds) %.1f%%\n", fps, numFrames, duration.Seconds(), accuracy)
	}

	return srv.Report(output)
}
