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

package performance_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jetsetilly/scenepipe/performance"
	"github.com/jetsetilly/scenepipe/pipeline"
	"github.com/jetsetilly/scenepipe/test"
)

var _ pipeline.Markers = (*performance.Server)(nil)

func TestCalcFPS(t *testing.T) {
	fps, accuracy := performance.CalcFPS(120, 2.0, 60)
	test.ExpectApproximate(t, fps, 60.0, 0.0001)
	test.ExpectApproximate(t, accuracy, 100.0, 0.0001)

	fps, accuracy = performance.CalcFPS(90, 2.0, 60)
	test.ExpectApproximate(t, fps, 45.0, 0.0001)
	test.ExpectApproximate(t, accuracy, 75.0, 0.0001)

	fps, accuracy = performance.CalcFPS(90, 0, 60)
	test.ExpectEquality(t, fps, 0.0)
	test.ExpectEquality(t, accuracy, 0.0)

	_, accuracy = performance.CalcFPS(90, 1, 0)
	test.ExpectEquality(t, accuracy, 0.0)
}

func TestParseProfileString(t *testing.T) {
	p, err := performance.ParseProfileString("cpu, TRACE")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileCPU|performance.ProfileTrace)
	test.ExpectEquality(t, p.String(), "cpu,trace")

	p, err = performance.ParseProfileString("all")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileAll)

	p, err = performance.ParseProfileString("none")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p.String(), "none")

	_, err = performance.ParseProfileString("cpu,disk")
	test.ExpectFailure(t, err)
}

func TestRunProfiler(t *testing.T) {
	t.Chdir(t.TempDir())

	var ran bool
	err := performance.RunProfiler(performance.ProfileCPU|performance.ProfileMem, "test", func() error {
		ran = true
		return nil
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, ran, true)

	_, err = os.Stat("test_cpu.profile")
	test.ExpectSuccess(t, err)
	_, err = os.Stat("test_mem.profile")
	test.ExpectSuccess(t, err)
	_, err = os.Stat("test_trace.profile")
	test.ExpectFailure(t, err)

	// errors from the run function are returned unchanged
	runErr := errors.New("run error")
	err = performance.RunProfiler(performance.ProfileNone, "test", func() error {
		return runErr
	})
	test.ExpectEquality(t, errors.Is(err, runErr), true)
}

func TestServer(t *testing.T) {
	srv := performance.NewServer(0)

	t0 := time.Now()
	at := func(ms int) time.Time {
		return t0.Add(time.Duration(ms) * time.Millisecond)
	}

	for _, m := range []pipeline.Marker{
		{Type: pipeline.MarkerVSync, Timestamp: at(0)},
		{Type: pipeline.MarkerUpdateStart, Timestamp: at(1)},
		{Type: pipeline.MarkerUpdateEnd, Timestamp: at(3)},
		{Type: pipeline.MarkerRenderStart, Timestamp: at(4)},
		{Type: pipeline.MarkerRenderEnd, Timestamp: at(10)},
		{Type: pipeline.MarkerVSync, Timestamp: at(16)},
		{Type: pipeline.MarkerUpdateStart, Timestamp: at(17)},
		{Type: pipeline.MarkerUpdateEnd, Timestamp: at(21)},
		{Type: pipeline.MarkerVSync, Timestamp: at(34)},

		// the time spent paused is ignored
		{Type: pipeline.MarkerPaused, Timestamp: at(35)},
		{Type: pipeline.MarkerResume, Timestamp: at(1000)},
		{Type: pipeline.MarkerVSync, Timestamp: at(1001)},
		{Type: pipeline.MarkerVSync, Timestamp: at(1017)},

		// an end marker without a start marker is ignored
		{Type: pipeline.MarkerRenderEnd, Timestamp: at(1020)},
	} {
		srv.AddMarker(m)
	}

	stats := srv.Stats()
	test.DemandEquality(t, len(stats), 3)

	vsync := stats[0]
	test.ExpectEquality(t, vsync.Name, performance.StatVSync)
	test.ExpectEquality(t, vsync.Count, 3)
	test.ExpectEquality(t, vsync.Min, 16*time.Millisecond)
	test.ExpectEquality(t, vsync.Max, 18*time.Millisecond)
	test.ExpectEquality(t, vsync.Total, 50*time.Millisecond)

	update := stats[1]
	test.ExpectEquality(t, update.Count, 2)
	test.ExpectEquality(t, update.Min, 2*time.Millisecond)
	test.ExpectEquality(t, update.Max, 4*time.Millisecond)
	test.ExpectEquality(t, update.Avg(), 3*time.Millisecond)

	render := stats[2]
	test.ExpectEquality(t, render.Count, 1)
	test.ExpectEquality(t, render.Total, 6*time.Millisecond)

	test.ExpectEquality(t, srv.Pauses(), 1)

	var b strings.Builder
	test.ExpectSuccess(t, srv.Report(&b))
	test.ExpectEquality(t, strings.Count(b.String(), "\n"), 3)
	test.ExpectEquality(t, strings.HasPrefix(b.String(), "vsync: min 16ms, max 18ms"), true)

	srv.Reset()
	test.ExpectEquality(t, srv.Stats()[0].Count, 0)
	test.ExpectEquality(t, srv.Stats()[0].Avg(), time.Duration(0))
}

func TestServerLogging(t *testing.T) {
	srv := performance.NewServer(time.Millisecond)
	srv.Start()
	srv.AddMarker(pipeline.Marker{Type: pipeline.MarkerVSync, Timestamp: time.Now()})
	srv.AddMarker(pipeline.Marker{Type: pipeline.MarkerVSync, Timestamp: time.Now()})
	time.Sleep(10 * time.Millisecond)
	test.ExpectCompletion(t, test.Go(srv.Stop), time.Second)
	srv.Stop()
}

func TestCheck(t *testing.T) {
	opts := pipeline.DefaultOptions()
	opts.StallWarning = 0

	var b strings.Builder
	err := performance.Check(&b, performance.ProfileNone, true, 100*time.Millisecond, opts)
	test.DemandSuccess(t, err)

	out := b.String()
	test.ExpectEquality(t, strings.Contains(out, "fps ("), true, out)
	test.ExpectEquality(t, strings.Contains(out, "uncapped"), true, out)
	test.ExpectEquality(t, strings.Contains(out, "render: min"), true, out)

	test.ExpectFailure(t, performance.Check(&b, performance.ProfileNone, true, 0, opts))
}
