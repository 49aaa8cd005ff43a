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
	"sync"
	"time"

	"github.com/jetsetilly/scenepipe/logger"
	"github.com/jetsetilly/scenepipe/pipeline"
)

// Stat is the summary of a series of durations.
type Stat struct {
	Name  string
	Count int
	Min   time.Duration
	Max   time.Duration
	Total time.Duration
}

// Avg returns the mean of the durations.
func (st Stat) Avg() time.Duration {
	if st.Count == 0 {
		return 0
	}
	return st.Total / time.Duration(st.Count)
}

func (st Stat) String() string {
	return fmt.Sprintf("%s: min %v, max %v, avg %v, total %v, count %d",
		st.Name, st.Min, st.Max, st.Avg(), st.Total, st.Count)
}

func (st *Stat) add(d time.Duration) {
	if st.Count == 0 || d < st.Min {
		st.Min = d
	}
	if d > st.Max {
		st.Max = d
	}
	st.Total += d
	st.Count++
}

// The statistics collected by the Server.
const (
	StatVSync  = "vsync"
	StatUpdate = "update"
	StatRender = "render"
)

// Server implements the pipeline.Markers interface. Markers are paired into
// durations and the durations summarised.
type Server struct {
	crit sync.Mutex

	vsync  Stat
	update Stat
	render Stat

	pauses int

	// time of the most recent opening marker. zero if there is no
	// outstanding marker
	lastVSync   time.Time
	updateStart time.Time
	renderStart time.Time

	interval time.Duration
	quit     chan struct{}
	done     chan struct{}
}

// NewServer is the preferred method of initialisation for the Server type.
// The statistics are logged every interval. An interval of zero disables
// logging.
func NewServer(interval time.Duration) *Server {
	return &Server{
		vsync:    Stat{Name: StatVSync},
		update:   Stat{Name: StatUpdate},
		render:   Stat{Name: StatRender},
		interval: interval,
	}
}

// AddMarker implements the pipeline.Markers interface.
func (srv *Server) AddMarker(m pipeline.Marker) {
	srv.crit.Lock()
	defer srv.crit.Unlock()

	switch m.Type {
	case pipeline.MarkerVSync:
		if !srv.lastVSync.IsZero() {
			srv.vsync.add(m.Timestamp.Sub(srv.lastVSync))
		}
		srv.lastVSync = m.Timestamp
	case pipeline.MarkerUpdateStart:
		srv.updateStart = m.Timestamp
	case pipeline.MarkerUpdateEnd:
		if !srv.updateStart.IsZero() {
			srv.update.add(m.Timestamp.Sub(srv.updateStart))
			srv.updateStart = time.Time{}
		}
	case pipeline.MarkerRenderStart:
		srv.renderStart = m.Timestamp
	case pipeline.MarkerRenderEnd:
		if !srv.renderStart.IsZero() {
			srv.render.add(m.Timestamp.Sub(srv.renderStart))
			srv.renderStart = time.Time{}
		}
	case pipeline.MarkerPaused:
		// the time spent paused is not a vsync interval
		srv.lastVSync = time.Time{}
		srv.pauses++
	case pipeline.MarkerResume:
		srv.lastVSync = time.Time{}
	}
}

// Stats returns a copy of the statistics collected so far.
func (srv *Server) Stats() []Stat {
	srv.crit.Lock()
	defer srv.crit.Unlock()
	return []Stat{srv.vsync, srv.update, srv.render}
}

// Pauses returns the number of times the pipeline has been paused.
func (srv *Server) Pauses() int {
	srv.crit.Lock()
	defer srv.crit.Unlock()
	return srv.pauses
}

// Reset all statistics.
func (srv *Server) Reset() {
	srv.crit.Lock()
	defer srv.crit.Unlock()
	srv.vsync = Stat{Name: StatVSync}
	srv.update = Stat{Name: StatUpdate}
	srv.render = Stat{Name: StatRender}
	srv.pauses = 0
	srv.lastVSync = time.Time{}
	srv.updateStart = time.Time{}
	srv.renderStart = time.Time{}
}

// Report writes the statistics to io.Writer.
func (srv *Server) Report(output io.Writer) error {
	for _, st := range srv.Stats() {
		if _, err := fmt.Fprintln(output, st); err != nil {
			return fmt.Errorf("performance: %w", err)
		}
	}
	return nil
}

// Start logging the statistics. Does nothing if the server was created with
// a zero interval.
func (srv *Server) Start() {
	if srv.interval <= 0 || srv.done != nil {
		return
	}
	srv.quit = make(chan struct{})
	srv.done = make(chan struct{})

	go func() {
		defer close(srv.done)

		ticker := time.NewTicker(srv.interval)
		defer ticker.Stop()

		for {
			select {
			case <-srv.quit:
				return
			case <-ticker.C:
				for _, st := range srv.Stats() {
					if st.Count > 0 {
						logger.Log(logger.Allow, "performance", st)
					}
				}
			}
		}
	}()
}

// Stop logging the statistics.
func (srv *Server) Stop() {
	if srv.done == nil {
		return
	}
	close(srv.quit)
	<-srv.done
	srv.done = nil
}
