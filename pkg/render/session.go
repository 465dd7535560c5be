package render

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ChrisMcGann/MALDIView/pkg/core"
	"github.com/ChrisMcGann/MALDIView/pkg/params"
)

// Event is a render trigger delivered to a Session.
type Event interface {
	isEvent()
}

// LoadRequested replaces the session's datasets and always re-renders.
type LoadRequested struct {
	Datasets []*core.Dataset
}

// CommitRequested commits pending parameter edits and re-renders only if
// the committed values changed.
type CommitRequested struct{}

// RedrawRequested re-renders the current datasets unconditionally.
type RedrawRequested struct{}

func (LoadRequested) isEvent()   {}
func (CommitRequested) isEvent() {}
func (RedrawRequested) isEvent() {}

// Drawer receives every pass a Session produces.
type Drawer func(Pass) error

// Session owns the loaded datasets, the parameter set and the most recent
// render pass. It is not safe for concurrent use: all events must be
// delivered from one goroutine, and each Handle call runs its render to
// completion before returning.
type Session struct {
	params   *params.Set
	datasets []*core.Dataset
	last     Pass
	rendered bool
	draw     Drawer
}

// NewSession creates a session around ps. draw may be nil.
func NewSession(ps *params.Set, draw Drawer) *Session {
	if ps == nil {
		ps = params.New()
	}
	return &Session{params: ps, draw: draw}
}

// Params returns the parameter set for editing. Edits take effect on the
// next CommitRequested.
func (s *Session) Params() *params.Set {
	return s.params
}

// Datasets returns the currently loaded datasets.
func (s *Session) Datasets() []*core.Dataset {
	return s.datasets
}

// Last returns the most recent pass and whether one exists.
func (s *Session) Last() (Pass, bool) {
	return s.last, s.rendered
}

// Handle processes one event. It reports whether a new pass was rendered;
// the error is the drawer's, if any. The pass is recorded before drawing,
// so a failed draw still leaves Last up to date.
func (s *Session) Handle(ev Event) (Pass, bool, error) {
	switch e := ev.(type) {
	case LoadRequested:
		s.datasets = e.Datasets
		log.WithField("datasets", len(e.Datasets)).Debug("Datasets replaced")
	case CommitRequested:
		if !s.params.Commit() {
			log.Debug("Parameters unchanged, skipping render")
			return s.last, false, nil
		}
		log.WithField("params", s.params.Committed().String()).Info("Parameters changed")
	case RedrawRequested:
	default:
		return s.last, false, fmt.Errorf("unknown render event %T", ev)
	}

	s.last = Render(s.datasets, s.params)
	s.rendered = true

	if s.draw != nil {
		if err := s.draw(s.last); err != nil {
			return s.last, true, fmt.Errorf("failed to draw pass %s: %w", s.last.ID, err)
		}
	}
	return s.last, true, nil
}
