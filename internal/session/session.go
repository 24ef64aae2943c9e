// Package session holds the user-facing operations over one loaded binary:
// exploring functions, reading listings, exporting the graph and switching
// the layout orientation.
package session

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/log"

	"callscope/internal/explore"
	"callscope/internal/graph"
	"callscope/internal/layout"
	"callscope/internal/listing"
	"callscope/internal/logging"
	"callscope/internal/prefs"
	"callscope/internal/render"
)

// Store is the disassembly a session works on.
type Store interface {
	explore.Store
	listing.Source
}

// Options configures New.
type Options struct {
	Prefs              *prefs.Store // nil keeps preferences in memory
	DefaultOrientation layout.Orientation
	ListingCache       int
	Theme              *render.Theme // nil means render.NASA
	Title              string
	Logger             *log.Logger
}

// Stats counts the graph content.
type Stats struct {
	Nodes      int
	Edges      int
	Expanded   int
	Unresolved int // unresolved and unknown targets
}

// Session is single-threaded: one operation runs to completion before the
// next starts.
type Session struct {
	store       Store
	engine      *explore.Engine
	listings    *listing.Projector
	prefs       *prefs.Store
	orientation layout.Orientation
	theme       render.Theme
	title       string
	log         *log.Logger
}

// New opens a session over store with an empty graph. The orientation comes
// from stored preferences, else opts.DefaultOrientation.
func New(store Store, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	ps := opts.Prefs
	if ps == nil {
		ps = prefs.NewStore("")
	}
	p, err := ps.Load()
	if err != nil {
		logger.Warn("ignoring preferences", "err", err)
	}
	projector, err := listing.NewProjector(store, opts.ListingCache)
	if err != nil {
		return nil, err
	}
	theme := render.NASA
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	return &Session{
		store:       store,
		engine:      explore.New(store, graph.New(), logger),
		listings:    projector,
		prefs:       ps,
		orientation: p.Layout(opts.DefaultOrientation),
		theme:       theme,
		title:       opts.Title,
		log:         logger,
	}, nil
}

// Model returns the explored graph.
func (s *Session) Model() *graph.Model { return s.engine.Model() }

// Explore expands the function starting at the address in text.
func (s *Session) Explore(text string) (explore.Result, error) {
	return s.engine.Explore(text)
}

// ExploreEntry expands the function at the binary's entry point.
func (s *Session) ExploreEntry() (explore.Result, error) {
	return s.engine.ExploreEntry()
}

// Listing returns the disassembly of the function starting at the address
// in text.
func (s *Session) Listing(text string) (string, error) {
	addr, err := explore.ParseAddress(text)
	if err != nil {
		return "", err
	}
	fn, ok := s.store.Function(addr)
	if !ok {
		return "", fmt.Errorf("%w 0x%08x", explore.ErrNoFunction, addr)
	}
	return listing.Header(fn) + "\n" + s.listings.Render(fn), nil
}

// Layout places the current graph in the current orientation.
func (s *Session) Layout() layout.Layout {
	return layout.Compute(s.Model().Snapshot(), s.orientation)
}

// SaveVector writes the graph as SVG.
func (s *Session) SaveVector(path string) error {
	if err := render.SaveSVG(path, s.Layout(), s.theme); err != nil {
		return err
	}
	s.log.Info("wrote svg", "path", path, "nodes", s.Model().NodeCount())
	return nil
}

// SaveRaster writes the graph as PNG on a white background.
func (s *Session) SaveRaster(path string) error {
	if err := render.SavePNG(path, s.Layout(), s.theme, color.White); err != nil {
		return err
	}
	s.log.Info("wrote png", "path", path, "nodes", s.Model().NodeCount())
	return nil
}

// SaveDOT writes the graph as Graphviz DOT.
func (s *Session) SaveDOT(path string) error {
	dot := render.GraphDOT(s.Model().Snapshot(), s.orientation, s.title, s.theme)
	if err := render.SaveDOT(path, dot); err != nil {
		return err
	}
	s.log.Info("wrote dot", "path", path, "nodes", s.Model().NodeCount())
	return nil
}

// SaveSummary writes the name-level call summary as DOT.
func (s *Session) SaveSummary(path string) error {
	if err := render.SaveDOT(path, render.SummaryDOT(s.Model(), s.title)); err != nil {
		return err
	}
	s.log.Info("wrote summary", "path", path)
	return nil
}

// Clear empties the graph. Listings and preferences are kept.
func (s *Session) Clear() {
	s.engine.Clear()
}

// SetOrientation switches the layout of every later export and persists the
// choice. The orientation is applied even when persisting fails.
func (s *Session) SetOrientation(o layout.Orientation) error {
	s.orientation = o
	if err := s.prefs.Save(prefs.Prefs{Orientation: o.String()}); err != nil {
		return err
	}
	s.log.Debug("orientation", "value", o)
	return nil
}

// Orientation returns the current orientation.
func (s *Session) Orientation() layout.Orientation { return s.orientation }

// Stats counts nodes and edges of the graph.
func (s *Session) Stats() Stats {
	st := Stats{Nodes: s.Model().NodeCount(), Edges: s.Model().EdgeCount()}
	for _, n := range s.Model().Nodes() {
		switch n.State {
		case graph.StateExpanded:
			st.Expanded++
		case graph.StateUnknown, graph.StateUnresolved:
			st.Unresolved++
		}
	}
	return st
}
