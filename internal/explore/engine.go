// Package explore grows the call graph one user-chosen function at a time.
//
// Expanding a function renders its direct call targets and nothing more:
// discovered targets stay unexpanded until they are expanded themselves.
package explore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"callscope/internal/graph"
	"callscope/internal/logging"
	"callscope/internal/structure"
)

var (
	ErrParse      = errors.New("parsing error")
	ErrNoFunction = errors.New("no function at address")
)

// Store is the read-only view of the disassembly the engine needs.
type Store interface {
	Function(addr uint64) (*structure.Function, bool)
	EntryPoint() uint64
}

// Result reports what one expansion added to the graph.
type Result struct {
	Function *structure.Function
	NewNodes int
	NewEdges int
}

// Engine applies expansions to a graph model.
type Engine struct {
	store Store
	model *graph.Model
	log   *log.Logger
}

// New returns an engine over store and model. A nil logger discards output.
func New(store Store, model *graph.Model, logger *log.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{store: store, model: model, log: logger}
}

// Model returns the graph the engine mutates.
func (e *Engine) Model() *graph.Model { return e.model }

// ParseAddress parses a user-entered address. Hex needs a 0x prefix; 0b and
// 0o prefixes and _ separators are accepted as in Go literals.
func ParseAddress(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	addr, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an address", ErrParse, s)
	}
	return addr, nil
}

// Explore parses text and expands the function starting at that address.
func (e *Engine) Explore(text string) (Result, error) {
	addr, err := ParseAddress(text)
	if err != nil {
		return Result{}, err
	}
	return e.ExploreAddress(addr)
}

// ExploreEntry expands the function at the store's entry point.
func (e *Engine) ExploreEntry() (Result, error) {
	return e.ExploreAddress(e.store.EntryPoint())
}

// ExploreAddress expands the function starting at addr. An address with no
// function fails with ErrNoFunction and leaves the graph unchanged.
func (e *Engine) ExploreAddress(addr uint64) (Result, error) {
	fn, ok := e.store.Function(addr)
	if !ok {
		return Result{}, fmt.Errorf("%w 0x%08x", ErrNoFunction, addr)
	}
	return e.Expand(fn)
}

// Expand renders the direct call targets of fn. Expanding twice adds nothing
// the second time.
func (e *Engine) Expand(fn *structure.Function) (Result, error) {
	res := Result{Function: fn}
	if _, ok := e.model.Lookup(graph.FunctionKey(fn.Address)); !ok {
		if _, err := e.model.AddFunctionNode(fn); err != nil {
			return res, err
		}
		res.NewNodes++
	}
	if err := e.model.MarkExpanded(fn); err != nil {
		return res, err
	}

	for i, j := range fn.Calls {
		target, created, err := e.targetNode(j.Target)
		if err != nil {
			return res, err
		}
		if created {
			res.NewNodes++
		}
		_, created, err = e.model.EnsureEdge(fn, i, target)
		if err != nil {
			return res, err
		}
		if created {
			res.NewEdges++
		}
	}

	e.log.Debug("expanded", "fn", fn.DisplayName(), "addr", fmt.Sprintf("0x%x", fn.Address),
		"calls", len(fn.Calls), "new_nodes", res.NewNodes, "new_edges", res.NewEdges)
	return res, nil
}

// targetNode returns the node for a call target, creating it if absent.
func (e *Engine) targetNode(addr uint64) (*graph.Node, bool, error) {
	if fn, ok := e.store.Function(addr); ok {
		if n, ok := e.model.Lookup(graph.FunctionKey(addr)); ok {
			return n, false, nil
		}
		n, err := e.model.AddFunctionNode(fn)
		return n, err == nil, err
	}
	if n, ok := e.model.Lookup(graph.UnresolvedKey(addr)); ok {
		return n, false, nil
	}
	n, err := e.model.AddUnresolvedNode(addr)
	return n, err == nil, err
}

// Clear empties the graph.
func (e *Engine) Clear() {
	e.model.Clear()
	e.log.Debug("cleared graph")
}
