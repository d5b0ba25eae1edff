package bridge

import (
	"github.com/pacerlabs/pacer/engine"
	"github.com/pacerlabs/pacer/errors"
)

// watch is a registered memory watch. Confined to the run loop; the UI only
// ever sees WatchSnapshot copies.
type watch struct {
	address  uint64
	name     string
	typ      engine.DataType
	value    *engine.Value
	lastErr  string
	inflight bool
}

func (w *watch) snapshot() WatchSnapshot {
	s := WatchSnapshot{
		Address: w.address,
		Name:    w.name,
		Type:    w.typ,
		Err:     w.lastErr,
	}
	if w.value != nil {
		v := *w.value
		s.Value = &v
	}
	return s
}

// WatchSnapshot is an immutable view of a watch for the UI layer. Value is
// nil until the first successful read. Err carries the most recent read
// failure; a stale Value stays visible alongside it.
type WatchSnapshot struct {
	Address uint64
	Name    string
	Type    engine.DataType
	Value   *engine.Value
	Err     string
}

// registry is the ordered watch collection. Names are unique; order is
// registration order.
type registry struct {
	ordered []*watch
	byName  map[string]*watch
}

func newRegistry() *registry {
	return &registry{byName: make(map[string]*watch)}
}

func (r *registry) add(address uint64, name string, typ engine.DataType) (*watch, error) {
	if name == "" {
		return nil, errors.InvalidInput("watch name must not be empty")
	}
	if !typ.Valid() {
		return nil, errors.New(errors.PhaseValidate, errors.KindInvalidType).
			Detail("data type %d is not defined", int(typ)).
			Build()
	}
	if _, exists := r.byName[name]; exists {
		return nil, errors.DuplicateWatch(name)
	}
	w := &watch{address: address, name: name, typ: typ}
	r.ordered = append(r.ordered, w)
	r.byName[name] = w
	return w, nil
}

func (r *registry) remove(name string) error {
	w, ok := r.byName[name]
	if !ok {
		return errors.NotFound("watch", name)
	}
	delete(r.byName, name)
	for i, cur := range r.ordered {
		if cur == w {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return nil
}

func (r *registry) get(name string) *watch {
	return r.byName[name]
}

func (r *registry) snapshots() []WatchSnapshot {
	out := make([]WatchSnapshot, len(r.ordered))
	for i, w := range r.ordered {
		out[i] = w.snapshot()
	}
	return out
}
