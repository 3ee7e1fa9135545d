// internal/registry/registry.go - Ordered layer registry with primary tracking
package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/valpere/geolayers/internal"
	"github.com/valpere/geolayers/internal/logging"
)

type subscriber struct {
	id int
	fn func(Event)
}

// Registry holds layers in insertion order. Mutations are serialized;
// readers get copies. At most one layer is PrimaryGeoRaster at any time.
type Registry struct {
	layers      []*Layer
	version     uint64
	subscribers []subscriber
	nextSubID   int
	logger      *slog.Logger
	mutex       sync.RWMutex
}

// New creates an empty registry
func New(logger *slog.Logger) *Registry {
	return &Registry{logger: logging.OrNop(logger)}
}

// Subscribe registers fn for change notifications. Events are delivered
// synchronously, in order, after the mutation is committed. The returned
// function cancels the subscription.
func (r *Registry) Subscribe(fn func(Event)) func() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.nextSubID++
	id := r.nextSubID
	r.subscribers = append(r.subscribers, subscriber{id: id, fn: fn})

	return func() {
		r.mutex.Lock()
		defer r.mutex.Unlock()
		r.subscribers = slices.DeleteFunc(r.subscribers, func(s subscriber) bool { return s.id == id })
	}
}

// mutate runs fn under the write lock, stamps and publishes its events.
func (r *Registry) mutate(fn func() ([]Event, error)) error {
	r.mutex.Lock()
	events, err := fn()
	if err != nil {
		r.mutex.Unlock()
		return err
	}
	if len(events) > 0 {
		r.version++
		for i := range events {
			events[i].Version = r.version
		}
	}
	subs := slices.Clone(r.subscribers)
	r.mutex.Unlock()

	for _, e := range events {
		for _, s := range subs {
			s.fn(e)
		}
	}
	return nil
}

// Add appends a layer and returns the stored copy. A georeferenced raster
// added while no primary exists becomes the primary; a layer added as
// primary while one exists is stored as a plain georeferenced raster.
func (r *Registry) Add(layer Layer) (Layer, error) {
	added, err := r.AddAll(layer)
	if err != nil {
		return Layer{}, err
	}
	return added[0], nil
}

// AddAll appends several layers atomically: either all are added, in order,
// or none is and the first failure is returned.
func (r *Registry) AddAll(layers ...Layer) ([]Layer, error) {
	for i := range layers {
		if err := validateLayer(&layers[i]); err != nil {
			return nil, err
		}
	}

	var added []Layer
	err := r.mutate(func() ([]Event, error) {
		for i := range layers {
			for _, existing := range r.layers {
				if existing.collides(&layers[i]) {
					return nil, duplicate(&layers[i])
				}
			}
			for j := 0; j < i; j++ {
				if layers[j].collides(&layers[i]) {
					return nil, duplicate(&layers[i])
				}
			}
		}

		primary := r.primaryLocked() != nil
		events := make([]Event, 0, len(layers))
		added = make([]Layer, 0, len(layers))
		for _, layer := range layers {
			switch {
			case layer.Kind == PrimaryGeoRaster && primary:
				layer.Kind = GeoreferencedRaster
			case layer.Kind == GeoreferencedRaster && !primary:
				layer.Kind = PrimaryGeoRaster
			}

			stored := layer.Clone()
			if stored.Props == nil {
				stored.Props = make(map[string]any)
			}
			r.layers = append(r.layers, &stored)

			c := stored.Clone()
			added = append(added, c)
			events = append(events, Event{Type: LayerAdded, Layer: c})
			if stored.Kind == PrimaryGeoRaster {
				primary = true
				events = append(events, Event{Type: PrimaryChanged, Layer: c})
			}

			r.logger.Debug("layer added", "name", stored.Name, "kind", stored.Kind)
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func validateLayer(layer *Layer) error {
	if layer.Name == "" {
		return internal.NewError(internal.ErrorCodeValidation, "layer name is required", nil)
	}
	if layer.Kind < Raster || layer.Kind > Vector {
		return internal.NewError(internal.ErrorCodeValidation, fmt.Sprintf("layer %s has invalid kind %d", layer.Name, layer.Kind), nil)
	}
	if layer.Kind.IsGeoreferenced() && !layer.GeoRef.IsValid() {
		return internal.NewError(internal.ErrorCodeValidation,
			fmt.Sprintf("layer %s needs an invertible georeference", layer.Name), nil)
	}
	return nil
}

func duplicate(layer *Layer) error {
	return internal.NewError(internal.ErrorCodeDuplicateLayer,
		fmt.Sprintf("%s layer %s already exists", layer.Kind.group(), layer.Name), nil)
}

// Remove evicts the first layer named name and returns it so the caller can
// dispose of its rendering handle.
func (r *Registry) Remove(name string) (Layer, error) {
	return r.remove(name, nil)
}

// RemoveKind evicts the first layer named name in kind's group. The primary
// and other georeferenced rasters share a group.
func (r *Registry) RemoveKind(name string, kind Kind) (Layer, error) {
	return r.remove(name, sameGroup(kind))
}

func (r *Registry) remove(name string, match func(*Layer) bool) (Layer, error) {
	var removed Layer
	err := r.mutate(func() ([]Event, error) {
		idx := r.indexLocked(name, match)
		if idx < 0 {
			return nil, notFound(name)
		}

		removed = r.layers[idx].Clone()
		r.layers = slices.Delete(r.layers, idx, idx+1)

		r.logger.Debug("layer removed", "name", name, "kind", removed.Kind)

		events := []Event{{Type: LayerRemoved, Layer: removed}}
		if removed.Kind == PrimaryGeoRaster {
			events = append(events, Event{Type: PrimaryChanged, Previous: name})
		}
		return events, nil
	})
	if err != nil {
		return Layer{}, err
	}
	return removed, nil
}

// SetVisible toggles the visibility flag of the first layer named name.
func (r *Registry) SetVisible(name string, visible bool) error {
	return r.setVisible(name, nil, visible)
}

// SetVisibleKind toggles the visibility of the first layer named name in
// kind's group.
func (r *Registry) SetVisibleKind(name string, kind Kind, visible bool) error {
	return r.setVisible(name, sameGroup(kind), visible)
}

func (r *Registry) setVisible(name string, match func(*Layer) bool, visible bool) error {
	return r.mutate(func() ([]Event, error) {
		idx := r.indexLocked(name, match)
		if idx < 0 {
			return nil, notFound(name)
		}

		l := r.layers[idx]
		if l.Visible == visible {
			return nil, nil
		}
		l.Visible = visible
		return []Event{{Type: VisibilityChanged, Layer: l.Clone()}}, nil
	})
}

// Promote makes the named georeferenced raster the primary, demoting the
// current primary.
func (r *Registry) Promote(name string) error {
	return r.mutate(func() ([]Event, error) {
		idx := r.indexLocked(name, func(l *Layer) bool { return l.Kind.IsGeoreferenced() })
		if idx < 0 {
			return nil, notFound(name)
		}

		target := r.layers[idx]
		if target.Kind == PrimaryGeoRaster {
			return nil, nil
		}
		if !target.GeoRef.IsValid() {
			return nil, internal.NewError(internal.ErrorCodeValidation,
				fmt.Sprintf("layer %s has no invertible georeference", name), nil)
		}

		var previous string
		if old := r.primaryLocked(); old != nil {
			previous = old.Name
			old.Kind = demoted(old)
		}
		target.Kind = PrimaryGeoRaster

		r.logger.Debug("primary changed", "name", name, "previous", previous)

		return []Event{{Type: PrimaryChanged, Layer: target.Clone(), Previous: previous}}, nil
	})
}

// ClearPrimary demotes the current primary, if any. The next georeferenced
// raster added becomes primary.
func (r *Registry) ClearPrimary() {
	_ = r.mutate(func() ([]Event, error) {
		old := r.primaryLocked()
		if old == nil {
			return nil, nil
		}
		old.Kind = demoted(old)

		r.logger.Debug("primary cleared", "previous", old.Name)

		return []Event{{Type: PrimaryChanged, Previous: old.Name}}, nil
	})
}

// Clear evicts every layer and returns them for disposal.
func (r *Registry) Clear() []Layer {
	var evicted []Layer
	_ = r.mutate(func() ([]Event, error) {
		evicted = make([]Layer, len(r.layers))
		for i, l := range r.layers {
			evicted[i] = l.Clone()
		}
		r.layers = nil

		r.logger.Debug("registry cleared", "layers", len(evicted))

		return []Event{{Type: RegistryCleared}}, nil
	})
	return evicted
}

// Snapshot returns a consistent copy of the registry.
func (r *Registry) Snapshot() *Snapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	layers := make([]Layer, len(r.layers))
	for i, l := range r.layers {
		layers[i] = l.Clone()
	}
	return &Snapshot{Version: r.version, Layers: layers}
}

// Version increases with every committed change.
func (r *Registry) Version() uint64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.version
}

// Len returns the number of layers
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.layers)
}

// All returns every layer in insertion order
func (r *Registry) All() []Layer {
	return r.Snapshot().Layers
}

// ByKind returns layers of exactly the given kind in insertion order
func (r *Registry) ByKind(kind Kind) []Layer {
	return r.Snapshot().ByKind(kind)
}

// Find returns the first layer named name
func (r *Registry) Find(name string) (Layer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if idx := r.indexLocked(name, nil); idx >= 0 {
		return r.layers[idx].Clone(), nil
	}
	return Layer{}, notFound(name)
}

// FindKind returns the first layer named name whose kind is kind
func (r *Registry) FindKind(name string, kind Kind) (Layer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if idx := r.indexLocked(name, func(l *Layer) bool { return l.Kind == kind }); idx >= 0 {
		return r.layers[idx].Clone(), nil
	}
	return Layer{}, notFound(name)
}

// Primary returns the primary georeferenced raster, if any
func (r *Registry) Primary() (Layer, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if p := r.primaryLocked(); p != nil {
		return p.Clone(), true
	}
	return Layer{}, false
}

// HasGeoreferenced reports whether any georeferenced raster is loaded
func (r *Registry) HasGeoreferenced() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, l := range r.layers {
		if l.Kind.IsGeoreferenced() {
			return true
		}
	}
	return false
}

// Groups arranges layers by kind for presentation
func (r *Registry) Groups() []Group {
	return r.Snapshot().Groups()
}

func (r *Registry) primaryLocked() *Layer {
	for _, l := range r.layers {
		if l.Kind == PrimaryGeoRaster {
			return l
		}
	}
	return nil
}

func (r *Registry) indexLocked(name string, match func(*Layer) bool) int {
	return slices.IndexFunc(r.layers, func(l *Layer) bool {
		return l.Name == name && (match == nil || match(l))
	})
}

func sameGroup(kind Kind) func(*Layer) bool {
	return func(l *Layer) bool { return l.Kind.group() == kind.group() }
}

func demoted(l *Layer) Kind {
	if l.GeoRef.IsValid() {
		return GeoreferencedRaster
	}
	return Raster
}

func notFound(name string) error {
	return internal.NewError(internal.ErrorCodeLayerNotFound, fmt.Sprintf("layer %s not found", name), nil)
}
