package bridge

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

type slotEntry struct {
	obj Object
	gen uint32
}

// Registry is the process-wide handle table. It is the only owner of bridged
// objects and the single source of truth for their liveness.
//
// All methods are safe for concurrent use; a single mutex covers create,
// destroy and resolve so no caller can observe a half-destroyed object.
type Registry struct {
	mu      sync.Mutex
	slots   []slotEntry
	free    []int
	live    int
	pending []Handle

	log *zap.Logger
}

// NewRegistry creates an empty handle table. A nil logger discards diagnostics.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{log: log}
}

// Create takes ownership of obj and returns its handle. Create(nil) returns Null.
func (r *Registry) Create(obj Object) Handle {
	if obj == nil {
		r.log.Warn("create called with nil object")
		return Null
	}

	r.mu.Lock()
	var slot int
	if n := len(r.free); n > 0 {
		slot = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		slot = len(r.slots)
		r.slots = append(r.slots, slotEntry{gen: 1})
	}
	r.slots[slot].obj = obj
	h := makeHandle(slot, r.slots[slot].gen)
	r.live++
	r.mu.Unlock()

	r.log.Debug("object created", zap.Stringer("handle", h), zap.Stringer("kind", obj.Kind()))
	return h
}

// lookupLocked returns the object behind h. Caller holds r.mu.
func (r *Registry) lookupLocked(h Handle) (Object, bool) {
	slot, ok := h.slot()
	if !ok || slot >= len(r.slots) {
		return nil, false
	}
	e := r.slots[slot]
	if e.obj == nil || e.gen != h.generation() {
		return nil, false
	}
	return e.obj, true
}

// Lookup resolves h without checking its kind.
func (r *Registry) Lookup(h Handle) (Object, error) {
	r.mu.Lock()
	obj, ok := r.lookupLocked(h)
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, h)
	}
	return obj, nil
}

// Resolve returns the live object behind h as a T.
func Resolve[T Object](r *Registry, h Handle) (T, error) {
	var zero T
	obj, err := r.Lookup(h)
	if err != nil {
		return zero, err
	}
	v, ok := obj.(T)
	if !ok {
		return zero, &KindError{Handle: h, Want: reflect.TypeOf((*T)(nil)).Elem().String(), Got: obj.Kind()}
	}
	return v, nil
}

// Destroy unregisters h and releases its object. Destroying a handle that is
// already gone is tolerated: it logs a diagnostic and returns false.
func (r *Registry) Destroy(h Handle) bool {
	r.mu.Lock()
	obj, ok := r.lookupLocked(h)
	if ok {
		r.removeLocked(h)
	}
	r.mu.Unlock()

	if !ok {
		r.log.Warn("destroy of unknown handle ignored", zap.Stringer("handle", h))
		return false
	}

	if rel, isReleaser := obj.(Releaser); isReleaser {
		rel.Release()
	}
	r.log.Debug("object destroyed", zap.Stringer("handle", h), zap.Stringer("kind", obj.Kind()))
	return true
}

// removeLocked frees the slot of a live handle. Caller holds r.mu.
func (r *Registry) removeLocked(h Handle) {
	slot, _ := h.slot()
	r.slots[slot].obj = nil
	r.slots[slot].gen++
	if r.slots[slot].gen == 0 {
		r.slots[slot].gen = 1
	}
	r.free = append(r.free, slot)
	r.live--
}

// EnqueueRelease schedules h for destruction at the next Collect. It is meant
// for host-side finalizers running on arbitrary goroutines.
func (r *Registry) EnqueueRelease(h Handle) {
	if h.IsNull() {
		return
	}
	r.mu.Lock()
	r.pending = append(r.pending, h)
	r.mu.Unlock()
}

// Collect destroys every handle queued by EnqueueRelease and returns how many
// objects were actually destroyed. Duplicate requests are destroyed once.
func (r *Registry) Collect() int {
	return r.CollectFunc(r.Destroy)
}

// CollectFunc drains the release queue through destroy, which lets owners of
// the registry run their own teardown for each handle.
func (r *Registry) CollectFunc(destroy func(Handle) bool) int {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	destroyed := 0
	seen := make(map[Handle]struct{}, len(pending))
	for _, h := range pending {
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		if destroy(h) {
			destroyed++
		}
	}
	if len(pending) > 0 {
		r.log.Debug("release queue drained", zap.Int("queued", len(pending)), zap.Int("destroyed", destroyed))
	}
	return destroyed
}

// Pending returns the number of queued releases.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Len returns the number of live objects.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Counts returns the number of live objects per kind.
func (r *Registry) Counts() map[Kind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[Kind]int)
	for _, e := range r.slots {
		if e.obj != nil {
			counts[e.obj.Kind()]++
		}
	}
	return counts
}

// Handles returns the live handles of the given kind in slot order.
func (r *Registry) Handles(kind Kind) []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Handle
	for slot, e := range r.slots {
		if e.obj != nil && e.obj.Kind() == kind {
			out = append(out, makeHandle(slot, e.gen))
		}
	}
	return out
}
