// Package bridge implements the handle table that lets a host runtime create,
// reference and destroy native engine objects without ever holding a Go pointer.
package bridge

import (
	"errors"
	"fmt"
)

// Handle is an opaque reference to a live native object. The zero Handle is null.
//
// The low 32 bits carry slot+1 and the high 32 bits the slot generation, so a
// handle to a destroyed object never resolves to whatever reuses its slot.
type Handle uint64

// Null is the handle that never refers to anything.
const Null Handle = 0

func makeHandle(slot int, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot+1))
}

func (h Handle) slot() (int, bool) {
	low := uint32(h)
	if low == 0 {
		return 0, false
	}
	return int(low - 1), true
}

func (h Handle) generation() uint32 {
	return uint32(h >> 32)
}

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool {
	return h == Null
}

func (h Handle) String() string {
	if h.IsNull() {
		return "handle(null)"
	}
	slot, _ := h.slot()
	return fmt.Sprintf("handle(%d#%d)", slot, h.generation())
}

// Kind names the engine type behind a handle.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMesh
	KindEntity
	KindMeshEyePointee
	KindSphereEyePointee
)

var kindNames = [...]string{
	KindUnknown:          "unknown",
	KindMesh:             "mesh",
	KindEntity:           "entity",
	KindMeshEyePointee:   "mesh_eye_pointee",
	KindSphereEyePointee: "sphere_eye_pointee",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Object is implemented by every type that can cross the bridge.
type Object interface {
	Kind() Kind
}

// Releaser is implemented by objects that must drop resources or mark
// themselves dead when their handle is destroyed.
type Releaser interface {
	Release()
}

var (
	// ErrNotFound is returned for null, unknown or already destroyed handles.
	ErrNotFound = errors.New("bridge: handle not found")
	// ErrWrongKind is returned when a live handle refers to another object kind.
	ErrWrongKind = errors.New("bridge: handle refers to a different kind")
)

// KindError reports a handle that resolved to an object of an unexpected kind.
type KindError struct {
	Handle Handle
	Want   string
	Got    Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("bridge: %s is a %s, not %s", e.Handle, e.Got, e.Want)
}

func (e *KindError) Unwrap() error {
	return ErrWrongKind
}
