package simplex

import (
	"fmt"

	"github.com/notargets/tetcomplex/element"
)

// Handle is an opaque reference into kernel owned simplex storage. It packs
// a slot index and the slot generation; the zero Handle is invalid.
type Handle uint64

// NewHandle builds the handle of slot idx at generation gen
func NewHandle(idx int, gen uint32) Handle {
	return Handle(uint64(idx+1)<<32 | uint64(gen))
}

// Index is the storage slot, -1 for the invalid handle
func (h Handle) Index() int {
	return int(h>>32) - 1
}

func (h Handle) Generation() uint32 {
	return uint32(h)
}

func (h Handle) IsValid() bool {
	return h != 0
}

func (h Handle) String() string {
	if !h.IsValid() {
		return "invalid"
	}
	return fmt.Sprintf("%d.%d", h.Index(), h.Generation())
}

// Simplex is implemented by every key type so that sets and kernel queries
// accept typed keys and the tagged Key interchangeably.
type Simplex interface {
	Key() Key
}

// Key is the dimension tagged variant of the four typed keys
type Key struct {
	Dim    element.Dimensionality
	Handle Handle
}

func (k Key) Key() Key { return k }

func (k Key) IsValid() bool { return k.Handle.IsValid() }

func (k Key) String() string {
	return fmt.Sprintf("%s(%s)", k.Dim, k.Handle)
}

// Less orders keys by dimension, then by handle
func (k Key) Less(o Key) bool {
	if k.Dim != o.Dim {
		return k.Dim < o.Dim
	}
	return k.Handle < o.Handle
}

// Node returns the typed key, invalid when k is of another dimension
func (k Key) Node() NodeKey {
	if k.Dim != element.D0 {
		return 0
	}
	return NodeKey(k.Handle)
}

func (k Key) Edge() EdgeKey {
	if k.Dim != element.D1 {
		return 0
	}
	return EdgeKey(k.Handle)
}

func (k Key) Face() FaceKey {
	if k.Dim != element.D2 {
		return 0
	}
	return FaceKey(k.Handle)
}

func (k Key) Tet() TetKey {
	if k.Dim != element.D3 {
		return 0
	}
	return TetKey(k.Handle)
}

type (
	NodeKey Handle
	EdgeKey Handle
	FaceKey Handle
	TetKey  Handle
)

func (k NodeKey) Key() Key       { return Key{Dim: element.D0, Handle: Handle(k)} }
func (k NodeKey) IsValid() bool  { return Handle(k).IsValid() }
func (k NodeKey) String() string { return k.Key().String() }

func (k EdgeKey) Key() Key       { return Key{Dim: element.D1, Handle: Handle(k)} }
func (k EdgeKey) IsValid() bool  { return Handle(k).IsValid() }
func (k EdgeKey) String() string { return k.Key().String() }

func (k FaceKey) Key() Key       { return Key{Dim: element.D2, Handle: Handle(k)} }
func (k FaceKey) IsValid() bool  { return Handle(k).IsValid() }
func (k FaceKey) String() string { return k.Key().String() }

func (k TetKey) Key() Key       { return Key{Dim: element.D3, Handle: Handle(k)} }
func (k TetKey) IsValid() bool  { return Handle(k).IsValid() }
func (k TetKey) String() string { return k.Key().String() }
