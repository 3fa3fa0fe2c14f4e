package vectorindex

import (
	"sync/atomic"

	"github.com/vmelnikov/insurance-assistant/internal/core/ports"
)

// Holder publishes index generations to concurrent readers. The index is an
// immutable value: a rebuild produces a new FlatIndex and Publish swaps the
// pointer, so readers never observe in-place mutation.
type Holder struct {
	current atomic.Pointer[FlatIndex]
}

func NewHolder() *Holder {
	return &Holder{}
}

// Publish atomically replaces the visible index generation.
func (h *Holder) Publish(ix *FlatIndex) {
	h.current.Store(ix)
}

// Current returns the live index, or nil while none has been published.
func (h *Holder) Current() ports.VectorSearcher {
	ix := h.current.Load()
	if ix == nil {
		return nil
	}
	return ix
}
