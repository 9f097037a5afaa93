package nonlinear

// History is the append-only record of a step's iterations.
type History struct {
	items []*Iteration
}

func (h *History) append(it *Iteration) { h.items = append(h.items, it) }
func (h *History) Len() int             { return len(h.items) }

// At returns the i-th iteration (0-based) or nil.
func (h *History) At(i int) *Iteration {
	if i < 0 || i >= len(h.items) {
		return nil
	}
	return h.items[i]
}

// First returns the earliest iteration or nil when empty.
func (h *History) First() *Iteration { return h.At(0) }

// Current returns the latest iteration or nil when empty.
func (h *History) Current() *Iteration { return h.At(len(h.items) - 1) }

// Previous returns the iteration n places before Current; Previous(0) is
// Current.
func (h *History) Previous(n int) *Iteration { return h.At(len(h.items) - 1 - n) }

// All returns a copy of the iteration list.
func (h *History) All() []*Iteration {
	out := make([]*Iteration, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) reset() { h.items = nil }
