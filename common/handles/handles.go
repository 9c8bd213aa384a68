// Package handles maps small integer handles to host-side object references
// that cannot cross the WASM boundary directly.
package handles

// Handle indexes a Table. Handles are never reused, so a stale handle held by
// the guest resolves to the zero value instead of another live object.
type Handle uint32

// Table is a growable indexed store. Deletion clears a slot but never compacts
// the table, so the handles of other entries stay valid.
type Table[T any] struct {
	slots []T
	live  []bool
}

// Create stores v and returns its handle. Handles start at 0 and increase.
func (t *Table[T]) Create(v T) Handle {
	t.slots = append(t.slots, v)
	t.live = append(t.live, true)
	return Handle(len(t.slots) - 1)
}

// Get returns the value for h. Out of range and deleted handles return the
// zero value and false.
func (t *Table[T]) Get(h Handle) (T, bool) {
	if int(h) >= len(t.slots) || !t.live[h] {
		var zero T
		return zero, false
	}
	return t.slots[h], true
}

// Lookup is Get without the ok result.
func (t *Table[T]) Lookup(h Handle) T {
	v, _ := t.Get(h)
	return v
}

// Delete clears the slot for h and returns the value it held.
func (t *Table[T]) Delete(h Handle) (T, bool) {
	v, ok := t.Get(h)
	if !ok {
		return v, false
	}
	var zero T
	t.slots[h] = zero
	t.live[h] = false
	return v, true
}

// Len returns the number of handles ever issued.
func (t *Table[T]) Len() int {
	return len(t.slots)
}
