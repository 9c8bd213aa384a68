package idpromise

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCallAllocatesDenseIDs(t *testing.T) {
	r := NewRegistry()
	var got []ID
	for i := 0; i < 4; i++ {
		got = append(got, r.Call(func(ID) {}, Callbacks{}))
	}
	want := []ID{0, 1, 2, 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if got, want := r.Pending(), 4; got != want {
		t.Errorf("Pending() = %d, want %d", got, want)
	}
}

func TestCallPassesIDToFunc(t *testing.T) {
	r := NewRegistry()
	var seen ID = 99
	id := r.Call(func(id ID) { seen = id }, Callbacks{})
	if seen != id {
		t.Errorf("fn received %d, Call returned %d", seen, id)
	}
}

func TestResolveAndReject(t *testing.T) {
	tests := []struct {
		name       string
		complete   func(r *Registry, id ID) error
		wantData   []uint32
		wantErrnos []uint32
	}{
		{
			name:     "resolve",
			complete: func(r *Registry, id ID) error { return r.Resolve(id, 7) },
			wantData: []uint32{7},
		},
		{
			name:       "reject",
			complete:   func(r *Registry, id ID) error { return r.Reject(id, 3) },
			wantErrnos: []uint32{3},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry()
			var data, errnos []uint32
			id := r.Call(func(ID) {}, Callbacks{
				Resolve: func(d uint32) { data = append(data, d) },
				Reject:  func(e uint32) { errnos = append(errnos, e) },
			})
			if err := tc.complete(r, id); err != nil {
				t.Fatalf("completing %d failed: %v", id, err)
			}
			if diff := cmp.Diff(tc.wantData, data); diff != "" {
				t.Errorf("resolved data mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantErrnos, errnos); diff != "" {
				t.Errorf("rejected errnos mismatch (-want +got):\n%s", diff)
			}
			if r.Pending() != 0 {
				t.Errorf("Pending() = %d, want 0", r.Pending())
			}
		})
	}
}

func TestIDIsFreedExactlyOnce(t *testing.T) {
	r := NewRegistry()
	calls := 0
	id := r.Call(func(ID) {}, Callbacks{
		Resolve: func(uint32) { calls++ },
		Reject:  func(uint32) { calls++ },
	})
	if err := r.Resolve(id, 1); err != nil {
		t.Fatalf("Resolve() = %v, want nil", err)
	}
	if err := r.Reject(id, 1); !errors.Is(err, ErrUnknownID) {
		t.Errorf("Reject() after Resolve() = %v, want ErrUnknownID", err)
	}
	if err := r.Resolve(id, 1); !errors.Is(err, ErrUnknownID) {
		t.Errorf("second Resolve() = %v, want ErrUnknownID", err)
	}
	if calls != 1 {
		t.Errorf("callbacks invoked %d times, want 1", calls)
	}
	if got, want := len(r.open), 1; got != want {
		t.Errorf("free list has %d entries, want %d", got, want)
	}
}

func TestIDsAreRecycled(t *testing.T) {
	r := NewRegistry()
	a := r.Call(func(ID) {}, Callbacks{})
	b := r.Call(func(ID) {}, Callbacks{})
	if err := r.Resolve(a, 0); err != nil {
		t.Fatalf("Resolve(%d) = %v", a, err)
	}
	c := r.Call(func(ID) {}, Callbacks{})
	if c != a {
		t.Errorf("new id = %d, want recycled %d", c, a)
	}
	d := r.Call(func(ID) {}, Callbacks{})
	if d == b || d == c {
		t.Errorf("new id %d collides with pending ids %d, %d", d, b, c)
	}
}

func TestPendingIDsStayUnique(t *testing.T) {
	r := NewRegistry()
	pending := map[ID]bool{}
	// Interleave allocations and completions in a fixed pattern.
	for i := 0; i < 200; i++ {
		if i%3 == 2 {
			for id := range pending {
				if err := r.Resolve(id, 0); err != nil {
					t.Fatalf("Resolve(%d) = %v", id, err)
				}
				delete(pending, id)
				break
			}
			continue
		}
		id := r.Call(func(ID) {}, Callbacks{})
		if pending[id] {
			t.Fatalf("id %d issued while still pending", id)
		}
		pending[id] = true
	}
	if r.Pending() != len(pending) {
		t.Errorf("Pending() = %d, want %d", r.Pending(), len(pending))
	}
}

func TestCallbackCanStartNewOperation(t *testing.T) {
	r := NewRegistry()
	var next ID
	first := r.Call(func(ID) {}, Callbacks{
		Resolve: func(uint32) {
			next = r.Call(func(ID) {}, Callbacks{})
		},
	})
	if err := r.Resolve(first, 0); err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if next != first {
		t.Errorf("id allocated inside callback = %d, want %d", next, first)
	}
	if r.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", r.Pending())
	}
}
