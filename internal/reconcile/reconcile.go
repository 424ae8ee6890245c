// Package reconcile applies speculative local writes that a later server
// answer either confirms or invalidates.
//
// A Write changes one keyed entry of a snapshot right away. When the
// confirming request fails, Settle asks the caller to resync the whole
// snapshot from the server instead of rolling the entry back.
package reconcile

// Write is a local transition of the entry identified by Key.
type Write[K comparable, T any] struct {
	Key   K
	Apply func(T) T
}

// Action tells the caller what to do once the confirmation has returned.
type Action int

const (
	Keep Action = iota
	Resync
)

func (a Action) String() string {
	if a == Resync {
		return "resync"
	}
	return "keep"
}

// Apply returns a copy of items with w applied to the first entry whose key
// matches. The input slice is never modified. ok is false when no entry
// matched, in which case items is returned as is.
func Apply[K comparable, T any](items []T, keyOf func(T) K, w Write[K, T]) (out []T, ok bool) {
	for i, it := range items {
		if keyOf(it) != w.Key {
			continue
		}
		out = make([]T, len(items))
		copy(out, items)
		out[i] = w.Apply(it)
		return out, true
	}
	return items, false
}

// Settle maps the confirmation result to the follow-up action.
func Settle(err error) Action {
	if err != nil {
		return Resync
	}
	return Keep
}
