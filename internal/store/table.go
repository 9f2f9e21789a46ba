package store

// Table is a flat collection kept in insertion order
type Table[T Entity] struct {
	s     *Store
	kind  Kind
	items []T
}

func newTable[T Entity](s *Store, kind Kind) *Table[T] {
	return &Table[T]{s: s, kind: kind}
}

// Set replaces the full known set
func (t *Table[T]) Set(items []T) {
	t.s.update(func() (Change, bool) {
		t.items = append([]T(nil), items...)
		return Change{Kind: t.kind}, true
	})
}

// Upsert replaces the item with the same id, or appends it
func (t *Table[T]) Upsert(item T) {
	t.s.update(func() (Change, bool) {
		if i := t.find(item.EntityID()); i >= 0 {
			t.items[i] = item
		} else {
			t.items = append(t.items, item)
		}
		return Change{Kind: t.kind, ID: item.EntityID()}, true
	})
}

// Remove deletes the item with the given id
func (t *Table[T]) Remove(id string) bool {
	return t.s.update(func() (Change, bool) {
		i := t.find(id)
		if i < 0 {
			return Change{}, false
		}
		t.items = append(t.items[:i], t.items[i+1:]...)
		return Change{Kind: t.kind, ID: id}, true
	})
}

// Patch applies fn to the item with the given id. Unknown ids are ignored.
func (t *Table[T]) Patch(id string, fn func(*T)) bool {
	return t.s.update(func() (Change, bool) {
		i := t.find(id)
		if i < 0 {
			return Change{}, false
		}
		item := t.items[i]
		fn(&item)
		t.items[i] = item
		return Change{Kind: t.kind, ID: id}, true
	})
}

// Get returns the item with the given id
func (t *Table[T]) Get(id string) (T, bool) {
	var (
		item T
		ok   bool
	)
	t.s.read(func() {
		if i := t.find(id); i >= 0 {
			item, ok = t.items[i], true
		}
	})
	return item, ok
}

// All returns a copy of every item
func (t *Table[T]) All() []T {
	var out []T
	t.s.read(func() { out = append([]T(nil), t.items...) })
	return out
}

// Len returns the number of items
func (t *Table[T]) Len() (n int) {
	t.s.read(func() { n = len(t.items) })
	return n
}

func (t *Table[T]) find(id string) int {
	for i, item := range t.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func (t *Table[T]) reset() {
	t.items = nil
}
