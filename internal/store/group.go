package store

import "sort"

type groupFuncs[T Entity] struct {
	parent    func(T) string
	setParent func(*T, string)
	// order and setOrder are nil for groups without an order index
	order    func(T) int
	setOrder func(*T, int)
}

// Group is a collection partitioned by parent id, each partition sorted by
// order index
type Group[T Entity] struct {
	s    *Store
	kind Kind
	fn   groupFuncs[T]

	lists map[string][]T
	owner map[string]string // item id -> parent id
}

// Slot is a position inside a parent
type Slot struct {
	ParentID string
	Index    int
}

// Placement records where an item sat and its order index
type Placement struct {
	ID         string
	ParentID   string
	OrderIndex int
}

// Move describes one reorder. Before holds every item of the affected parents
// as they were; Changed holds the items whose parent or order index moved.
type Move struct {
	ID      string
	From    Slot
	To      Slot
	Before  []Placement
	Changed []Placement
}

// Moved reports whether the item ended somewhere else
func (m Move) Moved() bool {
	return m.From != m.To
}

func newGroup[T Entity](s *Store, kind Kind, fn groupFuncs[T]) *Group[T] {
	return &Group[T]{
		s:     s,
		kind:  kind,
		fn:    fn,
		lists: make(map[string][]T),
		owner: make(map[string]string),
	}
}

// Set replaces the items of one parent
func (g *Group[T]) Set(parentID string, items []T) {
	g.Replace([]string{parentID}, items)
}

// Replace clears every listed parent and then files items under their own
// parents. Used after a fetch covering those parents.
func (g *Group[T]) Replace(parentIDs []string, items []T) {
	g.s.update(func() (Change, bool) {
		for _, p := range parentIDs {
			g.clear(p)
		}
		touched := make(map[string]bool)
		for _, item := range items {
			g.detach(item.EntityID())
			p := g.fn.parent(item)
			g.lists[p] = append(g.lists[p], item)
			g.owner[item.EntityID()] = p
			touched[p] = true
		}
		for p := range touched {
			g.sort(p)
		}
		return Change{Kind: g.kind}, true
	})
}

// Upsert replaces the item with the same id, relocating it if its parent
// changed, and keeps the partition sorted
func (g *Group[T]) Upsert(item T) {
	g.s.update(func() (Change, bool) {
		g.put(item)
		return Change{Kind: g.kind, ID: item.EntityID()}, true
	})
}

// Remove deletes the item with the given id
func (g *Group[T]) Remove(id string) bool {
	return g.s.update(func() (Change, bool) {
		if !g.detach(id) {
			return Change{}, false
		}
		return Change{Kind: g.kind, ID: id}, true
	})
}

// Clear drops every item of one parent
func (g *Group[T]) Clear(parentID string) {
	g.s.update(func() (Change, bool) {
		if len(g.lists[parentID]) == 0 {
			return Change{}, false
		}
		g.clear(parentID)
		return Change{Kind: g.kind}, true
	})
}

// Patch applies fn to the item with the given id. Unknown ids are ignored.
// A patch that changes the parent relocates the item.
func (g *Group[T]) Patch(id string, fn func(*T)) bool {
	return g.s.update(func() (Change, bool) {
		p, ok := g.owner[id]
		if !ok {
			return Change{}, false
		}
		i := g.index(p, id)
		item := g.lists[p][i]
		fn(&item)
		g.put(item)
		return Change{Kind: g.kind, ID: id}, true
	})
}

// Get returns the item with the given id
func (g *Group[T]) Get(id string) (T, bool) {
	var (
		item T
		ok   bool
	)
	g.s.read(func() {
		p, found := g.owner[id]
		if !found {
			return
		}
		item, ok = g.lists[p][g.index(p, id)], true
	})
	return item, ok
}

// List returns a copy of one parent's items in order
func (g *Group[T]) List(parentID string) []T {
	var out []T
	g.s.read(func() { out = append([]T(nil), g.lists[parentID]...) })
	return out
}

// Len returns the number of items under parentID
func (g *Group[T]) Len(parentID string) (n int) {
	g.s.read(func() { n = len(g.lists[parentID]) })
	return n
}

// Parents returns how many partitions hold the item; always 0 or 1
func (g *Group[T]) Parents(id string) (n int) {
	g.s.read(func() {
		for p, list := range g.lists {
			if g.index(p, id) >= 0 && len(list) > 0 {
				n++
			}
		}
	})
	return n
}

// Move takes the item out of its parent and inserts it at index in destID,
// clamped to the destination's bounds. Both parents are renumbered 0..n-1.
func (g *Group[T]) Move(id, destID string, index int) (Move, bool) {
	var m Move
	ok := g.s.update(func() (Change, bool) {
		if g.fn.setOrder == nil {
			return Change{}, false
		}
		src, found := g.owner[id]
		if !found {
			return Change{}, false
		}
		from := g.index(src, id)
		m = Move{ID: id, From: Slot{ParentID: src, Index: from}}

		m.Before = g.placements(src)
		if destID != src {
			m.Before = append(m.Before, g.placements(destID)...)
		}
		prior := make(map[string]Placement, len(m.Before))
		for _, pl := range m.Before {
			prior[pl.ID] = pl
		}

		item := g.lists[src][from]
		g.lists[src] = append(g.lists[src][:from:from], g.lists[src][from+1:]...)

		dest := g.lists[destID]
		if index < 0 {
			index = 0
		}
		if index > len(dest) {
			index = len(dest)
		}
		g.fn.setParent(&item, destID)
		dest = append(dest[:index:index], append([]T{item}, dest[index:]...)...)
		g.lists[destID] = dest
		g.owner[id] = destID
		m.To = Slot{ParentID: destID, Index: index}

		g.renumber(src)
		if destID != src {
			g.renumber(destID)
		}
		if len(g.lists[src]) == 0 {
			delete(g.lists, src)
		}

		for _, p := range []string{src, destID} {
			for _, pl := range g.placements(p) {
				if was, ok := prior[pl.ID]; !ok || was != pl {
					m.Changed = append(m.Changed, pl)
				}
			}
			if src == destID {
				break
			}
		}
		return Change{Kind: g.kind, ID: id}, true
	})
	return m, ok
}

// Revert restores every item recorded in m.Before that still exists to its
// recorded parent and order index
func (g *Group[T]) Revert(m Move) {
	g.s.update(func() (Change, bool) {
		touched := make(map[string]bool)
		for _, pl := range m.Before {
			p, ok := g.owner[pl.ID]
			if !ok {
				continue
			}
			item := g.lists[p][g.index(p, pl.ID)]
			g.detach(pl.ID)
			g.fn.setParent(&item, pl.ParentID)
			if g.fn.setOrder != nil {
				g.fn.setOrder(&item, pl.OrderIndex)
			}
			g.lists[pl.ParentID] = append(g.lists[pl.ParentID], item)
			g.owner[pl.ID] = pl.ParentID
			touched[pl.ParentID] = true
		}
		for p := range touched {
			g.sort(p)
		}
		return Change{Kind: g.kind, ID: m.ID}, true
	})
}

// put inserts or replaces item under its own parent
func (g *Group[T]) put(item T) {
	id := item.EntityID()
	p := g.fn.parent(item)
	if cur, ok := g.owner[id]; ok && cur == p {
		g.lists[p][g.index(p, id)] = item
	} else {
		g.detach(id)
		g.lists[p] = append(g.lists[p], item)
		g.owner[id] = p
	}
	g.sort(p)
}

func (g *Group[T]) detach(id string) bool {
	p, ok := g.owner[id]
	if !ok {
		return false
	}
	i := g.index(p, id)
	list := g.lists[p]
	g.lists[p] = append(list[:i:i], list[i+1:]...)
	if len(g.lists[p]) == 0 {
		delete(g.lists, p)
	}
	delete(g.owner, id)
	return true
}

func (g *Group[T]) clear(parentID string) {
	for _, item := range g.lists[parentID] {
		delete(g.owner, item.EntityID())
	}
	delete(g.lists, parentID)
}

func (g *Group[T]) index(parentID, id string) int {
	for i, item := range g.lists[parentID] {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func (g *Group[T]) sort(parentID string) {
	if g.fn.order == nil {
		return
	}
	list := g.lists[parentID]
	sort.SliceStable(list, func(i, j int) bool {
		return g.fn.order(list[i]) < g.fn.order(list[j])
	})
}

func (g *Group[T]) renumber(parentID string) {
	list := g.lists[parentID]
	for i := range list {
		g.fn.setOrder(&list[i], i)
	}
}

func (g *Group[T]) placements(parentID string) []Placement {
	list := g.lists[parentID]
	out := make([]Placement, 0, len(list))
	for i, item := range list {
		pl := Placement{ID: item.EntityID(), ParentID: parentID, OrderIndex: i}
		if g.fn.order != nil {
			pl.OrderIndex = g.fn.order(item)
		}
		out = append(out, pl)
	}
	return out
}

func (g *Group[T]) reset() {
	g.lists = make(map[string][]T)
	g.owner = make(map[string]string)
}
