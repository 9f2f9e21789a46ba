// Package store holds the client's in-memory copy of backend entities plus UI
// state. Every view reads from it; every mutation notifies subscribers.
package store

import (
	"strings"
	"sync"

	"github.com/dori/quadro/internal/model"
)

// Kind names what changed
type Kind string

const (
	KindBoards  Kind = "boards"
	KindColumns Kind = "columns"
	KindCards   Kind = "cards"
	KindMembers Kind = "members"
	KindTags    Kind = "tags"
	KindNotes   Kind = "notes"
	KindFolders Kind = "folders"
	KindEvents  Kind = "events"
	KindUser    Kind = "user"
	KindUI      Kind = "ui"
	KindReset   Kind = "reset"
)

// Change is delivered to listeners after each mutation. ID is empty for bulk changes.
type Change struct {
	Kind Kind
	ID   string
}

// Listener receives changes synchronously, outside the store lock
type Listener func(Change)

// Entity is anything stored by id
type Entity interface {
	EntityID() string
}

// Store is the client state container
type Store struct {
	mu sync.Mutex

	Boards  *Table[model.Board]
	Tags    *Table[model.Tag]
	Notes   *Table[model.Note]
	Folders *Table[model.Folder]
	Events  *Table[model.Event]

	Columns *Group[model.Column]
	Cards   *Group[model.Card]
	Members *Group[model.BoardMember]

	user           *model.User
	selectedBoard  string
	selectedFolder string
	sidebarOpen    bool
	theme          model.Theme
	search         string

	nextListener int
	listeners    map[int]Listener
}

// New returns an empty store with the sidebar open and the dark theme
func New() *Store {
	s := &Store{
		sidebarOpen: true,
		theme:       model.ThemeDark,
		listeners:   make(map[int]Listener),
	}

	s.Boards = newTable[model.Board](s, KindBoards)
	s.Tags = newTable[model.Tag](s, KindTags)
	s.Notes = newTable[model.Note](s, KindNotes)
	s.Folders = newTable[model.Folder](s, KindFolders)
	s.Events = newTable[model.Event](s, KindEvents)

	s.Columns = newGroup(s, KindColumns, groupFuncs[model.Column]{
		parent:    func(c model.Column) string { return c.BoardID },
		setParent: func(c *model.Column, id string) { c.BoardID = id },
		order:     func(c model.Column) int { return c.OrderIndex },
		setOrder:  func(c *model.Column, i int) { c.OrderIndex = i },
	})
	s.Cards = newGroup(s, KindCards, groupFuncs[model.Card]{
		parent:    func(c model.Card) string { return c.ColumnID },
		setParent: func(c *model.Card, id string) { c.ColumnID = id },
		order:     func(c model.Card) int { return c.OrderIndex },
		setOrder:  func(c *model.Card, i int) { c.OrderIndex = i },
	})
	s.Members = newGroup(s, KindMembers, groupFuncs[model.BoardMember]{
		parent:    func(m model.BoardMember) string { return m.BoardID },
		setParent: func(m *model.BoardMember, id string) { m.BoardID = id },
	})

	return s
}

// Subscribe registers fn and returns a function that removes it
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// update runs fn under the lock and, if it reports a change, notifies listeners
func (s *Store) update(fn func() (Change, bool)) bool {
	s.mu.Lock()
	change, changed := fn()
	var fns []Listener
	if changed {
		fns = make([]Listener, 0, len(s.listeners))
		for _, l := range s.listeners {
			fns = append(fns, l)
		}
	}
	s.mu.Unlock()

	for _, l := range fns {
		l(change)
	}
	return changed
}

func (s *Store) read(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// MoveCard takes the card out of its column and inserts it at index in
// destColumnID (clamped), renumbering both columns densely.
// It returns false when the card is unknown.
func (s *Store) MoveCard(cardID, destColumnID string, index int) (Move, bool) {
	return s.Cards.Move(cardID, destColumnID, index)
}

// RevertMove puts every card touched by m back where it was before m
func (s *Store) RevertMove(m Move) {
	s.Cards.Revert(m)
}

// MoveColumn reorders a column within its board
func (s *Store) MoveColumn(columnID string, index int) (Move, bool) {
	col, ok := s.Columns.Get(columnID)
	if !ok {
		return Move{}, false
	}
	return s.Columns.Move(columnID, col.BoardID, index)
}

// RemoveColumn drops a column together with its cards
func (s *Store) RemoveColumn(columnID string) bool {
	removed := s.Columns.Remove(columnID)
	s.Cards.Clear(columnID)
	return removed
}

// Board returns a board by id
func (s *Store) Board(id string) (model.Board, bool) {
	return s.Boards.Get(id)
}

// ColumnsOf returns a board's columns in order
func (s *Store) ColumnsOf(boardID string) []model.Column {
	return s.Columns.List(boardID)
}

// CardsOf returns a column's cards in order
func (s *Store) CardsOf(columnID string) []model.Card {
	return s.Cards.List(columnID)
}

// FindCard returns a card wherever it lives
func (s *Store) FindCard(id string) (model.Card, bool) {
	return s.Cards.Get(id)
}

// VisibleCards returns a column's cards matching the search text
func (s *Store) VisibleCards(columnID string) []model.Card {
	cards := s.Cards.List(columnID)
	q := strings.ToLower(strings.TrimSpace(s.Search()))
	if q == "" {
		return cards
	}
	out := cards[:0]
	for _, c := range cards {
		if matches(c, q) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c model.Card, q string) bool {
	if strings.Contains(strings.ToLower(c.Title), q) || strings.Contains(strings.ToLower(c.Description), q) {
		return true
	}
	for _, t := range c.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return c.Assignee != nil && strings.Contains(strings.ToLower(*c.Assignee), q)
}

// User returns the signed-in user, or nil
func (s *Store) User() *model.User {
	var u *model.User
	s.read(func() {
		if s.user != nil {
			cp := *s.user
			u = &cp
		}
	})
	return u
}

// SetUser records the signed-in user and adopts their theme
func (s *Store) SetUser(u *model.User) {
	s.update(func() (Change, bool) {
		if u == nil {
			s.user = nil
			return Change{Kind: KindUser}, true
		}
		cp := *u
		s.user = &cp
		if u.Theme != "" {
			s.theme = u.Theme
		}
		return Change{Kind: KindUser, ID: u.ID}, true
	})
}

func (s *Store) SelectedBoard() (id string) {
	s.read(func() { id = s.selectedBoard })
	return id
}

func (s *Store) SetSelectedBoard(id string) {
	s.setUI(func() { s.selectedBoard = id })
}

func (s *Store) SelectedFolder() (name string) {
	s.read(func() { name = s.selectedFolder })
	return name
}

func (s *Store) SetSelectedFolder(name string) {
	s.setUI(func() { s.selectedFolder = name })
}

func (s *Store) SidebarOpen() (open bool) {
	s.read(func() { open = s.sidebarOpen })
	return open
}

func (s *Store) SetSidebarOpen(open bool) {
	s.setUI(func() { s.sidebarOpen = open })
}

func (s *Store) ToggleSidebar() {
	s.setUI(func() { s.sidebarOpen = !s.sidebarOpen })
}

func (s *Store) Theme() (t model.Theme) {
	s.read(func() { t = s.theme })
	return t
}

func (s *Store) SetTheme(t model.Theme) {
	s.setUI(func() { s.theme = t })
}

func (s *Store) Search() (q string) {
	s.read(func() { q = s.search })
	return q
}

func (s *Store) SetSearch(q string) {
	s.setUI(func() { s.search = q })
}

func (s *Store) setUI(fn func()) {
	s.update(func() (Change, bool) {
		fn()
		return Change{Kind: KindUI}, true
	})
}

// Reset forgets everything tied to the signed-in user.
// Theme and sidebar visibility are kept.
func (s *Store) Reset() {
	s.update(func() (Change, bool) {
		s.Boards.reset()
		s.Tags.reset()
		s.Notes.reset()
		s.Folders.reset()
		s.Events.reset()
		s.Columns.reset()
		s.Cards.reset()
		s.Members.reset()
		s.user = nil
		s.selectedBoard = ""
		s.selectedFolder = ""
		s.search = ""
		return Change{Kind: KindReset}, true
	})
}
