package db

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dori/quadro/internal/backend"
)

// kind says how a column is stored in SQLite and returned to callers
type kind int

const (
	kindText kind = iota
	kindInt
	kindBool // INTEGER 0/1
	kindTime // TEXT, fixed-width UTC so string order is time order
	kindJSON // TEXT holding a JSON document
)

// timeLayout is RFC 3339 with a fixed nine-digit fraction
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type column struct {
	name string
	kind kind
}

type table struct {
	name    string
	columns []column
	index   map[string]kind
}

func newTable(name string, cols ...column) *table {
	t := &table{name: name, columns: cols, index: make(map[string]kind, len(cols))}
	for _, c := range cols {
		t.index[c.name] = c.kind
	}
	return t
}

func (t *table) has(col string) bool {
	_, ok := t.index[col]
	return ok
}

func (t *table) selectList() string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = quote(c.name)
	}
	return strings.Join(names, ", ")
}

func text(name string) column { return column{name, kindText} }
func integer(name string) column { return column{name, kindInt} }
func boolean(name string) column { return column{name, kindBool} }
func stamp(name string) column { return column{name, kindTime} }
func jsonb(name string) column { return column{name, kindJSON} }

var tables = map[string]*table{}

func register(t *table) { tables[t.name] = t }

func init() {
	register(newTable(backend.TableUsers,
		text("id"), text("email"), text("name"), text("theme"), text("avatar_url"),
		stamp("created_at"), stamp("updated_at")))
	register(newTable(backend.TableBoards,
		text("id"), text("user_id"), text("title"), text("description"), text("visibility"),
		text("background_color"), boolean("allow_comments"), boolean("allow_invites"),
		stamp("created_at"), stamp("updated_at")))
	register(newTable(backend.TableBoardMembers,
		text("id"), text("board_id"), text("user_id"), text("role"), stamp("created_at")))
	register(newTable(backend.TableBoardSettings,
		text("id"), text("board_id"), jsonb("notifications"), jsonb("permissions"),
		stamp("created_at"), stamp("updated_at")))
	register(newTable(backend.TableColumns,
		text("id"), text("board_id"), text("title"), integer("order_index"),
		stamp("created_at"), stamp("updated_at")))
	register(newTable(backend.TableCards,
		text("id"), text("column_id"), text("title"), text("description"), text("assignee"),
		text("priority"), stamp("due_date"), jsonb("tags"), integer("order_index"),
		stamp("created_at"), stamp("updated_at")))
	register(newTable(backend.TableTags,
		text("id"), text("user_id"), text("name"), text("color"),
		stamp("created_at"), stamp("updated_at")))
	register(newTable(backend.TableFolders,
		text("id"), text("user_id"), text("name"), stamp("created_at"), stamp("updated_at")))
	register(newTable(backend.TableNotes,
		text("id"), text("user_id"), text("title"), text("content"), text("folder"),
		jsonb("tags"), boolean("is_pinned"), boolean("is_private"),
		stamp("created_at"), stamp("updated_at")))
	register(newTable(backend.TableEvents,
		text("id"), text("user_id"), text("title"), text("description"),
		stamp("start_date"), stamp("end_date"), boolean("all_day"), text("color"),
		integer("reminder_minutes"), boolean("reminder_set"),
		stamp("created_at"), stamp("updated_at")))
}

func lookup(op, name string) (*table, error) {
	t, ok := tables[name]
	if !ok {
		return nil, &backend.Error{Op: op, Table: name, Code: "42P01",
			Message: fmt.Sprintf("relation %q does not exist", name), Err: backend.ErrUnknownTable}
	}
	return t, nil
}

func (t *table) check(op, col string) error {
	if !t.has(col) {
		return &backend.Error{Op: op, Table: t.name, Code: "42703",
			Message: fmt.Sprintf("column %s.%s does not exist", t.name, col), Err: backend.ErrUnknownColumn}
	}
	return nil
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// toSQL converts a caller value into what the column stores
func toSQL(k kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch k {
	case kindBool:
		switch b := v.(type) {
		case bool:
			if b {
				return 1, nil
			}
			return 0, nil
		case *bool:
			if b == nil {
				return nil, nil
			}
			return toSQL(k, *b)
		}
		return nil, fmt.Errorf("expected bool, got %T", v)
	case kindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case int32:
			return int64(n), nil
		case float64:
			return int64(n), nil
		case *int:
			if n == nil {
				return nil, nil
			}
			return int64(*n), nil
		case string:
			return strconv.ParseInt(n, 10, 64)
		}
		return nil, fmt.Errorf("expected integer, got %T", v)
	case kindTime:
		switch tv := v.(type) {
		case time.Time:
			return formatTime(tv), nil
		case *time.Time:
			if tv == nil {
				return nil, nil
			}
			return formatTime(*tv), nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, tv)
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp %q: %w", tv, err)
			}
			return formatTime(parsed), nil
		}
		return nil, fmt.Errorf("expected timestamp, got %T", v)
	case kindJSON:
		data, err := sonic.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		switch s := v.(type) {
		case string:
			return s, nil
		case *string:
			if s == nil {
				return nil, nil
			}
			return *s, nil
		}
		return fmt.Sprint(v), nil
	}
}

// fromSQL converts a scanned value into the row form callers decode
func fromSQL(k kind, v any) (any, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil {
		return nil, nil
	}
	switch k {
	case kindBool:
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("expected integer bool, got %T", v)
		}
		return n != 0, nil
	case kindJSON:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected json text, got %T", v)
		}
		var out any
		if err := sonic.UnmarshalString(s, &out); err != nil {
			return nil, err
		}
		return out, nil
	case kindTime:
		if tv, ok := v.(time.Time); ok {
			return formatTime(tv), nil
		}
		return v, nil
	}
	return v, nil
}
