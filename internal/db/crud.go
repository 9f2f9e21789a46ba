package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dori/quadro/internal/backend"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// Select returns rows of q.Table matching q
func (db *DB) Select(ctx context.Context, q backend.Query) ([]backend.Row, error) {
	t, err := lookup("select", q.Table)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", t.selectList(), quote(t.name))

	where, args, err := t.where(q)
	if err != nil {
		return nil, err
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if q.Order != "" {
		if err := t.check("select", q.Order); err != nil {
			return nil, err
		}
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s, rowid ASC", quote(q.Order), dir)
	} else {
		sb.WriteString(" ORDER BY rowid ASC")
	}

	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	return db.query(ctx, t, sb.String(), args...)
}

// where renders AND filters plus the optional OR group
func (t *table) where(q backend.Query) (string, []any, error) {
	var clauses []string
	var args []any

	for _, f := range q.Filters {
		clause, fargs, err := t.filter(f)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, fargs...)
	}

	if len(q.Or) > 0 {
		var ors []string
		for _, f := range q.Or {
			clause, fargs, err := t.filter(f)
			if err != nil {
				return "", nil, err
			}
			ors = append(ors, clause)
			args = append(args, fargs...)
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	return strings.Join(clauses, " AND "), args, nil
}

func (t *table) filter(f backend.Filter) (string, []any, error) {
	if err := t.check("select", f.Column); err != nil {
		return "", nil, err
	}
	k := t.index[f.Column]
	col := quote(f.Column)

	switch f.Op {
	case backend.OpIs:
		return col + " IS NULL", nil, nil
	case backend.OpIn:
		values, _ := f.Value.([]any)
		if len(values) == 0 {
			return "0 = 1", nil, nil
		}
		args := make([]any, 0, len(values))
		for _, v := range values {
			sv, err := toSQL(k, v)
			if err != nil {
				return "", nil, fmt.Errorf("filter %s: %w", f.Column, err)
			}
			args = append(args, sv)
		}
		return col + " IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ") + ")", args, nil
	}

	var sqlOp string
	switch f.Op {
	case backend.OpEq:
		sqlOp = "="
	case backend.OpNeq:
		sqlOp = "!="
	case backend.OpGte:
		sqlOp = ">="
	case backend.OpLte:
		sqlOp = "<="
	default:
		return "", nil, fmt.Errorf("unsupported filter operator %q", f.Op)
	}

	v, err := toSQL(k, f.Value)
	if err != nil {
		return "", nil, fmt.Errorf("filter %s: %w", f.Column, err)
	}
	return col + " " + sqlOp + " ?", []any{v}, nil
}

// query runs a SELECT and converts every row before returning, so the
// single connection is released before callers issue follow-up queries.
func (db *DB) query(ctx context.Context, t *table, stmt string, args ...any) ([]backend.Row, error) {
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, backend.Wrap("select", t.name, err)
	}
	defer rows.Close()

	var out []backend.Row
	for rows.Next() {
		raw := make([]any, len(t.columns))
		ptrs := make([]any, len(t.columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, backend.Wrap("select", t.name, err)
		}

		row := make(backend.Row, len(t.columns))
		for i, c := range t.columns {
			v, err := fromSQL(c.kind, raw[i])
			if err != nil {
				return nil, backend.Wrap("select", t.name, fmt.Errorf("column %s: %w", c.name, err))
			}
			row[c.name] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Wrap("select", t.name, err)
	}
	return out, nil
}

func (db *DB) byID(ctx context.Context, t *table, id string) (backend.Row, error) {
	rows, err := db.query(ctx, t,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", t.selectList(), quote(t.name)), id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &backend.Error{Op: "select", Table: t.name, Code: "PGRST116",
			Message: "no rows returned", Err: backend.ErrNotFound}
	}
	return rows[0], nil
}

// Insert stores row, filling id and timestamps when absent
func (db *DB) Insert(ctx context.Context, name string, row backend.Row) (backend.Row, error) {
	t, err := lookup("insert", name)
	if err != nil {
		return nil, err
	}

	values := make(backend.Row, len(row)+3)
	for k, v := range row {
		values[k] = v
	}
	if id, _ := values["id"].(string); id == "" {
		values["id"] = uuid.New().String()
	}
	now := db.now()
	for _, col := range []string{"created_at", "updated_at"} {
		if t.has(col) && values[col] == nil {
			values[col] = now
		}
	}

	cols, args, err := t.bind("insert", values)
	if err != nil {
		return nil, err
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(t.name),
		strings.Join(quoted, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, translate("insert", t.name, err)
	}
	return db.byID(ctx, t, values["id"].(string))
}

// Update merges partial into the row with the given id
func (db *DB) Update(ctx context.Context, name, id string, partial backend.Row) (backend.Row, error) {
	t, err := lookup("update", name)
	if err != nil {
		return nil, err
	}

	sets, args, err := db.assignments(t, partial)
	if err != nil {
		return nil, err
	}
	if sets == "" {
		return db.byID(ctx, t, id)
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", quote(t.name), sets)
	res, err := db.ExecContext(ctx, stmt, append(args, id)...)
	if err != nil {
		return nil, translate("update", t.name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, missing(t, id)
	}
	return db.byID(ctx, t, id)
}

// UpdateAll applies every patch inside one transaction. A missing id rolls
// the whole batch back.
func (db *DB) UpdateAll(ctx context.Context, name string, patches []backend.RowPatch) error {
	t, err := lookup("update", name)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *sql.Tx) error {
		for _, p := range patches {
			sets, args, err := db.assignments(t, p.Row)
			if err != nil {
				return err
			}
			if sets == "" {
				continue
			}
			stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", quote(t.name), sets)
			res, err := tx.ExecContext(ctx, stmt, append(args, p.ID)...)
			if err != nil {
				return translate("update", t.name, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return missing(t, p.ID)
			}
		}
		return nil
	})
}

// assignments renders the SET list for partial, stamping updated_at.
// Identity columns are never rewritten.
func (db *DB) assignments(t *table, partial backend.Row) (string, []any, error) {
	values := make(backend.Row, len(partial)+1)
	for k, v := range partial {
		if k == "id" || k == "created_at" {
			continue
		}
		values[k] = v
	}
	if t.has("updated_at") {
		values["updated_at"] = db.now()
	}
	if len(values) == 0 {
		return "", nil, nil
	}

	cols, args, err := t.bind("update", values)
	if err != nil {
		return "", nil, err
	}
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = quote(c) + " = ?"
	}
	return strings.Join(sets, ", "), args, nil
}

func missing(t *table, id string) error {
	return &backend.Error{Op: "update", Table: t.name, Code: "PGRST116",
		Message: fmt.Sprintf("no row with id %s", id), Err: backend.ErrNotFound}
}

// Delete removes the row with the given id. Child rows cascade.
func (db *DB) Delete(ctx context.Context, name, id string) error {
	t, err := lookup("delete", name)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", quote(t.name)), id); err != nil {
		return translate("delete", t.name, err)
	}
	return nil
}

// Upsert inserts row or updates the row sharing its conflict column value
func (db *DB) Upsert(ctx context.Context, name string, row backend.Row, conflict string) (backend.Row, error) {
	t, err := lookup("upsert", name)
	if err != nil {
		return nil, err
	}
	if err := t.check("upsert", conflict); err != nil {
		return nil, err
	}

	existing, err := db.Select(ctx, backend.From(name).Eq(conflict, row[conflict]).Take(1))
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return db.Insert(ctx, name, row)
	}
	id, _ := existing[0]["id"].(string)
	return db.Update(ctx, name, id, row)
}

// bind validates columns and converts values, in a stable column order
func (t *table) bind(op string, values backend.Row) ([]string, []any, error) {
	cols := make([]string, 0, len(values))
	for c := range values {
		if err := t.check(op, c); err != nil {
			return nil, nil, err
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	args := make([]any, len(cols))
	for i, c := range cols {
		v, err := toSQL(t.index[c], values[c])
		if err != nil {
			return nil, nil, &backend.Error{Op: op, Table: t.name, Code: "22P02",
				Message: fmt.Sprintf("column %s: %v", c, err)}
		}
		args[i] = v
	}
	return cols, args, nil
}

// translate maps SQLite constraint failures onto backend sentinels
func translate(op, name string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &backend.Error{Op: op, Table: name, Code: "23505", Message: se.Error(), Err: backend.ErrConflict}
		case sqlite3.ErrConstraintForeignKey:
			return &backend.Error{Op: op, Table: name, Code: "23503", Message: se.Error(), Err: backend.ErrConflict}
		case sqlite3.ErrConstraintNotNull:
			return &backend.Error{Op: op, Table: name, Code: "23502", Message: se.Error()}
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &backend.Error{Op: op, Table: name, Err: backend.ErrNotFound}
	}
	return backend.Wrap(op, name, err)
}
