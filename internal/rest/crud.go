package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dori/quadro/internal/backend"
)

const representation = "return=representation"

func tablePath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

// Select issues GET /rest/v1/{table} with PostgREST filters
func (c *Client) Select(ctx context.Context, q backend.Query) ([]backend.Row, error) {
	params, err := encodeQuery(q)
	if err != nil {
		return nil, &backend.Error{Op: "select", Table: q.Table, Message: err.Error()}
	}

	data, err := c.do(ctx, request{
		op:     "select",
		table:  q.Table,
		method: http.MethodGet,
		path:   tablePath(q.Table),
		query:  params,
	})
	if err != nil {
		return nil, err
	}
	return decodeRows("select", q.Table, data)
}

// Insert issues POST /rest/v1/{table} and returns the stored row
func (c *Client) Insert(ctx context.Context, table string, row backend.Row) (backend.Row, error) {
	data, err := c.do(ctx, request{
		op:     "insert",
		table:  table,
		method: http.MethodPost,
		path:   tablePath(table),
		body:   row,
		prefer: representation,
	})
	if err != nil {
		return nil, err
	}
	return single("insert", table, data)
}

// Update issues PATCH /rest/v1/{table}?id=eq.{id}
func (c *Client) Update(ctx context.Context, table, id string, partial backend.Row) (backend.Row, error) {
	data, err := c.do(ctx, request{
		op:     "update",
		table:  table,
		method: http.MethodPatch,
		path:   tablePath(table),
		query:  []string{"id=eq." + url.QueryEscape(id)},
		body:   partial,
		prefer: representation,
	})
	if err != nil {
		return nil, err
	}
	return single("update", table, data)
}

// Delete issues DELETE /rest/v1/{table}?id=eq.{id}
func (c *Client) Delete(ctx context.Context, table, id string) error {
	_, err := c.do(ctx, request{
		op:     "delete",
		table:  table,
		method: http.MethodDelete,
		path:   tablePath(table),
		query:  []string{"id=eq." + url.QueryEscape(id)},
	})
	return err
}

// Upsert issues POST with on_conflict and merge-duplicates resolution
func (c *Client) Upsert(ctx context.Context, table string, row backend.Row, conflict string) (backend.Row, error) {
	data, err := c.do(ctx, request{
		op:     "upsert",
		table:  table,
		method: http.MethodPost,
		path:   tablePath(table),
		query:  []string{"on_conflict=" + url.QueryEscape(conflict)},
		body:   row,
		prefer: representation + ",resolution=merge-duplicates",
	})
	if err != nil {
		return nil, err
	}
	return single("upsert", table, data)
}

func decodeRows(op, table string, data []byte) ([]backend.Row, error) {
	var rows []backend.Row
	if len(data) == 0 {
		return rows, nil
	}
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return nil, backend.Wrap(op, table, fmt.Errorf("failed to decode response: %w", err))
	}
	return rows, nil
}

func single(op, table string, data []byte) (backend.Row, error) {
	rows, err := decodeRows(op, table, data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &backend.Error{Op: op, Table: table, Code: "PGRST116",
			Message: "no rows returned", Err: backend.ErrNotFound}
	}
	return rows[0], nil
}

// encodeQuery renders q as PostgREST query parameters
func encodeQuery(q backend.Query) ([]string, error) {
	params := []string{"select=*"}

	for _, f := range q.Filters {
		v, err := encodeFilter(f)
		if err != nil {
			return nil, err
		}
		params = append(params, url.QueryEscape(f.Column)+"="+url.QueryEscape(v))
	}

	if len(q.Or) > 0 {
		parts := make([]string, 0, len(q.Or))
		for _, f := range q.Or {
			v, err := encodeOrFilter(f)
			if err != nil {
				return nil, err
			}
			parts = append(parts, f.Column+"."+v)
		}
		params = append(params, "or="+url.QueryEscape("("+strings.Join(parts, ",")+")"))
	}

	if q.Order != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		params = append(params, "order="+url.QueryEscape(q.Order+"."+dir))
	}
	if q.Limit > 0 {
		params = append(params, "limit="+strconv.Itoa(q.Limit))
	}
	return params, nil
}

// encodeFilter renders op.value, e.g. eq.42 or in.("a","b")
func encodeFilter(f backend.Filter) (string, error) {
	switch f.Op {
	case backend.OpIs:
		return "is.null", nil
	case backend.OpIn:
		values, _ := f.Value.([]any)
		items := make([]string, len(values))
		for i, v := range values {
			items[i] = quote(literal(v))
		}
		return "in.(" + strings.Join(items, ",") + ")", nil
	case backend.OpEq, backend.OpNeq, backend.OpGte, backend.OpLte:
		return string(f.Op) + "." + literal(f.Value), nil
	}
	return "", fmt.Errorf("unsupported filter operator %q", f.Op)
}

// encodeOrFilter is encodeFilter for members of an or=() group, where
// commas, dots and parentheses in a bare value would split the group.
func encodeOrFilter(f backend.Filter) (string, error) {
	switch f.Op {
	case backend.OpEq, backend.OpNeq, backend.OpGte, backend.OpLte:
		if f.Value == nil {
			return string(f.Op) + ".null", nil
		}
		return string(f.Op) + "." + quote(literal(f.Value)), nil
	}
	return encodeFilter(f)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case *string:
		if x == nil {
			return "null"
		}
		return *x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return "null"
		}
		return x.UTC().Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}
