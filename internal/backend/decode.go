package backend

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Decode shapes a row into T through its JSON tags
func Decode[T any](row Row) (T, error) {
	var out T
	data, err := sonic.Marshal(row)
	if err != nil {
		return out, fmt.Errorf("failed to encode row: %w", err)
	}
	if err := sonic.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode row: %w", err)
	}
	return out, nil
}

// DecodeAll shapes every row into T
func DecodeAll[T any](rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := Decode[T](row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Encode turns a tagged struct into a row
func Encode(v any) (Row, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	row := Row{}
	if err := sonic.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return row, nil
}
