package api

import (
	"bytes"
	"encoding/json"
)

// Page is the Laravel-style pagination envelope.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

type pageFields[T any] Page[T]

// UnmarshalJSON accepts the envelope or a bare array. A bare array is one
// complete page.
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var data []T
		if err := json.Unmarshal(b, &data); err != nil {
			return err
		}
		*p = Page[T]{Data: data, CurrentPage: 1, PerPage: len(data), Total: len(data), LastPage: 1}
		return nil
	}
	var f pageFields[T]
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*p = Page[T](f)
	return nil
}
