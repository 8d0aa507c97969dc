// Package mapper holds slice helpers shared by DTO and persistence converters.
package mapper

import "fmt"

// MapSlicePtr maps a pointer slice. Nil inputs and nil results are dropped.
func MapSlicePtr[T any, R any](items []*T, fn func(*T) *R) []*R {
	out, _ := mapPtrs(items, func(item *T) (*R, error) { return fn(item), nil })
	return out
}

// MapSliceWithID maps a pointer slice with a fallible mapper. The first
// failure aborts the mapping and names the offending row.
func MapSliceWithID[T any, R any, ID any](items []*T, fn func(*T) (*R, error), idOf func(*T) ID) ([]*R, error) {
	return mapPtrs(items, func(item *T) (*R, error) {
		mapped, err := fn(item)
		if err != nil {
			return nil, fmt.Errorf("failed to map item ID %v: %w", idOf(item), err)
		}
		return mapped, nil
	})
}

func mapPtrs[T any, R any](items []*T, fn func(*T) (*R, error)) ([]*R, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]*R, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		mapped, err := fn(item)
		if err != nil {
			return nil, err
		}
		if mapped != nil {
			out = append(out, mapped)
		}
	}
	return out, nil
}
