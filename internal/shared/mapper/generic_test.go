package mapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   uint
	Name string
}

func TestMapSlicePtr(t *testing.T) {
	in := []*row{{ID: 1, Name: "a"}, nil, {ID: 2, Name: ""}}
	out := MapSlicePtr(in, func(r *row) *string {
		if r.Name == "" {
			return nil
		}
		return &r.Name
	})
	require.Len(t, out, 1)
	assert.Equal(t, "a", *out[0])

	assert.Nil(t, MapSlicePtr[row, string](nil, func(r *row) *string { return &r.Name }))
}

func TestMapSliceWithID(t *testing.T) {
	in := []*row{{ID: 1, Name: "a"}, {ID: 7, Name: "bad"}}
	_, err := MapSliceWithID(in, func(r *row) (*string, error) {
		if r.Name == "bad" {
			return nil, errors.New("broken")
		}
		return &r.Name, nil
	}, func(r *row) uint { return r.ID })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "item ID 7")

	ok, err := MapSliceWithID([]*row{{ID: 1, Name: "a"}}, func(r *row) (*string, error) { return &r.Name, nil }, func(r *row) uint { return r.ID })
	require.NoError(t, err)
	assert.Equal(t, "a", *ok[0])
}
