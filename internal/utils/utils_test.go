package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type tagged struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Skipped string `db:"-"`
	Plain   string
	hidden  string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	assert.Equal(t, []string{"id", "name"}, StructTagValues(tagged{}))
	assert.Equal(t, []string{"id", "name"}, StructTagValues(&tagged{}))
	assert.Panics(t, func() { StructTagValues("nope") })
}

func TestStructToMap(t *testing.T) {
	m := StructToMap(&tagged{ID: "1", Name: "a", Skipped: "x", hidden: "y"})
	assert.Equal(t, map[string]any{"id": "1", "name": "a"}, m)
}

func TestFilterSliceString(t *testing.T) {
	assert.Equal(t, []string{"b"}, FilterSliceString([]string{"a", "b", "c"}, "a", "c"))
	assert.Equal(t, []string{"a"}, FilterSliceString([]string{"a"}))
}

func TestNanoIDSize(t *testing.T) {
	assert.Len(t, NanoID(), NanoidSize)
	assert.Len(t, NanoIDSize(8), 8)
	assert.NotEqual(t, NanoIDSize(16), NanoIDSize(16))
}
