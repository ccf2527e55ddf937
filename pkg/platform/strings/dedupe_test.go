package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil stays nil", input: nil, expected: nil},
		{name: "empty stays empty", input: []string{}, expected: []string{}},
		{name: "trims", input: []string{"  retail ", "agriculture  "}, expected: []string{"retail", "agriculture"}},
		{name: "keeps first occurrence", input: []string{"energy", "retail", "energy"}, expected: []string{"energy", "retail"}},
		{name: "duplicates after trimming", input: []string{"energy", " energy "}, expected: []string{"energy"}},
		{name: "all blank", input: []string{"", "   ", "\t"}, expected: []string{}},
		{name: "case sensitive", input: []string{"Retail", "retail"}, expected: []string{"Retail", "retail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestFirstNonBlank(t *testing.T) {
	v, ok := FirstNonBlank("", "  ", " Maria Santos ", "ignored")
	assert.True(t, ok)
	assert.Equal(t, "Maria Santos", v)

	_, ok = FirstNonBlank(" ", "")
	assert.False(t, ok)

	_, ok = FirstNonBlank()
	assert.False(t, ok)
}
