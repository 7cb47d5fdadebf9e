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
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "single element",
			input:    []string{"foo"},
			expected: []string{"foo"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  foo  ", "bar  ", "  baz"},
			expected: []string{"foo", "bar", "baz"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"foo", "bar", "foo", "baz", "bar"},
			expected: []string{"foo", "bar", "baz"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"foo", "", "  ", "bar"},
			expected: []string{"foo", "bar"},
		},
		{
			name:     "combined: trim, dedupe, remove empty",
			input:    []string{"  foo ", "bar", "foo", "", "  ", "bar"},
			expected: []string{"foo", "bar"},
		},
		{
			name:     "preserves case",
			input:    []string{"Foo", "foo", "FOO"},
			expected: []string{"Foo", "foo", "FOO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DedupeAndTrim(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSplitAny(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		separators string
		expected   []string
	}{
		{
			name:       "empty input",
			input:      "",
			separators: "、",
			expected:   []string{},
		},
		{
			name:       "full-width and ascii separators",
			input:      "鹽埕區、鼓山區(備註)",
			separators: "、()",
			expected:   []string{"鹽埕區", "鼓山區", "備註"},
		},
		{
			name:       "consecutive separators drop empty fields",
			input:      "a，，b\n\nc",
			separators: "，\n",
			expected:   []string{"a", "b", "c"},
		},
		{
			name:       "fields keep surrounding spaces",
			input:      " a 、b ",
			separators: "、",
			expected:   []string{" a ", "b "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitAny(tt.input, tt.separators))
		})
	}
}
