package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitChapters(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"single", "ch1", []string{"ch1"}},
		{"multiple trims whitespace", "ch1, ch2 ,ch3", []string{"ch1", "ch2", "ch3"}},
		{"drops empty entries", "ch1,,ch2,", []string{"ch1", "ch2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, splitChapters(tc.raw))
		})
	}
}
