package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat(t *testing.T) {
	cases := []struct {
		name string
		in   any
		def  float64
		want float64
	}{
		{"plain float", 3.5, 0, 3.5},
		{"int", 7, 0, 7},
		{"json number", json.Number("12.25"), 0, 12.25},
		{"currency with separators", "$1,234.56", 0, 1234.56},
		{"currency suffix spaces", "  $42.00  ", 0, 42},
		{"negative percent style", "-12.5", 0, -12.5},
		{"bare dot", ".", 9.9, 9.9},
		{"empty string", "", 1.5, 1.5},
		{"whitespace only", "   ", 2, 2},
		{"nil", nil, -1, -1},
		{"garbage", "three", 4, 4},
		{"map", map[string]any{}, 5, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToFloat(tc.in, tc.def))
		})
	}
}

func TestToFloatSlice(t *testing.T) {
	in := []any{"0.05", 0.045, nil, "bogus", "0.04", "0.03"}
	assert.Equal(t, []float64{0.05, 0.045, 0.04}, ToFloatSlice(in, 3))
	assert.Empty(t, ToFloatSlice(nil, 3))
}
