package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToIntSafe(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *int64
	}{
		{"plain integer string", "42", ptr(int64(42))},
		{"decimal-looking string", "3.0", ptr(int64(3))},
		{"whitespace padded", "  7 ", ptr(int64(7))},
		{"empty string", "", nil},
		{"whitespace only", "   ", nil},
		{"non-numeric", "abc", nil},
		{"nil input", nil, nil},
		{"already int64", int64(11), ptr(int64(11))},
		{"float input", 9.9, ptr(int64(9))},
		{"negative", "-5", ptr(int64(-5))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToIntSafe(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestToBoolSafe(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *bool
	}{
		{"yes", "yes", ptr(true)},
		{"uppercase TRUE", "TRUE", ptr(true)},
		{"t", "t", ptr(true)},
		{"one", "1", ptr(true)},
		{"si", "si", ptr(true)},
		{"no", "no", ptr(false)},
		{"zero", "0", ptr(false)},
		{"f", "F", ptr(false)},
		{"unrecognized stays nil", "maybe", nil},
		{"empty", "", nil},
		{"nil", nil, nil},
		{"native bool", true, ptr(true)},
		{"numeric one", 1, ptr(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToBoolSafe(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "AB123", ToString("AB123"))
	assert.Equal(t, "42", ToString(int64(42)))
	assert.Equal(t, "1", ToString(true))
	assert.Equal(t, "0", ToString(false))
	assert.Equal(t, "3.5", ToString(3.5))
}

func ptr[T any](v T) *T { return &v }
