package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", FirstMatch},
		{"priority", FirstMatch},
		{"first", FirstMatch},
		{"array", Concatenate},
		{"concat", Concatenate},
		{"hash", DeepMerge},
		{" Merge ", DeepMerge},
		{"deep", DeepMerge},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseMode("union")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "priority", FirstMatch.String())
	assert.Equal(t, "array", Concatenate.String())
	assert.Equal(t, "hash", DeepMerge.String())
	assert.Equal(t, "unknown", Mode(9).String())
}

func TestMode_FlagValue(t *testing.T) {
	var m Mode
	require.NoError(t, m.Set("array"))
	assert.Equal(t, Concatenate, m)
	assert.Equal(t, "mode", m.Type())
	assert.Error(t, m.Set("bogus"))
	assert.Equal(t, Concatenate, m, "a failed Set keeps the old value")
}
