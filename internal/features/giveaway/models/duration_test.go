package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"10m", 600},
		{"2h", 7200},
		{"1d2h", 93600},
		{"90", 90},
		{"1w", 604800},
		{"45s", 45},
		{"2m30s", 150},
		{"1D 2H", 93600},  // case and whitespace normalized
		{" 10 m ", 600},
		{"5mXtra", 300},   // unmatched substrings ignored
		{"junk3sjunk", 3},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "0", "-5", "0s", "xyz0m"} {
		t.Run("invalid_"+input, func(t *testing.T) {
			_, err := ParseDuration(input)
			assert.ErrorIs(t, err, ErrInvalidDuration)
		})
	}
}
