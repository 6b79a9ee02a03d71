package rewards

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeRate(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "5.2", expected: "5.2"},
		{input: "12,5", expected: "12.5"},
		{input: "%8", expected: "8"},
		{input: " 4.50 %", expected: "4.5"},
		{input: "1.250,75", expected: "1250.75"},
		{input: "1,250.75", expected: "1250.75"},
		{input: "1.000.000", expected: "1000000"},
		{input: "0", expected: "0"},
	}

	for _, row := range table {
		result, err := NormalizeRate(row.input)
		require.NoError(t, err, row.input)
		require.Equal(t, row.expected, result, row.input)
	}

	for _, invalid := range []string{"", "abc", "-3", "%", "1,2,3a"} {
		_, err := NormalizeRate(invalid)
		require.ErrorIs(t, err, ErrInvalidRate, invalid)
	}
}

func TestRateValue(t *testing.T) {
	v, err := RateValue("6.5")
	require.NoError(t, err)
	require.InDelta(t, 6.5, v, 1e-9)
}
