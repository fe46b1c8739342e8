package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Amount
	}{
		{"0.0001", 1},
		{"0.0011", 11},
		{"0.0101", 101},
		{"4.0001", 40001},
		{"40.0002", 400002},
		{"400.4303", 4004303},
		{"1", 10000},
		{"1.0", 10000},
		{"1.5", 15000},
		{"1.50", 15000},
		{"1.05", 10500},
		{".10", 1000},
		{"-2.5", -25000},
		// Digits beyond four places are truncated.
		{"0.00001", 0},
		{"0.00009", 0},
		{"1.00009", 10000},
		{"22000000000000.0001", 220000000000000001},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "abc", "1.2.3", "1,5"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestParse_OutOfRange(t *testing.T) {
	_, err := Parse("92233720368547758080")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestString(t *testing.T) {
	tests := []struct {
		amount Amount
		want   string
	}{
		{0, "0.0000"},
		{1, "0.0001"},
		{10, "0.0010"},
		{2000, "0.2000"},
		{22000, "2.2000"},
		{220000, "22.0000"},
		{15000, "1.5000"},
		{-15000, "-1.5000"},
		{2200000000001, "220000000.0001"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.amount.String())
		})
	}
}

func TestAdd_Checked(t *testing.T) {
	sum, err := Amount(10000).Add(5000)
	require.NoError(t, err)
	assert.Equal(t, Amount(15000), sum)

	_, err = Amount(math.MaxInt64).Add(1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Amount(math.MinInt64).Add(-1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSub_Checked(t *testing.T) {
	diff, err := Amount(10000).Sub(2500)
	require.NoError(t, err)
	assert.Equal(t, Amount(7500), diff)

	// Subtraction may legitimately go negative.
	diff, err = Amount(0).Sub(10000)
	require.NoError(t, err)
	assert.Equal(t, Amount(-10000), diff)

	_, err = Amount(math.MinInt64).Sub(1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Amount(math.MaxInt64).Sub(-1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestParseStringRoundTrip(t *testing.T) {
	for _, s := range []string{"0.0000", "1.5000", "220000000.0001", "-3.2500"} {
		got, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, got.String())
	}
}
