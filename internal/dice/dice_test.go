// internal/dice/dice_test.go
package dice

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRollHand(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		hand := RollHand(n)
		require.Len(t, hand, n)
		for _, d := range hand {
			require.GreaterOrEqual(t, d, 1)
			require.LessOrEqual(t, d, 6)
		}
	}
}

func TestIsPaso(t *testing.T) {
	tests := []struct {
		name string
		hand []int
		want bool
	}{
		{"four of a kind", []int{2, 2, 2, 2, 5}, true},
		{"four distinct values", []int{1, 2, 3, 4, 4}, true},
		{"five distinct values", []int{1, 2, 3, 4, 5}, false},
		{"three distinct values", []int{1, 1, 1, 2, 2}, false},
		{"full house", []int{3, 3, 3, 6, 6}, false},
		{"five of a kind", []int{4, 4, 4, 4, 4}, false},
		{"pair plus trio split", []int{2, 2, 5, 5, 5}, false},
		{"short hand never paso", []int{2, 2, 2, 2}, false},
		{"long hand never paso", []int{1, 2, 3, 4, 4, 6}, false},
		{"empty hand", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsPaso(tt.hand))
		})
	}
}

func TestIsPasoMatchesDistinctCountRule(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hand := rapid.SliceOfN(rapid.IntRange(1, 6), 5, 5).Draw(t, "hand")

		counts := map[int]int{}
		for _, d := range hand {
			counts[d]++
		}
		fourOfAKind := false
		for _, c := range counts {
			if c == 4 {
				fourOfAKind = true
			}
		}
		want := len(counts) == 4 || (len(counts) == 2 && fourOfAKind)

		require.Equal(t, want, IsPaso(hand))
	})
}

func TestCountValue(t *testing.T) {
	hands := [][]int{
		{1, 3, 3, 5, 6},
		{2, 3, 4, 1, 1},
	}

	total, jokers := CountValue(hands, 3)
	require.Equal(t, 6, total, "three natural threes plus three jokers")
	require.Equal(t, 3, jokers)

	total, jokers = CountValue(hands, 6)
	require.Equal(t, 4, total)
	require.Equal(t, 3, jokers)

	// Jokers never count toward a claim on jokers themselves.
	total, jokers = CountValue(hands, 1)
	require.Equal(t, 3, total)
	require.Equal(t, 0, jokers)
}

func TestCountValueProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hands := rapid.SliceOfN(rapid.SliceOfN(rapid.IntRange(1, 6), 5, 5), 1, 6).Draw(t, "hands")
		value := rapid.IntRange(1, 6).Draw(t, "value")

		total, jokers := CountValue(hands, value)

		naturals := 0
		for _, hand := range hands {
			for _, d := range hand {
				if d == value {
					naturals++
				}
			}
		}
		require.Equal(t, naturals, total-jokers)
		if value == Joker {
			require.Zero(t, jokers)
		}
	})
}

func TestResolveStandard(t *testing.T) {
	hands := [][]int{{1, 3, 3, 5, 6}}

	actual, jokers, correct := ResolveStandard(hands, 3, 3)
	require.Equal(t, 3, actual)
	require.Equal(t, 1, jokers)
	require.True(t, correct, "at-least claim holds when actual meets it")

	_, _, correct = ResolveStandard(hands, 3, 2)
	require.True(t, correct, "at-least claim holds when actual exceeds it")

	_, _, correct = ResolveStandard(hands, 3, 4)
	require.False(t, correct)
}

func TestResolveExact(t *testing.T) {
	hands := [][]int{{1, 3, 3, 5, 6}}

	actual, _, correct := ResolveExact(hands, 3, 3)
	require.Equal(t, 3, actual)
	require.True(t, correct)

	_, _, correct = ResolveExact(hands, 3, 2)
	require.False(t, correct, "exact claim fails when actual exceeds it")

	_, _, correct = ResolveExact(hands, 3, 4)
	require.False(t, correct)
}
