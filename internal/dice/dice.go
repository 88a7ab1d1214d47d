// internal/dice/dice.go
package dice

import "math/rand"

// Joker is the wildcard die face. A joker counts toward any claimed value
// except a claim on jokers themselves.
const Joker = 1

// RollHand produces count independent uniform dice in [1,6].
func RollHand(count int) []int {
	hand := make([]int, count)
	for i := range hand {
		hand[i] = rand.Intn(6) + 1
	}
	return hand
}

// IsPaso reports whether a full 5-die hand forms a "paso":
// either exactly 4 distinct values, or exactly 2 distinct values where one of
// them occurs 4 times. Any other distribution, including 5-of-a-kind, is not
// a paso. Hands of any other size are never a paso.
func IsPaso(hand []int) bool {
	if len(hand) != 5 {
		return false
	}

	counts := map[int]int{}
	for _, d := range hand {
		counts[d]++
	}

	switch len(counts) {
	case 4:
		return true
	case 2:
		for _, c := range counts {
			if c == 4 {
				return true
			}
		}
	}
	return false
}

// CountValue counts how many dice across all hands match value, treating
// jokers as wildcards unless the claimed value is the joker itself. It also
// reports how many of the matches were jokers.
func CountValue(hands [][]int, value int) (total, jokers int) {
	for _, hand := range hands {
		for _, d := range hand {
			switch {
			case d == value:
				total++
			case d == Joker && value != Joker:
				total++
				jokers++
			}
		}
	}
	return total, jokers
}

// ResolveStandard checks an "at least" claim: the accusation holds when the
// actual count is greater than or equal to the claimed count.
func ResolveStandard(hands [][]int, value, count int) (actual, jokers int, correct bool) {
	actual, jokers = CountValue(hands, value)
	return actual, jokers, actual >= count
}

// ResolveExact checks an "exactly" claim: the accusation holds only when the
// actual count equals the claimed count.
func ResolveExact(hands [][]int, value, count int) (actual, jokers int, correct bool) {
	actual, jokers = CountValue(hands, value)
	return actual, jokers, actual == count
}
