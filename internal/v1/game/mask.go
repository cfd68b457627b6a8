package game

import (
	"math/rand"
	"strings"
	"unicode"
)

// maskable reports whether a character is hidden when the word is masked.
// Whitespace and punctuation stay visible.
func maskable(r rune) bool {
	return !unicode.IsSpace(r) && !unicode.IsPunct(r)
}

// Mask renders a word with every maskable character as an underscore,
// characters separated by single spaces.
func Mask(word string) string {
	runes := []rune(word)
	parts := make([]string, len(runes))
	for i, r := range runes {
		if maskable(r) {
			parts[i] = "_"
		} else {
			parts[i] = string(r)
		}
	}
	return strings.Join(parts, " ")
}

// Hint renders the masked word with n distinct maskable positions revealed,
// chosen uniformly at random. Successive calls sample fresh positions each
// time; previously revealed positions are not tracked.
func Hint(word string, n int, rng *rand.Rand) string {
	runes := []rune(word)

	var positions []int
	for i, r := range runes {
		if maskable(r) {
			positions = append(positions, i)
		}
	}
	if n > len(positions) {
		n = len(positions)
	}

	reveal := make(map[int]bool, n)
	for _, i := range rng.Perm(len(positions))[:n] {
		reveal[positions[i]] = true
	}

	parts := make([]string, len(runes))
	for i, r := range runes {
		if maskable(r) && !reveal[i] {
			parts[i] = "_"
		} else {
			parts[i] = string(r)
		}
	}
	return strings.Join(parts, " ")
}

// WordLength counts the characters of a word as shown to guessers.
func WordLength(word string) int {
	return len([]rune(word))
}
