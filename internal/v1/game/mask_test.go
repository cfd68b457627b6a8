package game

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"apple", "_ _ _ _ _"},
		{"a", "_"},
		{"", ""},
		{"ice cream", "_ _ _   _ _ _ _ _"},
		{"t-rex", "_ - _ _ _"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, Mask(tt.word))
		})
	}
}

func TestHintRevealsExactlyN(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		hint := Hint("giraffe", 1, rng)
		parts := strings.Split(hint, " ")
		require.Len(t, parts, len("giraffe"))

		revealed := 0
		for _, p := range parts {
			if p != "_" {
				revealed++
			}
		}
		assert.Equal(t, 1, revealed)
	}
}

func TestHintRevealedCharactersMatchWord(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	word := "penguin"

	hint := Hint(word, 3, rng)
	parts := strings.Split(hint, " ")
	require.Len(t, parts, len(word))
	for i, p := range parts {
		if p != "_" {
			assert.Equal(t, string(word[i]), p)
		}
	}
}

func TestHintMoreThanWordLength(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	assert.Equal(t, "c a t", Hint("cat", 10, rng))
}

func TestWordLength(t *testing.T) {
	assert.Equal(t, 5, WordLength("apple"))
	assert.Equal(t, 9, WordLength("ice cream"))
	assert.Equal(t, 0, WordLength(""))
}
