package game

import "math/rand"

// Word is a single bank entry, tagged with the category it belongs to.
type Word struct {
	Text     string
	Category string
}

// WordBank holds the static word list offered to drawers.
type WordBank struct {
	words []Word
}

// NewWordBank builds a bank from the given entries.
func NewWordBank(words []Word) *WordBank {
	return &WordBank{words: words}
}

// DefaultBank returns the built-in word list.
func DefaultBank() *WordBank {
	return NewWordBank(defaultWords)
}

// Pick samples up to n distinct words uniformly without replacement from the
// bank minus the used set. Fewer than n entries are returned when the bank is
// nearly exhausted; an empty slice means nothing is left to offer.
func (b *WordBank) Pick(rng *rand.Rand, n int, used map[string]bool) []string {
	var unused []string
	for _, w := range b.words {
		if !used[w.Text] {
			unused = append(unused, w.Text)
		}
	}
	if len(unused) == 0 {
		return nil
	}
	if n > len(unused) {
		n = len(unused)
	}

	picked := make([]string, 0, n)
	for _, i := range rng.Perm(len(unused))[:n] {
		picked = append(picked, unused[i])
	}
	return picked
}

// Remaining reports how many bank words are not yet used.
func (b *WordBank) Remaining(used map[string]bool) int {
	count := 0
	for _, w := range b.words {
		if !used[w.Text] {
			count++
		}
	}
	return count
}

// Size reports the total number of bank entries.
func (b *WordBank) Size() int {
	return len(b.words)
}

var defaultWords = []Word{
	// animals
	{"cat", "animals"}, {"dog", "animals"}, {"elephant", "animals"},
	{"giraffe", "animals"}, {"penguin", "animals"}, {"octopus", "animals"},
	{"butterfly", "animals"}, {"kangaroo", "animals"}, {"turtle", "animals"},
	{"shark", "animals"}, {"spider", "animals"}, {"owl", "animals"},
	{"flamingo", "animals"}, {"hedgehog", "animals"}, {"dolphin", "animals"},

	// food
	{"apple", "food"}, {"pizza", "food"}, {"hamburger", "food"},
	{"banana", "food"}, {"icecream", "food"}, {"spaghetti", "food"},
	{"pancake", "food"}, {"watermelon", "food"}, {"popcorn", "food"},
	{"sandwich", "food"}, {"donut", "food"}, {"pineapple", "food"},
	{"taco", "food"}, {"cupcake", "food"}, {"pretzel", "food"},

	// objects
	{"umbrella", "objects"}, {"telescope", "objects"}, {"scissors", "objects"},
	{"ladder", "objects"}, {"anchor", "objects"}, {"backpack", "objects"},
	{"candle", "objects"}, {"hammer", "objects"}, {"compass", "objects"},
	{"telephone", "objects"}, {"guitar", "objects"}, {"toothbrush", "objects"},
	{"skateboard", "objects"}, {"lighthouse", "objects"}, {"windmill", "objects"},

	// actions
	{"swimming", "actions"}, {"dancing", "actions"}, {"juggling", "actions"},
	{"climbing", "actions"}, {"fishing", "actions"}, {"sneezing", "actions"},
	{"whistling", "actions"}, {"painting", "actions"}, {"surfing", "actions"},
	{"yawning", "actions"}, {"knitting", "actions"}, {"skiing", "actions"},

	// places
	{"beach", "places"}, {"castle", "places"}, {"library", "places"},
	{"volcano", "places"}, {"desert", "places"}, {"airport", "places"},
	{"stadium", "places"}, {"island", "places"}, {"bridge", "places"},
	{"waterfall", "places"}, {"cave", "places"}, {"farm", "places"},

	// nature
	{"rainbow", "nature"}, {"tornado", "nature"}, {"cactus", "nature"},
	{"mushroom", "nature"}, {"iceberg", "nature"}, {"lightning", "nature"},
	{"sunflower", "nature"}, {"mountain", "nature"}, {"cloud", "nature"},
	{"snowman", "nature"}, {"comet", "nature"}, {"forest", "nature"},
}
