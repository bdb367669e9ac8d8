package tokenizer

import (
	"errors"
	"sort"
)

var (
	// ErrNotLoaded is returned when training is requested before any text was loaded
	ErrNotLoaded = errors.New("no training data loaded")
	// ErrNotTrained is returned when encoding or decoding before training finished
	ErrNotTrained = errors.New("tokenizer not trained")
	// ErrUnknownSymbol is returned when encoding a character outside the vocabulary
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrUnknownTokenID is returned when decoding an ID outside the vocabulary
	ErrUnknownTokenID = errors.New("unknown token id")
	// ErrInvalidSnapshot is returned when a persisted vocabulary is inconsistent
	ErrInvalidSnapshot = errors.New("invalid vocabulary snapshot")
)

// Vocabulary is an ordered list of unique symbols. A symbol's token ID is
// its index, so the symbol → ID index is derived from the list and both
// directions only change together through Add.
type Vocabulary struct {
	// Token ID → symbol
	tokens []string

	// Symbol → token ID
	ids map[string]int
}

// NewVocabulary creates an empty vocabulary
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		tokens: make([]string, 0),
		ids:    make(map[string]int),
	}
}

// BuildVocabulary returns the sorted set of distinct symbols in seq with
// IDs assigned in that order. An empty sequence yields an empty vocabulary.
func BuildVocabulary(seq []string) *Vocabulary {
	seen := make(map[string]struct{}, len(seq))
	alphabet := make([]string, 0)
	for _, s := range seq {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		alphabet = append(alphabet, s)
	}
	sort.Strings(alphabet)

	v := NewVocabulary()
	for _, s := range alphabet {
		v.Add(s)
	}
	return v
}

// Add appends symbol with the next sequential ID. If the symbol is already
// present its existing ID is returned and added is false.
func (v *Vocabulary) Add(symbol string) (id int, added bool) {
	if id, ok := v.ids[symbol]; ok {
		return id, false
	}
	id = len(v.tokens)
	v.tokens = append(v.tokens, symbol)
	v.ids[symbol] = id
	return id, true
}

// Size returns the number of symbols
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// Lookup returns the ID of symbol
func (v *Vocabulary) Lookup(symbol string) (int, bool) {
	id, ok := v.ids[symbol]
	return id, ok
}

// Symbol returns the symbol with the given ID
func (v *Vocabulary) Symbol(id int) (string, bool) {
	if id >= 0 && id < len(v.tokens) {
		return v.tokens[id], true
	}
	return "", false
}

// TokenToID converts a symbol to its ID
// Returns -1 if symbol not found
func (v *Vocabulary) TokenToID(symbol string) int {
	if id, ok := v.ids[symbol]; ok {
		return id
	}
	return -1
}

// IDToToken converts an ID to its symbol
// Returns empty string if ID is out of range
func (v *Vocabulary) IDToToken(id int) string {
	s, _ := v.Symbol(id)
	return s
}

// Tokens returns a copy of the symbols in ID order
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// Clone returns an independent copy
func (v *Vocabulary) Clone() *Vocabulary {
	c := &Vocabulary{
		tokens: v.Tokens(),
		ids:    make(map[string]int, len(v.ids)),
	}
	for s, id := range v.ids {
		c.ids[s] = id
	}
	return c
}
