package tokenizer

import (
	"fmt"
	"strings"

	"github.com/xupit3r/subword/internal/corpus"
	"github.com/xupit3r/subword/internal/logging"
)

// UnknownPolicy decides what Encode and Decode do with lookups that miss
type UnknownPolicy string

const (
	// UnknownError fails the whole call on the first miss
	UnknownError UnknownPolicy = "error"
	// UnknownSkip drops the offending character or ID and logs a warning
	UnknownSkip UnknownPolicy = "skip"
)

// ParseUnknownPolicy converts a config value into an UnknownPolicy.
// An empty string selects UnknownError.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch UnknownPolicy(s) {
	case "", UnknownError:
		return UnknownError, nil
	case UnknownSkip:
		return UnknownSkip, nil
	default:
		return "", fmt.Errorf("unknown token policy %q", s)
	}
}

// Codec maps text to token IDs and back using a frozen vocabulary.
// It is never mutated after construction and is safe for concurrent use.
type Codec struct {
	vocab        *Vocabulary
	maxVocabSize int
	initialSize  int
	policy       UnknownPolicy
	normalize    corpus.Normalization
}

func newCodec(vocab *Vocabulary, maxVocabSize, initialSize int, policy UnknownPolicy, normalize corpus.Normalization) *Codec {
	if policy == "" {
		policy = UnknownError
	}
	if normalize == "" {
		normalize = corpus.NormalizeNone
	}
	return &Codec{
		vocab:        vocab.Clone(),
		maxVocabSize: maxVocabSize,
		initialSize:  initialSize,
		policy:       policy,
		normalize:    normalize,
	}
}

// Encode converts text to token IDs, one per character. The text is first
// normalized the way the training corpus was. Learned merges are not
// re-applied: each character is looked up on its own.
func (c *Codec) Encode(text string) ([]int, error) {
	text = c.normalize.Apply(text)
	ids := make([]int, 0, len(text))

	pos := 0
	for _, r := range text {
		symbol := string(r)
		if id, ok := c.vocab.Lookup(symbol); ok {
			ids = append(ids, id)
		} else if c.policy == UnknownSkip {
			logging.Warnf("skipping unknown symbol %q at position %d", symbol, pos)
		} else {
			return nil, fmt.Errorf("%w %q at position %d", ErrUnknownSymbol, symbol, pos)
		}
		pos++
	}

	return ids, nil
}

// Decode converts token IDs back to text
func (c *Codec) Decode(ids []int) (string, error) {
	var builder strings.Builder

	for i, id := range ids {
		symbol, ok := c.vocab.Symbol(id)
		if !ok {
			if c.policy == UnknownSkip {
				logging.Warnf("skipping unknown token id %d at position %d", id, i)
				continue
			}
			return "", fmt.Errorf("%w %d at position %d", ErrUnknownTokenID, id, i)
		}
		builder.WriteString(symbol)
	}

	return builder.String(), nil
}

// EncodeAsTokens converts text to symbols (for debugging)
func (c *Codec) EncodeAsTokens(text string) ([]string, error) {
	ids, err := c.Encode(text)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = c.vocab.IDToToken(id)
	}
	return tokens, nil
}

// CountTokens returns the number of tokens in text
func (c *Codec) CountTokens(text string) (int, error) {
	ids, err := c.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Vocabulary returns the symbols in ID order
func (c *Codec) Vocabulary() []string {
	return c.vocab.Tokens()
}

// VocabSize returns the vocabulary size
func (c *Codec) VocabSize() int {
	return c.vocab.Size()
}

// MaxVocabSize returns the size limit the vocabulary was trained with
func (c *Codec) MaxVocabSize() int {
	return c.maxVocabSize
}

// InitialSize returns the size of the character alphabet, the IDs below it
// are single characters
func (c *Codec) InitialSize() int {
	return c.initialSize
}

// Policy returns the unknown token policy
func (c *Codec) Policy() UnknownPolicy {
	return c.policy
}

// Normalization returns the Unicode normal form applied before encoding
func (c *Codec) Normalization() corpus.Normalization {
	return c.normalize
}

// WithPolicy returns a copy of the codec using another unknown token policy
func (c *Codec) WithPolicy(policy UnknownPolicy) *Codec {
	return newCodec(c.vocab, c.maxVocabSize, c.initialSize, policy, c.normalize)
}

// TokenToID converts a symbol to its ID
// Returns -1 if symbol not found
func (c *Codec) TokenToID(symbol string) int {
	return c.vocab.TokenToID(symbol)
}

// IDToToken converts an ID to its symbol
// Returns empty string if ID is out of range
func (c *Codec) IDToToken(id int) string {
	return c.vocab.IDToToken(id)
}
