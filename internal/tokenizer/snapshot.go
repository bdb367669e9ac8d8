package tokenizer

import (
	"fmt"

	"github.com/xupit3r/subword/internal/corpus"
)

// Snapshot is the flat, serializable state of a trained codec. Both
// mapping directions are included for readers that want them; they must
// agree with Vocab, which alone defines the IDs.
type Snapshot struct {
	Vocab         []string       `json:"vocab" yaml:"vocab"`
	VocabToID     map[string]int `json:"vocab_to_id" yaml:"vocab_to_id"`
	IDToVocab     map[int]string `json:"id_to_vocab" yaml:"id_to_vocab"`
	MaxVocabSize  int            `json:"max_vocab_size" yaml:"max_vocab_size"`
	InitialSize   int            `json:"initial_vocab_size" yaml:"initial_vocab_size"`
	UnknownPolicy string         `json:"unknown_policy,omitempty" yaml:"unknown_policy,omitempty"`
	Normalize     string         `json:"normalize,omitempty" yaml:"normalize,omitempty"`
}

// Snapshot exports the codec state
func (c *Codec) Snapshot() *Snapshot {
	s := &Snapshot{
		Vocab:         c.vocab.Tokens(),
		VocabToID:     make(map[string]int, c.vocab.Size()),
		IDToVocab:     make(map[int]string, c.vocab.Size()),
		MaxVocabSize:  c.maxVocabSize,
		InitialSize:   c.initialSize,
		UnknownPolicy: string(c.policy),
		Normalize:     string(c.normalize),
	}
	for id, symbol := range s.Vocab {
		s.VocabToID[symbol] = id
		s.IDToVocab[id] = symbol
	}
	return s
}

// FromSnapshot rebuilds a codec, rejecting duplicate symbols and mappings
// that disagree with the ordered vocabulary
func FromSnapshot(s *Snapshot) (*Codec, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: empty snapshot", ErrInvalidSnapshot)
	}

	vocab := NewVocabulary()
	for i, symbol := range s.Vocab {
		if symbol == "" {
			return nil, fmt.Errorf("%w: empty symbol at id %d", ErrInvalidSnapshot, i)
		}
		if prev, added := vocab.Add(symbol); !added {
			return nil, fmt.Errorf("%w: duplicate symbol %q at ids %d and %d", ErrInvalidSnapshot, symbol, prev, i)
		}
	}

	if s.VocabToID != nil {
		if len(s.VocabToID) != vocab.Size() {
			return nil, fmt.Errorf("%w: vocab_to_id has %d entries, vocab has %d", ErrInvalidSnapshot, len(s.VocabToID), vocab.Size())
		}
		for symbol, id := range s.VocabToID {
			if vocab.TokenToID(symbol) != id {
				return nil, fmt.Errorf("%w: vocab_to_id maps %q to %d", ErrInvalidSnapshot, symbol, id)
			}
		}
	}

	if s.IDToVocab != nil {
		if len(s.IDToVocab) != vocab.Size() {
			return nil, fmt.Errorf("%w: id_to_vocab has %d entries, vocab has %d", ErrInvalidSnapshot, len(s.IDToVocab), vocab.Size())
		}
		for id, symbol := range s.IDToVocab {
			if got, ok := vocab.Symbol(id); !ok || got != symbol {
				return nil, fmt.Errorf("%w: id_to_vocab maps %d to %q", ErrInvalidSnapshot, id, symbol)
			}
		}
	}

	if s.InitialSize < 0 || s.InitialSize > vocab.Size() {
		return nil, fmt.Errorf("%w: initial size %d outside vocabulary of %d", ErrInvalidSnapshot, s.InitialSize, vocab.Size())
	}

	policy, err := ParseUnknownPolicy(s.UnknownPolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	normalize, err := corpus.ParseNormalization(s.Normalize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	return newCodec(vocab, s.MaxVocabSize, s.InitialSize, policy, normalize), nil
}
