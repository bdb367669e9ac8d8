package tokenizer

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xupit3r/subword/internal/corpus"
	"github.com/xupit3r/subword/internal/logging"
)

// State is the lifecycle stage of a Trainer
type State int

const (
	StateUninitialized State = iota
	StateLoaded
	StateVocabBuilt
	StateTraining
	StateTrained
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateVocabBuilt:
		return "vocab-built"
	case StateTraining:
		return "training"
	case StateTrained:
		return "trained"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StopReason records why the training loop ended
type StopReason int

const (
	StopNone StopReason = iota
	// StopMaxVocab means the vocabulary reached the configured size
	StopMaxVocab
	// StopExhausted means the sequence had no pairs left
	StopExhausted
	// StopNoRepeats means no pair occurred at least twice
	StopNoRepeats
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopMaxVocab:
		return "max vocabulary size reached"
	case StopExhausted:
		return "no pairs left"
	case StopNoRepeats:
		return "no repeated pairs"
	default:
		return fmt.Sprintf("stop(%d)", int(r))
	}
}

// Merge describes one training iteration
type Merge struct {
	Step   int
	Pair   Pair
	Symbol string
	ID     int
	Count  int
	SeqLen int
	// Added is false when the merged symbol was already in the vocabulary,
	// e.g. "abc" learned as ab+c after a+bc. The sequence is still rewritten
	// and the symbol keeps its first ID, so the vocabulary stays duplicate
	// free. Ordinary corpora rarely reach this case.
	Added bool
}

// Options configures a Trainer
type Options struct {
	MaxVocabSize  int
	Normalize     corpus.Normalization
	UnknownPolicy UnknownPolicy
}

// Trainer learns a vocabulary from a corpus by repeatedly merging the most
// frequent adjacent pair of symbols. A Trainer is not safe for concurrent use.
type Trainer struct {
	opts Options

	state       State
	source      string
	loaded      int
	seq         []string
	vocab       *Vocabulary
	initialSize int
	merges      []Merge
	stop        StopReason
	codec       *Codec

	// ProgressFunc, when set, is called after every merge
	ProgressFunc func(m Merge)
}

// NewTrainer creates a trainer in the uninitialized state
func NewTrainer(opts Options) *Trainer {
	if opts.UnknownPolicy == "" {
		opts.UnknownPolicy = UnknownError
	}
	return &Trainer{opts: opts}
}

// Load reads src, truncates it to limit characters (no truncation when
// limit <= 0) and splits it into single-character symbols. Loading again
// discards any previous run.
func (t *Trainer) Load(src corpus.Source, limit int) error {
	seq, err := corpus.Load(src, corpus.Options{Limit: limit, Normalize: t.opts.Normalize})
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	t.reset()
	t.source = src.Name()
	t.seq = seq
	t.loaded = len(seq)
	t.state = StateLoaded

	logging.Debugf("Loaded %d characters from %s", t.loaded, t.source)
	return nil
}

// LoadText loads an in-memory corpus
func (t *Trainer) LoadText(text string, limit int) error {
	return t.Load(corpus.NewStringSource(text), limit)
}

func (t *Trainer) reset() {
	t.state = StateUninitialized
	t.source = ""
	t.loaded = 0
	t.seq = nil
	t.vocab = nil
	t.initialSize = 0
	t.merges = nil
	t.stop = StopNone
	t.codec = nil
}

// BuildVocabulary creates the initial alphabet from the loaded symbols
func (t *Trainer) BuildVocabulary() error {
	switch t.state {
	case StateUninitialized:
		return ErrNotLoaded
	case StateLoaded:
	default:
		return nil
	}

	t.vocab = BuildVocabulary(t.seq)
	t.initialSize = t.vocab.Size()
	t.state = StateVocabBuilt
	return nil
}

// Train runs the merge loop until the vocabulary reaches MaxVocabSize, no
// pair repeats, or the sequence has collapsed to a single symbol. Every
// one of these is a normal end of training. With verbose set progress is
// logged at info level instead of debug.
func (t *Trainer) Train(verbose bool) error {
	if t.state == StateTrained {
		return nil
	}
	if err := t.BuildVocabulary(); err != nil {
		return err
	}

	logf := logging.Debugf
	if verbose {
		logf = logging.Infof
	}

	logf("Loaded %d characters from %s", t.loaded, t.source)
	logf("Initial vocabulary size: %d", t.initialSize)
	logf("First vocab items: %q", t.vocab.tokens[:min(5, t.initialSize)])

	t.state = StateTraining
	target := t.opts.MaxVocabSize - t.initialSize
	if target <= 0 {
		logf("Vocabulary already at %d of %d, nothing to merge", t.initialSize, t.opts.MaxVocabSize)
	}

	for t.vocab.Size() < t.opts.MaxVocabSize {
		table := CountPairs(t.seq)
		best, count, ok := table.Best()
		if !ok {
			t.stop = StopExhausted
			break
		}
		if count < 2 {
			t.stop = StopNoRepeats
			break
		}

		t.seq = MergePair(t.seq, best)
		id, added := t.vocab.Add(best.Merged())

		m := Merge{
			Step:   len(t.merges) + 1,
			Pair:   best,
			Symbol: best.Merged(),
			ID:     id,
			Count:  count,
			SeqLen: len(t.seq),
			Added:  added,
		}
		t.merges = append(t.merges, m)

		entry := logging.WithFields(logrus.Fields{
			"step":    m.Step,
			"merge":   m.Symbol,
			"id":      m.ID,
			"count":   m.Count,
			"seq_len": m.SeqLen,
		})
		if verbose {
			entry.Infof("Merged %s", best)
		} else {
			entry.Debugf("Merged %s", best)
		}
		if !added {
			logging.Debugf("Symbol %q already in vocabulary with id %d", m.Symbol, id)
		}

		if t.ProgressFunc != nil {
			t.ProgressFunc(m)
		}
	}
	if t.stop == StopNone {
		t.stop = StopMaxVocab
	}

	t.codec = newCodec(t.vocab, t.opts.MaxVocabSize, t.initialSize, t.opts.UnknownPolicy, t.opts.Normalize)
	t.state = StateTrained

	logf("Training finished after %d merges (%s): vocabulary size %d, sequence length %d",
		len(t.merges), t.stop, t.vocab.Size(), len(t.seq))
	return nil
}

// Codec returns the frozen codec of a trained vocabulary
func (t *Trainer) Codec() (*Codec, error) {
	if t.state != StateTrained {
		return nil, ErrNotTrained
	}
	return t.codec, nil
}

// Encode converts text to token IDs with the trained vocabulary
func (t *Trainer) Encode(text string) ([]int, error) {
	c, err := t.Codec()
	if err != nil {
		return nil, err
	}
	return c.Encode(text)
}

// Decode converts token IDs back to text with the trained vocabulary
func (t *Trainer) Decode(ids []int) (string, error) {
	c, err := t.Codec()
	if err != nil {
		return "", err
	}
	return c.Decode(ids)
}

// Vocabulary returns the current vocabulary in ID order, nil before it is built
func (t *Trainer) Vocabulary() []string {
	if t.vocab == nil {
		return nil
	}
	return t.vocab.Tokens()
}

// VocabSize returns the current vocabulary size
func (t *Trainer) VocabSize() int {
	if t.vocab == nil {
		return 0
	}
	return t.vocab.Size()
}

// State returns the lifecycle stage
func (t *Trainer) State() State {
	return t.state
}

// StopReason returns why training ended, StopNone until it has
func (t *Trainer) StopReason() StopReason {
	return t.stop
}

// Merges returns the merges performed so far in order
func (t *Trainer) Merges() []Merge {
	out := make([]Merge, len(t.merges))
	copy(out, t.merges)
	return out
}

// Sequence returns a copy of the current symbol sequence
func (t *Trainer) Sequence() []string {
	out := make([]string, len(t.seq))
	copy(out, t.seq)
	return out
}

// InitialSize returns the alphabet size, 0 before the vocabulary is built
func (t *Trainer) InitialSize() int {
	return t.initialSize
}

// CharsLoaded returns the number of characters taken from the source
func (t *Trainer) CharsLoaded() int {
	return t.loaded
}

// SourceName returns the name of the loaded source
func (t *Trainer) SourceName() string {
	return t.source
}

// MaxVocabSize returns the configured vocabulary size limit
func (t *Trainer) MaxVocabSize() int {
	return t.opts.MaxVocabSize
}
