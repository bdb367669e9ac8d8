package tokenizer

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xupit3r/subword/internal/corpus"
)

// trainText trains a fresh trainer on text with no character limit
func trainText(t *testing.T, text string, maxVocab int) *Trainer {
	t.Helper()
	tr := NewTrainer(Options{MaxVocabSize: maxVocab})
	if err := tr.LoadText(text, 0); err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}
	if err := tr.Train(false); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	return tr
}

func TestTrainerStates(t *testing.T) {
	tr := NewTrainer(Options{MaxVocabSize: 10})
	if tr.State() != StateUninitialized {
		t.Fatalf("Expected %s, got %s", StateUninitialized, tr.State())
	}

	if err := tr.LoadText("abab", 0); err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}
	if tr.State() != StateLoaded {
		t.Errorf("Expected %s, got %s", StateLoaded, tr.State())
	}

	if err := tr.BuildVocabulary(); err != nil {
		t.Fatalf("BuildVocabulary failed: %v", err)
	}
	if tr.State() != StateVocabBuilt {
		t.Errorf("Expected %s, got %s", StateVocabBuilt, tr.State())
	}
	if tr.InitialSize() != 2 {
		t.Errorf("Expected initial size 2, got %d", tr.InitialSize())
	}

	if err := tr.Train(false); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if tr.State() != StateTrained {
		t.Errorf("Expected %s, got %s", StateTrained, tr.State())
	}
}

func TestTrainBeforeLoad(t *testing.T) {
	tr := NewTrainer(Options{MaxVocabSize: 10})

	if err := tr.Train(false); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Train() error = %v, expected ErrNotLoaded", err)
	}
	if err := tr.BuildVocabulary(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("BuildVocabulary() error = %v, expected ErrNotLoaded", err)
	}
}

func TestEncodeDecodeBeforeTraining(t *testing.T) {
	tr := NewTrainer(Options{MaxVocabSize: 10})
	if err := tr.LoadText("abc", 0); err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}

	if _, err := tr.Encode("abc"); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Encode() error = %v, expected ErrNotTrained", err)
	}
	if _, err := tr.Decode([]int{0}); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Decode() error = %v, expected ErrNotTrained", err)
	}
	if _, err := tr.Codec(); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Codec() error = %v, expected ErrNotTrained", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	tr := NewTrainer(Options{MaxVocabSize: 10})
	src := corpus.NewFileSource(filepath.Join(t.TempDir(), "nope.txt"))

	err := tr.Load(src, 100)
	if !errors.Is(err, corpus.ErrSourceNotFound) {
		t.Errorf("Load() error = %v, expected ErrSourceNotFound", err)
	}
	if tr.State() != StateUninitialized {
		t.Errorf("Failed load should leave trainer uninitialized, got %s", tr.State())
	}
}

func TestLoadRespectsLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("abcdefghij", 10)), 0644); err != nil {
		t.Fatalf("Failed to write corpus: %v", err)
	}

	tr := NewTrainer(Options{MaxVocabSize: 10})
	if err := tr.Load(corpus.NewFileSource(path), 25); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if tr.CharsLoaded() != 25 {
		t.Errorf("Expected 25 characters, got %d", tr.CharsLoaded())
	}
	if tr.SourceName() != path {
		t.Errorf("Expected source %s, got %s", path, tr.SourceName())
	}
	if got := strings.Join(tr.Sequence(), ""); got != "abcdefghijabcdefghijabcde" {
		t.Errorf("Unexpected sequence %q", got)
	}
}

func TestTrainVocabularyGrowth(t *testing.T) {
	text := "low lower lowest newer newest wider widest"

	tr := NewTrainer(Options{MaxVocabSize: 40})
	if err := tr.LoadText(text, 0); err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}
	if err := tr.BuildVocabulary(); err != nil {
		t.Fatalf("BuildVocabulary failed: %v", err)
	}

	prevSize := tr.VocabSize()
	prevSeq := len(tr.Sequence())
	var observed []Merge

	tr.ProgressFunc = func(m Merge) {
		observed = append(observed, m)

		if tr.VocabSize() != prevSize+1 {
			t.Errorf("step %d: vocab size %d, expected %d", m.Step, tr.VocabSize(), prevSize+1)
		}
		vocab := tr.Vocabulary()
		if last := vocab[len(vocab)-1]; last != m.Pair.Left+m.Pair.Right {
			t.Errorf("step %d: new entry %q, expected %q", m.Step, last, m.Pair.Left+m.Pair.Right)
		}
		if m.ID != prevSize {
			t.Errorf("step %d: assigned id %d, expected %d", m.Step, m.ID, prevSize)
		}
		if m.SeqLen >= prevSeq {
			t.Errorf("step %d: sequence did not shrink (%d -> %d)", m.Step, prevSeq, m.SeqLen)
		}
		prevSize = tr.VocabSize()
		prevSeq = m.SeqLen
	}

	if err := tr.Train(false); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if len(observed) == 0 {
		t.Fatal("Expected at least one merge")
	}
	if !reflect.DeepEqual(observed, tr.Merges()) {
		t.Errorf("ProgressFunc saw %d merges, Merges() has %d", len(observed), len(tr.Merges()))
	}
}

func TestTrainKnownMerges(t *testing.T) {
	// "aaabdaaabac": (a,a) wins first, then (aa,a), then (aaa,b)
	tr := trainText(t, "aaabdaaabac", 8)

	expected := []string{"a", "b", "c", "d", "aa", "aaa", "aaab"}
	if !reflect.DeepEqual(tr.Vocabulary(), expected) {
		t.Errorf("Vocabulary() = %v, expected %v", tr.Vocabulary(), expected)
	}
	if tr.StopReason() != StopNoRepeats {
		t.Errorf("Expected stop reason %q, got %q", StopNoRepeats, tr.StopReason())
	}
	if got := tr.Sequence(); !reflect.DeepEqual(got, []string{"aaab", "d", "aaab", "a", "c"}) {
		t.Errorf("Sequence() = %v", got)
	}
}

func TestTrainStopsAtMaxVocab(t *testing.T) {
	tr := trainText(t, strings.Repeat("abcd", 20), 6)

	if tr.VocabSize() != 6 {
		t.Errorf("Expected vocab size 6, got %d", tr.VocabSize())
	}
	if len(tr.Merges()) != 2 {
		t.Errorf("Expected 2 merges, got %d", len(tr.Merges()))
	}
	if tr.StopReason() != StopMaxVocab {
		t.Errorf("Expected stop reason %q, got %q", StopMaxVocab, tr.StopReason())
	}
}

func TestTrainNoRepeatedPairs(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason StopReason
	}{
		{"single symbol", "a", StopExhausted},
		{"empty corpus", "", StopExhausted},
		{"distinct pairs", "abcdef", StopNoRepeats},
		{"alternating once", "ab", StopNoRepeats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := trainText(t, tt.text, 100)
			if len(tr.Merges()) != 0 {
				t.Errorf("Expected zero merges, got %d", len(tr.Merges()))
			}
			if tr.VocabSize() != tr.InitialSize() {
				t.Errorf("Vocabulary grew from %d to %d", tr.InitialSize(), tr.VocabSize())
			}
			if tr.StopReason() != tt.reason {
				t.Errorf("Expected stop reason %q, got %q", tt.reason, tr.StopReason())
			}
		})
	}
}

func TestTrainRepeatedSymbol(t *testing.T) {
	tr := trainText(t, "aaaa", 100)

	// aaaa -> aa aa, after which (aa, aa) occurs only once
	if got := tr.Sequence(); !reflect.DeepEqual(got, []string{"aa", "aa"}) {
		t.Errorf("Sequence() = %v, expected [aa aa]", got)
	}
	if !reflect.DeepEqual(tr.Vocabulary(), []string{"a", "aa"}) {
		t.Errorf("Vocabulary() = %v", tr.Vocabulary())
	}
	if tr.StopReason() != StopNoRepeats {
		t.Errorf("Expected stop reason %q, got %q", StopNoRepeats, tr.StopReason())
	}
}

func TestTrainMaxVocabBelowAlphabet(t *testing.T) {
	for _, maxVocab := range []int{0, 2, 4} {
		tr := trainText(t, "abcdabcd", maxVocab)

		if len(tr.Merges()) != 0 {
			t.Errorf("max %d: expected zero merges, got %d", maxVocab, len(tr.Merges()))
		}
		if !reflect.DeepEqual(tr.Vocabulary(), []string{"a", "b", "c", "d"}) {
			t.Errorf("max %d: vocabulary changed to %v", maxVocab, tr.Vocabulary())
		}
		if tr.StopReason() != StopMaxVocab {
			t.Errorf("max %d: expected stop reason %q, got %q", maxVocab, StopMaxVocab, tr.StopReason())
		}
	}
}

func TestTrainVocabularyStaysUnique(t *testing.T) {
	tr := trainText(t, "abcabcabcxabyabzbcabc", 100)

	expected := []string{"a", "b", "c", "x", "y", "z", "ab", "abc", "abcabc"}
	if !reflect.DeepEqual(tr.Vocabulary(), expected) {
		t.Errorf("Vocabulary() = %v, expected %v", tr.Vocabulary(), expected)
	}

	seen := make(map[string]bool)
	for _, s := range tr.Vocabulary() {
		if seen[s] {
			t.Fatalf("duplicate vocabulary entry %q in %v", s, tr.Vocabulary())
		}
		seen[s] = true
	}
	for _, m := range tr.Merges() {
		if tr.Vocabulary()[m.ID] != m.Symbol {
			t.Errorf("merge %d: id %d maps to %q, expected %q", m.Step, m.ID, tr.Vocabulary()[m.ID], m.Symbol)
		}
	}
}

func TestTrainTwiceIsNoop(t *testing.T) {
	tr := trainText(t, "abababab", 100)
	merges := len(tr.Merges())

	if err := tr.Train(true); err != nil {
		t.Fatalf("second Train failed: %v", err)
	}
	if len(tr.Merges()) != merges {
		t.Errorf("second Train changed merges from %d to %d", merges, len(tr.Merges()))
	}
}

func TestReloadStartsFreshRun(t *testing.T) {
	tr := trainText(t, "abababab", 100)

	if err := tr.LoadText("xyz", 0); err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}
	if tr.State() != StateLoaded {
		t.Errorf("Expected %s, got %s", StateLoaded, tr.State())
	}
	if tr.VocabSize() != 0 || len(tr.Merges()) != 0 {
		t.Errorf("Reload kept previous state: vocab %d, merges %d", tr.VocabSize(), len(tr.Merges()))
	}
	if tr.StopReason() != StopNone {
		t.Errorf("Expected stop reason reset, got %q", tr.StopReason())
	}
}

func TestTrainDeterministic(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog and the quick cat"
	first := trainText(t, text, 60).Vocabulary()

	for i := 0; i < 10; i++ {
		if got := trainText(t, text, 60).Vocabulary(); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, expected %v", i, got, first)
		}
	}
}

func TestStateAndStopReasonStrings(t *testing.T) {
	if StateTrained.String() != "trained" {
		t.Errorf("Unexpected state string %q", StateTrained.String())
	}
	if State(42).String() != "state(42)" {
		t.Errorf("Unexpected state string %q", State(42).String())
	}
	if StopNoRepeats.String() != "no repeated pairs" {
		t.Errorf("Unexpected stop string %q", StopNoRepeats.String())
	}
}
