package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xupit3r/subword/internal/corpus"
	"github.com/xupit3r/subword/internal/tokenizer"
)

func TestSaveLoadFile(t *testing.T) {
	c := trainCodec(t, "the cat sat on the mat with the hat", 30)

	for _, name := range []string{"model.json", "model.yaml", "model.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, SaveFile(path, c))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			require.Equal(t, c.Vocabulary(), loaded.Vocabulary())
			require.Equal(t, c.MaxVocabSize(), loaded.MaxVocabSize())
			require.Equal(t, c.InitialSize(), loaded.InitialSize())
			require.Equal(t, c.Policy(), loaded.Policy())
		})
	}
}

func TestSaveLoadKeepsNormalization(t *testing.T) {
	tr := tokenizer.NewTrainer(tokenizer.Options{MaxVocabSize: 20, Normalize: corpus.NormalizeNFKC})
	require.NoError(t, tr.LoadText("\ufb01sh \ufb01sh", 0))
	require.NoError(t, tr.Train(false))
	c, err := tr.Codec()
	require.NoError(t, err)

	for _, name := range []string{"model.json", "model.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveFile(path, c))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Contains(t, string(data), "nfkc")

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			require.Equal(t, corpus.NormalizeNFKC, loaded.Normalization())

			ids, err := loaded.Encode("\ufb01sh")
			require.NoError(t, err)
			text, err := loaded.Decode(ids)
			require.NoError(t, err)
			require.Equal(t, "fish", text)
		})
	}
}

func TestJSONDocumentLayout(t *testing.T) {
	c := trainCodec(t, "abab", 10)

	data, err := Marshal(c, FormatJSON)
	require.NoError(t, err)

	text := string(data)
	for _, key := range []string{`"version": 1`, `"vocab"`, `"vocab_to_id"`, `"id_to_vocab"`, `"max_vocab_size": 10`} {
		require.True(t, strings.Contains(text, key), "missing %s in %s", key, text)
	}
}

func TestYAMLDocumentLayout(t *testing.T) {
	c := trainCodec(t, "abab", 10)

	data, err := Marshal(c, FormatYAML)
	require.NoError(t, err)
	require.Contains(t, string(data), "version: 1")
	require.Contains(t, string(data), "max_vocab_size: 10")
}

func TestUnmarshalRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "{not json"},
		{"wrong version", `{"version": 7, "vocab": ["a"]}`},
		{"duplicate symbols", `{"version": 1, "vocab": ["a", "a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data), FormatJSON)
			require.Error(t, err)
		})
	}

	_, err := Unmarshal([]byte(`{"version": 1, "vocab": ["a", "a"]}`), FormatJSON)
	require.ErrorIs(t, err, tokenizer.ErrInvalidSnapshot)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("vocab.JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)

	f, err = FormatFromPath("vocab.yml")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, f)

	_, err = FormatFromPath("vocab.txt")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	require.ErrorIs(t, SaveFile("vocab.bin", trainCodec(t, "ab", 2)), ErrUnsupportedFormat)
}

func TestManagerResolve(t *testing.T) {
	tmpDir := t.TempDir()
	m, err := NewManager(filepath.Join(tmpDir, "models"), 0, FormatJSON, 2)
	require.NoError(t, err)

	c := trainCodec(t, "abcabcabc", 6)
	_, err = m.Cache.Save("cached", c, "")
	require.NoError(t, err)

	resolved, err := m.Resolve("cached")
	require.NoError(t, err)
	require.Equal(t, c.Vocabulary(), resolved.Vocabulary())

	path := filepath.Join(tmpDir, "standalone.yaml")
	require.NoError(t, SaveFile(path, c))
	resolved, err = m.Resolve(path)
	require.NoError(t, err)
	require.Equal(t, c.Vocabulary(), resolved.Vocabulary())

	_, err = m.Resolve("missing")
	require.ErrorIs(t, err, ErrModelNotFound)

	txt := filepath.Join(tmpDir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0644))
	_, err = m.Resolve(txt)
	require.ErrorIs(t, err, ErrModelNotFound)
}
