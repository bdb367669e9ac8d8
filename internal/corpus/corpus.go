// Package corpus supplies raw training text to the trainer. It reads a
// source, optionally normalizes it and cuts it into single-character
// symbols, truncated to a maximum character count.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/text/unicode/norm"
)

// ErrSourceNotFound is returned when a source cannot supply any text
var ErrSourceNotFound = errors.New("source not found")

// Source provides raw corpus text
type Source interface {
	// Name identifies the source in logs and history records
	Name() string
	// Text returns the complete raw text
	Text() (string, error)
}

// FileSource reads the corpus from a file on disk
type FileSource struct {
	Path string
}

// NewFileSource creates a source backed by the file at path
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string {
	return s.Path
}

func (s *FileSource) Text() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSourceNotFound, s.Path)
		}
		return "", fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return string(data), nil
}

// StringSource serves an in-memory string
type StringSource struct {
	Label   string
	Content string
}

// NewStringSource wraps text as a source
func NewStringSource(text string) *StringSource {
	return &StringSource{Label: "<memory>", Content: text}
}

func (s *StringSource) Name() string {
	return s.Label
}

func (s *StringSource) Text() (string, error) {
	return s.Content, nil
}

// Normalization selects a Unicode normal form applied before splitting
type Normalization string

const (
	NormalizeNone Normalization = "none"
	NormalizeNFC  Normalization = "nfc"
	NormalizeNFKC Normalization = "nfkc"
)

// ParseNormalization converts a config value into a Normalization
func ParseNormalization(s string) (Normalization, error) {
	switch Normalization(s) {
	case "", NormalizeNone:
		return NormalizeNone, nil
	case NormalizeNFC:
		return NormalizeNFC, nil
	case NormalizeNFKC:
		return NormalizeNFKC, nil
	default:
		return "", fmt.Errorf("unknown normalization %q", s)
	}
}

// Apply normalizes text according to n
func (n Normalization) Apply(text string) string {
	switch n {
	case NormalizeNFC:
		return norm.NFC.String(text)
	case NormalizeNFKC:
		return norm.NFKC.String(text)
	default:
		return text
	}
}

// Split cuts text into one symbol per character (Unicode code point),
// keeping at most limit symbols. A limit <= 0 keeps everything.
func Split(text string, limit int) []string {
	capacity := len(text)
	if limit > 0 && limit < capacity {
		capacity = limit
	}

	symbols := make([]string, 0, capacity)
	for _, r := range text {
		if limit > 0 && len(symbols) == limit {
			break
		}
		symbols = append(symbols, string(r))
	}
	return symbols
}

// Options controls how a source is turned into symbols
type Options struct {
	Limit     int
	Normalize Normalization
}

// Load reads src and returns its normalized, truncated symbol sequence
func Load(src Source, opts Options) ([]string, error) {
	if src == nil {
		return nil, ErrSourceNotFound
	}

	text, err := src.Text()
	if err != nil {
		return nil, err
	}

	return Split(opts.Normalize.Apply(text), opts.Limit), nil
}
