package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xupit3r/subword/internal/tokenizer"
)

// DocumentVersion is written into every model file
const DocumentVersion = 1

var (
	// ErrUnsupportedFormat is returned for unknown model file formats
	ErrUnsupportedFormat = errors.New("unsupported model format")
	// ErrModelNotFound is returned when a model is not in the cache
	ErrModelNotFound = errors.New("model not found")
	// ErrChecksumMismatch is returned when a cached file no longer matches its manifest entry
	ErrChecksumMismatch = errors.New("model checksum mismatch")
)

// Format is a model file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a config value into a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Extension returns the file extension used for the format
func (f Format) Extension() string {
	return "." + string(f)
}

// Document is the on-disk layout of a trained model
type Document struct {
	Version            int `json:"version" yaml:"version"`
	tokenizer.Snapshot `yaml:",inline"`
}

// Marshal encodes a codec in the given format
func Marshal(c *tokenizer.Codec, f Format) ([]byte, error) {
	doc := Document{Version: DocumentVersion, Snapshot: *c.Snapshot()}

	switch f {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Unmarshal decodes and validates a model document
func Unmarshal(data []byte, f Format) (*tokenizer.Codec, error) {
	var doc Document

	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}

	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("unsupported model version %d", doc.Version)
	}

	return tokenizer.FromSnapshot(&doc.Snapshot)
}

// SaveFile writes a codec to path, choosing the format from the extension
func SaveFile(path string, c *tokenizer.Codec) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := Marshal(c, f)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}

	return nil
}

// LoadFile reads a codec from path, choosing the format from the extension
func LoadFile(path string) (*tokenizer.Codec, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	return Unmarshal(data, f)
}
