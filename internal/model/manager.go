package model

import (
	"fmt"
	"os"

	"github.com/xupit3r/subword/internal/tokenizer"
)

// Manager coordinates model storage
type Manager struct {
	Cache *CacheManager
}

// NewManager creates a new model manager
func NewManager(cacheDir string, maxModels int, format Format, cacheSize int) (*Manager, error) {
	cache, err := NewCacheManager(cacheDir, maxModels, format, cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache manager: %w", err)
	}

	return &Manager{Cache: cache}, nil
}

// Resolve loads a model by cache ID, or from a model file when ref names
// an existing file with a known extension
func (m *Manager) Resolve(ref string) (*tokenizer.Codec, error) {
	if m.Cache.Has(ref) {
		return m.Cache.Load(ref)
	}

	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		if _, err := FormatFromPath(ref); err == nil {
			return LoadFile(ref)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrModelNotFound, ref)
}
