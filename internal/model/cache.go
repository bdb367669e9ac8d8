package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/xupit3r/subword/internal/logging"
	"github.com/xupit3r/subword/internal/tokenizer"
)

// CachedModel represents a trained model stored in the cache
type CachedModel struct {
	ID           string    `json:"id"`
	Path         string    `json:"path"`
	Format       Format    `json:"format"`
	Source       string    `json:"source"`
	VocabSize    int       `json:"vocab_size"`
	MaxVocabSize int       `json:"max_vocab_size"`
	SizeBytes    int64     `json:"size_bytes"`
	Checksum     string    `json:"checksum"`
	CreatedAt    time.Time `json:"created_at"`
	LastUsed     time.Time `json:"last_used"`
	UseCount     int       `json:"use_count"`
}

// CacheManifest tracks cached models
type CacheManifest struct {
	Version string        `json:"version"`
	Models  []CachedModel `json:"models"`
}

// CacheManager manages the model cache. Decoded codecs are kept in an LRU
// so repeated encode/decode calls do not re-read model files.
type CacheManager struct {
	CacheDir  string
	MaxModels int
	Format    Format

	mu           sync.Mutex
	manifest     *CacheManifest
	manifestPath string
	loaded       *lru.Cache
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string, maxModels int, format Format, cacheSize int) (*CacheManager, error) {
	if len(cacheDir) > 0 && cacheDir[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cacheDir = filepath.Join(home, cacheDir[1:])
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if format == "" {
		format = FormatJSON
	}
	if cacheSize < 1 {
		cacheSize = 1
	}
	loaded, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create codec cache: %w", err)
	}

	cm := &CacheManager{
		CacheDir:     cacheDir,
		MaxModels:    maxModels,
		Format:       format,
		manifestPath: filepath.Join(cacheDir, "manifest.json"),
		loaded:       loaded,
	}

	if err := cm.loadManifest(); err != nil {
		return nil, err
	}

	return cm, nil
}

// loadManifest loads the cache manifest from disk
func (cm *CacheManager) loadManifest() error {
	data, err := os.ReadFile(cm.manifestPath)
	if os.IsNotExist(err) {
		cm.manifest = &CacheManifest{
			Version: "1.0",
			Models:  []CachedModel{},
		}
		return cm.saveManifest()
	}
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest CacheManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	cm.manifest = &manifest
	return nil
}

// saveManifest saves the cache manifest to disk
func (cm *CacheManager) saveManifest() error {
	data, err := json.MarshalIndent(cm.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(cm.manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// ValidateID rejects IDs that cannot be used as file names
func ValidateID(modelID string) error {
	if modelID == "" || modelID == "." || modelID == ".." {
		return fmt.Errorf("invalid model id %q", modelID)
	}
	if strings.ContainsAny(modelID, `/\`) {
		return fmt.Errorf("invalid model id %q: must not contain path separators", modelID)
	}
	return nil
}

// List returns all cached models
func (cm *CacheManager) List() []CachedModel {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	out := make([]CachedModel, len(cm.manifest.Models))
	copy(out, cm.manifest.Models)
	return out
}

// Get returns a cached model by ID
func (cm *CacheManager) Get(modelID string) (*CachedModel, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	entry, err := cm.get(modelID)
	if err != nil {
		return nil, err
	}
	c := *entry
	return &c, nil
}

func (cm *CacheManager) get(modelID string) (*CachedModel, error) {
	for i := range cm.manifest.Models {
		if cm.manifest.Models[i].ID == modelID {
			return &cm.manifest.Models[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
}

// Has checks if a model is cached
func (cm *CacheManager) Has(modelID string) bool {
	_, err := cm.Get(modelID)
	return err == nil
}

// Save writes a trained codec into the cache under modelID, replacing any
// previous model with the same ID
func (cm *CacheManager) Save(modelID string, c *tokenizer.Codec, source string) (*CachedModel, error) {
	if err := ValidateID(modelID); err != nil {
		return nil, err
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	path := cm.GetModelPath(modelID)
	if err := SaveFile(path, c); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat model file: %w", err)
	}

	checksum, err := ComputeSHA256(path)
	if err != nil {
		return nil, fmt.Errorf("failed to checksum model file: %w", err)
	}

	now := time.Now()
	entry := CachedModel{
		ID:           modelID,
		Path:         path,
		Format:       cm.Format,
		Source:       source,
		VocabSize:    c.VocabSize(),
		MaxVocabSize: c.MaxVocabSize(),
		SizeBytes:    info.Size(),
		Checksum:     checksum,
		CreatedAt:    now,
		LastUsed:     now,
	}

	if existing, err := cm.get(modelID); err == nil {
		// A model saved in another format leaves its old file behind
		if existing.Path != path {
			if err := os.Remove(existing.Path); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to delete old model file: %w", err)
			}
		}
		*existing = entry
	} else {
		cm.manifest.Models = append(cm.manifest.Models, entry)
	}

	cm.loaded.Add(modelID, c)

	if err := cm.saveManifest(); err != nil {
		return nil, err
	}

	if err := cm.prune(modelID); err != nil {
		return nil, err
	}

	logging.Debugf("Saved model %s to %s (%d bytes)", modelID, path, info.Size())
	return &entry, nil
}

// Load returns the codec for a cached model, verifying the file checksum
// the first time it is read
func (cm *CacheManager) Load(modelID string) (*tokenizer.Codec, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	entry, err := cm.get(modelID)
	if err != nil {
		return nil, err
	}

	if v, ok := cm.loaded.Get(modelID); ok {
		cm.touch(entry)
		return v.(*tokenizer.Codec), cm.saveManifest()
	}

	if entry.Checksum != "" {
		computed, err := ComputeSHA256(entry.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to checksum model file: %w", err)
		}
		if computed != entry.Checksum {
			return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, modelID)
		}
	}

	c, err := LoadFile(entry.Path)
	if err != nil {
		return nil, err
	}

	cm.loaded.Add(modelID, c)
	cm.touch(entry)
	return c, cm.saveManifest()
}

func (cm *CacheManager) touch(entry *CachedModel) {
	entry.LastUsed = time.Now()
	entry.UseCount++
}

// Remove removes a model from the cache
func (cm *CacheManager) Remove(modelID string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	return cm.remove(modelID)
}

func (cm *CacheManager) remove(modelID string) error {
	cached, err := cm.get(modelID)
	if err != nil {
		return err
	}

	if err := os.Remove(cached.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete model file: %w", err)
	}

	for i := range cm.manifest.Models {
		if cm.manifest.Models[i].ID == modelID {
			cm.manifest.Models = append(cm.manifest.Models[:i], cm.manifest.Models[i+1:]...)
			break
		}
	}
	cm.loaded.Remove(modelID)

	return cm.saveManifest()
}

// UpdateLastUsed updates the last used timestamp for a model
func (cm *CacheManager) UpdateLastUsed(modelID string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	entry, err := cm.get(modelID)
	if err != nil {
		return err
	}
	cm.touch(entry)
	return cm.saveManifest()
}

// GetTotalSize returns the total size of cached model files in bytes
func (cm *CacheManager) GetTotalSize() int64 {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var total int64
	for _, model := range cm.manifest.Models {
		total += model.SizeBytes
	}
	return total
}

// VerifyChecksum verifies the checksum of a cached model
func (cm *CacheManager) VerifyChecksum(modelID string) (bool, error) {
	cached, err := cm.Get(modelID)
	if err != nil {
		return false, err
	}

	if cached.Checksum == "" {
		return true, nil
	}

	computed, err := ComputeSHA256(cached.Path)
	if err != nil {
		return false, err
	}

	return computed == cached.Checksum, nil
}

// Prune removes least recently used models until at most MaxModels remain
func (cm *CacheManager) Prune() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	return cm.prune("")
}

// prune never removes keep, the model that was just saved
func (cm *CacheManager) prune(keep string) error {
	if cm.MaxModels <= 0 {
		return nil
	}

	for len(cm.manifest.Models) > cm.MaxModels {
		oldestIdx := -1
		for i := range cm.manifest.Models {
			if cm.manifest.Models[i].ID == keep {
				continue
			}
			if oldestIdx < 0 || cm.manifest.Models[i].LastUsed.Before(cm.manifest.Models[oldestIdx].LastUsed) {
				oldestIdx = i
			}
		}
		if oldestIdx < 0 {
			return nil
		}

		id := cm.manifest.Models[oldestIdx].ID
		logging.Infof("Pruning least recently used model %s", id)
		if err := cm.remove(id); err != nil {
			return err
		}
	}

	return nil
}

// Clear removes all cached models
func (cm *CacheManager) Clear() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for _, model := range cm.manifest.Models {
		if err := os.Remove(model.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", model.Path, err)
		}
	}

	cm.manifest.Models = []CachedModel{}
	cm.loaded.Purge()
	return cm.saveManifest()
}

// GetModelPath returns the full path for a model file
func (cm *CacheManager) GetModelPath(modelID string) string {
	return filepath.Join(cm.CacheDir, modelID+cm.Format.Extension())
}

// ComputeSHA256 computes the SHA256 checksum of a file
func ComputeSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
