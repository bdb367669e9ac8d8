package commands

import (
	"fmt"

	"github.com/xupit3r/subword/internal/config"
	"github.com/xupit3r/subword/internal/history"
	"github.com/xupit3r/subword/internal/model"
	"github.com/xupit3r/subword/internal/tokenizer"
)

// newManager opens the model cache described by the loaded config
func newManager() (*model.Manager, error) {
	return newManagerFrom(cfg)
}

func newManagerFrom(c *config.Config) (*model.Manager, error) {
	format, err := model.ParseFormat(c.Store.Format)
	if err != nil {
		return nil, err
	}

	manager, err := model.NewManager(c.Store.Dir, c.Store.MaxModels, format, c.Store.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model manager: %w", err)
	}
	return manager, nil
}

// resolveModel loads a codec by cache ID or model file path. The policy
// stored in the model applies unless policyFlag is given or the config
// sets codec.unknown_policy explicitly.
func resolveModel(ref, policyFlag string) (*tokenizer.Codec, error) {
	if ref == "" {
		return nil, fmt.Errorf("a model is required, use --model <id|path>")
	}

	manager, err := newManager()
	if err != nil {
		return nil, err
	}

	c, err := manager.Resolve(ref)
	if err != nil {
		return nil, err
	}

	var name string
	switch {
	case policyFlag != "":
		name = policyFlag
	case cfg.Codec.PolicySet:
		name = cfg.Codec.UnknownPolicy
	default:
		return c, nil
	}

	policy, err := tokenizer.ParseUnknownPolicy(name)
	if err != nil {
		return nil, err
	}
	return c.WithPolicy(policy), nil
}

// openHistory opens the run history, or returns nil when it is disabled
func openHistory() (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	return history.Open(cfg.History.Path)
}

// FormatBytes formats bytes as human-readable string
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// compressionRatio is the number of characters per final symbol
func compressionRatio(chars, symbols int) float64 {
	if symbols == 0 {
		return 0
	}
	return float64(chars) / float64(symbols)
}
