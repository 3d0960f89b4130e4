package source

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/citadel/internal/adapter"
	"github.com/mmcdole/citadel/internal/adapter/source/rickmorty"
	"github.com/mmcdole/citadel/internal/domain"
)

// CharacterSource is the remote catalog a client browses
type CharacterSource interface {
	domain.CharacterSource
}

// NewClient creates the catalog client for the given API configuration.
// The client is owned by the caller; there is no process-wide instance.
func NewClient(cfg *adapter.APIConfig, logger *slog.Logger) (CharacterSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("api config is nil")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is required")
	}

	return rickmorty.NewClient(cfg.BaseURL, rickmorty.Options{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		UserAgent: cfg.UserAgent,
	}, logger), nil
}

// NewClientFromConfig creates a CharacterSource from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (CharacterSource, error) {
	return NewClient(&cfg.API, logger)
}
