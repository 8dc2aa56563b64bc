package spotrate

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
	"gopkg.in/yaml.v3"
)

// Source supplies the commodity rows and spreads for a display session.
type Source interface {
	Load(ctx context.Context, adminID string) (*models.SpotRateConfig, error)
}

// FileSource reads a session configuration from a YAML file:
//
//	adminId: local
//	spreads:
//	  goldBidSpread: 0.5
//	commodities:
//	  - {metal: Gold, weight: GM, unit: 1, purity: 9999}
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Load(_ context.Context, adminID string) (*models.SpotRateConfig, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	if cfg.AdminID == "" {
		cfg.AdminID = adminID
	}
	return cfg, nil
}

// Parse decodes a YAML session configuration.
func Parse(data []byte) (*models.SpotRateConfig, error) {
	var cfg models.SpotRateConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Commodities) == 0 {
		return nil, errors.New("no commodities configured")
	}
	return &cfg, nil
}

// Marshal renders cfg in the format Parse reads.
func Marshal(cfg *models.SpotRateConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}
