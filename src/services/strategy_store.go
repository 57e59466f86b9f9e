package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/username/dealdesk/backend/src/models"
)

// StrategyStore persists the formalized negotiation strategy as a JSON
// artifact, the shape the strategy-formalizer collaborator emits.
type StrategyStore struct {
	mu   sync.Mutex
	path string
}

func NewStrategyStore(path string) *StrategyStore {
	return &StrategyStore{path: path}
}

type strategyArtifact struct {
	Strategy models.StrategyDocument `json:"strategy"`
}

// Load reads the stored strategy. A missing artifact is not an error; it
// returns (nil, nil).
func (s *StrategyStore) Load() (*models.StrategyDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading strategy artifact %s: %w", s.path, err)
	}

	var artifact strategyArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("decoding strategy artifact %s: %w", s.path, err)
	}
	return &artifact.Strategy, nil
}

// Save overwrites the artifact with the given strategy.
func (s *StrategyStore) Save(doc *models.StrategyDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating strategy artifact directory: %w", err)
	}

	raw, err := json.MarshalIndent(strategyArtifact{Strategy: *doc}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding strategy artifact: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing strategy artifact %s: %w", s.path, err)
	}
	return nil
}
