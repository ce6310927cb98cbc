package reminders

import (
	"os"
	"rucd/internal/providers"
	"rucd/internal/structures"
	"sync"

	json "github.com/goccy/go-json"
)

type DedupStoreInterface interface {
	Fired(token string) bool
	MarkFired(token string)
}

// FileDedupStore records which cause tokens have already produced a delivery.
// Tokens are never removed: they are cheap, and forgetting one would re-fire
// a reminder the user already saw. Every mark is written through to disk so
// a crash between mark and delivery errs on the silent side.
type FileDedupStore struct {
	mu     sync.Mutex
	fired  map[string]bool
	path   string
	logger providers.Logger
}

func NewDedupStore(conf *structures.Config, logger providers.Logger) DedupStoreInterface {
	s := &FileDedupStore{
		fired:  make(map[string]bool),
		path:   conf.Reminders.DedupFilePath,
		logger: logger,
	}
	s.load()
	return s
}

func (s *FileDedupStore) Fired(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired[token]
}

func (s *FileDedupStore) MarkFired(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fired[token] {
		return
	}
	s.fired[token] = true
	s.save()
}

func (s *FileDedupStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warnf(providers.TypeApp, "Failed to read fired-token file %s: %s", s.path, err)
		}
		return
	}

	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		// A corrupt file costs at most one duplicate delivery per cause.
		s.logger.Warnf(providers.TypeApp, "Fired-token file %s is corrupt, starting empty", s.path)
		return
	}
	for _, t := range tokens {
		s.fired[t] = true
	}
}

// save writes the token set atomically. Called with the mutex held.
func (s *FileDedupStore) save() {
	tokens := make([]string, 0, len(s.fired))
	for t := range s.fired {
		tokens = append(tokens, t)
	}

	data, err := json.Marshal(tokens)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Failed to encode fired tokens: %s", err)
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		s.logger.Errorf(providers.TypeApp, "Failed to write fired-token file: %s", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Errorf(providers.TypeApp, "Failed to replace fired-token file: %s", err)
		os.Remove(tmp)
	}
}
