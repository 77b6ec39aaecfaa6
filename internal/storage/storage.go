// Package storage persists newsletter drafts as JSON and rendered
// newsletters as HTML, on the local filesystem or in S3.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atrapalo/newslettergen/internal/config"
	"github.com/atrapalo/newslettergen/internal/newsletter"
)

// Draft is a saved newsletter in progress. The Document carries the
// parsed cards plus header and footer config; Campaign is the name the
// tracking layer normalizes into utm_campaign.
type Draft struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Campaign  string               `json:"campaign"`
	Document  *newsletter.Document `json:"document"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Store persists drafts and archived newsletters. Drafts stay in an
// in-memory index backed by JSON files; archives are write-once HTML.
type Store struct {
	config config.StorageConfig
	mu     sync.RWMutex

	s3     *S3Store
	drafts map[string]*Draft
}

// New creates a store for the configured backend and loads any existing
// drafts into the index.
func New(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	s := &Store{
		config: cfg,
		drafts: make(map[string]*Draft),
	}

	switch cfg.Type {
	case "s3":
		s3Store, err := NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSRegion, cfg.GetAWSProfile())
		if err != nil {
			return nil, fmt.Errorf("initializing S3 storage: %w", err)
		}
		s.s3 = s3Store

		drafts, err := s3Store.ListDrafts(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading drafts from S3: %w", err)
		}
		for _, d := range drafts {
			s.drafts[d.ID] = d
		}

	case "local":
		if err := os.MkdirAll(filepath.Join(cfg.LocalPath, "drafts"), 0755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
		if err := s.loadFromDisk(); err != nil {
			return nil, fmt.Errorf("loading drafts: %w", err)
		}

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}

	return s, nil
}

// SaveDraft stores a draft, assigning an ID and timestamps on first
// save.
func (s *Store) SaveDraft(ctx context.Context, draft *Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if draft.ID == "" {
		draft.ID = uuid.New().String()
		draft.CreatedAt = now
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	s.drafts[draft.ID] = draft

	if s.s3 != nil {
		return s.s3.SaveDraft(ctx, draft)
	}
	return s.saveToFile(filepath.Join("drafts", draft.ID+".json"), draft)
}

// GetDraft retrieves a draft by ID. Returns nil when no draft exists.
func (s *Store) GetDraft(ctx context.Context, id string) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.drafts[id], nil
}

// ListDrafts returns all drafts, most recently updated first.
func (s *Store) ListDrafts(ctx context.Context) ([]*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// DeleteDraft removes a draft. Deleting a missing draft is not an
// error.
func (s *Store) DeleteDraft(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[id]; !ok {
		return nil
	}
	delete(s.drafts, id)

	if s.s3 != nil {
		return s.s3.DeleteDraft(ctx, id)
	}
	path := filepath.Join(s.config.LocalPath, "drafts", id+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ArchiveHTML stores a rendered newsletter under a date-partitioned key
// and returns that key.
func (s *Store) ArchiveHTML(ctx context.Context, name string, html []byte) (string, error) {
	key := fmt.Sprintf("archive/%s/%s.html", time.Now().UTC().Format("2006/01/02"), sanitizeName(name))

	if s.s3 != nil {
		return key, s.s3.PutHTML(ctx, key, html)
	}

	path := filepath.Join(s.config.LocalPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	return key, os.WriteFile(path, html, 0644)
}

// GetArchivedHTML retrieves a previously archived newsletter by key.
func (s *Store) GetArchivedHTML(ctx context.Context, key string) ([]byte, error) {
	if s.s3 != nil {
		return s.s3.GetHTML(ctx, key)
	}
	return os.ReadFile(filepath.Join(s.config.LocalPath, filepath.FromSlash(key)))
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = "newsletter"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// saveToFile writes data as indented JSON under the local path.
func (s *Store) saveToFile(rel string, data interface{}) error {
	path := filepath.Join(s.config.LocalPath, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// loadFromDisk fills the draft index from the drafts directory.
// Unreadable files are skipped.
func (s *Store) loadFromDisk() error {
	dir := filepath.Join(s.config.LocalPath, "drafts")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var draft Draft
		if err := json.Unmarshal(data, &draft); err != nil || draft.ID == "" {
			continue
		}
		s.drafts[draft.ID] = &draft
	}

	return nil
}
