package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/repository"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
)

// userRecord keeps the password hash, which model.User hides from JSON.
type userRecord struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// wishRecord only stores guest_id; event_id is derived from the guest.
type wishRecord struct {
	ID        uuid.UUID `json:"id"`
	GuestID   uuid.UUID `json:"guest_id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type document struct {
	Users  []userRecord  `json:"users"`
	Events []model.Event `json:"events"`
	Guests []model.Guest `json:"guests"`
	Wishes []wishRecord  `json:"wishes"`
}

func (d *document) clone() *document {
	return &document{
		Users:  slices.Clone(d.Users),
		Events: slices.Clone(d.Events),
		Guests: slices.Clone(d.Guests),
		Wishes: slices.Clone(d.Wishes),
	}
}

// Store is the local fallback backend: one JSON document held in memory and
// rewritten to disk after every mutation. An empty path keeps it in memory.
// Writes inside one process are serialized; separate processes sharing the
// file overwrite each other (last write wins).
type Store struct {
	mu   sync.RWMutex
	data *document
	file string
	now  func() time.Time
}

func NewStore(filePath string) (*Store, error) {
	s := &Store{
		data: &document{},
		file: filePath,
		now:  func() time.Time { return time.Now().UTC() },
	}

	if filePath == "" {
		return s, nil
	}
	if _, err := os.Stat(filePath); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load storage: %w", err)
		}
	}
	return s, nil
}

// NewMemoryStore is NewStore("") without the error.
func NewMemoryStore() *Store {
	s, _ := NewStore("")
	return s
}

func (s *Store) Events() repository.EventRepository { return &eventStore{s} }
func (s *Store) Guests() repository.GuestRepository { return &guestStore{s} }
func (s *Store) Wishes() repository.WishRepository { return &wishStore{s} }
func (s *Store) Users() repository.UserRepository { return &userStore{s} }

func (s *Store) load() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	s.data = &doc
	return nil
}

func (s *Store) save(doc *document) error {
	if s.file == "" {
		return nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.file)
}

// update runs fn against a copy of the document and only swaps it in once
// the copy has been written, so a failed write leaves memory untouched.
func (s *Store) update(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.data.clone()
	if err := fn(doc); err != nil {
		return err
	}
	if err := s.save(doc); err != nil {
		return apperrors.Backend(err)
	}
	s.data = doc
	return nil
}

func (s *Store) view(fn func(doc *document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func findIndex[T any](items []T, match func(*T) bool) int {
	for i := range items {
		if match(&items[i]) {
			return i
		}
	}
	return -1
}
