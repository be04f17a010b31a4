// Package avatars provides contact avatar storage, validation, and
// BlurHash placeholder generation.
package avatars

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage manages avatar filesystem operations.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a new Storage instance for contact avatars.
// basePath should be the avatars directory (e.g., ~/Kinship/avatars).
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create avatars directory: %w", err)
	}

	return &Storage{
		basePath: basePath,
	}, nil
}

// Save stores avatar data for a contact.
// Filename format: {contactID}.jpg.
func (s *Storage) Save(contactID string, imgData []byte) error {
	if contactID == "" {
		return fmt.Errorf("contact ID cannot be empty")
	}

	if len(imgData) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(contactID)

	if err := os.WriteFile(path, imgData, 0644); err != nil {
		return fmt.Errorf("failed to write avatar file: %w", err)
	}

	return nil
}

// Get retrieves avatar data for a contact.
func (s *Storage) Get(contactID string) ([]byte, error) {
	if contactID == "" {
		return nil, fmt.Errorf("contact ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(contactID)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("avatar not found for %s: %w", contactID, err)
		}
		return nil, fmt.Errorf("failed to read avatar file: %w", err)
	}

	return data, nil
}

// Exists checks if an avatar exists for a contact.
func (s *Storage) Exists(contactID string) bool {
	if contactID == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(contactID)
	_, err := os.Stat(path)
	return err == nil
}

// Delete removes a contact's avatar.
func (s *Storage) Delete(contactID string) error {
	if contactID == "" {
		return fmt.Errorf("contact ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(contactID)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			// Already deleted, not an error.
			return nil
		}
		return fmt.Errorf("failed to delete avatar file: %w", err)
	}

	return nil
}

// Hash computes SHA256 hash of an avatar.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(contactID string) (string, error) {
	data, err := s.Get(contactID)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for a contact's avatar.
func (s *Storage) Path(contactID string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s.jpg", contactID))
}
