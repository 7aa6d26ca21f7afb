package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	serrors "github.com/jrsteele09/go-storefront-client/internal/errors"

	"github.com/jrsteele09/go-storefront-client/internal/crypto"
)

const credentialsFileName = "credentials.dat"

// FileRepo persists the token pair encrypted at rest under the data folder.
// File layout: salt (16 bytes) followed by the base64 AES-GCM payload. The
// key is derived from the passphrase and the per-file salt, so rewriting the
// pair always produces a fresh salt and nonce.
type FileRepo struct {
	mu         sync.Mutex
	path       string
	passphrase string
}

var _ Repo = (*FileRepo)(nil)

// NewFileRepo creates a file-backed credential store rooted at dataFolder.
// The folder is created if missing.
func NewFileRepo(dataFolder, passphrase string) (*FileRepo, error) {
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, fmt.Errorf("FileRepo.New MkdirAll: %w", err)
	}
	return &FileRepo{
		path:       filepath.Join(dataFolder, credentialsFileName),
		passphrase: passphrase,
	}, nil
}

func (r *FileRepo) Save(pair TokenPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plaintext, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("FileRepo.Save Marshal: %w", err)
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return fmt.Errorf("FileRepo.Save: %w", err)
	}
	key, err := crypto.DeriveKey(r.passphrase, salt)
	if err != nil {
		return fmt.Errorf("FileRepo.Save: %w", err)
	}

	sealed, err := crypto.SealAESGCM(key, plaintext)
	if err != nil {
		return fmt.Errorf("FileRepo.Save: %w", err)
	}

	data := append(salt, []byte(sealed)...)
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("FileRepo.Save WriteFile: %w", err)
	}
	return nil
}

func (r *FileRepo) Load() (*TokenPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FileRepo.Load ReadFile: %w", err)
	}
	if len(data) <= crypto.SaltSize {
		return nil, serrors.ErrDecryptionFailed
	}

	salt := data[:crypto.SaltSize]
	key, err := crypto.DeriveKey(r.passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("FileRepo.Load: %w", err)
	}

	plaintext, err := crypto.OpenAESGCM(key, string(data[crypto.SaltSize:]))
	if err != nil {
		return nil, serrors.ErrDecryptionFailed
	}

	var pair TokenPair
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		return nil, fmt.Errorf("FileRepo.Load Unmarshal: %w", err)
	}
	return &pair, nil
}

func (r *FileRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("FileRepo.Clear Remove: %w", err)
	}
	return nil
}
