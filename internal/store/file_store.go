package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/revdup-client/internal/domain"
	"github.com/spec-kit/revdup-client/pkg/util"
)

// FileStore persists the session as a small JSON record on disk, the
// preference-file analogue. Writes go through a temp file and rename so a
// crash mid-write leaves the previous record intact.
type FileStore struct {
	watchHub

	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

type fileRecord struct {
	Token string `json:"auth_token"`
	Role  string `json:"user_role"`
}

// NewFileStore builds a file-backed session store at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Read(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, util.NewStorageError("read", err)
	}

	var record fileRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Session{}, util.NewStorageError("read", err)
	}
	if record.Token == "" {
		return domain.Session{}, nil
	}
	return domain.Session{Token: record.Token, Role: domain.ParseRole(record.Role)}, nil
}

func (s *FileStore) Write(ctx context.Context, token string, role domain.Role) error {
	if token == "" || role == "" {
		return util.NewValidationError("token and role must both be set", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(fileRecord{Token: token, Role: string(role)})
	if err != nil {
		return util.NewStorageError("write", err)
	}
	if err := s.writeAtomic(data); err != nil {
		return util.NewStorageError("write", err)
	}

	s.logger.Debug("session persisted", zap.String("role", string(role)))
	s.publish(domain.Session{Token: token, Role: role})
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return util.NewStorageError("clear", err)
	}

	s.logger.Debug("session cleared")
	s.publish(domain.Session{})
	return nil
}

// writeAtomic writes data next to the target and renames it into place.
func (s *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".auth_preferences-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
