package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	pkgerrors "github.com/zach-sndr/twitcanva/pkg/errors"
)

const fileExtension = ".workflow.json"

// FileStore persists workflow documents as JSON files under a base
// directory, one file per workflow.
type FileStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewFileStore creates a file-backed store rooted at baseDir, creating
// the directory if needed.
func NewFileStore(baseDir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, pkgerrors.NewStorageError(fmt.Sprintf("failed to create workflow directory %s", baseDir)).WithCause(err)
	}
	return &FileStore{baseDir: baseDir, logger: logger}, nil
}

// Save writes the document atomically: marshal to a temp file in the
// same directory, then rename over the target.
func (s *FileStore) Save(ctx context.Context, name string, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode workflow").WithCause(err)
	}

	target := s.pathFor(name)
	tmp, err := os.CreateTemp(s.baseDir, name+".*.tmp")
	if err != nil {
		return pkgerrors.NewStorageError("failed to create temp file").WithCause(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return pkgerrors.NewStorageError("failed to write workflow file").WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.NewStorageError("failed to close workflow file").WithCause(err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return pkgerrors.NewStorageError("failed to replace workflow file").WithCause(err)
	}

	s.logger.Debug("workflow saved",
		zap.String("name", name),
		zap.String("path", target),
		zap.Int("nodes", len(doc.Nodes)))
	return nil
}

func (s *FileStore) Load(ctx context.Context, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.pathFor(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("workflow %q", name))
		}
		return nil, pkgerrors.NewStorageError("failed to read workflow file").WithCause(err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, pkgerrors.NewStorageError(fmt.Sprintf("workflow %q is corrupt", name)).WithCause(err)
	}
	return &doc, nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, pkgerrors.NewStorageError("failed to list workflow directory").WithCause(err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileExtension))
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	if err := os.Remove(s.pathFor(name)); err != nil {
		if os.IsNotExist(err) {
			return pkgerrors.NewNotFoundError(fmt.Sprintf("workflow %q", name))
		}
		return pkgerrors.NewStorageError("failed to delete workflow file").WithCause(err)
	}
	return nil
}

// Path returns the file path a workflow name maps to. Useful for
// watching a workflow for external edits.
func (s *FileStore) Path(name string) string {
	return s.pathFor(name)
}

func (s *FileStore) pathFor(name string) string {
	return filepath.Join(s.baseDir, name+fileExtension)
}

func validateName(name string) error {
	if name == "" {
		return pkgerrors.NewValidationError("workflow name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return pkgerrors.NewValidationError(fmt.Sprintf("invalid workflow name %q", name))
	}
	return nil
}
