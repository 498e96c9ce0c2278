package evidencefs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"certmanager/internal/domain"
	"certmanager/internal/usecase"

	"github.com/spf13/afero"
)

const (
	timestampLayout = "20060102T150405Z"
	maxNameAttempts = 1000
)

// Store writes evidence under <root>/<requirement id>/<timestamp>__<name>.
type Store struct {
	fs   afero.Fs
	root string
}

func New(fs afero.Fs, root string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs, root: root}
}

func NewOS(root string) *Store {
	return New(afero.NewOsFs(), root)
}

func (s *Store) Save(requirementID, filename string, src io.Reader, at time.Time) (usecase.StoredFile, error) {
	dirName, err := safeName(requirementID)
	if err != nil {
		return usecase.StoredFile{}, fmt.Errorf("%w: requirement id %q", domain.ErrValidation, requirementID)
	}
	name, err := safeName(filename)
	if err != nil {
		return usecase.StoredFile{}, fmt.Errorf("%w: filename %q", domain.ErrValidation, filename)
	}
	dir := filepath.Join(s.root, dirName)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return usecase.StoredFile{}, fmt.Errorf("create evidence dir: %w", err)
	}
	path, out, err := s.createUnique(dir, at.UTC().Format(timestampLayout), name)
	if err != nil {
		return usecase.StoredFile{}, err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return usecase.StoredFile{}, fmt.Errorf("write evidence file: %w", err)
	}
	if err := out.Close(); err != nil {
		return usecase.StoredFile{}, fmt.Errorf("close evidence file: %w", err)
	}
	info, err := s.fs.Stat(path)
	if err != nil {
		return usecase.StoredFile{}, fmt.Errorf("stat evidence file: %w", err)
	}
	return usecase.StoredFile{Path: path, Size: info.Size()}, nil
}

// createUnique exclusively creates <stamp>__<name>, or <stamp>__<n>__<name>
// when that is taken, so an existing upload is never overwritten.
func (s *Store) createUnique(dir, stamp, name string) (string, afero.File, error) {
	for n := 0; n < maxNameAttempts; n++ {
		candidate := stamp + "__" + name
		if n > 0 {
			candidate = stamp + "__" + strconv.Itoa(n) + "__" + name
		}
		path := filepath.Join(dir, candidate)
		out, err := s.fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return path, out, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, fmt.Errorf("create evidence file: %w", err)
		}
	}
	return "", nil, fmt.Errorf("create evidence file: no free name for %q in %s", name, dir)
}

func (s *Store) Remove(path string) error {
	return s.fs.Remove(path)
}

// safeName keeps only the final path element so client input cannot
// escape the upload root.
func safeName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	switch base {
	case "", ".", "..", "/":
		return "", errors.New("empty name")
	}
	return base, nil
}
