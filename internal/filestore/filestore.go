// Package filestore keeps application attachments on local disk.
package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

var (
	// ErrInvalidName is returned for names that would escape the upload directory.
	ErrInvalidName = errors.New("invalid file name")
	// ErrNotFound is returned when a reference has no stored file.
	ErrNotFound = errors.New("file not found")
)

// Local stores files under a single directory as uuid_originalName.
type Local struct {
	dir string
}

// NewLocal creates the directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "failed to create upload directory %s", dir)
	}
	return &Local{dir: dir}, nil
}

func cleanName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		return "", ErrInvalidName
	}
	return base, nil
}

// Save writes r and returns the stored reference name.
func (l *Local) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base, err := cleanName(name)
	if err != nil {
		return "", err
	}
	ref := uuid.NewString() + "_" + base
	f, err := os.OpenFile(filepath.Join(l.dir, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", errors.Wrap(err, "failed to create file")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", errors.Wrap(err, "failed to write file")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", errors.Wrap(err, "failed to close file")
	}
	return ref, nil
}

// Open returns the stored file for reading.
func (l *Local) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	base, err := cleanName(ref)
	if err != nil || base != ref {
		return nil, ErrInvalidName
	}
	f, err := os.Open(filepath.Join(l.dir, base))
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "open %s", ref)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", ref)
	}
	return f, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (l *Local) Remove(_ context.Context, ref string) error {
	base, err := cleanName(ref)
	if err != nil || base != ref {
		return ErrInvalidName
	}
	if err := os.Remove(filepath.Join(l.dir, base)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove %s", ref)
	}
	return nil
}
