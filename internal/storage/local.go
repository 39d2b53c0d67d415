package storage

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// LocalStore writes images below Dir of an afero filesystem
type LocalStore struct {
	fs       afero.Fs
	mediaURL string
}

// NewLocalStore roots the store at dir on the OS filesystem
func NewLocalStore(dir, mediaURL string) *LocalStore {
	return NewFsStore(afero.NewBasePathFs(afero.NewOsFs(), dir), mediaURL)
}

// NewFsStore uses any afero filesystem, e.g. afero.NewMemMapFs in tests
func NewFsStore(fs afero.Fs, mediaURL string) *LocalStore {
	return &LocalStore{fs: fs, mediaURL: mediaURL}
}

func (s *LocalStore) Save(_ context.Context, key string, body io.Reader, _ string) error {
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return err
	}
	f, err := s.fs.Create(key)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	return s.fs.Remove(key)
}

func (s *LocalStore) URL(key string) string {
	return strings.TrimSuffix(s.mediaURL, "/") + "/" + key
}

// FileSystem exposes stored files for the /media/ route
func (s *LocalStore) FileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir("/")
}
