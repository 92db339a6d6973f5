package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes objects under a directory served as static files.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory to expose under the public base URL.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// PublicPath is the route prefix the objects are served under.
func (s *LocalStorage) PublicPath() string {
	u, err := url.Parse(s.baseURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/uploads"
	}
	return u.Path
}

func (s *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	out, err := os.Create(target)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, contextReader{ctx: ctx, r: body}); err != nil {
		out.Close()
		_ = os.Remove(target)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return "", err
	}

	return s.baseURL + "/" + key, nil
}

// Delete removes the object. A missing object is not an error.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStorage) resolve(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	target := filepath.Clean(filepath.Join(s.dir, key))
	if !strings.HasPrefix(target, s.dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: refusing path outside upload dir: %s", ErrInvalidKey, key)
	}
	return target, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
