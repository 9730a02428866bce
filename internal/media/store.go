// Package media stores recipe pictures sent as base64 payloads.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/config"
)

const recipesDir = "recipes"

// Store turns an encoded image payload into a retrievable URL.
type Store interface {
	Save(ctx context.Context, payload string) (string, error)
	Delete(ctx context.Context, url string) error
}

// LocalStore writes JPEG files under Dir and serves them below URLPath.
type LocalStore struct {
	Dir      string
	BaseURL  string
	URLPath  string
	MaxWidth int
}

func NewLocalStore(cfg config.MediaConfig, baseURL string) *LocalStore {
	return &LocalStore{
		Dir:      cfg.Dir,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		URLPath:  "/" + strings.Trim(cfg.URLPath, "/"),
		MaxWidth: cfg.MaxWidth,
	}
}

// Save accepts "data:image/<type>;base64,<data>" or bare base64.
func (s *LocalStore) Save(ctx context.Context, payload string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := DecodePayload(payload)
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", apperr.Validation("image", "unsupported or corrupt image")
	}
	if s.MaxWidth > 0 && img.Bounds().Dx() > s.MaxWidth {
		img = imaging.Resize(img, s.MaxWidth, 0, imaging.Lanczos)
	}

	dir := filepath.Join(s.Dir, recipesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}
	name := uuid.NewString() + ".jpg"
	if err := imaging.Save(img, filepath.Join(dir, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return s.BaseURL + s.URLPath + "/" + recipesDir + "/" + name, nil
}

// Delete removes a file previously returned by Save. URLs that do not
// belong to this store are ignored.
func (s *LocalStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prefix := s.BaseURL + s.URLPath + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	rel := filepath.FromSlash(strings.TrimPrefix(url, prefix))
	if strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, rel))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// DecodePayload strips an optional data URI header and decodes the base64
// body.
func DecodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, apperr.Validation("image", "this field is required")
	}
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") || !strings.HasPrefix(header, "data:image/") {
			return nil, apperr.Validation("image", "expected a base64 data URI")
		}
		payload = body
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperr.Validation("image", "invalid base64 data")
	}
	return raw, nil
}
