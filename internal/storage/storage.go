package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	KeyPrefix    = "posts/"
	MaxImageSize = 10 << 20
)

var (
	ErrNotImage      = errors.New("upload a valid image")
	ErrImageTooLarge = errors.New("image is too large")
)

// ImageStore persists uploaded post images by key
type ImageStore interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Upload checks that r holds an image and stores it under posts/<uuid><ext>
func Upload(ctx context.Context, store ImageStore, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}
	mtype, err := DetectImage(data)
	if err != nil {
		return "", err
	}
	key := KeyPrefix + uuid.NewString() + mtype.Extension()
	if err := store.Save(ctx, key, bytes.NewReader(data), mtype.String()); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return key, nil
}

// DetectImage sniffs data and accepts image types only
func DetectImage(data []byte) (*mimetype.MIME, error) {
	if len(data) == 0 {
		return nil, ErrNotImage
	}
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return mtype, nil
		}
	}
	return nil, ErrNotImage
}
