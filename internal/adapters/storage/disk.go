package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/realdonpromillo/jaenus-book-of-shame/internal/domain"
)

type diskStore struct {
	root string
}

// NewDiskStore returns an ImageStore that writes uploads under root,
// creating the directory if needed. Saved files are referenced by their
// bare filename, served by the HTTP layer under the uploads prefix.
func NewDiskStore(root string) (domain.ImageStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &diskStore{root: root}, nil
}

func (s *diskStore) Save(ctx context.Context, up domain.ImageUpload) (string, error) {
	if !strings.HasPrefix(up.ContentType, "image/") {
		return "", &domain.UploadRejectedError{Filename: up.Filename, Reason: "only image files are accepted"}
	}
	if up.Size > domain.MaxImageBytes {
		return "", &domain.UploadRejectedError{Filename: up.Filename, Reason: "file exceeds the 5 MB limit"}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s-%s",
		time.Now().UTC().UnixMilli(),
		uuid.NewString()[:8],
		sanitizeFilename(up.Filename),
	)

	src, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", up.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", fmt.Errorf("create %q: %w", name, err)
	}
	defer dst.Close()

	// Copy at most one byte past the cap so an undeclared oversize body is
	// still caught.
	n, err := io.Copy(dst, io.LimitReader(src, domain.MaxImageBytes+1))
	if err != nil {
		os.Remove(filepath.Join(s.root, name))
		return "", fmt.Errorf("write %q: %w", name, err)
	}
	if n > domain.MaxImageBytes {
		os.Remove(filepath.Join(s.root, name))
		return "", &domain.UploadRejectedError{Filename: up.Filename, Reason: "file exceeds the 5 MB limit"}
	}
	return name, nil
}

func (s *diskStore) Remove(ctx context.Context, relPath string) error {
	// Base strips any path the caller may have carried along; the store only
	// ever hands out bare filenames.
	err := os.Remove(filepath.Join(s.root, filepath.Base(relPath)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", relPath, err)
	}
	return nil
}

// sanitizeFilename keeps letters, digits, dot, dash and underscore;
// everything else becomes a dash.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, base)
}
