// Package media validates uploads and hands them to an object store that
// plays the role of the media CDN.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"video-sharing/pkg/apperr"
)

type Category string

const (
	Video Category = "video"
	Image Category = "image"
)

const (
	MaxVideoSize int64 = 100 << 20
	MaxImageSize int64 = 5 << 20
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(s)) {
	case Video:
		return Video, true
	case Image:
		return Image, true
	}
	return "", false
}

// MaxSize returns the upload limit for the category.
func (c Category) MaxSize() int64 {
	if c == Video {
		return MaxVideoSize
	}
	return MaxImageSize
}

func (c Category) folder() string {
	if c == Video {
		return "videos"
	}
	return "images"
}

// Validate rejects obviously invalid uploads early. The backend remains
// the authority on what it accepts.
func Validate(c Category, contentType string, size int64) error {
	const op = "media.Validate"
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	switch c {
	case Video:
		if !strings.HasPrefix(contentType, "video/") {
			return apperr.E(apperr.InvalidArgument, op, "Please upload a valid video file")
		}
		if size > MaxVideoSize {
			return apperr.E(apperr.InvalidArgument, op, "Video size must be less than 100MB")
		}
	case Image:
		if !imageTypes[contentType] {
			return apperr.E(apperr.InvalidArgument, op, "Please upload a valid image file (JPEG, PNG, or WebP)")
		}
		if size > MaxImageSize {
			return apperr.E(apperr.InvalidArgument, op, "File size must be less than 5MB")
		}
	default:
		return apperr.E(apperr.InvalidArgument, op, "File type must be image or video")
	}
	if size <= 0 {
		return apperr.E(apperr.InvalidArgument, op, "File is empty")
	}
	return nil
}

// Backend is an object store reachable by clients.
type Backend interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	URL(key string) string
}

type Result struct {
	FilePath     string `json:"filePath"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type Ticket struct {
	UploadURL string    `json:"uploadUrl"`
	FilePath  string    `json:"filePath"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	backend    Backend
	presignTTL time.Duration
	newKey     func(Category, string) string
}

func NewService(backend Backend, presignTTL time.Duration) *Service {
	return &Service{backend: backend, presignTTL: presignTTL, newKey: uniqueKey}
}

// Upload validates the file and streams it to the backend.
func (s *Service) Upload(ctx context.Context, c Category, fileName, contentType string, size int64, body io.Reader) (*Result, error) {
	const op = "media.Upload"
	if err := Validate(c, contentType, size); err != nil {
		return nil, err
	}
	key := s.newKey(c, fileName)
	if err := s.backend.Put(ctx, key, contentType, body, size); err != nil {
		return nil, apperr.Upstream(op, fmt.Errorf("put %s: %w", key, err))
	}
	res := &Result{FilePath: "/" + key, URL: s.backend.URL(key)}
	if c == Image {
		res.ThumbnailURL = res.URL
	}
	return res, nil
}

// SignUpload issues a presigned URL the client can PUT the file to
// directly, bypassing this server.
func (s *Service) SignUpload(ctx context.Context, c Category, fileName, contentType string, size int64) (*Ticket, error) {
	const op = "media.SignUpload"
	if err := Validate(c, contentType, size); err != nil {
		return nil, err
	}
	key := s.newKey(c, fileName)
	url, err := s.backend.PresignPut(ctx, key, contentType, s.presignTTL)
	if err != nil {
		return nil, apperr.Upstream(op, fmt.Errorf("presign %s: %w", key, err))
	}
	return &Ticket{
		UploadURL: url,
		FilePath:  "/" + key,
		ExpiresAt: time.Now().Add(s.presignTTL).UTC(),
	}, nil
}

func uniqueKey(c Category, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(fileName, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%s/%s%s", c.folder(), uuid.New().String(), ext)
}
