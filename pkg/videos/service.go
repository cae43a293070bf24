package videos

import (
	"context"
	"errors"
	"strings"

	"video-sharing/pkg/apperr"
	"video-sharing/pkg/auth"
	"video-sharing/pkg/models"
)

type Repository interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	ListVideos(ctx context.Context) ([]models.Video, error)
	ListVideosByUser(ctx context.Context, userID string) ([]models.Video, error)
	CreateVideo(ctx context.Context, video *models.Video) error
	UpdateVideo(ctx context.Context, video *models.Video) error
	DeleteVideo(ctx context.Context, id string) error
}

type CreateInput struct {
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	VideoURL       string                 `json:"videoUrl"`
	ThumbnailURL   string                 `json:"thumbnailUrl"`
	Controls       *bool                  `json:"controls"`
	Transformation *models.Transformation `json:"transformation"`
}

// UpdateInput carries the mutable fields; nil means unchanged.
type UpdateInput struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	Controls       *bool                  `json:"controls"`
	Transformation *models.Transformation `json:"transformation"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*models.Video, error) {
	const op = "videos.Get"
	if !models.ValidID(id) {
		return nil, apperr.E(apperr.InvalidArgument, op, "Invalid video ID format")
	}
	return s.find(ctx, op, id)
}

func (s *Service) List(ctx context.Context) ([]models.Video, error) {
	videos, err := s.repo.ListVideos(ctx)
	if err != nil {
		return nil, apperr.Upstream("videos.List", err)
	}
	return videos, nil
}

// ListMine returns the caller's own videos, newest first.
func (s *Service) ListMine(ctx context.Context, session *auth.Session) ([]models.Video, error) {
	const op = "videos.ListMine"
	if session == nil {
		return nil, apperr.E(apperr.Unauthenticated, op, "Unauthorized")
	}
	videos, err := s.repo.ListVideosByUser(ctx, session.UserID)
	if err != nil {
		return nil, apperr.Upstream(op, err)
	}
	return videos, nil
}

func (s *Service) Create(ctx context.Context, session *auth.Session, in CreateInput) (*models.Video, error) {
	const op = "videos.Create"
	if session == nil {
		return nil, apperr.E(apperr.Unauthenticated, op, "Unauthorized")
	}

	video := &models.Video{
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		VideoURL:       strings.TrimSpace(in.VideoURL),
		ThumbnailURL:   strings.TrimSpace(in.ThumbnailURL),
		Controls:       true,
		Transformation: models.DefaultTransformation(),
		UserID:         session.UserID,
	}
	if in.Controls != nil {
		video.Controls = *in.Controls
	}
	if in.Transformation != nil {
		video.Transformation = *in.Transformation
	}

	switch {
	case video.Title == "":
		return nil, apperr.E(apperr.InvalidArgument, op, "Title is required")
	case video.Description == "":
		return nil, apperr.E(apperr.InvalidArgument, op, "Description is required")
	case video.VideoURL == "":
		return nil, apperr.E(apperr.InvalidArgument, op, "Video URL is required")
	}
	if msg := validateTransformation(video.Transformation); msg != "" {
		return nil, apperr.E(apperr.InvalidArgument, op, msg)
	}

	if err := s.repo.CreateVideo(ctx, video); err != nil {
		return nil, apperr.Upstream(op, err)
	}
	return video, nil
}

// Update applies the partial input to a video owned by the caller.
// Existence is checked before authentication, and authentication before
// ownership.
func (s *Service) Update(ctx context.Context, session *auth.Session, id string, in UpdateInput) (*models.Video, error) {
	const op = "videos.Update"
	video, err := s.authorize(ctx, op, session, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		video.Title = strings.TrimSpace(*in.Title)
		if video.Title == "" {
			return nil, apperr.E(apperr.InvalidArgument, op, "Title cannot be empty")
		}
	}
	if in.Description != nil {
		video.Description = strings.TrimSpace(*in.Description)
		if video.Description == "" {
			return nil, apperr.E(apperr.InvalidArgument, op, "Description cannot be empty")
		}
	}
	if in.Controls != nil {
		video.Controls = *in.Controls
	}
	if in.Transformation != nil {
		if msg := validateTransformation(*in.Transformation); msg != "" {
			return nil, apperr.E(apperr.InvalidArgument, op, msg)
		}
		video.Transformation = *in.Transformation
	}

	if err := s.repo.UpdateVideo(ctx, video); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, op, "Video not found")
		}
		return nil, apperr.Upstream(op, err)
	}
	return video, nil
}

func (s *Service) Delete(ctx context.Context, session *auth.Session, id string) error {
	const op = "videos.Delete"
	if _, err := s.authorize(ctx, op, session, id); err != nil {
		return err
	}
	if err := s.repo.DeleteVideo(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return apperr.E(apperr.NotFound, op, "Video not found")
		}
		return apperr.Upstream(op, err)
	}
	return nil
}

// Authorize runs the checks Update and Delete apply before touching a
// video and returns the video the caller may modify.
func (s *Service) Authorize(ctx context.Context, session *auth.Session, id string) (*models.Video, error) {
	return s.authorize(ctx, "videos.Authorize", session, id)
}

func (s *Service) authorize(ctx context.Context, op string, session *auth.Session, id string) (*models.Video, error) {
	if !models.ValidID(id) {
		return nil, apperr.E(apperr.InvalidArgument, op, "Invalid video ID format")
	}
	video, err := s.find(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.E(apperr.Unauthenticated, op, "Unauthorized")
	}
	if video.UserID != session.UserID {
		return nil, apperr.E(apperr.Forbidden, op, "You do not own this video")
	}
	return video, nil
}

func (s *Service) find(ctx context.Context, op, id string) (*models.Video, error) {
	video, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, op, "Video not found")
		}
		return nil, apperr.Upstream(op, err)
	}
	return video, nil
}

func validateTransformation(t models.Transformation) string {
	if t.Height <= 0 || t.Width <= 0 {
		return "Transformation height and width must be positive"
	}
	if t.Quality != nil && (*t.Quality < 1 || *t.Quality > 100) {
		return "Transformation quality must be between 1 and 100"
	}
	return ""
}
