package database

import (
	"context"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	"video-sharing/pkg/models"
)

// Store persists users and videos through gorm. gorm v1 has no context
// support, so contexts are only checked before a query starts.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = models.NewID()
	}
	if err := s.db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var video models.Video
	if err := s.db.Where("id = ?", id).First(&video).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

func (s *Store) ListVideos(ctx context.Context) ([]models.Video, error) {
	return s.listVideos(ctx, s.db)
}

func (s *Store) ListVideosByUser(ctx context.Context, userID string) ([]models.Video, error) {
	return s.listVideos(ctx, s.db.Where("user_id = ?", userID))
}

func (s *Store) listVideos(ctx context.Context, q *gorm.DB) ([]models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	videos := []models.Video{}
	// ObjectIDs grow monotonically within a process, so id breaks timestamp ties
	if err := q.Order("created_at desc").Order("id desc").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (s *Store) CreateVideo(ctx context.Context, video *models.Video) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if video.ID == "" {
		video.ID = models.NewID()
	}
	return s.db.Create(video).Error
}

// UpdateVideo writes the mutable columns of video. Owner, media path and
// creation time are never touched.
func (s *Store) UpdateVideo(ctx context.Context, video *models.Video) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Model(...).Updates skips values equal to the model's, so write the
	// mutable columns explicitly.
	now := time.Now()
	res := s.db.Exec(`UPDATE videos SET title = ?, description = ?, controls = ?,
		transformation_height = ?, transformation_width = ?, transformation_quality = ?,
		updated_at = ? WHERE id = ?`,
		video.Title, video.Description, video.Controls,
		video.Transformation.Height, video.Transformation.Width, video.Transformation.Quality,
		now, video.ID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	video.UpdatedAt = now
	return nil
}

func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := s.db.Where("id = ?", id).Delete(&models.Video{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
