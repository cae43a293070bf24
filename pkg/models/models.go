package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default playback dimensions for short-form (portrait) video.
const (
	DefaultHeight = 1920
	DefaultWidth  = 1080
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type User struct {
	ID        string    `gorm:"primary_key;size:24" json:"id"`
	Email     string    `gorm:"unique_index;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Transformation holds playback hints forwarded to the media CDN.
type Transformation struct {
	Height  int  `bson:"height" json:"height"`
	Width   int  `bson:"width" json:"width"`
	Quality *int `bson:"quality,omitempty" json:"quality,omitempty"`
}

func DefaultTransformation() Transformation {
	return Transformation{Height: DefaultHeight, Width: DefaultWidth}
}

type Video struct {
	ID             string         `gorm:"primary_key;size:24" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"not null" json:"description"`
	VideoURL       string         `gorm:"not null" json:"videoUrl"`
	ThumbnailURL   string         `json:"thumbnailUrl,omitempty"`
	Controls       bool           `json:"controls"`
	Transformation Transformation `gorm:"embedded;embedded_prefix:transformation_" json:"transformation"`
	UserID         string         `gorm:"size:24;index;not null" json:"userId"`
	CreatedAt      time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// NewID returns a fresh record identifier: a 24-character hex ObjectID.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id has the shape of a record identifier.
func ValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
