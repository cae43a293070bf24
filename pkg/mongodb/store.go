// Package mongodb stores users and videos in MongoDB collections.
//
// Documents keep _id and userId as ObjectIDs, so the collections stay
// readable by other clients of the same database.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"video-sharing/pkg/models"
)

type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	videos *mongo.Collection
}

// Connect dials uri, verifies the connection and ensures indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewStore(client.Database(database))
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewStore uses the users and videos collections of db as they are.
func NewStore(db *mongo.Database) *Store {
	return &Store{
		client: db.Client(),
		users:  db.Collection("users"),
		videos: db.Collection("videos"),
	}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users.email index: %w", err)
	}
	_, err = s.videos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create videos.userId index: %w", err)
	}
	return nil
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDoc) model() *models.User {
	return &models.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Password:  d.Password,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type videoDoc struct {
	ID             primitive.ObjectID    `bson:"_id"`
	Title          string                `bson:"title"`
	Description    string                `bson:"description"`
	VideoURL       string                `bson:"videoUrl"`
	ThumbnailURL   string                `bson:"thumbnailUrl,omitempty"`
	Controls       bool                  `bson:"controls"`
	Transformation models.Transformation `bson:"transformation"`
	UserID         primitive.ObjectID    `bson:"userId"`
	CreatedAt      time.Time             `bson:"createdAt"`
	UpdatedAt      time.Time             `bson:"updatedAt"`
}

func newVideoDoc(v *models.Video) (videoDoc, error) {
	id, err := primitive.ObjectIDFromHex(v.ID)
	if err != nil {
		return videoDoc{}, fmt.Errorf("video id %q: %w", v.ID, err)
	}
	userID, err := primitive.ObjectIDFromHex(v.UserID)
	if err != nil {
		return videoDoc{}, fmt.Errorf("user id %q: %w", v.UserID, err)
	}
	return videoDoc{
		ID:             id,
		Title:          v.Title,
		Description:    v.Description,
		VideoURL:       v.VideoURL,
		ThumbnailURL:   v.ThumbnailURL,
		Controls:       v.Controls,
		Transformation: v.Transformation,
		UserID:         userID,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}, nil
}

func (d videoDoc) model() models.Video {
	return models.Video{
		ID:             d.ID.Hex(),
		Title:          d.Title,
		Description:    d.Description,
		VideoURL:       d.VideoURL,
		ThumbnailURL:   d.ThumbnailURL,
		Controls:       d.Controls,
		Transformation: d.Transformation,
		UserID:         d.UserID.Hex(),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = models.NewID()
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return fmt.Errorf("user id %q: %w", user.ID, err)
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	doc := userDoc{ID: id, Email: user.Email, Password: user.Password, CreatedAt: now, UpdatedAt: now}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return doc.model(), nil
}

func (s *Store) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var doc videoDoc
	if err := s.videos.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	video := doc.model()
	return &video, nil
}

func (s *Store) ListVideos(ctx context.Context) ([]models.Video, error) {
	return s.findVideos(ctx, bson.M{})
}

func (s *Store) ListVideosByUser(ctx context.Context, userID string) ([]models.Video, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []models.Video{}, nil
	}
	return s.findVideos(ctx, bson.M{"userId": oid})
}

func (s *Store) findVideos(ctx context.Context, filter bson.M) ([]models.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.videos.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []videoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	videos := make([]models.Video, 0, len(docs))
	for _, d := range docs {
		videos = append(videos, d.model())
	}
	return videos, nil
}

func (s *Store) CreateVideo(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		video.ID = models.NewID()
	}
	now := time.Now().UTC()
	video.CreatedAt, video.UpdatedAt = now, now
	doc, err := newVideoDoc(video)
	if err != nil {
		return err
	}
	_, err = s.videos.InsertOne(ctx, doc)
	return err
}

func (s *Store) UpdateVideo(ctx context.Context, video *models.Video) error {
	oid, err := primitive.ObjectIDFromHex(video.ID)
	if err != nil {
		return models.ErrNotFound
	}
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":          video.Title,
		"description":    video.Description,
		"controls":       video.Controls,
		"transformation": video.Transformation,
		"updatedAt":      now,
	}}
	res, err := s.videos.UpdateByID(ctx, oid, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	video.UpdatedAt = now
	return nil
}

func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	res, err := s.videos.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
