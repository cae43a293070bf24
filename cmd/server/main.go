package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-sharing/cmd/config"
	"video-sharing/pkg/auth"
	"video-sharing/pkg/database"
	"video-sharing/pkg/handlers"
	"video-sharing/pkg/media"
	"video-sharing/pkg/minio"
	"video-sharing/pkg/mongodb"
	"video-sharing/pkg/s3"
	"video-sharing/pkg/users"
	"video-sharing/pkg/videos"
)

// store is satisfied by both the gorm and the mongo stores.
type store interface {
	videos.Repository
	users.Repository
}

func main() {
	cfg, err := config.Load(".", "cmd/config/")
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeStore()

	backend, err := openMedia(ctx, cfg.Media)
	if err != nil {
		log.Fatalf("Failed to set up media storage: %v", err)
	}

	h := handlers.New(handlers.Options{
		Videos:       videos.NewService(st),
		Users:        users.NewService(st),
		Media:        media.NewService(backend, cfg.Media.PresignTTL),
		Tokens:       auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		SecureCookie: cfg.Server.SecureCookie,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s (database=%s, media=%s)", cfg.Server.Addr, cfg.Database.Driver, cfg.Media.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store, func(), error) {
	if cfg.Driver == "mongo" {
		s, err := mongodb.Connect(ctx, cfg.DSN, cfg.Name)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close(context.Background()) }, nil
	}
	db, err := database.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return database.NewStore(db), func() { db.Close() }, nil
}

func openMedia(ctx context.Context, cfg config.MediaConfig) (media.Backend, error) {
	if cfg.Driver == "minio" {
		return minio.New(ctx, minio.Config{
			Endpoint:      cfg.Endpoint,
			AccessKey:     cfg.AccessKey,
			SecretKey:     cfg.SecretKey,
			Bucket:        cfg.Bucket,
			UseSSL:        cfg.UseSSL,
			PublicBaseURL: cfg.PublicBaseURL,
		})
	}
	return s3.New(s3.Config{
		Region:        cfg.Region,
		Bucket:        cfg.Bucket,
		Endpoint:      cfg.Endpoint,
		AccessKey:     cfg.AccessKey,
		SecretKey:     cfg.SecretKey,
		PublicBaseURL: cfg.PublicBaseURL,
	})
}
