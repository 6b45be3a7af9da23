package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/go-social-nosql/internal/config"
	"github.com/go-social-nosql/internal/infrastructure/awscfg"
	"github.com/go-social-nosql/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-social-nosql/internal/infrastructure/jwt"
	mongoinfra "github.com/go-social-nosql/internal/infrastructure/mongo"
	s3infra "github.com/go-social-nosql/internal/infrastructure/s3"
	transporthttp "github.com/go-social-nosql/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	s3Store := s3infra.NewStore(s3infra.NewClient(awsCfg, cfg), cfg.S3BucketName, cfg.S3PublicBaseURL)

	deps := &transporthttp.Deps{
		Media:       s3Store,
		JWTProvider: jwtProvider,
	}

	var shutdownStore func(context.Context) error
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := mongoinfra.Connect(ctx, cfg)
		if err != nil {
			log.Fatalf("%v", err)
		}
		db := client.Database(cfg.MongoDatabase)
		mongoinfra.EnsureIndexes(ctx, db)
		deps.UserRepo = mongoinfra.NewUserRepo(db, cfg.StorageTimeout)
		deps.PostRepo = mongoinfra.NewPostRepo(db, cfg.StorageTimeout)
		deps.NotificationRepo = mongoinfra.NewNotificationRepo(db, cfg.StorageTimeout)
		shutdownStore = client.Disconnect
	case config.BackendDynamo:
		// Bootstrap DynamoDB tables (creates them if they don't exist).
		dynamoClient := dynamo.NewClient(awsCfg, cfg)
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
		deps.UserRepo = dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users, cfg.StorageTimeout)
		deps.PostRepo = dynamo.NewPostRepo(dynamoClient, cfg.DynamoTables.Posts, cfg.StorageTimeout)
		deps.NotificationRepo = dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications, cfg.StorageTimeout)
	default:
		log.Fatalf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, store=%s)", cfg.AppPort, cfg.AppEnv, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	if shutdownStore != nil {
		if err := shutdownStore(shutdownCtx); err != nil {
			log.Printf("store disconnect: %v", err)
		}
	}
	log.Println("Server stopped")
}
