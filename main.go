package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/Hsnnder/real-estatemvp/internal/api"
	"github.com/Hsnnder/real-estatemvp/internal/api/middleware"
	"github.com/Hsnnder/real-estatemvp/internal/cache"
	"github.com/Hsnnder/real-estatemvp/internal/captcha"
	"github.com/Hsnnder/real-estatemvp/internal/config"
	"github.com/Hsnnder/real-estatemvp/internal/db"
	"github.com/Hsnnder/real-estatemvp/internal/email"
	"github.com/Hsnnder/real-estatemvp/internal/gauth"
	"github.com/Hsnnder/real-estatemvp/internal/geocode"
	"github.com/Hsnnder/real-estatemvp/internal/imaging"
	"github.com/Hsnnder/real-estatemvp/internal/models"
	"github.com/Hsnnder/real-estatemvp/internal/services"
	"github.com/Hsnnder/real-estatemvp/internal/sheet"
	"github.com/Hsnnder/real-estatemvp/internal/storage"
	"github.com/Hsnnder/real-estatemvp/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api' (web server), 'bg' (mail worker), 'all' (default)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// MongoDB is optional: it archives contact messages and overrides mail templates.
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	if err := db.EnsureIndexes(context.Background(), mongoDb); err != nil {
		log.Printf("WARNING: %v", err)
	}

	// Redis is optional: it shares the listing cache and backs the mail queue.
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	emailSender := buildEmailSender(cfg, redisClient)
	emailTemplateService := services.NewEmailTemplateService(mongoDb)
	mailer := services.NewMailer(cfg, emailTemplateService, emailSender)

	var mailQueue services.IMailQueue
	var taskClient *asynq.Client
	if redisClient != nil {
		taskClient = tasks.NewClient(redisClient)
		defer taskClient.Close()
		mailQueue = tasks.NewMailQueue(taskClient)
		log.Println("Contact mails are delivered through the task queue.")
	}
	contactService := services.NewContactService(cfg, mongoDb, mailer, mailQueue)

	var wg sync.WaitGroup
	shutdownChan := make(chan struct{}, 1)
	stopCleanup := make(chan struct{})

	var serviceSrv *http.Server
	if cfg.ServiceAPIPort != "" {
		serviceSrv = &http.Server{
			Addr:    ":" + cfg.ServiceAPIPort,
			Handler: api.SetupServiceRouter(cfg, redisClient, shutdownChan),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("Service API listening on :%s\n", cfg.ServiceAPIPort)
			if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Service API ListenAndServe error: %v", err)
			}
			fmt.Println("Service API server stopped.")
		}()
	}

	var mainSrv *http.Server
	var backgroundTaskSrv *asynq.Server
	var closers []func()

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		fmt.Println("Starting web server...")
		deps, closeDeps, err := buildDependencies(context.Background(), cfg, redisClient)
		if err != nil {
			log.Fatalf("Failed to initialize listing backend: %v", err)
		}
		closers = append(closers, closeDeps)
		deps.Contacts = contactService

		go deps.RateLimiter.Cleanup(stopCleanup)

		router, err := api.SetupRouter(cfg, deps)
		if err != nil {
			log.Fatalf("Failed to set up router: %v", err)
		}
		mainSrv = &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("Web server listening on :%s\n", cfg.Port)
			if err := mainSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Web server ListenAndServe error: %v", err)
			}
			fmt.Println("Web server stopped.")
		}()
	}

	bgMode := func() {
		if redisClient == nil {
			fmt.Println("No Redis configured, contact mails are sent inline; background worker not started.")
			return
		}
		fmt.Println("Starting background worker...")
		processor := tasks.NewTaskProcessor(cfg, mailer, contactService)
		srv, mux := tasks.SetupServer(redisClient, processor)
		backgroundTaskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Background task server starting...")
			if err := backgroundTaskSrv.Run(mux); err != nil {
				log.Fatalf("Background task server error: %v", err)
			}
			fmt.Println("Background task server stopped.")
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)
	case <-shutdownChan:
		fmt.Println("\nShutdown requested via Service API. Shutting down gracefully...")
	}
	close(stopCleanup)

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if serviceSrv != nil {
		fmt.Println("Shutting down Service API server...")
		if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Service API server shutdown error: %v", err)
		}
	}
	if mainSrv != nil {
		fmt.Println("Shutting down web server...")
		if err := mainSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Web server shutdown error: %v", err)
		}
	}
	if backgroundTaskSrv != nil {
		fmt.Println("Shutting down Background Task server...")
		backgroundTaskSrv.Shutdown()
	}

	fmt.Println("Waiting for servers to stop...")
	wg.Wait()
	for _, closeFn := range closers {
		closeFn()
	}

	fmt.Println("Server gracefully stopped")
}

// buildEmailSender picks the primary sender (Redis mock, SMTP or logging) and
// adds the file logger when LOG_EMAILS is set.
func buildEmailSender(cfg *config.Config, redisClient *redis.Client) email.Sender {
	var primary email.Sender
	if cfg.MockServices && redisClient != nil {
		log.Println("MOCK_SERVICES enabled: Using Redis email sender.")
		primary = email.NewRedisSender(redisClient, cfg)
	} else {
		primary = email.NewSMTPSender(cfg)
	}

	composite := email.NewCompositeEmailSender(primary)
	if cfg.EmailLogPath != "" {
		fileSender, err := email.NewFileEmailSender(cfg.EmailLogPath)
		if err != nil {
			log.Printf("WARNING: Failed to initialize file email sender (LOG_EMAILS='%s'): %v. Proceeding without file logging.", cfg.EmailLogPath, err)
		} else {
			composite.AddSender(fileSender)
			log.Printf("LOG_EMAILS set to '%s', enabling file email logger.", cfg.EmailLogPath)
		}
	}
	return composite
}

// buildDependencies wires the listing repository, the photo store and the
// optional helpers of the web server. The returned func releases them.
func buildDependencies(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (api.Dependencies, func(), error) {
	closeFn := func() {}

	var rows sheet.RowStore
	switch cfg.SheetBackend {
	case "sqlite":
		store, err := sheet.OpenSQLiteSheet(ctx, cfg.SQLitePath, models.ListingHeader)
		if err != nil {
			return api.Dependencies{}, closeFn, err
		}
		closeFn = func() {
			if err := store.Close(); err != nil {
				log.Printf("Error closing sqlite sheet: %v", err)
			}
		}
		rows = store
		fmt.Printf("Listings stored in sqlite database %s\n", cfg.SQLitePath)
	default:
		opts, err := gauth.ClientOptions(cfg, sheets.SpreadsheetsScope)
		if err != nil {
			return api.Dependencies{}, closeFn, fmt.Errorf("sheets credentials: %w", err)
		}
		store, err := sheet.NewGoogleSheet(ctx, cfg.SheetID, cfg.SheetRange, opts...)
		if err != nil {
			return api.Dependencies{}, closeFn, err
		}
		rows = store
		fmt.Printf("Listings stored in Google Sheet %s (%s)\n", cfg.SheetID, cfg.SheetRange)
	}

	var snapshots cache.SnapshotStore = cache.NewMemoryStore()
	if redisClient != nil {
		snapshots = cache.NewRedisStore(redisClient)
	}
	deps := api.Dependencies{
		Listings:    services.NewListingService(rows, cache.NewListingCache(snapshots, cfg.ListingsTTL)),
		Geocoder:    geocode.NewGoogleGeocoder(cfg),
		Captcha:     captcha.NewTurnstileVerifier(cfg),
		RateLimiter: middleware.NewRateLimiterMiddleware(cfg),
	}

	switch cfg.FileStore {
	case "s3":
		s3Store, err := storage.NewS3Storage(ctx, cfg)
		if err != nil {
			return api.Dependencies{}, closeFn, err
		}
		deps.Uploader = s3Store
		deps.Reader = s3Store
	default:
		if cfg.DriveOAuthConfigured() {
			driveAuth := storage.NewDriveAuth(cfg, storage.NewTokenStore(cfg.GoogleTokenPath))
			deps.Uploader = storage.NewDriveUploader(driveAuth, cfg.GoogleDriveFolderID)
			deps.DriveAuth = driveAuth
		} else {
			log.Println("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set: photo uploads are disabled.")
		}
		opts, err := gauth.ClientOptions(cfg, drive.DriveReadonlyScope)
		switch {
		case errors.Is(err, gauth.ErrNoCredentials):
			log.Println("No service account credentials: the image proxy is disabled.")
		case err != nil:
			return api.Dependencies{}, closeFn, fmt.Errorf("drive credentials: %w", err)
		default:
			reader, err := storage.NewDriveReader(ctx, opts...)
			if err != nil {
				return api.Dependencies{}, closeFn, err
			}
			deps.Reader = reader
		}
	}

	resizer, err := imaging.New(cfg.ImageResizer, cfg.ImageQuality)
	if err != nil {
		return api.Dependencies{}, closeFn, err
	}
	if resizer != nil {
		deps.Resizer = resizer
	}
	return deps, closeFn, nil
}
