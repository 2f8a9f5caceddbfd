package main

import (
	"context"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/neuropulse/neuropulse-server/internal/analytics"
	api "github.com/neuropulse/neuropulse-server/internal/api/http"
	"github.com/neuropulse/neuropulse-server/internal/auth"
	"github.com/neuropulse/neuropulse-server/internal/blog"
	"github.com/neuropulse/neuropulse-server/internal/cache"
	"github.com/neuropulse/neuropulse-server/internal/config"
	"github.com/neuropulse/neuropulse-server/internal/db"
	"github.com/neuropulse/neuropulse-server/internal/images"
	"github.com/neuropulse/neuropulse-server/internal/logging"
	"github.com/neuropulse/neuropulse-server/internal/mcq"
	"github.com/neuropulse/neuropulse-server/internal/progress"
	"github.com/neuropulse/neuropulse-server/internal/storage"
	"github.com/neuropulse/neuropulse-server/internal/user"
	"github.com/neuropulse/neuropulse-server/internal/videos"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logging.Init(cfg.Env, cfg.LogLevel)
	log := logging.Log

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// --- DB ---
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := mcq.NewSQLStore(dbh, cfg.DBDriver)

	// --- Redis + cache ---
	ropts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url: %v", err)
	}
	rdb := redis.NewClient(ropts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnf("redis unreachable at startup: %v", err)
	}
	appCache := cache.New(rdb, log, cache.NewStats())
	appCache.StartReporter(context.Background(), 5*time.Minute)

	// --- Staging sheet ---
	staging, err := mcq.NewSheetsStagingStore(ctx, mcq.SheetsConfig{
		SpreadsheetID: cfg.SheetID,
		Tab:           cfg.SheetTab,
		JSON:          cfg.ServiceAccountJSON,
		JSONPath:      cfg.ServiceAccountJSONPath,
	})
	if err != nil {
		log.Fatalf("sheets staging store: %v", err)
	}

	// --- Blob storage ---
	var blobs storage.BlobStore
	switch cfg.BlobDriver {
	case "s3":
		blobs, err = storage.NewS3Store(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
	default:
		blobs, err = storage.NewFSStore(cfg.BlobBasePath)
	}
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	uploader := images.NewUploader(blobs, cfg.CDNBaseURL)

	// --- Domain services ---
	publisher := mcq.NewPublisher(staging, store, appCache)
	reader := mcq.NewReader(store, appCache)
	sessions := auth.NewSessionService(cfg.SessionSecret)
	users := user.NewService(dbh, appCache)
	progressSvc := progress.NewService(dbh, appCache)
	analyticsSvc := analytics.NewService(dbh)
	videosSvc := videos.NewService(rdb, log, cfg.YouTubeAPIKeys, cfg.YouTubeChannelID, cfg.YouTubeMaxResults)
	blogSvc := blog.NewService(cfg.BlogRoot, appCache, log, []blog.Section{
		{Key: "musings", DirName: "musings", Title: "Musings", Subtitle: "Notes from the clinic floor"},
		{Key: "synapse-speaks", DirName: "synapse-speaks", Title: "Synapse Speaks", Subtitle: "Clinical neurology, explained"},
		{Key: "cortex-snapshots", DirName: "cortex-snapshots", Title: "Cortex Snapshots", Subtitle: "Short reads between cases"},
	})

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(auth.AttachUser(sessions))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   append(cfg.PublicCORSOrigins, cfg.AdminCORSOrigins...),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public surface
	r.Get("/api/mcq", api.ListMCQHandler(reader))
	r.Get("/api/mcq/count", api.CountMCQHandler(reader))
	r.Get("/api/mcq/{mcqID}", api.GetMCQHandler(reader))
	r.Get("/api/videos", api.ListVideosHandler(videosSvc))
	r.Get("/api/blog", api.BlogSectionsHandler(blogSvc))
	r.Get("/api/blog/{section}", api.BlogPageHandler(blogSvc, log))
	r.Get("/media/*", api.MediaHandler(blobs))

	// Auth
	r.Post("/api/auth/google", api.GoogleLoginHandler(users, sessions, rdb, log, cfg.GoogleClientID, cfg.AdminEmails, cfg.IsProd()))
	r.Post("/api/auth/logout", api.LogoutHandler())
	r.Post("/api/auth/admin/login", api.AdminLoginHandler(sessions, log, cfg.AdminUser, cfg.AdminPassHash, cfg.IsProd()))
	r.Get("/api/auth/me", api.MeHandler(users))

	// Signed-in surface
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAuth)
		pr.Get("/api/progress", api.GetProgressHandler(progressSvc, log))
		pr.Post("/api/progress", api.SaveProgressHandler(progressSvc, log))
		pr.Get("/api/progress/answers/{mcqID}", api.GetAnswerHandler(progressSvc))
		pr.Get("/api/progress/state", api.GetStateHandler(progressSvc))
		pr.Get("/api/analytics/summary", api.AnalyticsSummaryHandler(analyticsSvc, log))
		pr.Get("/api/analytics/topics", api.AnalyticsTopicsHandler(analyticsSvc, log))
		pr.Get("/api/analytics/timeline", api.AnalyticsTimelineHandler(analyticsSvc, log))
	})

	// Admin surface
	r.Group(func(ar chi.Router) {
		ar.Use(auth.AdminOnly(cfg.AdminBearerToken))
		ar.Post("/api/admin/mcq", api.SubmitMCQHandler(store, staging, uploader, log))
		ar.Post("/api/admin/mcq/publish", api.PublishOneHandler(publisher, log))
		ar.Post("/api/admin/mcq/publish-batch", api.PublishBatchHandler(publisher, log))
		ar.Post("/api/admin/blog/{section}/refresh", api.BlogRefreshHandler(blogSvc))
	})

	// Ops
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db down", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	log.Infof("listening on %s (env %s, db %s)", cfg.HTTPAddr, cfg.Env, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatalf("server: %v", err)
	}
}
