package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/azh05/Recapsule/api"
	"github.com/azh05/Recapsule/api/types"
	"github.com/azh05/Recapsule/internal/database"
	"github.com/azh05/Recapsule/internal/models"
	"github.com/azh05/Recapsule/internal/services/cache"
	"github.com/azh05/Recapsule/internal/services/citations"
	"github.com/azh05/Recapsule/internal/services/cleanup"
	"github.com/azh05/Recapsule/internal/services/episodes"
	"github.com/azh05/Recapsule/internal/services/images"
	"github.com/azh05/Recapsule/internal/services/jobs"
	"github.com/azh05/Recapsule/internal/services/pipeline"
	"github.com/azh05/Recapsule/internal/services/research"
	"github.com/azh05/Recapsule/internal/services/stitcher"
	"github.com/azh05/Recapsule/internal/services/storage"
	"github.com/azh05/Recapsule/internal/services/voice"
	"github.com/azh05/Recapsule/internal/services/workers"
	"github.com/azh05/Recapsule/pkg/config"
	"github.com/azh05/Recapsule/pkg/ffmpeg"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and generation workers",
	Long: `Start the Recapsule API server with the configured settings.

The server accepts episode requests, runs the generation pipeline in
background workers, and serves completed episodes and their RSS feed.

Example:
  recapsule serve
  recapsule serve --port 9090
  recapsule serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.LogQueries)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[WARN] Failed to close database: %v", err)
		}
	}()

	if err := db.AutoMigrate(&models.Episode{}, &models.Job{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	deps, workerPool, cleanupScheduler, err := buildDependencies(cfg, db)
	if err != nil {
		return err
	}

	// Workers and maintenance run for the lifetime of the server
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if err := workerPool.Start(workerCtx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer workerPool.Stop()

	if cleanupScheduler != nil {
		if err := cleanupScheduler.Start(); err != nil {
			log.Printf("[WARN] Failed to start cleanup scheduler: %v", err)
		} else {
			defer cleanupScheduler.Stop()
		}
	}

	server := api.NewServer(fmt.Sprintf("%s:%d", serverHost, serverPort))
	server.SetDatabase(db)
	server.SetDependencies(deps)
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErr <- err
		}
	}()

	log.Printf("[INFO] Server is ready to handle requests at %s:%d", serverHost, serverPort)

	select {
	case <-stop:
		log.Printf("[INFO] Shutting down server...")
	case err := <-serverErr:
		log.Printf("[ERROR] Server error: %v", err)
	}

	cancelWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Printf("[INFO] Server gracefully stopped")
	return nil
}

// buildDependencies wires the generation pipeline and its supporting services
func buildDependencies(cfg *config.Config, db *database.DB) (*types.Dependencies, *workers.WorkerPool, *cleanup.Scheduler, error) {
	researchClient := research.NewClient(research.Config{
		APIKey:        cfg.Gemini.APIKey,
		BaseURL:       cfg.Gemini.BaseURL,
		ResearchModel: cfg.Gemini.ResearchModel,
		ScriptModel:   cfg.Gemini.ScriptModel,
		UtilityModel:  cfg.Gemini.UtilityModel,
		Timeout:       cfg.Gemini.Timeout,
	})

	voiceClient := voice.NewClient(voice.Config{
		APIKey:       cfg.ElevenLabs.APIKey,
		BaseURL:      cfg.ElevenLabs.BaseURL,
		ModelID:      cfg.ElevenLabs.ModelID,
		OutputFormat: cfg.ElevenLabs.OutputFormat,
		VoiceHostA:   cfg.ElevenLabs.VoiceHostA,
		VoiceHostB:   cfg.ElevenLabs.VoiceHostB,
		Timeout:      cfg.ElevenLabs.Timeout,
	})

	imageClient := images.NewClient(images.Config{
		Timeout: cfg.Citations.Timeout,
	})

	citationClient := citations.NewClient(citations.Config{
		BaseURL:    cfg.Citations.BaseURL,
		SourceName: cfg.Citations.SourceName,
		Timeout:    cfg.Citations.Timeout,
	})
	citationResolver := citations.NewResolver(citationClient, cfg.Citations.MinInterval)

	if err := os.MkdirAll(cfg.Storage.TempDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	codec := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, cfg.Processing.FFmpegTimeout, cfg.Storage.TempDir)
	if err := codec.ValidateBinaries(); err != nil {
		return nil, nil, nil, fmt.Errorf("ffmpeg validation failed: %w", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	jobRepo := jobs.NewRepository(db.DB)
	jobService := jobs.NewService(jobRepo)

	episodeRepo := episodes.NewRepository(db.DB)
	episodeService := episodes.NewService(episodeRepo, jobService, researchClient)

	orchestrator := pipeline.NewOrchestrator(
		episodeRepo,
		researchClient,
		imageClient,
		voiceClient,
		stitcher.NewBuilder(codec),
		store,
		citationResolver,
	)

	workerPool := workers.NewWorkerPool(jobService, cfg.Processing.Workers, cfg.Processing.PollInterval)
	workerPool.RegisterProcessor(workers.NewEpisodeProcessor(orchestrator))

	var cleanupScheduler *cleanup.Scheduler
	if cfg.Cleanup.Enabled {
		cleanupScheduler = cleanup.NewScheduler(jobService, cleanup.Config{
			Interval:     cfg.Cleanup.Interval,
			TempDir:      cfg.Storage.TempDir,
			MaxTempAge:   cfg.Storage.MaxTempAge,
			JobRetention: int(cfg.Cleanup.JobRetention.Hours() / 24),
		})
	}

	deps := &types.Dependencies{
		DB:             db,
		EpisodeService: episodeService,
		JobService:     jobService,
		WorkerPool:     workerPool,
		FeedCache:      cache.NewMemoryCache(),
		Config:         cfg,
	}

	return deps, workerPool, cleanupScheduler, nil
}

// buildStore selects the audio storage backend from configuration
func buildStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "s3":
		store, err := storage.NewS3Store(storage.S3Config{
			Endpoint:        cfg.Storage.S3Endpoint,
			Region:          cfg.Storage.S3Region,
			Bucket:          cfg.Storage.S3Bucket,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
			PublicURL:       cfg.Storage.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewLocalStore(cfg.Storage.AudioDir, cfg.Server.PublicURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return store, nil
	}
}
