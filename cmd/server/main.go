package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mediacut/videocut/internal/cleanup"
	"github.com/mediacut/videocut/internal/ffmpeg"
	"github.com/mediacut/videocut/internal/handlers"
	"github.com/mediacut/videocut/internal/jobs"
	"github.com/mediacut/videocut/internal/storage"
	"github.com/mediacut/videocut/internal/transcription"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	FFmpeg struct {
		FFmpegPath           string `yaml:"ffmpeg_path"`
		FFprobePath          string `yaml:"ffprobe_path"`
		ProbeTimeoutSeconds  int    `yaml:"probe_timeout_seconds"`
		EncodeTimeoutSeconds int    `yaml:"encode_timeout_seconds"`
	} `yaml:"ffmpeg"`

	Jobs struct {
		MaxConcurrent    int `yaml:"max_concurrent"`
		RetentionMinutes int `yaml:"retention_minutes"`
	} `yaml:"jobs"`

	Whisper struct {
		Model string `yaml:"model"`
	} `yaml:"whisper"`

	Storage struct {
		UploadsDir string `yaml:"uploads_dir"`
		OutputDir  string `yaml:"output_dir"`
		TempDir    string `yaml:"temp_dir"`
		Database   string `yaml:"database"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`
}

func main() {
	// .env can override where the config lives
	_ = godotenv.Load()
	configPath := os.Getenv("VIDEOCUT_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	config, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Directories are provisioned once here; the job hot path assumes they exist.
	if err := cleanup.EnsureDirs(
		config.Storage.UploadsDir,
		config.Storage.OutputDir,
		config.Storage.TempDir,
	); err != nil {
		log.Fatalf("Failed to create storage directories: %v", err)
	}

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	log.Println("Initializing components...")

	// Database
	db, err := storage.NewMetadataDB(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Google Drive export (optional - may fail if credentials not set up)
	var driveClient *storage.DriveClient
	if _, err := os.Stat(config.GoogleDrive.CredentialsFile); err == nil {
		driveClient, err = storage.NewDriveClient(
			config.GoogleDrive.CredentialsFile,
			config.GoogleDrive.TokenFile,
			config.GoogleDrive.FolderName,
		)
		if err != nil {
			log.Printf("WARNING: Google Drive not available: %v", err)
			log.Println("Clips will only be saved locally")
			driveClient = nil
		} else {
			log.Println("Google Drive export enabled")
		}
	} else {
		log.Println("Google Drive credentials not found - saving clips locally only")
	}

	// External tool runner
	runner := ffmpeg.NewRunner(
		config.FFmpeg.FFmpegPath,
		config.FFmpeg.FFprobePath,
		ffmpeg.WithProbeTimeout(time.Duration(config.FFmpeg.ProbeTimeoutSeconds)*time.Second),
		ffmpeg.WithEncodeTimeout(time.Duration(config.FFmpeg.EncodeTimeoutSeconds)*time.Second),
	)

	// Job orchestrator
	registry := jobs.NewRegistry(time.Duration(config.Jobs.RetentionMinutes) * time.Minute)
	orchestratorCfg := jobs.Config{
		MaxConcurrent: config.Jobs.MaxConcurrent,
		OutputDir:     config.Storage.OutputDir,
	}
	if driveClient != nil {
		orchestratorCfg.Exporter = driveClient
	}
	orchestrator := jobs.NewOrchestrator(registry, runner, runner, orchestratorCfg)
	orchestrator.Start()

	// Transcript source
	transcriber := transcription.NewWhisperTranscriber(config.Whisper.Model, config.Storage.TempDir)
	localStorage := storage.NewLocalStorage(config.Storage.OutputDir)

	// Cleanup scheduler
	cleanupScheduler := cleanup.NewScheduler(
		[]string{config.Storage.TempDir},
		time.Duration(config.Cleanup.IntervalMinutes)*time.Minute,
		time.Duration(config.Cleanup.MaxAgeHours)*time.Hour,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: config.Limits.MaxFileSizeMB * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(db, config.Storage.UploadsDir, config.Limits.MaxFileSizeMB)
	fetchHandler := handlers.NewFetchHandler(db, config.Storage.UploadsDir)
	cutHandler := handlers.NewCutHandler(orchestrator)
	statusHandler := handlers.NewStatusHandler(orchestrator)
	progressHandler := handlers.NewProgressHandler(orchestrator)
	transcribeHandler := handlers.NewTranscribeHandler(transcriber, localStorage, db)
	matchHandler := handlers.NewMatchHandler()

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	app.Post("/upload", uploadHandler.Handle)
	app.Post("/fetch", fetchHandler.Handle)
	app.Post("/videos/cut", cutHandler.Handle)
	app.Get("/jobs/:id", statusHandler.Handle)
	app.Get("/ws/jobs/:id", websocket.New(progressHandler.Handle))
	app.Post("/transcribe", transcribeHandler.Handle)
	app.Get("/transcripts/:id", transcribeHandler.GetHandler)
	app.Post("/transcripts/match", matchHandler.Handle)

	// Get server logs
	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	// Processed clips are served directly for download
	app.Static("/processed", config.Storage.OutputDir)
	app.Static("/uploads", config.Storage.UploadsDir)

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST /upload            - Upload a media file")
	log.Println("   POST /fetch             - Fetch a remote source file")
	log.Println("   POST /videos/cut        - Submit a cut job")
	log.Println("   GET  /jobs/:id          - Poll job status")
	log.Println("   GET  /ws/jobs/:id       - Stream job progress")
	log.Println("   POST /transcribe        - Word-level transcription")
	log.Println("   GET  /transcripts/:id   - Stored transcription")
	log.Println("   POST /transcripts/match - Transcript dedup matching")
	log.Println("   GET  /logs              - View server logs")
	log.Println("   GET  /health            - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	// Let in-flight cut jobs run to a terminal state before exiting.
	orchestrator.Stop()
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}

// loadConfig loads configuration from YAML file
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
