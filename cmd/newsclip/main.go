package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/vartanbeno/go-reddit/v2/reddit"
	_ "modernc.org/sqlite"

	"newsclip-pipeline/assembly"
	"newsclip-pipeline/config"
	"newsclip-pipeline/content"
	"newsclip-pipeline/llm"
	"newsclip-pipeline/material"
	"newsclip-pipeline/queue"
	"newsclip-pipeline/script"
	"newsclip-pipeline/store"
	"newsclip-pipeline/subtitle"
	"newsclip-pipeline/task"
	"newsclip-pipeline/terms"
	"newsclip-pipeline/types"
	"newsclip-pipeline/voice"
)

func main() {
	// Load .env (local dev only — deployments use real env vars)
	_ = godotenv.Load()

	var (
		configPath  = flag.String("config", "config.yaml", "path to config file")
		subject     = flag.String("subject", "", "video subject")
		count       = flag.Int("count", 1, "number of videos to produce")
		lang        = flag.String("lang", "en-US", "narration language")
		voiceName   = flag.String("voice", "", "voice selector")
		subtitles   = flag.Bool("subtitles", true, "burn subtitles into the final video")
		workerMode  = flag.Bool("worker", false, "run as a queue worker")
		enqueueMode = flag.Bool("enqueue", false, "enqueue the task instead of running inline")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		log.Printf("config %s not found — using defaults", *configPath)
		cfg = config.Default()
	}

	for _, dir := range []string{cfg.Paths.Tasks, cfg.Paths.Logs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create dir %s: %v", dir, err)
		}
	}

	ctx := context.Background()
	runner, manager, cleanup := buildRunner(ctx, cfg)
	defer cleanup()

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Queue.RedisAddr}

	if *workerMode {
		log.Printf("🎬 newsclip worker starting on %s", cfg.Queue.RedisAddr)
		worker := queue.NewWorker(redisOpt, runner, cfg.Queue.Concurrency)
		if err := worker.Run(); err != nil {
			log.Fatalf("worker stopped: %v", err)
		}
		return
	}

	if *subject == "" {
		log.Fatal("-subject is required")
	}

	params := types.VideoParams{
		Subject:         *subject,
		Language:        *lang,
		VideoCount:      *count,
		ClipDuration:    cfg.Assembly.MaxClipDuration,
		SubtitleEnabled: *subtitles,
		VoiceName:       *voiceName,
	}

	taskID := uuid.NewString()[:8]
	log.Printf("🎬 newsclip pipeline starting — Task ID: %s", taskID)

	if *enqueueMode {
		client := queue.NewClient(redisOpt, manager, "default")
		defer client.Close()
		if err := client.Enqueue(ctx, taskID, params); err != nil {
			log.Fatalf("enqueue failed: %v", err)
		}
		log.Printf("task %s enqueued", taskID)
		return
	}

	if err := manager.Create(ctx, taskID, params); err != nil {
		log.Fatalf("create task: %v", err)
	}
	videos, err := runner.Run(ctx, taskID, params)
	if err != nil {
		log.Fatalf("❌ task failed: %v", err)
	}
	log.Printf("✅ done! videos: %v", videos)
}

// buildRunner wires every pipeline stage from config and environment.
func buildRunner(ctx context.Context, cfg *config.Config) (*task.Runner, *task.Manager, func()) {
	var closers []func()

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Fatal("GEMINI_API_KEY not set")
	}
	gemini, err := llm.NewGeminiClient(ctx, geminiKey, cfg.Script.GeminiModel, cfg.Script.Temperature)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	closers = append(closers, gemini.Close)

	var recorder task.Recorder
	if dbPath := os.Getenv("NEWSCLIP_DB"); dbPath != "" {
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			log.Fatalf("open task db: %v", err)
		}
		closers = append(closers, func() { db.Close() })
		s := store.NewSQLStore(db)
		if err := s.Init(ctx); err != nil {
			log.Fatalf("init task db: %v", err)
		}
		recorder = s
	}

	manager := task.NewManager(recorder)

	redditClient, err := reddit.NewReadonlyClient()
	if err != nil {
		log.Printf("Warning: reddit client unavailable: %v", err)
		redditClient = nil
	}

	selector := content.NewSelector(cfg.Content.Provider,
		content.NewNewsAPIProvider(os.Getenv("NEWSAPI_KEY"), cfg.Content.Timeout()),
		content.NewRedditProvider(redditClient, cfg.Content.Subreddits),
		content.NewDDGProvider(cfg.Content.Timeout()),
	)

	runner := task.NewRunner(cfg, manager)
	runner.Content = selector
	runner.Market = content.NewMarketClient(cfg.Content.Timeout())
	runner.Scripts = script.NewGenerator(gemini, cfg.Script.MaxRetries, cfg.Script.RetryDelay())
	runner.Terms = terms.NewGenerator(gemini, cfg.Script.MaxRetries, cfg.Script.RetryDelay())
	runner.Voice = voice.NewEdgeTTS(cfg.Voice.DefaultVoice)
	runner.Subtitles = subtitle.NewTranscriber(cfg.Subtitles.WhisperModel)
	runner.Materials = material.NewSelector(cfg.Paths.MediaRoot)
	runner.Assembly = assembly.NewPipeline(assembly.NewFFmpegEngine(cfg.Assembly, cfg.Subtitles))
	runner.AudioDuration = voice.Duration
	runner.SubtitleCorrect = subtitle.Correct
	runner.ParseSegments = subtitle.ParseFile

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return runner, manager, cleanup
}
