package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-pipeline/internal/ai"
	"resume-pipeline/internal/ai/huggingface"
	"resume-pipeline/internal/ai/openai"
	"resume-pipeline/internal/comparison"
	"resume-pipeline/internal/enhancement"
	"resume-pipeline/internal/extract"
	"resume-pipeline/internal/fileref"
	"resume-pipeline/internal/parsing"
	"resume-pipeline/internal/pipeline"
	"resume-pipeline/internal/queue"
	"resume-pipeline/internal/resumes"
	"resume-pipeline/internal/shared/config"
	"resume-pipeline/internal/shared/server"
	"resume-pipeline/internal/shared/storage/db"
	"resume-pipeline/internal/status"
	"resume-pipeline/internal/transcription"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	Repo           resumes.Repo
	ComparisonRepo comparison.Repo

	FileStore *fileref.Local
	Resolver  *fileref.Router
	Queue     queue.Client

	Orchestrator *pipeline.Orchestrator
	Engine       *comparison.Engine

	ResumeHandler     *resumes.Handler
	ComparisonHandler *comparison.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo resumes.Repo
	var comparisonRepo comparison.Repo
	if sqlDB != nil {
		repo = &resumes.PGRepo{DB: sqlDB}
		comparisonRepo = comparison.NewPGRepo(sqlDB)
	} else {
		repo = resumes.NewMemoryRepo()
		comparisonRepo = comparison.NewMemoryRepo()
	}

	local := fileref.NewLocal(cfg.LocalStoreDir)
	resolver, err := buildResolver(ctx, cfg, local)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	orchestrator, engine, err := buildPipeline(cfg, repo, resolver)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:         cfg,
		DB:             sqlDB,
		Repo:           repo,
		ComparisonRepo: comparisonRepo,
		FileStore:      local,
		Resolver:       resolver,
		Queue:          queueClient,
		Orchestrator:   orchestrator,
		Engine:         engine,
	}

	app.ResumeHandler = resumes.NewHandler(repo, local, queueClient)
	app.ComparisonHandler = comparison.NewHandler(engine, comparisonRepo, repo)
	app.Router = server.NewRouter(cfg, app.ResumeHandler, app.ComparisonHandler)

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildResolver(ctx context.Context, cfg config.Config, local *fileref.Local) (*fileref.Router, error) {
	resolver := &fileref.Router{
		Local: local,
		HTTP:  fileref.NewHTTP(),
	}
	if cfg.ObjectStoreType == "s3" {
		s3, err := fileref.NewS3(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("build s3 resolver: %w", err)
		}
		resolver.S3 = s3
	}
	return resolver, nil
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildPipeline(cfg config.Config, repo resumes.Repo, resolver *fileref.Router) (*pipeline.Orchestrator, *comparison.Engine, error) {
	var transcriber pipeline.Transcriber
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		stt, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIAudioModel)
		if err != nil {
			return nil, nil, fmt.Errorf("build transcriber: %w", err)
		}
		transcriber = transcription.NewAdapter(stt, resolver)
	} else {
		log.Printf("bootstrap: OPENAI_API_KEY empty; voice uploads will fail at %s", status.StateTranscribing)
	}

	var hf *huggingface.Client
	if strings.TrimSpace(cfg.HFAPIToken) != "" {
		client, err := huggingface.NewClient(cfg.HFAPIToken, huggingface.Models{
			QA:         cfg.HFQAModel,
			ZeroShot:   cfg.HFZeroShotModel,
			NER:        cfg.HFNERModel,
			Similarity: cfg.HFSimilarityModel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build huggingface client: %w", err)
		}
		hf = client
	} else {
		log.Printf("bootstrap: HF_API_TOKEN empty; parsing and enhancement will fail")
	}

	var parser pipeline.Parser
	var enhancer pipeline.Enhancer
	var similarity ai.SimilarityScorer
	if hf != nil {
		parserAdapter := parsing.NewAdapter(hf)
		if cfg.ParsingCallDelay > 0 {
			parserAdapter.Delay = cfg.ParsingCallDelay
		}
		parser = parserAdapter
		enhancer = enhancement.NewAdapter(hf, hf)
		similarity = hf
	}

	orchestrator := &pipeline.Orchestrator{
		Repo:        repo,
		Transcriber: transcriber,
		Parser:      parser,
		Enhancer:    enhancer,
		Extractor:   extract.New(resolver),
	}

	return orchestrator, comparison.NewEngine(similarity), nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
