package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-review-backend/internal/agents"
	"resume-review-backend/internal/llm"
	"resume-review-backend/internal/llm/gemini"
	"resume-review-backend/internal/llm/openai"
	"resume-review-backend/internal/queue"
	"resume-review-backend/internal/ratelimit"
	"resume-review-backend/internal/resumes"
	"resume-review-backend/internal/reviews"
	"resume-review-backend/internal/shared/config"
	"resume-review-backend/internal/shared/server"
	"resume-review-backend/internal/shared/storage/db"
	"resume-review-backend/internal/shared/storage/object"
	localstore "resume-review-backend/internal/shared/storage/object/local"
	s3store "resume-review-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies for the API server and the queue worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	ResumesRepo resumes.Repo
	ReviewsRepo reviews.Repo
	Audit       llm.AuditStore

	LLM      llm.Client
	Pipeline *agents.Pipeline

	ResumesService *resumes.Service
	ReviewsService *reviews.Service

	ResumesHandler *resumes.Handler
	ReviewsHandler *reviews.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:  app.Config,
		Resumes: app.ResumesHandler,
		Reviews: app.ReviewsHandler,
	})

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
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("RR_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
	case "gemini":
		return gemini.NewClient(ctx, os.Getenv("GEMINI_API_KEY"), cfg.LLMModel)
	default:
		if !isDevLike(cfg.Env) {
			return nil, fmt.Errorf("LLM_PROVIDER is required outside dev environments")
		}
		log.Printf("bootstrap: LLM_PROVIDER empty; reviews will fail until configured")
		return llm.PlaceholderClient{}, nil
	}
}

func buildServices(ctx context.Context, app *App) error {
	if app.DB != nil {
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.ReviewsRepo = &reviews.PGRepo{DB: app.DB}
		app.Audit = llm.NewPGAuditStore(app.DB)
	} else {
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.ReviewsRepo = reviews.NewMemoryRepo()
		app.Audit = llm.NewMemoryAuditStore()
	}

	llmClient, err := buildLLM(ctx, app.Config)
	if err != nil {
		return err
	}
	app.LLM = llmClient
	app.Pipeline = agents.NewPipeline(llmClient, app.Audit)

	app.ResumesService = &resumes.Service{
		Repo:       app.ResumesRepo,
		Store:      app.Store,
		UploadGate: ratelimit.New(ratelimit.UploadLimit, ratelimit.UploadWindow),
	}
	app.ReviewsService = &reviews.Service{
		Repo:     app.ReviewsRepo,
		Resumes:  app.ResumesRepo,
		Pipeline: app.Pipeline,
		Gate:     ratelimit.New(ratelimit.AnalysisLimit, ratelimit.AnalysisWindow),
		Queue:    app.Queue,
	}

	app.ResumesHandler = resumes.NewHandler(app.ResumesService)
	app.ReviewsHandler = reviews.NewHandler(app.ReviewsService)
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
