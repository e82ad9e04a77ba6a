package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"jobbuddy-backend/internal/account"
	"jobbuddy-backend/internal/analyses"
	"jobbuddy-backend/internal/llm"
	"jobbuddy-backend/internal/llm/anthropic"
	"jobbuddy-backend/internal/resumes"
	"jobbuddy-backend/internal/shared/auth"
	"jobbuddy-backend/internal/shared/config"
	"jobbuddy-backend/internal/shared/server"
	"jobbuddy-backend/internal/shared/server/middleware"
	"jobbuddy-backend/internal/shared/storage/db"
	"jobbuddy-backend/internal/shared/storage/object"
	localstore "jobbuddy-backend/internal/shared/storage/object/local"
	s3store "jobbuddy-backend/internal/shared/storage/object/s3"
	"jobbuddy-backend/internal/users"
)

// App holds the wired dependencies of the HTTP service.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Redis  *redis.Client
	Store  object.Store
	LLM    llm.Client
	Signer *auth.Signer

	UsersRepo    users.Repo
	ResumesRepo  resumes.Repo
	AnalysesRepo analyses.Repo

	UsersService    *users.Service
	ResumesService  *resumes.Service
	AnalysesService *analyses.Service
	AccountService  *account.Service
}

// Build connects storage, constructs services and registers routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL, cfg.Env)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	redisClient, err := buildRedis(cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	llmClient, err := BuildLLM(cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  redisClient,
		Store:  store,
		LLM:    llmClient,
		Signer: signer,
	}
	buildServices(app)

	var limiter middleware.Limiter
	if redisClient != nil {
		limiter = middleware.NewRedisLimiter(redisClient)
	}
	var ping func(context.Context) error
	if sqlDB != nil {
		ping = sqlDB.PingContext
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: signer,
		Limiter:  limiter,
		Ping:     ping,
		Handlers: []server.RouteRegistrar{
			users.NewHandler(app.UsersService),
			resumes.NewHandler(app.ResumesService),
			analyses.NewHandler(app.AnalysesService),
			account.NewHandler(app.AccountService),
		},
	})
	return app, nil
}

// Close releases pooled connections.
func (a *App) Close() {
	if a == nil {
		return
	}
	closeDB(a.DB)
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.AnalysesRepo = analyses.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo, app.Signer)
	app.ResumesService = &resumes.Service{
		Repo:  app.ResumesRepo,
		Store: app.Store,
		Refs:  app.AnalysesRepo,
	}
	app.AnalysesService = &analyses.Service{
		Repo:         app.AnalysesRepo,
		Resumes:      app.ResumesRepo,
		Instructions: app.UsersService,
		LLM:          app.LLM,
		Model:        app.Config.AnthropicModel,
		MaxTokens:    app.Config.LLMMaxTokens,
		Timeout:      app.Config.LLMTimeout,
		MaxJobChars:  app.Config.MaxJobTextChars,
	}
	app.AccountService = account.NewService(app.UsersRepo, app.ResumesRepo, app.AnalysesRepo, app.Store)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			closeDB(sqlDB)
			if cfg.IsDevLike() {
				log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
				return nil, nil
			}
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRedis(cfg config.Config) (*redis.Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// BuildLLM returns the Anthropic client, or a placeholder when no key is set.
func BuildLLM(cfg config.Config) (llm.Client, error) {
	if strings.TrimSpace(cfg.AnthropicAPIKey) == "" {
		if !cfg.IsDevLike() {
			return nil, errors.New("ANTHROPIC_API_KEY is required")
		}
		log.Printf("bootstrap: ANTHROPIC_API_KEY empty; analyses will fail with a provider error")
		return llm.PlaceholderClient{}, nil
	}
	client, err := anthropic.NewClient(anthropic.Config{
		APIKey:  cfg.AnthropicAPIKey,
		Model:   cfg.AnthropicModel,
		BaseURL: cfg.AnthropicBaseURL,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}
