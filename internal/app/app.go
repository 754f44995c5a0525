package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"mockinterview/internal/artifact"
	"mockinterview/internal/cache"
	"mockinterview/internal/classifier"
	"mockinterview/internal/config"
	"mockinterview/internal/model"
	"mockinterview/internal/questionbank"
	"mockinterview/internal/repository"
	"mockinterview/internal/scheduler"
	"mockinterview/internal/service"
	"mockinterview/internal/transport/rest"
	"mockinterview/internal/transport/ws"
)

const connectTimeout = 5 * time.Second

// App holds every wired dependency of a running process
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     repository.Store
	Interview *service.InterviewService
	Auth      *service.AuthService
	Janitor   *service.Janitor
	Hub       *ws.Hub

	closers []func(context.Context) error
}

type settings struct {
	fs      afero.Fs
	audioFs afero.Fs
}

// Option customises New
type Option func(*settings)

// WithFs replaces the OS filesystem used for catalog, corpus and local audio files
func WithFs(fs afero.Fs) Option {
	return func(o *settings) { o.fs = fs }
}

// WithAudioFs keeps local audio on its own filesystem
func WithAudioFs(fs afero.Fs) Option {
	return func(o *settings) { o.audioFs = fs }
}

// New connects the configured backends and builds the services
func New(ctx context.Context, cfg *config.Config, secrets *config.Secrets, logger *zap.Logger, opts ...Option) (a *App, err error) {
	o := &settings{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(o)
	}
	if o.audioFs == nil {
		o.audioFs = o.fs
	}

	a = &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	var mongoClient *mongo.Client
	if cfg.Storage.Backend == config.StorageMongo {
		if mongoClient, err = a.connectMongo(ctx, secrets.MongoURI); err != nil {
			return nil, err
		}
		store := repository.NewMongoStore(mongoClient, cfg.Storage.Database)
		if err = store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		a.Store = store
	} else {
		a.Store = repository.NewMemoryStore()
		logger.Warn("using in-memory storage, sessions are lost on restart")
	}

	var artifacts artifact.Store
	if cfg.Audio.Backend == config.AudioGridFS {
		if artifacts, err = artifact.NewGridFSStore(mongoClient, cfg.Storage.Database); err != nil {
			return nil, err
		}
	} else if artifacts, err = artifact.NewFSStore(o.audioFs, cfg.Audio.Dir); err != nil {
		return nil, err
	}

	locks := cache.NewMemorySessionLock(cfg.Lock.Wait)
	statsCache := cache.NewNoopStatsCache()
	if secrets.RedisAddr != "" {
		rdb, err := a.connectRedis(ctx, secrets.RedisAddr, secrets.RedisPassword)
		if err != nil {
			return nil, err
		}
		locks = cache.NewRedisSessionLock(rdb, cfg.Lock.TTL, cfg.Lock.Wait)
		statsCache = cache.NewStatsCache(rdb, cfg.StatsCache.TTL)
	}

	bank := questionbank.Load(logger, a.questionSources(ctx, cfg, mongoClient, o.fs)...)

	text, err := classifier.DefaultTextClassifier(o.fs, cfg.Classifier.CorpusPath)
	if err != nil {
		logger.Warn("custom classifier corpus rejected, using embedded corpus", zap.Error(err))
		if text, err = classifier.DefaultTextClassifier(o.fs, ""); err != nil {
			return nil, err
		}
	}

	seed := cfg.Interview.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	a.Interview = service.NewInterviewService(
		a.Store,
		artifacts,
		locks,
		scheduler.New(bank, scheduler.NewRand(seed)),
		text,
		classifier.NewAudioClassifier(),
		service.NewExtractionPool(cfg.Audio.Workers, cfg.Audio.Timeout, logger),
		logger,
		cfg.Interview.MaxQuestions,
	)
	a.Interview.SetStatsCache(statsCache)

	a.Hub = ws.NewHub(logger)
	a.Interview.SetBroadcaster(a.Hub)
	a.closers = append(a.closers, func(context.Context) error {
		a.Hub.Stop()
		return nil
	})

	a.Auth = service.NewAuthService(secrets.JWTSecret, cfg.Auth.TokenTTL)
	a.Janitor = service.NewJanitor(a.Interview, cfg.Janitor.Schedule, cfg.Janitor.StaleAfter, logger)

	return a, nil
}

// Router builds the HTTP handler of the API
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		AuthService:      a.Auth,
		InterviewService: a.Interview,
		WSHub:            a.Hub,
		AllowedOrigins:   a.Config.HTTP.AllowedOrigins,
		MaxAudioBytes:    a.Config.Audio.MaxBytes,
		Logger:           a.Logger,
	})
}

// Close releases connections in reverse order of creation
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.closers = append(a.closers, client.Disconnect)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	a.Logger.Info("connected to MongoDB")
	return client, nil
}

func (a *App) connectRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     strings.TrimPrefix(addr, "redis://"),
		Password: password,
	})
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	a.Logger.Info("connected to Redis")
	return rdb, nil
}

// questionSources orders the catalog sources: Mongo when configured, then the file
func (a *App) questionSources(ctx context.Context, cfg *config.Config, client *mongo.Client, fs afero.Fs) []questionbank.Source {
	var sources []questionbank.Source
	if cfg.Questions.Source == config.QuestionsMongo && client != nil {
		repo := repository.NewQuestionRepo(client, cfg.Storage.Database)
		sources = append(sources, func() ([]model.QuestionRecord, error) {
			loadCtx, cancel := context.WithTimeout(ctx, connectTimeout)
			defer cancel()
			return repo.GetAll(loadCtx)
		})
	}
	return append(sources, questionbank.FileSource(fs, cfg.Questions.Path))
}
