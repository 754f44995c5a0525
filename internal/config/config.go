package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix namespaces every environment override, e.g. MOCKINTERVIEW_HTTP_ADDR
	EnvPrefix = "MOCKINTERVIEW"

	StorageMongo  = "mongo"
	StorageMemory = "memory"

	AudioGridFS = "gridfs"
	AudioFS     = "fs"

	QuestionsFile  = "file"
	QuestionsMongo = "mongo"
)

type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Audio      AudioConfig      `mapstructure:"audio"`
	Interview  InterviewConfig  `mapstructure:"interview"`
	Questions  QuestionsConfig  `mapstructure:"questions"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Janitor    JanitorConfig    `mapstructure:"janitor"`
	Lock       LockConfig       `mapstructure:"lock"`
	StatsCache StatsCacheConfig `mapstructure:"stats_cache"`
	Auth       AuthConfig       `mapstructure:"auth"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Backend  string `mapstructure:"backend"`
	Database string `mapstructure:"database"`
}

type AudioConfig struct {
	Backend  string        `mapstructure:"backend"`
	Dir      string        `mapstructure:"dir"`
	Workers  int           `mapstructure:"workers"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxBytes int64         `mapstructure:"max_bytes"`
}

type InterviewConfig struct {
	MaxQuestions int    `mapstructure:"max_questions"`
	Seed         uint64 `mapstructure:"seed"` // 0 draws a random seed
}

type QuestionsConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

type ClassifierConfig struct {
	CorpusPath string `mapstructure:"corpus_path"`
}

type JanitorConfig struct {
	Schedule   string        `mapstructure:"schedule"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

type LockConfig struct {
	TTL  time.Duration `mapstructure:"ttl"`
	Wait time.Duration `mapstructure:"wait"`
}

type StatsCacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type AuthConfig struct {
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// Secrets come from the environment only and are never written to config files
type Secrets struct {
	JWTSecret     string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
}

// SetDefaults registers every known key so env overrides reach Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("storage.backend", StorageMemory)
	v.SetDefault("storage.database", "mockinterview")

	v.SetDefault("audio.backend", AudioFS)
	v.SetDefault("audio.dir", "audio_files")
	v.SetDefault("audio.workers", 2)
	v.SetDefault("audio.timeout", 20*time.Second)
	v.SetDefault("audio.max_bytes", int64(25<<20))

	v.SetDefault("interview.max_questions", 10)
	v.SetDefault("interview.seed", uint64(0))

	v.SetDefault("questions.source", QuestionsFile)
	v.SetDefault("questions.path", "")

	v.SetDefault("classifier.corpus_path", "")

	v.SetDefault("janitor.schedule", "@every 30m")
	v.SetDefault("janitor.stale_after", time.Duration(0))

	v.SetDefault("lock.ttl", 2*time.Minute)
	v.SetDefault("lock.wait", 5*time.Second)

	v.SetDefault("stats_cache.ttl", 24*time.Hour)

	v.SetDefault("auth.token_ttl", 24*time.Hour)
}

// BindEnv maps MOCKINTERVIEW_SECTION_KEY variables onto section.key
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case StorageMongo, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be %q or %q, got %q", StorageMongo, StorageMemory, c.Storage.Backend))
	}
	switch c.Audio.Backend {
	case AudioGridFS:
		if c.Storage.Backend != StorageMongo {
			errs = append(errs, errors.New("audio.backend gridfs requires storage.backend mongo"))
		}
	case AudioFS:
		if c.Audio.Dir == "" {
			errs = append(errs, errors.New("audio.dir is required for the fs backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("audio.backend must be %q or %q, got %q", AudioGridFS, AudioFS, c.Audio.Backend))
	}
	switch c.Questions.Source {
	case QuestionsFile:
	case QuestionsMongo:
		if c.Storage.Backend != StorageMongo {
			errs = append(errs, errors.New("questions.source mongo requires storage.backend mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("questions.source must be %q or %q, got %q", QuestionsFile, QuestionsMongo, c.Questions.Source))
	}

	if c.Interview.MaxQuestions < 1 {
		errs = append(errs, errors.New("interview.max_questions must be positive"))
	}
	if c.Audio.Workers < 1 {
		errs = append(errs, errors.New("audio.workers must be positive"))
	}
	if c.Audio.MaxBytes < 1 {
		errs = append(errs, errors.New("audio.max_bytes must be positive"))
	}

	return errors.Join(errs...)
}

// LoadDotEnv loads variables from files into the process environment.
// Missing files are skipped; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// LoadSecrets reads Secrets from the environment
func LoadSecrets() (*Secrets, error) {
	s := &Secrets{}
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("parsing secrets: %w", err)
	}
	return s, nil
}

// Default returns the built-in configuration without reading files or env
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in config: %v", err))
	}
	return cfg
}
