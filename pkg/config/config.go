package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Catalogue CatalogueConfig
	Redis     RedisConfig
	Cache     CacheConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Worker    WorkerConfig
	Solver    SolverConfig
}

// CatalogueConfig points the engine at the institution data service it
// reads entities from and writes generated sessions back to.
type CatalogueConfig struct {
	BaseURL          string
	Timeout          time.Duration
	SessionBatchSize int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig tunes read-side caching of persisted generations.
type CacheConfig struct {
	GenerationTTL time.Duration
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// WorkerConfig bounds the background scheduling pool.
type WorkerConfig struct {
	MaxWorkers    int
	QueueCapacity int
}

// SolverConfig carries per-algorithm defaults applied when a request
// omits the matching parameter.
type SolverConfig struct {
	CSP     CSPConfig
	Genetic GeneticConfig
}

type CSPConfig struct {
	TimeLimit time.Duration
}

type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	ElitismRate    float64
	TournamentSize int
	TimeLimit      time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Catalogue = CatalogueConfig{
		BaseURL:          strings.TrimRight(v.GetString("CATALOGUE_BASE_URL"), "/"),
		Timeout:          parseDuration(v.GetString("CATALOGUE_TIMEOUT"), 30*time.Second),
		SessionBatchSize: v.GetInt("CATALOGUE_SESSION_BATCH_SIZE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		GenerationTTL: parseDuration(v.GetString("GENERATION_CACHE_TTL"), 5*time.Minute),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Worker = WorkerConfig{
		MaxWorkers:    v.GetInt("MAX_WORKERS"),
		QueueCapacity: v.GetInt("QUEUE_CAPACITY"),
	}

	cfg.Solver = SolverConfig{
		CSP: CSPConfig{
			TimeLimit: parseDuration(v.GetString("CSP_TIME_LIMIT"), 60*time.Second),
		},
		Genetic: GeneticConfig{
			PopulationSize: v.GetInt("GA_POPULATION_SIZE"),
			Generations:    v.GetInt("GA_GENERATIONS"),
			MutationRate:   v.GetFloat64("GA_MUTATION_RATE"),
			ElitismRate:    v.GetFloat64("GA_ELITISM_RATE"),
			TournamentSize: v.GetInt("GA_TOURNAMENT_SIZE"),
			TimeLimit:      parseDuration(v.GetString("GA_TIME_LIMIT"), 60*time.Second),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("CATALOGUE_BASE_URL", "http://localhost:8004/api/v1")
	v.SetDefault("CATALOGUE_TIMEOUT", "30s")
	v.SetDefault("CATALOGUE_SESSION_BATCH_SIZE", 50)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("GENERATION_CACHE_TTL", "5m")

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAX_WORKERS", 2)
	v.SetDefault("QUEUE_CAPACITY", 100)

	v.SetDefault("CSP_TIME_LIMIT", "60s")

	v.SetDefault("GA_POPULATION_SIZE", 50)
	v.SetDefault("GA_GENERATIONS", 100)
	v.SetDefault("GA_MUTATION_RATE", 0.1)
	v.SetDefault("GA_ELITISM_RATE", 0.1)
	v.SetDefault("GA_TOURNAMENT_SIZE", 5)
	v.SetDefault("GA_TIME_LIMIT", "60s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
