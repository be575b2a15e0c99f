package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/pulsenet-backend/internal/platform/envutil"
)

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	LevelDBPath string `yaml:"leveldb_path"`

	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresName     string `yaml:"postgres_name"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	StatsTTL time.Duration `yaml:"stats_ttl"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RelayConfig struct {
	RPCURL     string        `yaml:"rpc_url"`
	PrivateKey string        `yaml:"private_key"`
	PulseNet   string        `yaml:"pulsenet_contract"`
	PulseToken string        `yaml:"pulsetoken_contract"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

type OtelSettings struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	Port            string        `yaml:"port"`
	Environment     string        `yaml:"environment"`
	LogMode         string        `yaml:"log_mode"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Neo4j   Neo4jConfig   `yaml:"neo4j"`
	Relay   RelayConfig   `yaml:"relay"`
	Otel    OtelSettings  `yaml:"otel"`

	CORSOrigins     []string `yaml:"cors_origins"`
	MaxRequestBytes int64    `yaml:"max_request_bytes"`
	RateLimitRPS    float64  `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AdminJWTSecret  string   `yaml:"admin_jwt_secret"`
	MetricsEnabled  bool     `yaml:"metrics_enabled"`
}

func defaultConfig() Config {
	return Config{
		Port:            "3001",
		Environment:     "development",
		LogMode:         "development",
		ShutdownTimeout: 10 * time.Second,
		Storage: StorageConfig{
			Driver:          "sqlite",
			SQLitePath:      "pulsenet.db",
			LevelDBPath:     "data/pulsenet-leveldb",
			PostgresHost:    "localhost",
			PostgresPort:    "5432",
			PostgresUser:    "postgres",
			PostgresName:    "pulsenet",
			PostgresSSLMode: "disable",
		},
		Redis: RedisConfig{StatsTTL: 30 * time.Second},
		Neo4j: Neo4jConfig{User: "neo4j", Database: "neo4j"},
		Relay: RelayConfig{Timeout: 30 * time.Second, MaxRetries: 2},
		Otel:  OtelSettings{SampleRatio: 1},
		// 100 requests per 15 minutes per client.
		RateLimitRPS:    100.0 / (15 * 60),
		RateLimitBurst:  100,
		MaxRequestBytes: 1 << 20,
		MetricsEnabled:  true,
	}
}

// LoadConfig layers defaults, the optional CONFIG_FILE yaml document and
// environment variables, in that order.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.Environment = envutil.String("ENVIRONMENT", envutil.String("NODE_ENV", cfg.Environment))
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.ShutdownTimeout = envutil.Duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	s := &cfg.Storage
	s.Driver = strings.ToLower(envutil.String("STORAGE_DRIVER", s.Driver))
	s.SQLitePath = envutil.String("SQLITE_PATH", s.SQLitePath)
	s.LevelDBPath = envutil.String("LEVELDB_PATH", s.LevelDBPath)
	s.PostgresHost = envutil.String("POSTGRES_HOST", s.PostgresHost)
	s.PostgresPort = envutil.String("POSTGRES_PORT", s.PostgresPort)
	s.PostgresUser = envutil.String("POSTGRES_USER", s.PostgresUser)
	s.PostgresPassword = envutil.String("POSTGRES_PASSWORD", s.PostgresPassword)
	s.PostgresName = envutil.String("POSTGRES_NAME", s.PostgresName)
	s.PostgresSSLMode = envutil.String("POSTGRES_SSLMODE", s.PostgresSSLMode)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.StatsTTL = envutil.Duration("STATS_CACHE_TTL", cfg.Redis.StatsTTL)

	cfg.Neo4j.URI = envutil.String("NEO4J_URI", cfg.Neo4j.URI)
	cfg.Neo4j.User = envutil.String("NEO4J_USER", cfg.Neo4j.User)
	cfg.Neo4j.Password = envutil.String("NEO4J_PASSWORD", cfg.Neo4j.Password)
	cfg.Neo4j.Database = envutil.String("NEO4J_DATABASE", cfg.Neo4j.Database)

	cfg.Relay.RPCURL = envutil.String("ETHEREUM_RPC_URL", cfg.Relay.RPCURL)
	cfg.Relay.PrivateKey = envutil.String("PRIVATE_KEY", cfg.Relay.PrivateKey)
	cfg.Relay.PulseNet = envutil.String("PULSENET_CONTRACT", cfg.Relay.PulseNet)
	cfg.Relay.PulseToken = envutil.String("PULSETOKEN_CONTRACT", cfg.Relay.PulseToken)
	cfg.Relay.Timeout = envutil.Duration("RELAY_TIMEOUT", cfg.Relay.Timeout)
	cfg.Relay.MaxRetries = envutil.Int("RELAY_MAX_RETRIES", cfg.Relay.MaxRetries)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLE_RATIO", cfg.Otel.SampleRatio)

	cfg.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.MaxRequestBytes = int64(envutil.Int("MAX_REQUEST_BYTES", int(cfg.MaxRequestBytes)))
	cfg.RateLimitRPS = envutil.Float("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = envutil.Int("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.AdminJWTSecret = envutil.String("ADMIN_JWT_SECRET", cfg.AdminJWTSecret)
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres", "leveldb":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Relay.RPCURL != "" && (c.Relay.PulseNet == "" || c.Relay.PulseToken == "") {
		return fmt.Errorf("ETHEREUM_RPC_URL set without PULSENET_CONTRACT and PULSETOKEN_CONTRACT")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}
