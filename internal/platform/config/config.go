package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"assetledger/pkg/domain"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	MetricsAddr   string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	LogFormat     string
	LogLevel      string
	ShutdownGrace time.Duration
	Database      DatabaseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	RateLimit     RateLimitConfig
	Registry      RegistryConfig
}

// DatabaseConfig selects the durable store. An empty URL keeps state in
// memory.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the asset read cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig configures the event stream. No brokers means events are only
// logged.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
}

// RateLimitConfig bounds writes per caller. Windows live in Redis when it is
// configured and in process memory otherwise.
type RateLimitConfig struct {
	Disabled bool
	Writes   int
	Window   time.Duration
}

// RegistryConfig seeds the registry on first start.
type RegistryConfig struct {
	AdminAddress    domain.Identity
	InitialCapacity uint64
	InitialMintFee  uint64
	HistoryCap      int
	TxTimeout       time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean.
func FromEnv() (Server, error) {
	var p parser
	cfg := Server{
		Addr:          p.str("REGISTRY_ADDR", ":8080"),
		MetricsAddr:   p.str("REGISTRY_METRICS_ADDR", ":9090"),
		JWTSigningKey: p.str("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     p.str("JWT_ISSUER", "asset-registry"),
		JWTAudience:   p.str("JWT_AUDIENCE", "asset-registry-api"),
		LogFormat:     p.str("LOG_FORMAT", "text"),
		LogLevel:      p.str("LOG_LEVEL", "info"),
		ShutdownGrace: p.duration("SHUTDOWN_GRACE", 10*time.Second),
		Database: DatabaseConfig{
			URL:          p.str("DATABASE_URL", ""),
			MaxOpenConns: p.integer("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: p.integer("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          p.str("REDIS_URL", ""),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     p.duration("REDIS_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:           p.list("KAFKA_BROKERS"),
			Topic:             p.str("KAFKA_TOPIC", "registry.events"),
			Partitions:        int32(p.integer("KAFKA_TOPIC_PARTITIONS", 3)),
			ReplicationFactor: int16(p.integer("KAFKA_TOPIC_REPLICATION", 1)),
		},
		RateLimit: RateLimitConfig{
			Disabled: p.boolean("RATE_LIMIT_DISABLED", false),
			Writes:   p.integer("RATE_LIMIT_WRITES", 60),
			Window:   p.duration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Registry: RegistryConfig{
			InitialCapacity: p.unsigned("REGISTRY_INITIAL_CAPACITY", 1000),
			InitialMintFee:  p.unsigned("REGISTRY_INITIAL_MINT_FEE", 0),
			HistoryCap:      p.integer("REGISTRY_HISTORY_CAP", 100),
			TxTimeout:       p.duration("REGISTRY_TX_TIMEOUT", 5*time.Second),
		},
	}

	admin := os.Getenv("REGISTRY_ADMIN_ADDRESS")
	if admin == "" {
		p.fail(errors.New("REGISTRY_ADMIN_ADDRESS is required"))
	} else if id, err := domain.ParseIdentity(admin); err != nil || id.IsNull() {
		p.fail(fmt.Errorf("REGISTRY_ADMIN_ADDRESS %q is not a usable address", admin))
	} else {
		cfg.Registry.AdminAddress = id
	}
	if cfg.Registry.InitialCapacity == 0 {
		p.fail(errors.New("REGISTRY_INITIAL_CAPACITY must be greater than zero"))
	}
	if !cfg.RateLimit.Disabled && (cfg.RateLimit.Writes <= 0 || cfg.RateLimit.Window <= 0) {
		p.fail(errors.New("RATE_LIMIT_WRITES and RATE_LIMIT_WINDOW must be positive"))
	}
	if cfg.Registry.HistoryCap <= 0 {
		p.fail(errors.New("REGISTRY_HISTORY_CAP must be greater than zero"))
	}

	if err := errors.Join(p.errs...); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// parser collects every malformed variable so one start reports them all.
type parser struct {
	errs []error
}

func (p *parser) fail(err error) {
	p.errs = append(p.errs, err)
}

func (p *parser) str(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (p *parser) list(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (p *parser) integer(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) boolean(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func (p *parser) unsigned(key string, fallback uint64) uint64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
