package config

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

type Config struct {
	HTTPAddr       string        `long:"http-addr" env:"HTTP_ADDR" default:":8080"`
	PostgresURL    string        `long:"postgres-url" env:"POSTGRES_URL" required:"true"`
	RedisAddr      string        `long:"redis-addr" env:"REDIS_ADDR" required:"true"`
	KafkaAddr      string        `long:"kafka-addr" env:"KAFKA_ADDR" description:"when set, the audit log is written to Kafka instead of Redis"`
	JWTSecret      string        `long:"jwt-secret" env:"JWT_SECRET" required:"true"`
	JWTTTL         time.Duration `long:"jwt-ttl" env:"JWT_TTL" default:"24h"`
	JaegerEndpoint string        `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT"`

	Notify Notify `group:"notifications" namespace:"notify" env-namespace:"NOTIFY"`
	Audit  Audit  `group:"audit" namespace:"audit" env-namespace:"AUDIT"`
}

type Notify struct {
	SendTimeout time.Duration `long:"send-timeout" env:"SEND_TIMEOUT" default:"5s"`
	MaxParallel int           `long:"max-parallel" env:"MAX_PARALLEL" default:"32"`
}

type Audit struct {
	Buffer int `long:"buffer" env:"BUFFER" default:"1024"`
}

// Load reads the configuration from args, falling back to the environment.
func Load(args []string) (Config, error) {
	var cfg Config
	if _, err := flags.ParseArgs(&cfg, args); err != nil {
		return Config{}, fmt.Errorf("could not parse config: %w", err)
	}

	if cfg.Notify.SendTimeout <= 0 {
		return Config{}, fmt.Errorf("notify send timeout must be positive, got %s", cfg.Notify.SendTimeout)
	}
	if cfg.Notify.MaxParallel <= 0 {
		return Config{}, fmt.Errorf("notify max parallel must be positive, got %d", cfg.Notify.MaxParallel)
	}
	if cfg.JWTTTL <= 0 {
		return Config{}, fmt.Errorf("jwt ttl must be positive, got %s", cfg.JWTTTL)
	}
	if cfg.Audit.Buffer <= 0 {
		return Config{}, fmt.Errorf("audit buffer must be positive, got %d", cfg.Audit.Buffer)
	}

	return cfg, nil
}
