package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // server port (8080)
	GoEnv string // dev/prod

	DBDriver    string // postgres / sqlite
	DatabaseURL string // takes precedence over the POSTGRES_* parts
	SQLitePath  string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	FEURL string // allowed CORS origin, empty disables CORS

	KafkaBrokers []string // empty disables sale events
	KafkaTopic   string

	LowStockThreshold int64
}

// Loadは環境変数を読む（.envがあれば先に読み込む）
func Load() (Config, error) {
	_ = godotenv.Load()

	pgPort, err := atoiOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	threshold, err := atoiOr("LOW_STOCK_THRESHOLD", 5)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "salesnotes.db"),

		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "salesnotes"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		FEURL: os.Getenv("FE_URL"),

		KafkaBrokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_SALES_TOPIC", "sales.confirmed"),

		LowStockThreshold: int64(threshold),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AddrはHTTPサーバの待ち受けアドレス
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// PostgresDSNはDATABASE_URLを優先
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "prod" || c.GoEnv == "production"
}

func (c Config) validate() error {
	if _, err := strconv.Atoi(strings.TrimPrefix(c.Port, ":")); err != nil {
		return fmt.Errorf("PORT must be number: %w", err)
	}
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" && (c.PostgresHost == "" || c.PostgresDB == "") {
			return fmt.Errorf("POSTGRES_HOST and POSTGRES_DB are required")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_SALES_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must be >= 0")
	}
	return nil
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if val := strings.TrimSpace(p); val != "" {
			out = append(out, val)
		}
	}
	return out
}
