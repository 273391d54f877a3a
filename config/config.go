package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	Postgres     Postgres
	Telegram     Telegram
	Redis        Redis
	API          API
	Cache        Cache
	Jobs         Jobs
	GoogleDrive  GoogleDrive
	Portfolio    Portfolio
	LocalStorage LocalStorage
	Share        Share
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"data/migrations"`
}

type Telegram struct {
	Token      string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug    bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout  time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	YahooApi YahooApi
}

type YahooApi struct {
	Url string `env:"YAHOO_API_URL" envDefault:"https://query1.finance.yahoo.com"`
}

type Cache struct {
	QuoteExpiration      time.Duration `env:"CACHE_QUOTE_EXPIRATION" envDefault:"1m"`
	HistoricalExpiration time.Duration `env:"CACHE_HISTORICAL_EXPIRATION" envDefault:"1h"`
}

type Jobs struct {
	RefreshQuotesInterval    time.Duration `env:"REFRESH_QUOTES_JOB_INTERVAL" envDefault:"5m"`
	DeleteOldReportsInterval time.Duration `env:"DELETE_OLD_REPORTS_JOB_INTERVAL" envDefault:"1h"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE"`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"24h"`
}

type Portfolio struct {
	// y | M | w
	DefaultPeriod   string `env:"PORTFOLIO_DEFAULT_PERIOD" envDefault:"y"`
	DefaultInterval string `env:"PORTFOLIO_DEFAULT_INTERVAL" envDefault:"1wk"`
	ClampPercentage bool   `env:"PORTFOLIO_CLAMP_PERCENTAGE" envDefault:"true"`
}

type LocalStorage struct {
	KeyPrefix    string        `env:"LOCAL_STORAGE_KEY_PREFIX" envDefault:"PortfolioBuilderHoldings"`
	WriteTimeout time.Duration `env:"LOCAL_STORAGE_WRITE_TIMEOUT" envDefault:"2s"`
}

type Share struct {
	// шаблон ссылки, %s заменяется ключом снапшота
	LinkTemplate string `env:"SHARE_LINK_TEMPLATE"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
