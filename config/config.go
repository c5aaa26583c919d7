package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	HTTP              HTTP
	Redis             Redis
	API               API
	Gemini            Gemini
	Analytics         Analytics
	Cache             Cache
	Jobs              Jobs
	GoogleDrive       GoogleDrive
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION" envDefault:"24h"`
}

type HTTP struct {
	Port         int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type API struct {
	Debug        bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout      time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	AlphaVantage AlphaVantage
	NewsApi      NewsApi
}

type AlphaVantage struct {
	Url    string `env:"ALPHA_VANTAGE_API_URL" envDefault:"https://www.alphavantage.co"`
	ApiKey string `env:"ALPHA_VANTAGE_API_KEY"`
}

type NewsApi struct {
	Url    string `env:"NEWS_API_URL" envDefault:"https://newsapi.org"`
	ApiKey string `env:"NEWS_API_KEY"`
}

type Gemini struct {
	ApiKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

type Analytics struct {
	// Annual risk-free rate for the Sharpe ratio, as a fraction.
	RiskFreeRate float64 `env:"RISK_FREE_RATE" envDefault:"0.06"`
}

type Cache struct {
	QuotesExpiration  time.Duration `env:"CACHE_QUOTES_EXPIRATION" envDefault:"10m"`
	NewsExpiration    time.Duration `env:"CACHE_NEWS_EXPIRATION" envDefault:"30m"`
	HistoryExpiration time.Duration `env:"CACHE_HISTORY_EXPIRATION" envDefault:"1h"`
}

type Jobs struct {
	RefreshQuotesInterval time.Duration `env:"REFRESH_QUOTES_JOB_INTERVAL" envDefault:"10m"`
	DriveCleanupInterval  time.Duration `env:"DRIVE_CLEANUP_JOB_INTERVAL" envDefault:"24h"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"168h"`
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
