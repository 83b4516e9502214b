package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	Storage    string     `yaml:"storage" env:"STORAGE" env-default:"postgres"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Postgres   Postgres   `yaml:"postgres"`
	JWT        JWT        `yaml:"jwt"`
	EmailLink  EmailLink  `yaml:"email_link"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	Sweeper    Sweeper    `yaml:"sweeper"`
	CORS       CORS       `yaml:"cors"`
	ES         ES         `yaml:"elasticsearch"`
	Minio      Minio      `yaml:"minio"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8081"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB"`
	Migrate  bool   `yaml:"migrate" env-default:"true"`
}

type JWT struct {
	SecretKey  string        `yaml:"secret_key" env:"JWT_SECRET_KEY"`
	Issuer     string        `yaml:"issuer" env-default:"rolechat"`
	AccessTTL  time.Duration `yaml:"access_token_ttl" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_token_ttl" env-default:"720h"`
}

// EmailLink configures passwordless sign-in. BaseURL is the client page that
// receives the ?token= query parameter.
type EmailLink struct {
	BaseURL string        `yaml:"base_url" env-default:"http://localhost:5173/signin"`
	TTL     time.Duration `yaml:"ttl" env-default:"15m"`
}

type RateLimit struct {
	RPS   float64       `yaml:"rps" env-default:"0.2"`
	Burst int           `yaml:"burst" env-default:"3"`
	TTL   time.Duration `yaml:"ttl" env-default:"10m"`
}

type Sweeper struct {
	Enabled bool   `yaml:"enabled" env-default:"true"`
	Cron    string `yaml:"cron" env-default:"*/10 * * * *"`
}

type CORS struct {
	AllowOrigins []string `yaml:"allow_origins" env-default:"http://localhost:5173"`
}

// ES is optional; message search is disabled when no hosts are configured.
type ES struct {
	Hosts    []string `yaml:"hosts"`
	Index    string   `yaml:"index" env-default:"messages"`
	Username string   `yaml:"username" env-default:"elastic"`
	Password string   `yaml:"password"`
}

// Minio is optional; avatars are disabled when no endpoint is configured.
type Minio struct {
	Endpoint   string        `yaml:"endpoint"`
	AccessKey  string        `yaml:"access_key"`
	SecretKey  string        `yaml:"secret_key"`
	UseSSL     bool          `yaml:"use_ssl"`
	Bucket     string        `yaml:"bucket" env-default:"avatars"`
	PresignTTL time.Duration `yaml:"presign_ttl" env-default:"1h"`
	MaxSize    int64         `yaml:"max_size" env-default:"2097152"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Can not read config file %s", err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
