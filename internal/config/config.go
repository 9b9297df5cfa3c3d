package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	OIDC      OIDCConfig
	RateLimit RateLimitConfig
	MinIO     MinIOConfig
	Locks     LocksConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port for the Redis client, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

// OIDCConfig describes the external identity provider.
// FirebaseProjectID is a shortcut for Issuer=https://securetoken.google.com/<id>, ClientID=<id>.
type OIDCConfig struct {
	Issuer            string
	ClientID          string
	FirebaseProjectID string
	// DevSecret enables the HS256 development verifier; never set it in production.
	DevSecret   string
	AdminEmails []string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	URLExpiry time.Duration
}

type LocksConfig struct {
	TTL time.Duration
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	v.SetDefault("MONGODB_DATABASE", "newspaperDB")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("MINIO_BUCKET", "newsdesk")
	v.SetDefault("MINIO_URL_EXPIRY_MINUTES", 60)
	v.SetDefault("LOCK_TTL_SECONDS", 10)

	// the original PORT variable still wins when set
	port := v.GetString("SERVER_PORT")
	if p := v.GetString("PORT"); p != "" {
		port = p
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            port,
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:     time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout:    time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
			ShutdownTimeout: time.Duration(v.GetInt("SERVER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      mongoURI(v),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		OIDC: OIDCConfig{
			Issuer:            v.GetString("OIDC_ISSUER"),
			ClientID:          v.GetString("OIDC_CLIENT_ID"),
			FirebaseProjectID: v.GetString("FIREBASE_PROJECT_ID"),
			DevSecret:         v.GetString("AUTH_DEV_SECRET"),
			AdminEmails:       splitList(v.GetString("AUTH_ADMIN_EMAILS")),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			URLExpiry: time.Duration(v.GetInt("MINIO_URL_EXPIRY_MINUTES")) * time.Minute,
		},
		Locks: LocksConfig{
			TTL: time.Duration(v.GetInt("LOCK_TTL_SECONDS")) * time.Second,
		},
	}

	if cfg.OIDC.FirebaseProjectID != "" {
		if cfg.OIDC.Issuer == "" {
			cfg.OIDC.Issuer = "https://securetoken.google.com/" + cfg.OIDC.FirebaseProjectID
		}
		if cfg.OIDC.ClientID == "" {
			cfg.OIDC.ClientID = cfg.OIDC.FirebaseProjectID
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the server runs with production safeguards.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func (c *Config) validate() error {
	if c.IsProduction() {
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI (or DB_USER/DB_PASS/DB_HOST) is required in production")
		}
		if c.OIDC.Issuer == "" {
			return fmt.Errorf("OIDC_ISSUER or FIREBASE_PROJECT_ID is required in production")
		}
		if c.OIDC.DevSecret != "" {
			return fmt.Errorf("AUTH_DEV_SECRET must not be set in production")
		}
	}
	if c.OIDC.Issuer != "" && c.OIDC.ClientID == "" {
		return fmt.Errorf("OIDC_CLIENT_ID is required when OIDC_ISSUER is set")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 0) {
		return fmt.Errorf("invalid rate limit settings: rps=%v burst=%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	return nil
}

// mongoURI prefers MONGODB_URI and otherwise assembles an SRV URI from DB_USER/DB_PASS/DB_HOST.
func mongoURI(v *viper.Viper) string {
	if uri := v.GetString("MONGODB_URI"); uri != "" {
		return uri
	}
	user, pass, host := v.GetString("DB_USER"), v.GetString("DB_PASS"), v.GetString("DB_HOST")
	if user == "" || pass == "" || host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, pass),
		Host:     host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
