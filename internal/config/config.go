package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	App        AppConfig
	Backend    BackendConfig
	Store      StoreConfig
	Session    SessionConfig
	OIDC       OIDCConfig
	DevBackend DevBackendConfig
	Logger     LoggerConfig
}

// AppConfig identifies the running process.
type AppConfig struct {
	Name string
	Env  string
}

// BackendConfig points at the authentication backend. The route paths differ
// between deployments, so they are configuration rather than constants; the
// defaults match the original deployment.
type BackendConfig struct {
	BaseURL             string
	LoginPath           string
	SignupPath          string
	FederatedVerifyPath string
	TimeoutSeconds      int
}

// StoreConfig selects and parameterizes the durable session store.
type StoreConfig struct {
	Kind     string // "file" or "redis"
	FilePath string
	Redis    RedisConfig
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// SessionConfig controls session-lifecycle behavior.
type SessionConfig struct {
	// FederatedDefaultRole is persisted when a federated verify response
	// carries no role. A product decision surfaced as configuration.
	FederatedDefaultRole  string
	RestoreTimeoutSeconds int
}

// OIDCConfig configures the federated identity provider client.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       string
}

// DevBackendConfig parameterizes the bundled development backend.
type DevBackendConfig struct {
	Host                  string
	Port                  string
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	PostgresDSN           string
	// OmitFederatedRole drops user.role from federated verify responses so
	// client-side role defaulting can be exercised.
	OmitFederatedRole bool
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("SESSION_REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "revdup-client"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Backend: BackendConfig{
			BaseURL:             getEnv("BACKEND_BASE_URL", "http://127.0.0.1:8080"),
			LoginPath:           getEnv("BACKEND_LOGIN_PATH", "/auth/google/login"),
			SignupPath:          getEnv("BACKEND_SIGNUP_PATH", "/api/signup"),
			FederatedVerifyPath: getEnv("BACKEND_FEDERATED_VERIFY_PATH", "/auth/google/verify"),
			TimeoutSeconds:      getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 15),
		},
		Store: StoreConfig{
			Kind:     getEnv("SESSION_STORE_KIND", "file"),
			FilePath: getEnv("SESSION_STORE_PATH", "auth_preferences.json"),
			Redis: RedisConfig{
				Addr:      getEnv("SESSION_REDIS_ADDR", "127.0.0.1:6379"),
				Password:  os.Getenv("SESSION_REDIS_PASSWORD"),
				DB:        redisDB,
				KeyPrefix: getEnv("SESSION_REDIS_KEY_PREFIX", "revdup:"),
			},
		},
		Session: SessionConfig{
			FederatedDefaultRole:  getEnv("SESSION_FEDERATED_DEFAULT_ROLE", "CUSTOMER"),
			RestoreTimeoutSeconds: getEnvAsInt("SESSION_RESTORE_TIMEOUT_SECONDS", 5),
		},
		OIDC: OIDCConfig{
			Issuer:       getEnv("OIDC_ISSUER", "https://accounts.google.com"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://127.0.0.1:9666/callback"),
			Scopes:       getEnv("OIDC_SCOPES", "profile email"),
		},
		DevBackend: DevBackendConfig{
			Host:                  getEnv("DEV_BACKEND_HOST", "0.0.0.0"),
			Port:                  getEnv("DEV_BACKEND_PORT", "8080"),
			JWTSecret:             getEnv("DEV_BACKEND_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("DEV_BACKEND_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("DEV_BACKEND_BCRYPT_COST", 12),
			PostgresDSN:           os.Getenv("DEV_BACKEND_POSTGRES_DSN"),
			OmitFederatedRole:     getEnvAsBool("DEV_BACKEND_OMIT_FEDERATED_ROLE", false),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Timeout returns the configured backend request timeout duration.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// RestoreTimeout bounds the startup session restore.
func (s SessionConfig) RestoreTimeout() time.Duration {
	if s.RestoreTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.RestoreTimeoutSeconds) * time.Second
}

// Addr returns the dev backend bind address.
func (d DevBackendConfig) Addr() string {
	return fmt.Sprintf("%s:%s", d.Host, d.Port)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
