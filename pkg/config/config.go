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

// Session verification policies.
const (
	SessionPolicyJWT      = "jwt"
	SessionPolicyPresence = "presence"
)

// Admin account stores.
const (
	AdminStoreStatic   = "static"
	AdminStorePostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	RecordAPI RecordAPIConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Session   SessionConfig
	Admin     AdminConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Teachers  TeachersConfig
	Exports   ExportsConfig
}

// RecordAPIConfig points at the external teacher records service.
type RecordAPIConfig struct {
	BaseURL string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// SessionConfig controls the session guard and its cookies.
type SessionConfig struct {
	Policy       string
	CookieName   string
	CookieSecret string
	SecureCookie bool
	TTL          time.Duration
	RememberTTL  time.Duration
}

// AdminConfig selects where operator accounts are looked up.
type AdminConfig struct {
	Store string
	// Users holds "email:bcrypt-hash" pairs for the static store.
	Users []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig tunes the background snapshot poller.
type DashboardConfig struct {
	RefreshInterval time.Duration
	Workers         int
}

// TeachersConfig holds roster-level settings.
type TeachersConfig struct {
	Locations []string
}

// ExportsConfig configures rendered export storage and download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	RetentionTTL    time.Duration
	CleanupInterval time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("TIMEZONE")

	cfg.RecordAPI = RecordAPIConfig{
		BaseURL: strings.TrimRight(v.GetString("RECORD_API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("RECORD_API_TIMEOUT"), 0),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.Session = SessionConfig{
		Policy:       strings.ToLower(v.GetString("SESSION_POLICY")),
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		CookieSecret: v.GetString("SESSION_COOKIE_SECRET"),
		SecureCookie: v.GetBool("SESSION_COOKIE_SECURE"),
		TTL:          parseDuration(v.GetString("SESSION_TTL"), 12*time.Hour),
		RememberTTL:  parseDuration(v.GetString("SESSION_REMEMBER_TTL"), 30*24*time.Hour),
	}

	cfg.Admin = AdminConfig{
		Store: strings.ToLower(v.GetString("ADMIN_STORE")),
		Users: splitAndTrim(v.GetString("ADMIN_USERS")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		RefreshInterval: parseDuration(v.GetString("DASHBOARD_REFRESH_INTERVAL"), 10*time.Second),
		Workers:         v.GetInt("DASHBOARD_REFRESH_WORKERS"),
	}

	cfg.Teachers = TeachersConfig{
		Locations: splitAndTrim(v.GetString("TEACHER_LOCATIONS")),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 30*time.Minute),
		RetentionTTL:    parseDuration(v.GetString("EXPORTS_TTL"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TIMEZONE", "UTC")

	v.SetDefault("RECORD_API_BASE_URL", "http://localhost:5000")
	v.SetDefault("RECORD_API_TIMEOUT", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "teacher_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "teacher-admin")

	v.SetDefault("SESSION_POLICY", SessionPolicyJWT)
	v.SetDefault("SESSION_COOKIE_NAME", "teacher_admin_session")
	v.SetDefault("SESSION_COOKIE_SECRET", "dev_cookie_secret_change_me")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SESSION_REMEMBER_TTL", "720h")

	v.SetDefault("ADMIN_STORE", AdminStoreStatic)
	v.SetDefault("ADMIN_USERS", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DASHBOARD_REFRESH_INTERVAL", "10s")
	v.SetDefault("DASHBOARD_REFRESH_WORKERS", 2)

	v.SetDefault("TEACHER_LOCATIONS", "Delhi,Mumbai,Chennai,Bangalore,Hyderabad")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "30m")
	v.SetDefault("EXPORTS_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
}

// isMissingFile covers viper returning a raw fs error when SetConfigFile points at an absent file.
func isMissingFile(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file or directory")
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
