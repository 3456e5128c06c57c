package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Session      SessionConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Cart         CartConfig
	RemoteAPI    RemoteAPIConfig
	Storage      StorageConfig
	Media        MediaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.RemoteAPI.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EFARMAPLUS_APP_ENV" required:"true"`
	Port         string `envconfig:"EFARMAPLUS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"EFARMAPLUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EFARMAPLUS_LOG_WARN_STACK" default:"false"`
	// CORSOrigins are the browser origins allowed on the JSON endpoints.
	CORSOrigins []string `envconfig:"EFARMAPLUS_CORS_ORIGINS" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EFARMAPLUS_DB_DSN"`
	Driver string `envconfig:"EFARMAPLUS_DB_DRIVER" default:"postgres"`

	SQLitePath string `envconfig:"EFARMAPLUS_SQLITE_PATH" default:"efarmaplus.db"`

	MaxOpenConns    int           `envconfig:"EFARMAPLUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EFARMAPLUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EFARMAPLUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EFARMAPLUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EFARMAPLUS_REDIS_URL"`
	Address      string        `envconfig:"EFARMAPLUS_REDIS_ADDR"`
	Password     string        `envconfig:"EFARMAPLUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"EFARMAPLUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EFARMAPLUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EFARMAPLUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EFARMAPLUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EFARMAPLUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EFARMAPLUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret string `envconfig:"EFARMAPLUS_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"EFARMAPLUS_JWT_ISSUER" default:"efarmaplus"`

	ExpirationMinutes int `envconfig:"EFARMAPLUS_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL is the lifetime of an issued access token.
func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type SessionConfig struct {
	CookieName string        `envconfig:"EFARMAPLUS_SESSION_COOKIE" default:"efp_session"`
	Secret     string        `envconfig:"EFARMAPLUS_SESSION_SECRET" required:"true"`
	Secure     bool          `envconfig:"EFARMAPLUS_SESSION_SECURE" default:"false"`
	MaxAge     time.Duration `envconfig:"EFARMAPLUS_SESSION_MAX_AGE" default:"720h"`
	// IdleTimeout is how long admin UI state survives without requests.
	IdleTimeout time.Duration `envconfig:"EFARMAPLUS_SESSION_IDLE_TIMEOUT" default:"30m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"EFARMAPLUS_USE_SQLITE" default:"false"`
	AutoMigrate bool   `envconfig:"EFARMAPLUS_AUTO_MIGRATE" default:"false"`
	CartStore   string `envconfig:"EFARMAPLUS_CART_STORE" default:"redis"`
	// UnverifiedAdminLogin lets admin accounts sign in without a password
	// check. Login only confirms the account exists, so leave it off outside
	// local setups.
	UnverifiedAdminLogin bool `envconfig:"EFARMAPLUS_UNVERIFIED_ADMIN_LOGIN" default:"false"`
}

// PasswordConfig tunes the argon2id hash sent to the backend for new accounts.
type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EFARMAPLUS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EFARMAPLUS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EFARMAPLUS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EFARMAPLUS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EFARMAPLUS_ARGON_KEY_LEN" default:"32"`
}

// CartConfig controls where carts are persisted.
type CartConfig struct {
	Namespace string        `envconfig:"EFARMAPLUS_CART_NAMESPACE" default:"efp"`
	TTL       time.Duration `envconfig:"EFARMAPLUS_CART_TTL" default:"720h"`
}

// RemoteAPIConfig points at the catalog backend that owns products, users and orders.
type RemoteAPIConfig struct {
	BaseURL string        `envconfig:"EFARMAPLUS_API_URL" default:"https://efarmaplusback.onrender.com/api"`
	Timeout time.Duration `envconfig:"EFARMAPLUS_API_TIMEOUT" default:"30s"`
}

func (r RemoteAPIConfig) validate() error {
	u, err := url.Parse(r.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvAPIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvAPIURL)
	}
	return nil
}

type StorageConfig struct {
	Driver        string `envconfig:"EFARMAPLUS_STORAGE_DRIVER" default:"local"`
	LocalDir      string `envconfig:"EFARMAPLUS_LOCAL_UPLOAD_DIR" default:"./storage/uploads"`
	LocalURL      string `envconfig:"EFARMAPLUS_LOCAL_UPLOAD_URL_PREFIX" default:"/uploads"`
	Bucket        string `envconfig:"EFARMAPLUS_S3_BUCKET"`
	Region        string `envconfig:"EFARMAPLUS_S3_REGION" default:"us-east-1"`
	Endpoint      string `envconfig:"EFARMAPLUS_S3_ENDPOINT"`
	AccessKey     string `envconfig:"EFARMAPLUS_S3_ACCESS_KEY"`
	SecretKey     string `envconfig:"EFARMAPLUS_S3_SECRET_KEY"`
	Prefix        string `envconfig:"EFARMAPLUS_S3_PREFIX" default:"uploads"`
	PublicBaseURL string `envconfig:"EFARMAPLUS_S3_PUBLIC_BASE_URL"`
	UsePathStyle  bool   `envconfig:"EFARMAPLUS_S3_PATH_STYLE" default:"false"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(s.Driver) {
	case StorageDriverLocal:
		return nil
	case StorageDriverS3:
		if s.Bucket == "" || s.PublicBaseURL == "" {
			return fmt.Errorf("s3 storage requires %s and %s", EnvS3Bucket, EnvS3PublicBaseURL)
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", s.Driver)
	}
}

type MediaConfig struct {
	ProductMaxUploadMB int `envconfig:"EFARMAPLUS_PRODUCT_MAX_UPLOAD_MB" default:"5"`
	AvatarMaxUploadMB  int `envconfig:"EFARMAPLUS_AVATAR_MAX_UPLOAD_MB" default:"2"`
	ImageMaxWidth      int `envconfig:"EFARMAPLUS_MEDIA_IMAGE_MAX_WIDTH" default:"800"`
	ImageMaxHeight     int `envconfig:"EFARMAPLUS_MEDIA_IMAGE_MAX_HEIGHT" default:"800"`
	ImageQuality       int `envconfig:"EFARMAPLUS_MEDIA_IMAGE_QUALITY" default:"80"`
	// ImageMaxPixels caps width*height read from an image header before the
	// pixels are decoded.
	ImageMaxPixels int64 `envconfig:"EFARMAPLUS_MEDIA_IMAGE_MAX_PIXELS" default:"40000000"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DBDriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN == "" {
		return fmt.Errorf("%s is required unless %s is set", EnvDBDSN, EnvUseSQLite)
	}
	return nil
}
