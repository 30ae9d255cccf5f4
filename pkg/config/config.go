package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Store         StoreConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Contact       ContactConfig
	Newsletter    NewsletterConfig
	Sendgrid      SendgridConfig
	Dashboard     DashboardConfig
	Cron          CronConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Store.validate(cfg.PubSub); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AFRIFOOD_APP_ENV" required:"true"`
	Port         string `envconfig:"AFRIFOOD_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AFRIFOOD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AFRIFOOD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AFRIFOOD_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"AFRIFOOD_DB_DSN"`
	Driver string `envconfig:"AFRIFOOD_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"AFRIFOOD_DB_HOST"`
	Port     int    `envconfig:"AFRIFOOD_DB_PORT" default:"5432"`
	User     string `envconfig:"AFRIFOOD_DB_USER"`
	Password string `envconfig:"AFRIFOOD_DB_PASSWORD"`
	Name     string `envconfig:"AFRIFOOD_DB_NAME"`
	SSLMode  string `envconfig:"AFRIFOOD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AFRIFOOD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AFRIFOOD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AFRIFOOD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AFRIFOOD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AFRIFOOD_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AFRIFOOD_REDIS_ADDR"`
	Password     string        `envconfig:"AFRIFOOD_REDIS_PASSWORD"`
	DB           int           `envconfig:"AFRIFOOD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AFRIFOOD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AFRIFOOD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AFRIFOOD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AFRIFOOD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AFRIFOOD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AFRIFOOD_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AFRIFOOD_JWT_ISSUER" default:"afrifood"`
	ExpirationMinutes int    `envconfig:"AFRIFOOD_JWT_EXPIRATION_MINUTES" default:"720"`
}

// SessionTTL is how long an admin stays signed in; it matches the access token lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AFRIFOOD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AFRIFOOD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AFRIFOOD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AFRIFOOD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AFRIFOOD_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"AFRIFOOD_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"AFRIFOOD_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"AFRIFOOD_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AFRIFOOD_AUTO_MIGRATE" default:"false"`
	// InlineWatcher runs the auto-notification watcher inside the API process
	// instead of cmd/worker.
	InlineWatcher bool `envconfig:"AFRIFOOD_WATCHER_INLINE" default:"false"`
}

type StoreConfig struct {
	Bus                string `envconfig:"AFRIFOOD_STORE_BUS" default:"redis"`
	RedisChannelPrefix string `envconfig:"AFRIFOOD_STORE_REDIS_CHANNEL_PREFIX" default:"afrifood:changes"`
}

func (s StoreConfig) validate(ps PubSubConfig) error {
	switch s.Bus {
	case StoreBusLocal, StoreBusRedis:
		return nil
	case StoreBusPubSub:
		if ps.ChangesTopic == "" || ps.ChangesSubscription == "" {
			return fmt.Errorf("%s and %s are required when %s=%s", EnvPubSubChangesTopic, EnvPubSubChangesSub, EnvStoreBus, StoreBusPubSub)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvStoreBus, s.Bus)
	}
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AFRIFOOD_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AFRIFOOD_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AFRIFOOD_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ChangesTopic string `envconfig:"AFRIFOOD_PUBSUB_CHANGES_TOPIC"`
	// ChangesSubscription must be unique per running instance so every process sees every change.
	ChangesSubscription string `envconfig:"AFRIFOOD_PUBSUB_CHANGES_SUBSCRIPTION"`
}

type ContactConfig struct {
	WhatsAppPhone string `envconfig:"AFRIFOOD_CONTACT_WHATSAPP_PHONE" default:"+22997123456"`
	MessengerPage string `envconfig:"AFRIFOOD_CONTACT_MESSENGER_PAGE" default:"afrifood.benin"`
}

type NewsletterConfig struct {
	LocationTimeout time.Duration `envconfig:"AFRIFOOD_NEWSLETTER_LOCATION_TIMEOUT" default:"10s"`
	WelcomeTimeout  time.Duration `envconfig:"AFRIFOOD_NEWSLETTER_WELCOME_TIMEOUT" default:"10s"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"AFRIFOOD_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"AFRIFOOD_SENDGRID_FROM_EMAIL" default:"newsletter@afrifood.bj"`
	FromName    string `envconfig:"AFRIFOOD_SENDGRID_FROM_NAME" default:"AfriFood"`
	BaseURL     string `envconfig:"AFRIFOOD_SENDGRID_BASE_URL" default:"https://api.sendgrid.com"`
}

type DashboardConfig struct {
	Timezone           string `envconfig:"AFRIFOOD_DASHBOARD_TIMEZONE" default:"Africa/Porto-Novo"`
	NotificationWindow int    `envconfig:"AFRIFOOD_DASHBOARD_NOTIFICATION_WINDOW" default:"10"`
}

// Location resolves the dashboard timezone, falling back to the process local zone.
func (d DashboardConfig) Location() *time.Location {
	if d.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"AFRIFOOD_CRON_INTERVAL" default:"5m"`
	ReconcileWindow time.Duration `envconfig:"AFRIFOOD_CRON_RECONCILE_WINDOW" default:"15m"`
	LockTTL         time.Duration `envconfig:"AFRIFOOD_CRON_LOCK_TTL" default:"4m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"AFRIFOOD_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
