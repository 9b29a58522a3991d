package config // package config loads application configuration from environment variables

import (
	"errors"   // errors joins validation failures into one error
	"fmt"      // fmt formats validation messages
	"log/slog" // slog levels are derived from LOG_LEVEL
	"strings"  // strings normalises enum-like values
	"time"     // time.Duration for request timeouts

	"github.com/caarlos0/env/v11" // env parses tagged structs from the environment
	"github.com/joho/godotenv"    // godotenv loads an optional .env file
	"golang.org/x/crypto/bcrypt"  // bcrypt bounds for the configured cost
)

// Member deletion policies.  MemberDeleteScopeGlobal keeps the historical
// behaviour where an admin/moderator role held in any community grants
// deletion rights everywhere.  MemberDeleteScopeCommunity restricts the
// check to the community that owns the membership.
const (
	MemberDeleteScopeGlobal    = "global"
	MemberDeleteScopeCommunity = "community"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values.  It is built once at
// startup by Load and passed by value to every component that needs it;
// nothing else in the program reads the environment.
type Config struct {
	Env               string        `env:"APP_ENV" envDefault:"dev"`                           // application environment (e.g. "dev", "prod")
	Port              string        `env:"APP_PORT,required"`                                  // HTTP port to listen on
	DBDriver          string        `env:"DB_DRIVER" envDefault:"mysql"`                       // mysql | sqlite
	DatabaseURL       string        `env:"DATABASE_URL,required"`                              // driver specific connection string
	JWTSecret         string        `env:"JWT_SECRET,required"`                                // secret used to sign access tokens
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"10"`                        // bcrypt cost for password hashing
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`                        // debug | info | warn | error
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`                    // per-request store deadline
	MemberDeleteScope string        `env:"MEMBER_DELETE_SCOPE" envDefault:"community"`         // community | global
	SeedRoles         bool          `env:"SEED_ROLES" envDefault:"true"`                       // create default roles on boot
	RabbitMQURL       string        `env:"RABBITMQ_URL"`                                       // empty disables domain events
	AuditConsumer     bool          `env:"AUDIT_CONSUMER_ENABLED" envDefault:"false"`          // run the audit log consumer in-process
	AuditLogPath      string        `env:"AUDIT_LOG_PATH" envDefault:"logs/audit.log"`         // where the audit consumer appends
	Redis             RedisConfig   `envPrefix:"REDIS_"`                                       // optional redis connection
	Cache             CacheConfig   `envPrefix:"CACHE_"`                                       // response cache settings
}

// Load reads an optional .env file, parses the environment into a Config
// and validates it.  A missing required variable (APP_PORT, DATABASE_URL,
// JWT_SECRET) is reported as an error; main treats it as fatal before the
// listener is bound.
func Load() (Config, error) {
	// .env is a development convenience; its absence is not an error.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.MemberDeleteScope = strings.ToLower(strings.TrimSpace(cfg.MemberDeleteScope))
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("APP_PORT must not be blank"))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be blank"))
	}
	switch c.DBDriver {
	case DriverMySQL, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	switch c.MemberDeleteScope {
	case MemberDeleteScopeGlobal, MemberDeleteScopeCommunity:
	default:
		errs = append(errs, fmt.Errorf("MEMBER_DELETE_SCOPE %q is not supported", c.MemberDeleteScope))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// SlogLevel maps LOG_LEVEL onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EventsEnabled reports whether domain events should be published.
func (c Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}
