package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

type Config struct {
	AppName       string              `mapstructure:"app_name" validate:"required"`
	Mode          string              `mapstructure:"mode" validate:"oneof=development production"`
	LogLevel      string              `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	SnowflakeNode int64               `mapstructure:"snowflake_node" validate:"gte=0,lte=1023"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	Database      DatabaseConfig      `mapstructure:"db"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Session       SessionConfig       `mapstructure:"session"`
	Tariff        TariffConfig        `mapstructure:"tariff"`
	Committee     CommitteeConfig     `mapstructure:"committee"`
	Authorization AuthorizationConfig `mapstructure:"authz"`
	Bootstrap     BootstrapConfig     `mapstructure:"bootstrap"`
	Observability ObservabilityConfig `mapstructure:"otel"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=mysql postgres"`
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"gt=0"`
	User            string        `mapstructure:"user" validate:"required"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name" validate:"required"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name" validate:"required"`
	TTL        time.Duration `mapstructure:"ttl" validate:"gt=0"`
	Secure     bool          `mapstructure:"secure"`
}

// TariffConfig holds decimal strings so that no precision is lost
// between the environment and the tariff engine. Empty values fall back
// to the default schedule.
type TariffConfig struct {
	BaseRate       string `mapstructure:"base_rate"`
	FixedCharge    string `mapstructure:"fixed_charge"`
	IncludedVolume string `mapstructure:"included_volume"`
	OverageRate    string `mapstructure:"overage_rate"`
}

type CommitteeConfig struct {
	Name           string `mapstructure:"name" validate:"required"`
	CurrencySymbol string `mapstructure:"currency_symbol" validate:"required"`
	PaymentNote    string `mapstructure:"payment_note"`
}

type AuthorizationConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type BootstrapConfig struct {
	AdminEmail    string `mapstructure:"admin_email" validate:"omitempty,email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type ObservabilityConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}

func (c Config) IsProduction() bool {
	return c.Mode == ModeProduction
}

func Load() (Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/waterworks")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "waterworks")
	v.SetDefault("mode", ModeDevelopment)
	v.SetDefault("log_level", "info")
	v.SetDefault("snowflake_node", 1)

	v.SetDefault("http.addr", ":5000")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "root")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "gestion_agua")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.cookie_name", "waterworks_session")
	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("session.secure", false)

	v.SetDefault("tariff.base_rate", "")
	v.SetDefault("tariff.fixed_charge", "")
	v.SetDefault("tariff.included_volume", "")
	v.SetDefault("tariff.overage_rate", "")

	v.SetDefault("committee.name", "COMITE DE AGUA POTABLE CORINTO S.L")
	v.SetDefault("committee.currency_symbol", "Q")
	v.SetDefault("committee.payment_note", "Favor de pagar antes del 5 del siguiente mes.")

	v.SetDefault("authz.cache_ttl", time.Minute)

	v.SetDefault("bootstrap.admin_email", "")
	v.SetDefault("bootstrap.admin_password", "")

	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.insecure", true)
	v.SetDefault("otel.sample_ratio", 1.0)
}
