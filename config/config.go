package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
	defaultConfigFile = "/config.yaml"
)

type httpServer struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	HandlerTimeout    time.Duration `mapstructure:"handler_timeout"`
}

type catalog struct {
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	ValidateShape bool          `mapstructure:"validate_shape"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes"`
}

type locale struct {
	Language string `mapstructure:"language"`
	Currency string `mapstructure:"currency"`
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	ViewsTopic         string   `mapstructure:"views_topic"`
}

type s3 struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type Config struct {
	LogLevel  slog.Level `mapstructure:"log_level"`
	LogFormat string     `mapstructure:"log_format"`
	HTTP      httpServer `mapstructure:"http"`
	Catalog   catalog    `mapstructure:"catalog"`
	Locale    locale     `mapstructure:"locale"`
	Broker    broker     `mapstructure:"broker"`
	S3        s3         `mapstructure:"s3"`
}

// ViewsEnabled reports whether catalog views are produced to the broker.
func (c Config) ViewsEnabled() bool {
	return len(c.Broker.SeedBrokers) != 0
}

// Load reads the file named by --config or STOREFRONT_CONFIG_FILE. It
// exits the process when the config is invalid.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads path on top of the defaults, then applies STOREFRONT_*
// environment variables. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	const op = "config.LoadFile"

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%s: .env: %w", op, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_header_timeout", 5*time.Second)
	v.SetDefault("http.idle_timeout", 2*time.Second)
	v.SetDefault("http.handler_timeout", 15*time.Second)

	v.SetDefault("catalog.url", "https://fakestoreapi.com/products")
	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("catalog.max_attempts", 1)
	v.SetDefault("catalog.retry_backoff", 100*time.Millisecond)
	v.SetDefault("catalog.validate_shape", true)
	v.SetDefault("catalog.max_body_bytes", 10<<20)

	v.SetDefault("locale.language", "pt-BR")
	v.SetDefault("locale.currency", "BRL")

	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.views_topic", "catalog-views")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
}

func (c Config) validate() error {
	var errs []error

	if c.Catalog.URL == "" {
		errs = append(errs, errors.New("catalog.url: required"))
	}

	if c.Catalog.MaxAttempts < 1 {
		errs = append(errs, errors.New("catalog.max_attempts: must be >= 1"))
	}

	if c.Catalog.MaxBodyBytes < 1 {
		errs = append(errs, errors.New("catalog.max_body_bytes: must be >= 1"))
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf(
			"log_format: %q, want json or text", c.LogFormat,
		))
	}

	if c.ViewsEnabled() && len(c.Broker.SchemaRegistryURLs) == 0 {
		errs = append(errs, errors.New(
			"broker.schema_registry_urls: required with seed brokers",
		))
	}

	return errors.Join(errs...)
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", defaultConfigFile, "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

// FilepathFromEnv returns the STOREFRONT_CONFIG_FILE value or def.
func FilepathFromEnv(def string) string {
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env
	}
	return def
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	LogFormat=%q

	HTTP:
	Addr=%q
	ReadHeaderTimeout=%q
	IdleTimeout=%q
	HandlerTimeout=%q

	Catalog:
	URL=%q
	Timeout=%q
	MaxAttempts=%d
	RetryBackoff=%q
	ValidateShape=%t
	MaxBodyBytes=%d

	Locale:
	Language=%q
	Currency=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	ViewsTopic=%q

	S3:
	Region=%q
	Bucket=%q
	Endpoint=%q
	AccessKey=%q
	SecretKey=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.LogFormat,
		c.HTTP.Addr,
		c.HTTP.ReadHeaderTimeout,
		c.HTTP.IdleTimeout,
		c.HTTP.HandlerTimeout,
		c.Catalog.URL,
		c.Catalog.Timeout,
		c.Catalog.MaxAttempts,
		c.Catalog.RetryBackoff,
		c.Catalog.ValidateShape,
		c.Catalog.MaxBodyBytes,
		c.Locale.Language,
		c.Locale.Currency,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.ViewsTopic,
		c.S3.Region,
		c.S3.Bucket,
		c.S3.Endpoint,
		c.S3.AccessKey,
		mask(c.S3.SecretKey),
	)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "******"
}
