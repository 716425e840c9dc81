package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/cozy-creator/dbi/internal/utils/pathutil"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const dbiPrefix = "DBI"

type Config struct {
	Environment   string       `mapstructure:"environment"`
	BaseURL       string       `mapstructure:"base_url"`
	ProductionURL string       `mapstructure:"production_url"`
	Concurrency   int          `mapstructure:"concurrency"`
	MaxImageSize  int          `mapstructure:"max_image_size"`
	Strict        bool         `mapstructure:"strict"`
	Proxy         *ProxyConfig `mapstructure:"proxy"`
}

type ProxyConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Prefix string `mapstructure:"prefix"`
	Target string `mapstructure:"target"`
	WebDir string `mapstructure:"web_dir"`
}

var config *Config

func SetDefaults() {
	viper.SetDefault("environment", EnvironmentDevelopment)
	viper.SetDefault("production_url", DefaultProductionURL)
	viper.SetDefault("concurrency", DefaultConcurrency)
	viper.SetDefault("max_image_size", 0)
	viper.SetDefault("strict", false)
	viper.SetDefault("proxy.host", DefaultProxyHost)
	viper.SetDefault("proxy.port", DefaultProxyPort)
	viper.SetDefault("proxy.prefix", DefaultProxyPrefix)
	viper.SetDefault("proxy.target", DefaultProductionURL)
	viper.SetDefault("proxy.web_dir", "")
}

// LoadEnvAndConfigFiles loads the optional .env file into the process
// environment, then the optional YAML config file, then unmarshals everything
// viper knows into the package config.
func LoadEnvAndConfigFiles() error {
	envFile := viper.GetString("env_file")
	if envFile != "" {
		envFile, err := pathutil.ExpandPath(envFile)
		if err != nil {
			return fmt.Errorf("failed to expand env file path: %w", err)
		}

		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	viper.SetEnvPrefix(dbiPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(`-`, `_`, `.`, `_`))
	viper.AutomaticEnv()
	SetDefaults()

	configFile := viper.GetString("config_file")
	if configFile != "" {
		configFile, err := pathutil.ExpandPath(configFile)
		if err != nil {
			return fmt.Errorf("failed to expand config file path: %w", err)
		}
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigType("yaml")
		viper.SetConfigName("dbi")
		viper.AddConfigPath(".")
		if dir, err := pathutil.ExpandPath("~/.dbi"); err == nil {
			viper.AddConfigPath(dir)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return fmt.Errorf("error reading config: %w", err)
		}
	}

	return LoadConfig(true)
}

func LoadConfig(reload bool) error {
	if config != nil && !reload {
		return fmt.Errorf("config already loaded")
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	config = cfg
	return nil
}

func GetConfig() *Config {
	if config == nil {
		panic("config not loaded")
	}

	return config
}

func IsLoaded() bool {
	return config != nil
}

func (c *Config) Validate() error {
	switch c.Environment {
	case EnvironmentProduction, EnvironmentDevelopment, EnvironmentTest:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEnvironment, c.Environment)
	}

	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if c.BaseURL != "" {
		if err := checkAbsoluteURL(c.BaseURL); err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
	}

	if c.Proxy == nil {
		c.Proxy = &ProxyConfig{
			Host:   DefaultProxyHost,
			Port:   DefaultProxyPort,
			Prefix: DefaultProxyPrefix,
			Target: DefaultProductionURL,
		}
	}

	if !strings.HasPrefix(c.Proxy.Prefix, "/") {
		return ErrInvalidProxyPrefix
	}

	if err := checkAbsoluteURL(c.Proxy.Target); err != nil {
		return fmt.Errorf("invalid proxy target: %w", err)
	}

	return nil
}

// ResolveBaseURL picks the prediction service address: an explicit base_url
// wins, production talks to the public host, anything else goes through the
// local dev proxy.
func (c *Config) ResolveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}

	if c.Environment == EnvironmentProduction {
		return c.ProductionURL
	}

	return fmt.Sprintf("http://%s:%d%s", c.Proxy.Host, c.Proxy.Port, c.Proxy.Prefix)
}

func (c *ProxyConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func checkAbsoluteURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%q is not an absolute url", raw)
	}

	return nil
}
