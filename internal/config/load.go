package config

import (
	"encoding/json"
	stderrors "errors"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-pilot/internal/version"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvAPIKey    = "BINANCE_API_KEY"
	EnvAPISecret = "BINANCE_API_SECRET"
	EnvLogLevel  = "PILOT_LOG_LEVEL"
)

// Load reads the config file at path, then applies a .env file from the
// working directory if one exists.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, ".env")
}

// LoadWithEnv reads the yaml file at path over Default, loads envFile when it
// exists, applies environment overrides and validates the result.
// An empty path yields the defaults.
func LoadWithEnv(path, envFile string) (Config, error) {
	return load(path, envFile, true)
}

// LoadOffline is LoadWithEnv for commands that never reach the exchange,
// such as backtests. Exchange credentials are not required.
func LoadOffline(path, envFile string) (Config, error) {
	return load(path, envFile, false)
}

func load(path, envFile string, requireCredentials bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !stderrors.Is(err, os.ErrNotExist) {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load env file %s", envFile)
		}
	}

	cfg.applyEnv()

	validate := cfg.Validate
	if !requireCredentials {
		validate = cfg.validateFields
	}

	if err := validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Exchange.ApiKey = v
	}

	if v := os.Getenv(EnvAPISecret); v != "" {
		c.Exchange.SecretKey = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks field constraints, credentials and the format version.
func (c *Config) Validate() error {
	if err := c.validateFields(); err != nil {
		return err
	}

	if c.Exchange.Provider != ProviderPaper && (c.Exchange.ApiKey == "" || c.Exchange.SecretKey == "") {
		return errors.Newf(errors.ErrCodeMissingParameter,
			"provider %s requires %s and %s", c.Exchange.Provider, EnvAPIKey, EnvAPISecret)
	}

	return nil
}

// validateFields checks field constraints and the format version.
func (c *Config) validateFields() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return version.CheckConfigCompatibility(version.ConfigVersion, c.Version)
}

// Schema returns the JSON schema of the config file.
func Schema() (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(&Config{}) //nolint:exhaustruct // Empty config for schema generation

	data, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
