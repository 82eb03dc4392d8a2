package config

import (
	"os"
	"path/filepath"
	"time"

	"emperror.dev/errors"
	"github.com/adrg/xdg"
	"github.com/fabriq-labs/gqlprobe/internal/graphql"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// APIMSubscriptionKeyHeader is the header Azure API Management gateways
// check before forwarding a request to the backend.
const APIMSubscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

type GitHub struct {
	Token  string
	APIURL string `mapstructure:"api_url"`
	// SubscriptionKey is set when GitHub is reached through an APIM gateway.
	SubscriptionKey string `mapstructure:"subscription_key"`
}

type Fabric struct {
	// APIURL is either the Fabric GraphQL endpoint itself or the APIM
	// gateway in front of it.
	APIURL          string `mapstructure:"api_url"`
	SubscriptionKey string `mapstructure:"subscription_key"`
	Scope           string
	AuthMethod      string `mapstructure:"auth_method"`

	TenantID     string `mapstructure:"tenant_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

type Config struct {
	GitHub  GitHub
	Fabric  Fabric
	Timeout time.Duration
}

// envBindings maps config keys to the environment variables that set them,
// highest priority first.
var envBindings = []struct {
	Key  string
	Envs []string
}{
	{"github.token", []string{"GQLPROBE_GITHUB_TOKEN", "GITHUB_TOKEN"}},
	{"github.api_url", []string{"GITHUB_GRAPHQL_API_URL"}},
	{"github.subscription_key", []string{"GITHUB_APIM_SUBSCRIPTION_KEY"}},
	{"fabric.api_url", []string{"FABRIC_GRAPHQL_API_URL"}},
	{"fabric.subscription_key", []string{"FABRIC_APIM_SUBSCRIPTION_KEY"}},
	{"fabric.scope", []string{"FABRIC_SCOPE"}},
	{"fabric.auth_method", []string{"FABRIC_AUTH_METHOD"}},
	{"fabric.tenant_id", []string{"AZURE_TENANT_ID"}},
	{"fabric.client_id", []string{"AZURE_CLIENT_ID"}},
	{"fabric.client_secret", []string{"AZURE_CLIENT_SECRET"}},
	{"timeout", []string{"GQLPROBE_TIMEOUT"}},
}

// Options controls where Load looks for configuration.
type Options struct {
	// Paths are additional directories to search for the config file.
	Paths []string
	// EnvFile is a dotenv file to read. If empty, ".env" in the working
	// directory is used when it exists.
	EnvFile string
}

// Load reads the configuration from (lowest to highest priority) defaults,
// a config file, a dotenv file and the process environment.
// It returns whether a config file was found. A missing config file or
// default .env is not an error.
func Load(opts Options) (*Config, bool, error) {
	v := viper.New()
	v.SetDefault("github.api_url", graphql.DefaultEndpoint)
	v.SetDefault("timeout", graphql.DefaultTimeout)
	for _, b := range envBindings {
		if err := v.BindEnv(append([]string{b.Key}, b.Envs...)...); err != nil {
			return nil, false, errors.Wrapf(err, "failed to bind %s", b.Key)
		}
	}

	loaded, err := loadFromFile(v, opts.Paths)
	if err != nil {
		return nil, loaded, err
	}
	if err := loadFromEnvFile(v, opts.EnvFile); err != nil {
		return nil, loaded, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, loaded, errors.Wrap(err, "failed to read gqlprobe configs")
	}
	return &cfg, loaded, nil
}

func loadFromFile(v *viper.Viper, paths []string) (bool, error) {
	// Viper has support for various formats, so it supports json, toml, yaml,
	// and more (https://github.com/spf13/viper#reading-config-files).
	v.SetConfigName("config")

	v.AddConfigPath(filepath.Join(xdg.ConfigHome, "gqlprobe"))
	v.AddConfigPath("$HOME/.gqlprobe")
	if home := os.Getenv("GQLPROBE_HOME"); home != "" {
		v.AddConfigPath(home)
	}
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to read config file")
	}
	logrus.WithField("path", v.ConfigFileUsed()).Debug("loaded config file")
	return true, nil
}

// loadFromEnvFile applies a dotenv file. Like the usual dotenv loaders, it
// never overrides a variable that's already present in the environment.
func loadFromEnvFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read env file %s", path)
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")
	if err := dotenv.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to parse env file %s", path)
	}

	for _, b := range envBindings {
		if anyEnvSet(b.Envs) {
			continue
		}
		for _, name := range b.Envs {
			if val := dotenv.GetString(name); val != "" {
				v.Set(b.Key, val)
				break
			}
		}
	}
	logrus.WithField("path", path).Debug("loaded env file")
	return nil
}

func anyEnvSet(names []string) bool {
	for _, name := range names {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

func apimHeaders(subscriptionKey string) map[string]string {
	if subscriptionKey == "" {
		return nil
	}
	return map[string]string{APIMSubscriptionKeyHeader: subscriptionKey}
}

// GitHubClientConfig is the client configuration for the GitHub endpoint.
func (c *Config) GitHubClientConfig() graphql.Config {
	return graphql.Config{
		Endpoint: c.GitHub.APIURL,
		Token:    c.GitHub.Token,
		Headers:  apimHeaders(c.GitHub.SubscriptionKey),
		Timeout:  c.Timeout,
	}
}

// FabricClientConfig is the client configuration for the Fabric endpoint,
// given a token acquired for c.Fabric.Scope.
func (c *Config) FabricClientConfig(token string) graphql.Config {
	return graphql.Config{
		Endpoint: c.Fabric.APIURL,
		Token:    token,
		Headers:  apimHeaders(c.Fabric.SubscriptionKey),
		Timeout:  c.Timeout,
	}
}
