package config

import (
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/lessonsync/pkg/errors"
)

// Environment variables that override the user config. The Mavenseed
// variables are shared with the other course publishing scripts.
const (
	URLEnvKey       = "MAVENSEED_URL"
	EmailEnvKey     = "MAVENSEED_EMAIL"
	PasswordEnvKey  = "MAVENSEED_PASSWORD"
	CachePathEnvKey = "LESSONSYNC_CACHE"
)

// Defaults used when neither the user config, the environment nor the
// command line set a value.
const (
	DefaultCachePath = ".cache/courses.json"
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 3
)

// Config is the configuration for a single run. It's assembled once by Load
// and passed explicitly to the API client, the snapshot cache and the
// publisher.
type Config struct {
	URL       string
	Email     string
	Password  string
	CachePath string
	Timeout   time.Duration
	Retries   int
}

// Mocked for unit testing.
var getenv = os.Getenv

// Load builds the run configuration. Values are resolved in increasing order
// of precedence: defaults, the user config file, environment variables, and
// finally the non-zero fields of `flags`.
func Load(flags Config) (Config, error) {
	cfg := Config{
		CachePath: DefaultCachePath,
		Timeout:   DefaultTimeout,
		Retries:   DefaultRetries,
	}

	user, err := ParseUser()
	switch err.(type) {
	case nil:
		cfg.merge(Config{
			URL:       user.URL,
			Email:     user.Email,
			Password:  user.Password,
			CachePath: user.CachePath,
			Timeout:   time.Duration(user.TimeoutSeconds) * time.Second,
			Retries:   user.Retries,
		})
	case errors.FileNotFound:
		log.WithField("path", UserConfigPath).Debug("No user config. Using defaults.")
	default:
		return Config{}, errors.WithContext(err, "parse user config")
	}

	cfg.merge(Config{
		URL:       getenv(URLEnvKey),
		Email:     getenv(EmailEnvKey),
		Password:  getenv(PasswordEnvKey),
		CachePath: getenv(CachePathEnvKey),
	})
	cfg.merge(flags)

	cfg.URL = strings.TrimRight(cfg.URL, "/")
	cfg.CachePath, err = homedirExpand(cfg.CachePath)
	if err != nil {
		return Config{}, errors.WithContext(err, "expand cache path")
	}
	return cfg, nil
}

// RequireRemote checks that the settings needed to talk to the Mavenseed API
// are present.
func (cfg Config) RequireRemote() error {
	if cfg.URL == "" {
		return errors.NewFriendlyError("You must provide a Mavenseed URL via " +
			"the --url command line option, the url field of " + UserConfigPath +
			", or the " + URLEnvKey + " environment variable.")
	}
	if cfg.Email == "" {
		return errors.NewFriendlyError("You must provide the email of your " +
			"Mavenseed admin account via the --email command line option, the " +
			"email field of " + UserConfigPath + ", or the " + EmailEnvKey +
			" environment variable.")
	}
	return nil
}

func (cfg *Config) merge(other Config) {
	if other.URL != "" {
		cfg.URL = other.URL
	}
	if other.Email != "" {
		cfg.Email = other.Email
	}
	if other.Password != "" {
		cfg.Password = other.Password
	}
	if other.CachePath != "" {
		cfg.CachePath = other.CachePath
	}
	if other.Timeout > 0 {
		cfg.Timeout = other.Timeout
	}
	if other.Retries > 0 {
		cfg.Retries = other.Retries
	}
}
