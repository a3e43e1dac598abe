// Package config reads the command line and environment once at startup.
package config

import (
	"flag"
	"io/ioutil"
	"os"
	"strings"

	"github.com/hatstand/shinyweather/weather"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const APIKeyEnv = "WEATHER_APP_KEY"

var (
	ErrMissingAPIKey = errors.New(APIKeyEnv + " variable is not set")
	ErrMissingCity   = errors.New("--city is required")
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Error wraps any invalid or missing startup input.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "configuration: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

type Config struct {
	APIKey      string
	City        string
	Units       weather.Units
	Verbose     bool
	MetricsFile string
}

// Load builds a Config from command line arguments (without the program
// name) and env. The API key is checked first, then the flags.
func Load(args []string, env LookupFunc) (*Config, error) {
	cfg := &Config{Units: weather.Metric}

	key, ok := env(APIKeyEnv)
	if !ok || strings.TrimSpace(key) == "" {
		return nil, &Error{Err: ErrMissingAPIKey}
	}
	cfg.APIKey = key

	fs := flag.NewFlagSet("shinyweather", flag.ContinueOnError)
	fs.SetOutput(ioutil.Discard)
	fs.Var(&cfg.Units, "units", "Unit system: metric or imperial")
	fs.StringVar(&cfg.City, "city", "", "City to fetch the current weather for")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enables debug logging")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "Path to write request metrics to in Prometheus text format")
	if err := fs.Parse(args); err != nil {
		return nil, &Error{Err: err}
	}
	if fs.NArg() > 0 {
		return nil, &Error{Err: errors.Errorf("unexpected arguments: %v", fs.Args())}
	}
	if cfg.City == "" {
		return nil, &Error{Err: ErrMissingCity}
	}
	return cfg, nil
}

// Environ returns a LookupFunc backed by the process environment, falling
// back to values from the given .env files. Missing files are skipped and
// earlier files take precedence over later ones.
func Environ(files ...string) (LookupFunc, error) {
	dotenv := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, &Error{Err: errors.Wrapf(err, "read %s", f)}
		}
		for k, v := range values {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}
