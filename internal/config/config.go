// Package config handles loading and parsing application configuration.
// It supports three sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//  3. A .env file in the working directory (loaded into the
//     environment first, so env:"..." overrides still apply)
package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure. Every field maps to a
// key in the YAML file AND can be overridden by the corresponding
// environment variable (env:"...").
//
// env-required:"true" means the app refuses to start if that value is
// missing — better to crash at boot than to silently use a wrong
// default.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// Storage selects and locates the persistence backend.
	Storage StorageConfig `yaml:"storage"`

	// HTTPServer is embedded so its fields are accessible directly on
	// Config after promotion: cfg.Addr.
	HTTPServer `yaml:"http_server"`
}

// StorageConfig selects the Store implementation.
type StorageConfig struct {
	// Driver is either "jsonfile" (whole-file JSON document) or
	// "sqlite" (snapshot table in a SQLite database).
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"jsonfile"`

	// Path is the data file location — the .json document or the
	// .db file, depending on the driver.
	Path string `yaml:"path" env:"STORAGE_PATH" env-required:"true"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure —
// if MustLoad returns, the config is guaranteed valid.
func MustLoad() *Config {
	// Best effort: a missing .env file is not an error, it simply
	// means all configuration comes from the YAML file and real
	// environment variables.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	if cfg.Storage.Driver != "jsonfile" && cfg.Storage.Driver != "sqlite" {
		log.Fatalf("unknown storage driver %q: choose jsonfile or sqlite", cfg.Storage.Driver)
	}

	return &cfg
}
