package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"inkpost/app/repositories"
)

type Config struct {
	Env      string
	HTTP     HTTP
	Database Database
	Views    Views
}

type HTTP struct {
	Address         string
	ShutdownTimeout time.Duration
}

type Database struct {
	Driver string
	DSN    string
	Debug  bool
}

type Views struct {
	// Markdown renders post content as markdown instead of plain text.
	Markdown bool
}

// StoreOptions converts the database section for repositories.Open.
func (d Database) StoreOptions() repositories.Options {
	return repositories.Options{Driver: d.Driver, DSN: d.DSN, Debug: d.Debug}
}

// Load builds the configuration from defaults, an optional config file,
// INKPOST_* environment variables and command-line flags, in increasing
// order of precedence. It returns the arguments left after flag parsing.
func Load(name string, args []string) (*Config, []string, error) {
	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a config file")
	fs.String("env", v.GetString("env"), "environment: dev, prod or test")
	fs.String("addr", v.GetString("http.address"), "HTTP listen address")
	fs.String("db-driver", v.GetString("database.driver"), "storage backend: sqlite, postgres or badger")
	fs.String("db-dsn", v.GetString("database.dsn"), "database file, directory or connection string")
	fs.Bool("markdown", v.GetBool("views.markdown"), "render post content as markdown")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	for key, flag := range map[string]string{
		"env":             "env",
		"http.address":    "addr",
		"database.driver": "db-driver",
		"database.dsn":    "db-dsn",
		"views.markdown":  "markdown",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, nil, err
		}
	}

	v.SetEnvPrefix("inkpost")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if *configFile != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		HTTP: HTTP{
			Address:         v.GetString("http.address"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Database: Database{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
			Debug:  v.GetBool("database.debug"),
		},
		Views: Views{
			Markdown: v.GetBool("views.markdown"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	return cfg, fs.Args(), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", repositories.DriverSQLite)
	v.SetDefault("database.dsn", "blog.db")
	v.SetDefault("database.debug", false)

	v.SetDefault("views.markdown", false)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case repositories.DriverSQLite, repositories.DriverPostgres, repositories.DriverBadger:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == repositories.DriverPostgres && c.Database.DSN == "" {
		return errors.New("postgres requires a database dsn")
	}
	if c.HTTP.Address == "" {
		return errors.New("http address must not be empty")
	}
	return nil
}
