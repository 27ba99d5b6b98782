package repositories

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrStoreNotEmpty = errors.New("store already contains posts")
)

// Supported values for Options.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"

	memoryDSN = ":memory:"
)

// Options selects and configures the storage backend.
type Options struct {
	Driver string
	DSN    string
	// Debug logs every SQL statement.
	Debug bool
}

// Open connects to the configured backend and prepares its schema.
func Open(opts Options, log *slog.Logger) (Store, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		if err := ensureParentDir(opts.DSN); err != nil {
			return nil, err
		}
		db, err := gorm.Open(sqlite.Open(sqliteDSN(opts.DSN)), gormConfig(opts))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database %q: %w", opts.DSN, err)
		}
		if opts.DSN == "" || opts.DSN == memoryDSN {
			// Every pooled connection would otherwise get its own empty database.
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxOpenConns(1)
		}
		log.Debug("opened sqlite store", slog.String("dsn", opts.DSN))
		return NewGormPostRepository(db)
	case DriverPostgres:
		db, err := gorm.Open(postgres.Open(opts.DSN), gormConfig(opts))
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		log.Debug("opened postgres store")
		return NewGormPostRepository(db)
	case DriverBadger:
		if err := ensureDir(opts.DSN); err != nil {
			return nil, err
		}
		repo, err := OpenBadger(opts.DSN)
		if err != nil {
			return nil, err
		}
		log.Debug("opened badger store", slog.String("path", opts.DSN))
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
	}
}

// IsLocal reports whether the backend keeps its data in a local path that
// can be removed with Remove.
func IsLocal(opts Options) bool {
	switch opts.Driver {
	case DriverSQLite, "", DriverBadger:
		return opts.DSN != "" && opts.DSN != memoryDSN
	default:
		return false
	}
}

// Remove deletes the local files of a sqlite or badger store.
func Remove(opts Options) error {
	if !IsLocal(opts) {
		return fmt.Errorf("driver %q has no local files to remove", opts.Driver)
	}
	if opts.Driver == DriverBadger {
		return os.RemoveAll(opts.DSN)
	}
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		if err := os.Remove(opts.DSN + suffix); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Exists reports whether a local store is present on disk.
func Exists(opts Options) bool {
	if !IsLocal(opts) {
		return false
	}
	_, err := os.Stat(opts.DSN)
	return err == nil
}

func gormConfig(opts Options) *gorm.Config {
	level := logger.Silent
	if opts.Debug {
		level = logger.Info
	}
	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}

func sqliteDSN(dsn string) string {
	if dsn == "" || dsn == memoryDSN {
		return memoryDSN
	}
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_journal_mode=WAL&_timeout=5000&_foreign_keys=on"
}

func ensureParentDir(path string) error {
	if path == "" || path == memoryDSN {
		return nil
	}
	return ensureDir(filepath.Dir(path))
}

func ensureDir(dir string) error {
	if dir == "" || dir == memoryDSN || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %q: %w", dir, err)
	}
	return nil
}
