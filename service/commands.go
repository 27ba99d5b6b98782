package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

// HandleCommand runs a blog subcommand and returns the process exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		PrintHelp()
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "serve":
		return RunAppServer(args[1:])
	case "clean":
		return clean(args[1:])
	case "init":
		return initDb(args[1:])
	case "backup":
		return backup(args[1:])
	case "restore":
		return restore(args[1:])
	case "help":
		PrintHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		PrintHelp()
		return 1
	}
}

// PrintHelp prints usage for every command.
func PrintHelp() {
	helpText := `Usage: inkpost <command> [options]

Commands:
  serve                  Run the blog web server
  init                   Create the database schema
  backup [file]          Export all posts as JSON lines
  restore <file> [--yes] Import posts from a backup into an empty database
  clean [--yes]          Delete the local database
  version                Show version information
  help                   Display this help message

Options:
  --config <file>        Read configuration from file
  --env <env>            dev, prod or test
  --addr <address>       HTTP listen address (default :8080)
  --db-driver <driver>   sqlite, postgres or badger (default sqlite)
  --db-dsn <dsn>         Database file, directory or connection string (default blog.db)
  --markdown             Render post content as markdown
`
	fmt.Println(helpText)
}

// clean removes the local database.
func clean(args []string) int {
	env, err := load("clean", args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	opts := env.cfg.Database.StoreOptions()
	if !repositories.IsLocal(opts) {
		fmt.Printf("Error: clean only removes local sqlite or badger databases, not %q\n", opts.Driver)
		return 1
	}
	if !repositories.Exists(opts) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.", env.yes) {
		fmt.Println("Operation cancelled")
		return 1
	}

	if err := repositories.Remove(opts); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// initDb creates the database and its schema.
func initDb(args []string) int {
	env, err := load("init", args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	opts := env.cfg.Database.StoreOptions()
	if repositories.Exists(opts) {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}

	store, err := repositories.Open(opts, env.log)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}

	fmt.Println("Database initialized successfully")
	return 0
}

// backup writes every post to a JSON lines file.
func backup(args []string) int {
	env, err := load("backup", args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	opts := env.cfg.Database.StoreOptions()
	if repositories.IsLocal(opts) && !repositories.Exists(opts) {
		fmt.Println("No database exists to backup")
		return 1
	}

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.jsonl", time.Now().Unix()))
	if len(env.args) > 0 {
		backupFile = env.args[0]
	}
	if err := os.MkdirAll(filepath.Dir(backupFile), 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := repositories.Open(opts, env.log)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}

	if err := store.Backup(context.Background(), f); err != nil {
		f.Close()
		os.Remove(backupFile)
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Printf("Failed to write backup file: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore loads a backup into an empty database, replacing a local one
// after confirmation.
func restore(args []string) int {
	env, err := load("restore", args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if len(env.args) < 1 {
		fmt.Println("Error: backup file path required for restore")
		return 1
	}
	backupFile := env.args[0]

	fi, err := os.Stat(backupFile)
	if err != nil {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	// The whole backup is decoded before an existing database is touched.
	posts, err := readBackupFile(backupFile)
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	opts := env.cfg.Database.StoreOptions()
	if repositories.Exists(opts) {
		if !confirm("Existing database found. Do you want to replace it?", env.yes) {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := repositories.Remove(opts); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	store, err := repositories.Open(opts, env.log)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	err = store.Restore(context.Background(), posts)
	if errors.Is(err, repositories.ErrStoreNotEmpty) {
		fmt.Println("Error: database already contains posts; restore needs an empty database")
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

func readBackupFile(path string) ([]*models.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()
	return repositories.ReadBackup(f)
}
