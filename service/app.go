package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"inkpost/app/repositories"
	"inkpost/app/server"
)

// RunAppServer serves the blog until SIGINT or SIGTERM and returns the
// process exit code.
func RunAppServer(args []string) int {
	env, err := load("serve", args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if len(env.args) > 0 {
		fmt.Printf("Error: unexpected arguments: %s\n", strings.Join(env.args, " "))
		return 1
	}

	store, err := repositories.Open(env.cfg.Database.StoreOptions(), env.log)
	if err != nil {
		env.log.Error("failed to open database", slog.String("error", err.Error()))
		return 1
	}
	defer store.Close()

	srv, err := server.New(env.cfg, env.log, store)
	if err != nil {
		env.log.Error("failed to build server", slog.String("error", err.Error()))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		env.log.Error("server error", slog.String("error", err.Error()))
		return 1
	}
	env.log.Info("blog service stopped")
	return 0
}
