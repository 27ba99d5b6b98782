package service

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"inkpost/app/config"
	"inkpost/app/logger"
)

// Default directory for backups written without an explicit file name.
var backupDir = "data/backups"

// isTerminal reports whether stdin is interactive. Tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// commandEnv is what every subcommand starts from.
type commandEnv struct {
	cfg  *config.Config
	log  *slog.Logger
	args []string
	yes  bool
}

// load parses the subcommand's flags into a configuration. --yes and -y are
// taken out before the remaining flags reach the config loader.
func load(name string, args []string) (*commandEnv, error) {
	env := &commandEnv{}
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "--yes" || arg == "-y" {
			env.yes = true
			continue
		}
		rest = append(rest, arg)
	}

	cfg, positional, err := config.Load(name, rest)
	if err != nil {
		return nil, err
	}
	env.cfg = cfg
	env.log = logger.New(cfg.Env)
	env.args = positional
	return env, nil
}

// confirm asks a yes/no question on the terminal. Without a terminal it
// only proceeds when --yes was given.
func confirm(prompt string, yes bool) bool {
	if yes {
		return true
	}
	if !isTerminal() {
		fmt.Println("Refusing to continue without a terminal; pass --yes to confirm")
		return false
	}

	fmt.Printf("%s [y/N] ", prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}
