package main

import (
	"fmt"
	"os"
	"strings"

	"inkpost/service"
)

const cliVersion = "1.0.0"

// exit is replaced in tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args to a command.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help", "-h", "--help":
		printHelp()
	case "version":
		fmt.Printf("inkpost version %s\n", cliVersion)
	case "serve", "init", "backup", "restore", "clean":
		if code := service.HandleCommand(append([]string{cmd}, os.Args[2:]...)); code != 0 {
			exit(code)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	service.PrintHelp()
}
