// Package main is the dbdeck command-line entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dbdeck/dbdeck/internal/cli"

	// Register the built-in database adapters.
	_ "github.com/dbdeck/dbdeck/pkg/adapters/mysql"
	_ "github.com/dbdeck/dbdeck/pkg/adapters/postgres"
	_ "github.com/dbdeck/dbdeck/pkg/adapters/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
