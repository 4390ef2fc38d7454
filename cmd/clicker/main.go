package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/anhbaysgalan1/clicker/internal/config"
	"github.com/anhbaysgalan1/clicker/internal/database"
	"github.com/anhbaysgalan1/clicker/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg := config.Load()

	var err error
	switch command {
	case "serve":
		err = serve(cfg)
	case "migrate":
		err = migrate(cfg)
	case "invoke":
		err = invoke(cfg, os.Stdin, os.Stdout)
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("Command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func serve(cfg *config.Config) error {
	clickerServer, err := server.NewClickerServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create clicker server: %w", err)
	}

	// Blocks until shutdown
	return clickerServer.Start()
}

func migrate(cfg *config.Config) error {
	db, err := database.NewConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.AutoMigrate()
}

// invoke handles a single function event read from in and writes the response record to out.
func invoke(cfg *config.Config, in io.Reader, out io.Writer) error {
	event, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}

	clickerServer, err := server.NewClickerServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create clicker server: %w", err)
	}
	defer clickerServer.Close()

	response, err := clickerServer.PlayerHandler().Invoke(context.Background(), event)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	_, err = fmt.Fprintln(out, string(response))
	return err
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: clicker [command]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve     Start the HTTP server (default)")
	fmt.Fprintln(os.Stderr, "  migrate   Create or update the players table and indexes")
	fmt.Fprintln(os.Stderr, "  invoke    Handle one function event from stdin and print the response")
}
