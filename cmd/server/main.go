package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minimapd/minimapd/internal/config"
	"github.com/minimapd/minimapd/internal/server"
)

func main() {
	// Parse flags; flags override environment variables
	port := flag.String("port", "", "Server port")
	host := flag.String("host", "", "Server bind address")
	dev := flag.Bool("dev", false, "Development mode (colored logs, debug level)")
	defaultsFile := flag.String("defaults", "", "YAML file with minimap defaults")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if *defaultsFile != "" {
		overlay, err := config.LoadMinimapDefaults(*defaultsFile)
		if err != nil {
			log.Fatalf("Failed to load minimap defaults: %v", err)
		}
		overlay.File = *defaultsFile
		cfg.Minimap = overlay
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
