package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/midwicket/pavilion/internal/smoketest"
	"github.com/midwicket/pavilion/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumPlayers     = 20
	defaultBallsPerPlayer = 60
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultTestTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL       = flag.String("url", "http://localhost:9080", "Base URL of the service")
		adminEmail    = flag.String("admin-email", "admin@pavilion.local", "Admin account email used to create the match")
		adminPassword = flag.String("admin-password", "", "Admin account password")
		numPlayers    = flag.Int("players", defaultNumPlayers, "Number of players to register")
		balls         = flag.Int("balls", defaultBallsPerPlayer, "Number of balls submitted per player")
		workers       = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout       = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoketest.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &smoketest.Config{
		BaseURL:        *baseURL,
		AdminEmail:     *adminEmail,
		AdminPassword:  *adminPassword,
		NumPlayers:     *numPlayers,
		BallsPerPlayer: *balls,
		Workers:        *workers,
		Timeout:        *timeout,
		Verbose:        *verbose,
	}

	if err := smoketest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
