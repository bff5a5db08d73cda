package smoketest

import "os"

// ShowHelp prints usage information for the smoke test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Pavilion Smoke Test Tool
========================

An end-to-end tool that exercises a running Pavilion league service:
it registers players, creates a match, submits deliveries concurrently
and verifies the resulting rankings.

Usage:
  go run cmd/smoke-test/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -admin-email string
        Admin account email used to create the match (default "admin@pavilion.local")
  -admin-password string
        Admin account password
  -players int
        Number of players to register (default 20)
  -balls int
        Number of balls submitted per player (default 60)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/smoke-test/main.go -admin-password secret

  # Heavier run against a remote service
  go run cmd/smoke-test/main.go -url http://league.example:8080 -players 100 -balls 120 -workers 16
`)
}
