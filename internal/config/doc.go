// Package config provides environment-based configuration.
//
// Loads plain environment variables (a .env file is read by main via
// godotenv before Load runs), applies defaults, and validates the
// combinations the selected store backend requires.
package config
