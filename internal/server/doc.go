// Package server is the HTTP layer: an Echo instance exposing the
// profile lookup routes plus health, metrics, and version endpoints.
package server
