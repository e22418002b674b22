// Package database provides the PostgreSQL-backed profile store: pool
// setup, startup migrations, and the profiles repository with its
// case-insensitive login index and passive TTL filtering.
package database
