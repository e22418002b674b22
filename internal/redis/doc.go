// Package redis provides the Redis-backed profile store. Unlike the
// PostgreSQL backend, expiry here is native: both the value key and the
// login index key carry the cache TTL.
package redis
