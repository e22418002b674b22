// Package domain holds the core types and interfaces shared across the
// service: the cached Profile record, the repository and fetcher contracts,
// and the sentinel errors every layer maps failures onto.
package domain
