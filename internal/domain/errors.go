package domain

import "errors"

var (
	// ErrProfileNotFound covers both an empty cache slot and an upstream
	// query with zero results.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrUpstreamUnavailable indicates the users API call failed
	// (transport error, non-2xx status, timeout, open circuit).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrTokenExchange indicates the client-credentials exchange failed.
	ErrTokenExchange = errors.New("token exchange failed")
	// ErrStoreUnavailable indicates the profile store could not be
	// reached. Resolution fails open past it on reads.
	ErrStoreUnavailable = errors.New("profile store unavailable")
)
