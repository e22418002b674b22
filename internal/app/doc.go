// Package app is the application layer: it orchestrates the profile
// store and the Twitch client into the Resolve / ForceRefresh use cases
// consumed by the HTTP handlers.
package app
