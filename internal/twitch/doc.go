// Package twitch talks to the Twitch APIs: the OAuth2 token endpoint for
// app access tokens (client-credentials flow) and the Helix users endpoint
// for profile lookups by login.
package twitch
