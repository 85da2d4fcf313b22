// Package gcaltest provides an in-process fake of the Google OAuth2 token
// endpoint and the Calendar API v3 events endpoints for tests.
//
// Only the surface the adapter relies on is implemented: the authorization-code
// and refresh-token grants, and events list/insert. Codes are single-use,
// refresh tokens can be revoked, and events calls require a live access token.
package gcaltest
