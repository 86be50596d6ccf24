package domain

import "strings"

// TokenSeparator joins the segments of a composite token.
const TokenSeparator = ","

// Credentials is the token bundle extracted from one load request.
//
// It is immutable for the lifetime of a playback session; a new load
// request produces a new value.
type Credentials struct {
	// WholeToken is the full credential handed to the player. It may be a
	// comma-joined composite of several sub-tokens.
	WholeToken string `json:"-"`

	// LicenseURI is the license server URL for protected content.
	LicenseURI string `json:"license_uri"`

	// SessionEndpoint is the optional SSM base URL. When empty no SSM
	// session is created for the playback.
	SessionEndpoint string `json:"session_endpoint,omitempty"`
}

// BaseToken returns the first comma-separated segment of the whole token,
// or the whole token when it contains no comma.
func (c Credentials) BaseToken() string {
	return BaseToken(c.WholeToken)
}

// HasToken reports whether a token was supplied.
func (c Credentials) HasToken() bool {
	return c.WholeToken != ""
}

// HasSessionEndpoint reports whether an SSM endpoint was supplied.
func (c Credentials) HasSessionEndpoint() bool {
	return c.SessionEndpoint != ""
}

// BaseToken returns the segment of whole before the first comma.
func BaseToken(whole string) string {
	if i := strings.Index(whole, TokenSeparator); i >= 0 {
		return whole[:i]
	}
	return whole
}

// JoinTokens composes a token from a prefix and a session token.
// An empty session token still yields the trailing separator.
func JoinTokens(prefix, sessionToken string) string {
	return prefix + TokenSeparator + sessionToken
}
