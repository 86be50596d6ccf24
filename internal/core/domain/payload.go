package domain

import (
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"
)

// challengePayload is the JSON body sent on renewal requests.
type challengePayload struct {
	Challenge string `json:"challenge"`
}

// PackagePayload base64-encodes a raw license challenge and wraps it as
// {"challenge":"<base64>"}.
func PackagePayload(challenge []byte) []byte {
	// Marshalling a struct with a single string field cannot fail.
	out, _ := json.Marshal(challengePayload{
		Challenge: base64.StdEncoding.EncodeToString(challenge),
	})
	return out
}

// Envelope is a license response wrapped by the SSM backend.
type Envelope struct {
	License      []byte
	SessionToken string
}

// rawEnvelope mirrors the JSON shape of a license envelope.
type rawEnvelope struct {
	License      *string `json:"license"`
	SessionToken *string `json:"sessionToken"`
}

// ParseLicenseEnvelope attempts to interpret raw as a license envelope.
//
// The attempt succeeds only when raw is valid UTF-8 holding a JSON object
// with a non-empty, standard base64 "license" field. Any other input yields
// false; a plain binary license is the expected case for that.
func ParseLicenseEnvelope(raw []byte) (Envelope, bool) {
	if len(raw) == 0 || !utf8.Valid(raw) {
		return Envelope{}, false
	}

	var env rawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, false
	}
	if env.License == nil || *env.License == "" {
		return Envelope{}, false
	}

	license, err := base64.StdEncoding.DecodeString(*env.License)
	if err != nil {
		return Envelope{}, false
	}

	out := Envelope{License: license}
	if env.SessionToken != nil {
		out.SessionToken = *env.SessionToken
	}
	return out, true
}
