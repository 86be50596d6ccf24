package domain

import (
	"encoding/json"
	"strings"
)

// Custom data keys read from an incoming load request.
const (
	CustomDataToken      = "token"
	CustomDataLicenseURI = "widevineLicenceUri"
	CustomDataSSMURI     = "ssmUri"
)

// LoadRequest is a media load message delivered by the host playback framework.
//
// Only the custom data fields listed above are interpreted. Fields not
// modeled here are kept in Extra and written back on marshal, so the
// request round-trips unchanged.
type LoadRequest struct {
	RequestID int64      `json:"requestId,omitempty"`
	Media     *MediaInfo `json:"media,omitempty"`
	Autoplay  *bool      `json:"autoplay,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MediaInfo describes the media item being loaded.
type MediaInfo struct {
	ContentID   string         `json:"contentId,omitempty"`
	ContentURL  string         `json:"contentUrl,omitempty"`
	ContentType string         `json:"contentType,omitempty"`
	CustomData  map[string]any `json:"customData,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type (
	loadRequestFields LoadRequest
	mediaInfoFields   MediaInfo
)

// UnmarshalJSON implements json.Unmarshaler.
func (r *LoadRequest) UnmarshalJSON(data []byte) error {
	var f loadRequestFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknownFields(data, "requestId", "media", "autoplay")
	if err != nil {
		return err
	}
	*r = LoadRequest(f)
	r.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r LoadRequest) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(loadRequestFields(r), r.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *MediaInfo) UnmarshalJSON(data []byte) error {
	var f mediaInfoFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknownFields(data, "contentId", "contentUrl", "contentType", "customData")
	if err != nil {
		return err
	}
	*m = MediaInfo(f)
	m.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m MediaInfo) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(mediaInfoFields(m), m.Extra)
}

// unknownFields returns the members of the JSON object data whose names
// match none of known. Matching is case-insensitive like encoding/json.
func unknownFields(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for name := range all {
		for _, k := range known {
			if strings.EqualFold(name, k) {
				delete(all, name)
				break
			}
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	for name, raw := range extra {
		if _, ok := out[name]; !ok {
			out[name] = raw
		}
	}
	return json.Marshal(out)
}

// CustomString returns the custom data value for key when it is a string.
func (r *LoadRequest) CustomString(key string) string {
	if r == nil || r.Media == nil || r.Media.CustomData == nil {
		return ""
	}
	s, _ := r.Media.CustomData[key].(string)
	return s
}

// Credentials extracts the token bundle from the request's custom data.
//
// The second result is false when the token or the license URI is absent,
// which signals clear (unencrypted) content rather than an error.
func (r *LoadRequest) Credentials() (Credentials, bool) {
	token := r.CustomString(CustomDataToken)
	licenseURI := r.CustomString(CustomDataLicenseURI)
	if token == "" || licenseURI == "" {
		return Credentials{}, false
	}
	return Credentials{
		WholeToken:      token,
		LicenseURI:      licenseURI,
		SessionEndpoint: r.CustomString(CustomDataSSMURI),
	}, true
}

// ProtectionSystem identifies the downstream content protection system.
type ProtectionSystem string

const (
	// ProtectionNone is used for clear content.
	ProtectionNone ProtectionSystem = "none"

	// ProtectionWidevine routes license requests through Widevine.
	ProtectionWidevine ProtectionSystem = "widevine"
)

// PlaybackPolicy is the license-request policy derived from a load request.
type PlaybackPolicy struct {
	Protection ProtectionSystem `json:"protection"`
	LicenseURL string           `json:"license_url,omitempty"`
}
