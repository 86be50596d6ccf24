// Package domain defines the core domain models for ssmproxy.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - Credentials: the token bundle extracted from a load request
//   - LoadRequest, LicenseRequest, LicenseResponse: the messages exchanged
//     with the host playback framework
//   - SessionState: the SSM session lifecycle states
//   - Payload codec: challenge packaging and license envelope parsing
//   - Errors: domain error codes shared by every layer
package domain
