package intercept

import (
	"context"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/core/ssm"
)

// UnpackageLicense extracts the license bytes from a license response.
//
// With a session, an SSM envelope is decoded and its session token, if any,
// replaces the session's current one. Anything that is not an envelope is
// a plain license and is returned unchanged. Without a session the response
// is always returned unchanged.
func UnpackageLicense(ctx context.Context, raw []byte, sess *ssm.Session, reporter Reporter) ([]byte, domain.ResponseKind) {
	if sess == nil {
		return raw, domain.ResponseRaw
	}

	env, ok := domain.ParseLicenseEnvelope(raw)
	if !ok {
		return raw, domain.ResponseRaw
	}

	if err := sess.UpdateSessionToken(env.SessionToken); err != nil && reporter != nil {
		reporter.Report(ctx, err)
	}
	return env.License, domain.ResponseEnvelope
}
