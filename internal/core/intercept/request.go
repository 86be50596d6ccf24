package intercept

import (
	"context"
	"errors"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/core/ssm"
)

// TransformRequest decorates a license request for the current state.
//
// creds is nil for clear content; sess is nil when no SSM endpoint was
// supplied. req is never modified; the decorated copy is returned together
// with the framing that was applied. The only error is
// domain.ErrSessionTornDown, for a session that has already been closed.
func TransformRequest(ctx context.Context, req *domain.LicenseRequest, creds *domain.Credentials, sess *ssm.Session, reporter Reporter) (*domain.LicenseRequest, domain.RequestKind, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	out := req.Clone()
	if out == nil {
		out = (&domain.LicenseRequest{}).Clone()
	}

	if creds == nil || !creds.HasToken() {
		return out, domain.RequestPassthrough, nil
	}

	if creds.LicenseURI == "" {
		reporter.Report(ctx, domain.ErrMissingLicenseURI)
	}

	if sess == nil {
		out.Headers.Set(domain.HeaderAuthorizations, creds.WholeToken)
		return out, domain.RequestDirect, nil
	}

	renewal, err := sess.BeginLicenseRequest()
	if err != nil {
		return nil, "", err
	}

	out.Headers.Set(domain.HeaderAccept, domain.ContentTypeOctetStream)
	out.Headers.Set(domain.HeaderContentType, domain.ContentTypeOctetStream)

	if !renewal {
		token, err := sess.Token()
		if err != nil {
			return nil, "", err
		}
		out.Headers.Set(domain.HeaderAuthorizations, token)
		return out, domain.RequestInitial, nil
	}

	token, err := sess.RenewalToken()
	switch {
	case errors.Is(err, domain.ErrRenewalWithoutSession):
		// Setup never succeeded; the renewal endpoint would reject us.
		reporter.Report(ctx, err)
		out.Headers.Set(domain.HeaderAuthorizations, creds.WholeToken)
		return out, domain.RequestDirect, nil
	case err != nil:
		return nil, "", err
	}

	out.Body = domain.PackagePayload(req.Body)
	out.URL = sess.RenewalURL()
	out.Headers.Set(domain.HeaderAuthorizations, token)
	out.Headers.Set(domain.HeaderContentType, domain.ContentTypeJSON)
	return out, domain.RequestRenewal, nil
}
