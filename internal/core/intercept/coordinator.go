package intercept

import (
	"context"
	"sync"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/core/ssm"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/metric"
)

// LoadResult is what OnLoadRequest hands back to the playback framework.
type LoadResult struct {
	// Request is the caller's load request, returned unmodified.
	Request *domain.LoadRequest

	Policy     domain.PlaybackPolicy
	Generation uint64
	SessionID  string

	// SetupErr is the non-fatal setup failure, if any. Playback continues
	// on the degraded token path.
	SetupErr error
}

// Status is a token-free view of a coordinator.
type Status struct {
	ReceiverID string                  `json:"receiver_id"`
	Generation uint64                  `json:"generation"`
	Policy     domain.PlaybackPolicy   `json:"policy"`
	Session    *domain.SessionSnapshot `json:"session,omitempty"`
}

// Coordinator owns the interception state of one receiver.
//
// Each load request replaces the state wholesale. The lock guards the
// state swap only; SSM calls run without it and a generation counter keeps
// a superseded session from being written to.
type Coordinator struct {
	receiverID string
	backend    ssm.Backend
	reporter   Reporter
	observer   Observer
	metrics    *metric.Registry

	mu         sync.Mutex
	generation uint64
	creds      *domain.Credentials
	policy     domain.PlaybackPolicy
	session    *ssm.Session
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithReporter sets the failure reporter.
func WithReporter(r Reporter) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.reporter = r
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) { c.observer = o }
}

// WithMetrics enables license traffic counters.
func WithMetrics(m *metric.Registry) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// NewCoordinator creates a coordinator for one receiver.
func NewCoordinator(receiverID string, backend ssm.Backend, opts ...Option) *Coordinator {
	c := &Coordinator{
		receiverID: receiverID,
		backend:    backend,
		reporter:   nopReporter{},
		policy:     domain.PlaybackPolicy{Protection: domain.ProtectionNone},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReceiverID returns the receiver this coordinator serves.
func (c *Coordinator) ReceiverID() string { return c.receiverID }

// OnLoadRequest replaces all held state from a new load request.
//
// When the request carries an SSM endpoint, a new session is set up before
// returning. A session left over from the previous load is superseded and,
// if it holds a backend session, torn down first.
func (c *Coordinator) OnLoadRequest(ctx context.Context, req *domain.LoadRequest) LoadResult {
	ctx = logger.WithReceiverID(ctx, c.receiverID)

	creds, protected := req.Credentials()
	if !protected && req.CustomString(domain.CustomDataToken) != "" {
		c.reporter.Report(ctx, domain.ErrMissingLicenseURI)
	}

	var (
		sess   *ssm.Session
		newErr error
	)

	c.mu.Lock()
	c.generation++
	gen := c.generation
	prev := c.session

	c.creds = nil
	c.session = nil
	c.policy = domain.PlaybackPolicy{Protection: domain.ProtectionNone}
	if protected {
		c.creds = &creds
		c.policy = domain.PlaybackPolicy{
			Protection: domain.ProtectionWidevine,
			LicenseURL: creds.LicenseURI,
		}
		if creds.HasSessionEndpoint() {
			sess, newErr = ssm.NewSession(creds, gen, c.backend)
			c.session = sess
		}
	}
	policy := c.policy
	c.mu.Unlock()

	if prev != nil {
		c.release(ctx, prev)
	}

	result := LoadResult{
		Request:    req,
		Policy:     policy,
		Generation: gen,
	}

	if newErr != nil {
		c.reporter.Report(ctx, newErr)
		result.SetupErr = newErr
	}

	if sess == nil {
		logger.L(ctx).Info("load request",
			"generation", gen,
			"protection", policy.Protection,
		)
		c.notify(ctx, Event{Type: EventLoaded, Protected: protected})
		return result
	}

	ctx = logger.WithSessionID(ctx, sess.ID())
	result.SessionID = sess.ID()

	if err := sess.Setup(ctx); err != nil {
		c.reporter.Report(ctx, err)
		result.SetupErr = err
	}

	logger.L(ctx).Info("load request",
		"generation", gen,
		"protection", policy.Protection,
		"session_state", sess.State(),
	)
	c.notify(ctx, Event{Type: EventSetup, Protected: true, Session: sess.Snapshot(), Err: result.SetupErr})
	return result
}

// release supersedes a session replaced by a newer load request.
func (c *Coordinator) release(ctx context.Context, prev *ssm.Session) {
	prev.Supersede()
	if prev.HasSessionToken() {
		if err := prev.Teardown(ctx); err != nil {
			c.reporter.Report(ctx, err)
		}
	}
	c.notify(ctx, Event{Type: EventSuperseded, Protected: true, Session: prev.Snapshot()})
}

// current returns the state a license call borrows.
func (c *Coordinator) current() (*domain.Credentials, domain.PlaybackPolicy, *ssm.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds, c.policy, c.session
}

// isCurrent reports whether sess is still the session of the latest load.
func (c *Coordinator) isCurrent(sess *ssm.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session == sess && !sess.Superseded()
}

// Exchange is one license round trip. It pins the session the request was
// built for; the response is applied to that session only.
type Exchange struct {
	Request *domain.LicenseRequest
	Kind    domain.RequestKind

	session *ssm.Session
}

// SessionID returns the ID of the pinned session, or "" without one.
func (e *Exchange) SessionID() string {
	if e == nil || e.session == nil {
		return ""
	}
	return e.session.ID()
}

// TransformLicenseRequest decorates an outgoing license request.
//
// An empty URL is filled from the playback policy. If a session setup is
// still running the call waits for it, bounded by ctx. A session replaced
// by a newer load while waiting yields domain.ErrSessionSuperseded.
func (c *Coordinator) TransformLicenseRequest(ctx context.Context, req *domain.LicenseRequest) (*Exchange, error) {
	ctx = logger.WithReceiverID(ctx, c.receiverID)
	creds, policy, sess := c.current()

	if sess != nil {
		ctx = logger.WithSessionID(ctx, sess.ID())
		select {
		case <-sess.Ready():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if !c.isCurrent(sess) {
			err := domain.ErrSessionSuperseded.WithDetails("load request replaced the session")
			c.reporter.Report(ctx, err)
			return nil, err
		}
	}

	if req == nil {
		req = &domain.LicenseRequest{}
	}
	if req.URL == "" && policy.LicenseURL != "" {
		req = req.Clone()
		req.URL = policy.LicenseURL
	}

	out, kind, err := TransformRequest(ctx, req, creds, sess, c.reporter)
	if err != nil {
		c.reporter.Report(ctx, err)
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.LicenseRequests.WithLabelValues(string(kind)).Inc()
	}
	logger.L(ctx).Debug("license request", "kind", kind, "url", out.URL)

	if sess != nil {
		c.notify(ctx, Event{Type: EventLicense, Protected: true, Session: sess.Snapshot()})
	}
	return &Exchange{Request: out, Kind: kind, session: sess}, nil
}

// TransformLicenseResponse unwraps the license response of ex.
//
// A response arriving after its session was replaced is returned raw and
// its session token is dropped.
func (c *Coordinator) TransformLicenseResponse(ctx context.Context, ex *Exchange, raw []byte) ([]byte, domain.ResponseKind) {
	ctx = logger.WithReceiverID(ctx, c.receiverID)
	var sess *ssm.Session
	if ex != nil {
		sess = ex.session
	}
	if sess != nil {
		ctx = logger.WithSessionID(ctx, sess.ID())
		if !c.isCurrent(sess) {
			c.reporter.Report(ctx, domain.ErrSessionSuperseded.WithDetails("license response for a replaced session"))
			if c.metrics != nil {
				c.metrics.LicenseResponses.WithLabelValues(string(domain.ResponseRaw)).Inc()
			}
			return raw, domain.ResponseRaw
		}
	}

	license, kind := UnpackageLicense(ctx, raw, sess, c.reporter)

	if c.metrics != nil {
		c.metrics.LicenseResponses.WithLabelValues(string(kind)).Inc()
	}
	if kind == domain.ResponseEnvelope {
		logger.L(ctx).Debug("license envelope unpacked", "license_bytes", len(license))
		c.notify(ctx, Event{Type: EventRenewed, Protected: true, Session: sess.Snapshot()})
	}
	return license, kind
}

// Teardown closes the current session against the SSM backend.
//
// With no session token held nothing is sent and
// domain.ErrTeardownOnEmptySession is returned as a warning. The session
// stays in place, torn down, until the next load request.
func (c *Coordinator) Teardown(ctx context.Context) error {
	ctx = logger.WithReceiverID(ctx, c.receiverID)
	_, _, sess := c.current()
	if sess == nil {
		c.reporter.Report(ctx, domain.ErrTeardownOnEmptySession)
		return domain.ErrTeardownOnEmptySession
	}
	ctx = logger.WithSessionID(ctx, sess.ID())

	err := sess.Teardown(ctx)
	if err != nil {
		c.reporter.Report(ctx, err)
	} else {
		logger.L(ctx).Info("ssm session torn down")
	}
	c.notify(ctx, Event{Type: EventTornDown, Protected: true, Session: sess.Snapshot(), Err: err})
	return err
}

// Status returns a snapshot of the coordinator's state.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	st := Status{
		ReceiverID: c.receiverID,
		Generation: c.generation,
		Policy:     c.policy,
	}
	sess := c.session
	c.mu.Unlock()

	if sess != nil {
		snap := sess.Snapshot()
		st.Session = &snap
	}
	return st
}

func (c *Coordinator) notify(ctx context.Context, ev Event) {
	if c.observer == nil {
		return
	}
	ev.ReceiverID = c.receiverID
	c.observer.Observe(ctx, ev)
}
