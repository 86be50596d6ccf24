package ssm

import (
	"context"
	"sync"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// Session is one playback session against the SSM backend.
//
// A Session is created per load request and never reused: the coordinator
// supersedes it when the next load request arrives. All methods are safe
// for concurrent use; the lock is never held across a backend call.
type Session struct {
	id         string
	generation uint64
	endpoint   string
	wholeToken string
	baseToken  string
	backend    Backend
	now        func() time.Time

	mu               sync.Mutex
	state            domain.SessionState
	sessionToken     string
	licenseRequested bool
	setupInFlight    bool
	superseded       bool
	renewals         int
	createdAt        time.Time
	establishedAt    time.Time
	tornDownAt       time.Time

	readyOnce sync.Once
	ready     chan struct{}
}

// NewSession creates an unestablished session for the given credentials.
// generation tags the session with the load request that created it.
func NewSession(creds domain.Credentials, generation uint64, backend Backend) (*Session, error) {
	if !creds.HasToken() {
		return nil, domain.ErrMissingArgument.WithDetails("token is required")
	}
	if !creds.HasSessionEndpoint() {
		return nil, domain.ErrMissingArgument.WithDetails("session endpoint is required")
	}
	if backend == nil {
		return nil, domain.ErrMissingArgument.WithDetails("backend is required")
	}

	id, err := domain.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:         id,
		generation: generation,
		endpoint:   creds.SessionEndpoint,
		wholeToken: creds.WholeToken,
		baseToken:  creds.BaseToken(),
		backend:    backend,
		now:        time.Now,
		state:      domain.SessionUnestablished,
		ready:      make(chan struct{}),
	}
	s.createdAt = s.now()
	return s, nil
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Generation returns the load generation that created the session.
func (s *Session) Generation() uint64 { return s.generation }

// Endpoint returns the SSM base URL.
func (s *Session) Endpoint() string { return s.endpoint }

// State returns the current lifecycle state.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready returns a channel closed once the first setup attempt has completed,
// successfully or not, or the session was torn down or superseded.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

func (s *Session) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Setup opens the session against the backend. It blocks until the backend
// answers.
//
// On failure the session stays Unestablished and may be set up again. A
// result arriving after the session was superseded or torn down is not
// applied; an orphaned backend session is released on the spot.
func (s *Session) Setup(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.state == domain.SessionTornDown:
		s.mu.Unlock()
		return domain.ErrSessionTornDown
	case s.superseded:
		s.mu.Unlock()
		return domain.ErrSessionSuperseded
	case s.state == domain.SessionEstablished:
		s.mu.Unlock()
		return domain.ErrSessionState.WithDetails("session already established")
	case s.setupInFlight:
		s.mu.Unlock()
		return domain.ErrSessionState.WithDetails("setup already in progress")
	}
	s.setupInFlight = true
	s.mu.Unlock()
	defer s.markReady()

	token, err := s.backend.Setup(ctx, s.endpoint, s.wholeToken)

	s.mu.Lock()
	s.setupInFlight = false
	stale := s.superseded || s.state == domain.SessionTornDown
	if !stale && err == nil {
		s.sessionToken = token
		s.state = domain.SessionEstablished
		s.establishedAt = s.now()
	}
	superseded := s.superseded
	s.mu.Unlock()

	if !stale {
		return err
	}

	cause := err
	if err == nil && token != "" {
		// Nobody will ever tear this one down. A failed release surfaces
		// as the cause.
		cause = s.backend.Teardown(context.WithoutCancel(ctx), s.endpoint, token)
	}
	if superseded {
		return domain.ErrSessionSuperseded.WithCause(cause)
	}
	return domain.ErrSessionTornDown.WithCause(cause)
}

// Token returns wholeToken + "," + sessionToken. Before setup succeeds the
// session token part is empty, which degrades the token's usefulness.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.SessionTornDown {
		return "", domain.ErrSessionTornDown
	}
	return domain.JoinTokens(s.wholeToken, s.sessionToken), nil
}

// RenewalToken returns baseToken + "," + sessionToken.
func (s *Session) RenewalToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.SessionTornDown {
		return "", domain.ErrSessionTornDown
	}
	if s.sessionToken == "" {
		return "", domain.ErrRenewalWithoutSession
	}
	return domain.JoinTokens(s.baseToken, s.sessionToken), nil
}

// RenewalURL returns {endpoint}/v1/sessions/renewal-license-wv.
func (s *Session) RenewalURL() string {
	return JoinPath(s.endpoint, RenewalPath)
}

// HasSessionToken reports whether a session token is currently held.
func (s *Session) HasSessionToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionToken != ""
}

// LicenseRequested reports whether a license request has been transformed
// for this session.
func (s *Session) LicenseRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.licenseRequested
}

// BeginLicenseRequest marks a license request as issued and reports whether
// an earlier one had already been issued, i.e. whether this is a renewal.
func (s *Session) BeginLicenseRequest() (renewal bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.SessionTornDown {
		return false, domain.ErrSessionTornDown
	}
	renewal = s.licenseRequested
	s.licenseRequested = true
	if renewal {
		s.renewals++
	}
	return renewal, nil
}

// UpdateSessionToken stores a renewed session token taken from a license
// response. An empty token leaves the current one in place. A superseded
// session takes no new token.
func (s *Session) UpdateSessionToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.superseded {
		return domain.ErrSessionSuperseded
	}
	if s.state == domain.SessionTornDown {
		return domain.ErrSessionTornDown
	}
	if token == "" {
		return nil
	}
	s.sessionToken = token
	if s.state == domain.SessionUnestablished {
		s.state = domain.SessionEstablished
		s.establishedAt = s.now()
	}
	return nil
}

// Supersede marks the session as replaced by a newer load request. Pending
// setup results will not be applied.
func (s *Session) Supersede() {
	s.mu.Lock()
	s.superseded = true
	s.mu.Unlock()
	s.markReady()
}

// Superseded reports whether the session was replaced.
func (s *Session) Superseded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.superseded
}

// Teardown closes the session against the backend and moves it to TornDown.
//
// Without a session token (never established, or already torn down) no
// call is made and domain.ErrTeardownOnEmptySession is returned as a
// warning. A non-200 answer yields domain.ErrTeardownFailed; the session is
// TornDown either way.
func (s *Session) Teardown(ctx context.Context) error {
	s.mu.Lock()
	token := s.sessionToken
	s.sessionToken = ""
	if s.state != domain.SessionTornDown {
		s.state = domain.SessionTornDown
		s.tornDownAt = s.now()
	}
	s.mu.Unlock()
	s.markReady()

	if token == "" {
		return domain.ErrTeardownOnEmptySession
	}
	return s.backend.Teardown(ctx, s.endpoint, token)
}

// Snapshot returns a token-free view of the session.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionSnapshot{
		ID:               s.id,
		Generation:       s.generation,
		Endpoint:         s.endpoint,
		State:            s.state,
		HasSessionToken:  s.sessionToken != "",
		LicenseRequested: s.licenseRequested,
		Renewals:         s.renewals,
		CreatedAt:        s.createdAt,
		EstablishedAt:    s.establishedAt,
		TornDownAt:       s.tornDownAt,
	}
}
