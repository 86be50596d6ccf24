package receiver

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/core/intercept"
	"github.com/yndnr/ssmproxy-go/internal/core/ssm"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
	"github.com/yndnr/ssmproxy-go/pkg/cmap"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// NewID returns a fresh receiver ID.
func NewID() string {
	return uuid.NewString()
}

// ValidateID checks a client-supplied receiver ID.
func ValidateID(id string) error {
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("receiver id is required")
	}
	if !idPattern.MatchString(id) {
		return domain.ErrInvalidArgument.WithDetails("receiver id must be 1-64 characters of [A-Za-z0-9._-]")
	}
	return nil
}

// Config configures a Registry.
type Config struct {
	// AllowedHosts restricts the hosts a load request may name for its
	// SSM endpoint and license server. Entries starting with "*." match
	// any subdomain. Empty allows every host.
	AllowedHosts []string
}

// Registry maps receiver IDs to coordinators.
type Registry struct {
	receivers *cmap.Map[string, *intercept.Coordinator]
	backend   ssm.Backend
	opts      []intercept.Option
	allowed   []string
}

// NewRegistry creates a registry whose coordinators share backend and opts.
func NewRegistry(backend ssm.Backend, cfg Config, opts ...intercept.Option) *Registry {
	allowed := make([]string, 0, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed = append(allowed, h)
		}
	}
	return &Registry{
		receivers: cmap.New[string, *intercept.Coordinator](),
		backend:   backend,
		opts:      opts,
		allowed:   allowed,
	}
}

// Get returns the coordinator for id.
func (r *Registry) Get(id string) (*intercept.Coordinator, error) {
	c, ok := r.receivers.Get(id)
	if !ok {
		return nil, domain.ErrReceiverNotFound.WithDetails(id)
	}
	return c, nil
}

// GetOrCreate returns the coordinator for id, creating it if needed.
func (r *Registry) GetOrCreate(id string) (*intercept.Coordinator, bool, error) {
	if err := ValidateID(id); err != nil {
		return nil, false, err
	}
	c, existed := r.receivers.GetOrCreate(id, func() *intercept.Coordinator {
		return intercept.NewCoordinator(id, r.backend, r.opts...)
	})
	return c, !existed, nil
}

// Load runs a load request on the receiver, creating it on first use.
func (r *Registry) Load(ctx context.Context, id string, req *domain.LoadRequest) (intercept.LoadResult, error) {
	if err := r.CheckEndpoints(req); err != nil {
		return intercept.LoadResult{}, err
	}
	c, created, err := r.GetOrCreate(id)
	if err != nil {
		return intercept.LoadResult{}, err
	}
	if created {
		logger.L(ctx).Info("receiver registered", "receiver_id", id)
	}
	return c.OnLoadRequest(ctx, req), nil
}

// CheckEndpoints verifies the request's SSM and license hosts against the
// allowlist.
func (r *Registry) CheckEndpoints(req *domain.LoadRequest) error {
	if len(r.allowed) == 0 {
		return nil
	}
	for _, key := range []string{domain.CustomDataSSMURI, domain.CustomDataLicenseURI} {
		raw := req.CustomString(key)
		if raw == "" {
			continue
		}
		if !r.hostAllowed(raw) {
			return domain.ErrEndpointNotAllowed.WithDetails(key + ": " + raw)
		}
	}
	return nil
}

// AllowURL reports whether a license target URL passes the allowlist.
func (r *Registry) AllowURL(raw string) error {
	if len(r.allowed) == 0 || r.hostAllowed(raw) {
		return nil
	}
	return domain.ErrEndpointNotAllowed.WithDetails(raw)
}

func (r *Registry) hostAllowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, a := range r.allowed {
		if suffix, ok := strings.CutPrefix(a, "*"); ok {
			if strings.HasSuffix(host, suffix) {
				return true
			}
			continue
		}
		if host == a {
			return true
		}
	}
	return false
}

// List returns the status of every receiver ordered by ID.
func (r *Registry) List() []intercept.Status {
	coords := r.receivers.Values()
	out := make([]intercept.Status, 0, len(coords))
	for _, c := range coords {
		out = append(out, c.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceiverID < out[j].ReceiverID })
	return out
}

// Remove tears down the receiver's session and forgets the receiver.
func (r *Registry) Remove(ctx context.Context, id string) error {
	c, ok := r.receivers.Pop(id)
	if !ok {
		return domain.ErrReceiverNotFound.WithDetails(id)
	}
	return ignoreEmpty(c.Teardown(ctx))
}

// Close tears down every receiver. It is meant for shutdown.
func (r *Registry) Close(ctx context.Context) error {
	var errs []error
	for _, c := range r.receivers.Drain() {
		if err := ignoreEmpty(c.Teardown(ctx)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of registered receivers.
func (r *Registry) Len() int {
	return r.receivers.Count()
}

// SessionStates counts the receivers' current sessions by state.
func (r *Registry) SessionStates() map[domain.SessionState]int {
	counts := make(map[domain.SessionState]int)
	r.receivers.Range(func(_ string, c *intercept.Coordinator) bool {
		if st := c.Status(); st.Session != nil {
			counts[st.Session.State]++
		}
		return true
	})
	return counts
}

func ignoreEmpty(err error) error {
	if errors.Is(err, domain.ErrTeardownOnEmptySession) {
		return nil
	}
	return err
}
