package client

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/sufra-app/restaurant-api/models"
)

// Decision is the outcome of a gate check.
type Decision int

const (
	DecisionDeny Decision = iota
	DecisionAllow
	DecisionRedirectSignIn
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionRedirectSignIn:
		return "redirect"
	default:
		return "deny"
	}
}

// GateResult carries the decision plus whatever was resolved along the way.
type GateResult struct {
	Decision    Decision
	Reason      string
	RedirectURL string
	Session     *Session
	Roles       []models.Role
}

// GateOptions configures the access gate. Zero values get defaults.
type GateOptions struct {
	// SessionTimeout bounds the session lookup. Default 5s.
	SessionTimeout time.Duration
	// RoleTimeout bounds the role lookup. Default 5s.
	RoleTimeout time.Duration
	// SignInPath is where unauthenticated users are sent. Default /login.
	SignInPath string
}

// AccessGate decides whether the current session may enter a protected
// area. It fails closed: a lookup that errors or times out denies access
// rather than letting the caller through on unknown roles.
type AccessGate struct {
	api  SessionAPI
	opts GateOptions

	mu       sync.Mutex
	inFlight bool
	failsafe *time.Timer
}

func NewAccessGate(api SessionAPI, opts GateOptions) *AccessGate {
	if opts.SessionTimeout <= 0 {
		opts.SessionTimeout = 5 * time.Second
	}
	if opts.RoleTimeout <= 0 {
		opts.RoleTimeout = 5 * time.Second
	}
	if opts.SignInPath == "" {
		opts.SignInPath = "/login"
	}
	return &AccessGate{api: api, opts: opts}
}

// begin claims the single-flight slot. The failsafe timer clears a wedged
// check so one hung lookup cannot lock the gate forever.
func (g *AccessGate) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight {
		return false
	}
	g.inFlight = true
	g.failsafe = time.AfterFunc(g.opts.SessionTimeout+g.opts.RoleTimeout+2*time.Second, func() {
		g.mu.Lock()
		g.inFlight = false
		g.mu.Unlock()
	})
	return true
}

func (g *AccessGate) end() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failsafe != nil {
		g.failsafe.Stop()
		g.failsafe = nil
	}
	g.inFlight = false
}

// Check resolves the session and roles within their timeouts and decides
// access to an area requiring the given role. nextPath is the page being
// protected; it is preserved through the sign-in redirect.
func (g *AccessGate) Check(ctx context.Context, required models.Role, nextPath string) GateResult {
	if !g.begin() {
		return GateResult{Decision: DecisionDeny, Reason: "check already in progress"}
	}
	defer g.end()

	sessCtx, cancel := context.WithTimeout(ctx, g.opts.SessionTimeout)
	session, err := g.api.GetSession(sessCtx)
	cancel()
	if err != nil {
		return GateResult{Decision: DecisionDeny, Reason: "session lookup failed"}
	}
	if session == nil || session.UserID == "" {
		return GateResult{
			Decision:    DecisionRedirectSignIn,
			Reason:      "sign-in required",
			RedirectURL: g.opts.SignInPath + "?next=" + url.QueryEscape(nextPath),
			Session:     session,
		}
	}

	roleCtx, cancel := context.WithTimeout(ctx, g.opts.RoleTimeout)
	roles, err := g.api.Roles(roleCtx)
	cancel()
	if err != nil {
		return GateResult{Decision: DecisionDeny, Reason: "role lookup failed", Session: session}
	}

	for _, r := range roles {
		if r.Implies(required) {
			return GateResult{Decision: DecisionAllow, Session: session, Roles: roles}
		}
	}

	// A user with no grants at all asking for admin may be the very first
	// operator; offer them the one-time bootstrap.
	if len(roles) == 0 && required == models.RoleAdmin {
		bootCtx, cancel := context.WithTimeout(ctx, g.opts.RoleTimeout)
		granted, err := g.api.BootstrapAdmin(bootCtx)
		cancel()
		if err == nil && granted {
			return GateResult{
				Decision: DecisionAllow,
				Session:  session,
				Roles:    []models.Role{models.RoleAdmin},
			}
		}
	}

	return GateResult{Decision: DecisionDeny, Reason: "missing role", Session: session, Roles: roles}
}
