package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufra-app/restaurant-api/models"
)

type fakeSessionAPI struct {
	mu             sync.Mutex
	session        *Session
	sessionErr     error
	sessionBlock   chan struct{} // if set, GetSession waits on it or ctx
	roles          []models.Role
	rolesErr       error
	granted        bool
	grantErr       error
	bootstrapCalls int
}

func (f *fakeSessionAPI) GetSession(ctx context.Context) (*Session, error) {
	f.mu.Lock()
	block := f.sessionBlock
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.sessionErr
}

func (f *fakeSessionAPI) Roles(ctx context.Context) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles, f.rolesErr
}

func (f *fakeSessionAPI) BootstrapAdmin(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bootstrapCalls++
	return f.granted, f.grantErr
}

func user(id string) *Session { return &Session{UserID: id} }

func TestGateRedirectsAnonymous(t *testing.T) {
	g := NewAccessGate(&fakeSessionAPI{}, GateOptions{})

	res := g.Check(context.Background(), models.RoleKitchen, "/kitchen/board")

	assert.Equal(t, DecisionRedirectSignIn, res.Decision)
	assert.Equal(t, "/login?next=%2Fkitchen%2Fboard", res.RedirectURL)
}

func TestGateRedirectsGuestSession(t *testing.T) {
	api := &fakeSessionAPI{session: &Session{GuestID: "guest_abc"}}
	g := NewAccessGate(api, GateOptions{})

	res := g.Check(context.Background(), models.RoleKitchen, "/kitchen")
	assert.Equal(t, DecisionRedirectSignIn, res.Decision)
}

func TestGateDeniesOnSessionError(t *testing.T) {
	api := &fakeSessionAPI{sessionErr: assert.AnError}
	g := NewAccessGate(api, GateOptions{})

	res := g.Check(context.Background(), models.RoleKitchen, "/kitchen")
	assert.Equal(t, DecisionDeny, res.Decision)
}

func TestGateDeniesOnRoleError(t *testing.T) {
	api := &fakeSessionAPI{session: user("u1"), rolesErr: assert.AnError}
	g := NewAccessGate(api, GateOptions{})

	res := g.Check(context.Background(), models.RoleKitchen, "/kitchen")
	assert.Equal(t, DecisionDeny, res.Decision)
}

func TestGateDeniesOnSessionTimeout(t *testing.T) {
	api := &fakeSessionAPI{sessionBlock: make(chan struct{})}
	g := NewAccessGate(api, GateOptions{SessionTimeout: 20 * time.Millisecond})

	res := g.Check(context.Background(), models.RoleKitchen, "/kitchen")
	assert.Equal(t, DecisionDeny, res.Decision)
}

func TestGateAllowsMatchingRole(t *testing.T) {
	api := &fakeSessionAPI{session: user("u1"), roles: []models.Role{models.RoleKitchen}}
	g := NewAccessGate(api, GateOptions{})

	res := g.Check(context.Background(), models.RoleKitchen, "/kitchen")
	assert.Equal(t, DecisionAllow, res.Decision)
}

func TestGateAdminImpliesKitchen(t *testing.T) {
	api := &fakeSessionAPI{session: user("u1"), roles: []models.Role{models.RoleAdmin}}
	g := NewAccessGate(api, GateOptions{})

	res := g.Check(context.Background(), models.RoleKitchen, "/kitchen")
	assert.Equal(t, DecisionAllow, res.Decision)
}

func TestGateKitchenDoesNotImplyAdmin(t *testing.T) {
	api := &fakeSessionAPI{session: user("u1"), roles: []models.Role{models.RoleKitchen}}
	g := NewAccessGate(api, GateOptions{})

	res := g.Check(context.Background(), models.RoleAdmin, "/admin")
	assert.Equal(t, DecisionDeny, res.Decision)
	assert.Zero(t, api.bootstrapCalls, "bootstrap is only for users with no grants")
}

func TestGateBootstrapGrantsFirstAdmin(t *testing.T) {
	api := &fakeSessionAPI{session: user("u1"), granted: true}
	g := NewAccessGate(api, GateOptions{})

	res := g.Check(context.Background(), models.RoleAdmin, "/admin")
	assert.Equal(t, DecisionAllow, res.Decision)
	assert.Equal(t, []models.Role{models.RoleAdmin}, res.Roles)
	assert.Equal(t, 1, api.bootstrapCalls)
}

func TestGateBootstrapRefusedDenies(t *testing.T) {
	api := &fakeSessionAPI{session: user("u1"), granted: false}
	g := NewAccessGate(api, GateOptions{})

	res := g.Check(context.Background(), models.RoleAdmin, "/admin")
	assert.Equal(t, DecisionDeny, res.Decision)
	assert.Equal(t, 1, api.bootstrapCalls)
}

func TestGateBootstrapNotAttemptedForKitchen(t *testing.T) {
	api := &fakeSessionAPI{session: user("u1"), granted: true}
	g := NewAccessGate(api, GateOptions{})

	res := g.Check(context.Background(), models.RoleKitchen, "/kitchen")
	assert.Equal(t, DecisionDeny, res.Decision)
	assert.Zero(t, api.bootstrapCalls)
}

func TestGateSingleFlight(t *testing.T) {
	block := make(chan struct{})
	api := &fakeSessionAPI{session: user("u1"), roles: []models.Role{models.RoleKitchen}, sessionBlock: block}
	g := NewAccessGate(api, GateOptions{})

	first := make(chan GateResult, 1)
	go func() {
		first <- g.Check(context.Background(), models.RoleKitchen, "/kitchen")
	}()

	// wait until the first check holds the slot
	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.inFlight
	}, time.Second, 5*time.Millisecond)

	second := g.Check(context.Background(), models.RoleKitchen, "/kitchen")
	assert.Equal(t, DecisionDeny, second.Decision)
	assert.Equal(t, "check already in progress", second.Reason)

	close(block)
	res := <-first
	assert.Equal(t, DecisionAllow, res.Decision)

	// slot is free again
	third := g.Check(context.Background(), models.RoleKitchen, "/kitchen")
	assert.Equal(t, DecisionAllow, third.Decision)
}

func TestGateFailsafeClearsWedgedCheck(t *testing.T) {
	g := NewAccessGate(&fakeSessionAPI{}, GateOptions{})

	g.mu.Lock()
	g.inFlight = true
	g.failsafe = time.AfterFunc(10*time.Millisecond, func() {
		g.mu.Lock()
		g.inFlight = false
		g.mu.Unlock()
	})
	g.mu.Unlock()

	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return !g.inFlight
	}, time.Second, 5*time.Millisecond)
}
