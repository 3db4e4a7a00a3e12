package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/revdup-client/internal/config"
	"github.com/spec-kit/revdup-client/internal/domain"
	"github.com/spec-kit/revdup-client/internal/events"
	"github.com/spec-kit/revdup-client/internal/store"
	"github.com/spec-kit/revdup-client/pkg/util"
)

// State names the session machine's positions.
type State string

const (
	StateInitializing    State = "INITIALIZING"
	StateRestoring       State = "RESTORING"
	StateUnauthenticated State = "UNAUTHENTICATED"
	StateAuthenticated   State = "AUTHENTICATED"
	StateLoggingOut      State = "LOGGING_OUT"
)

// CredentialExchanger is the outbound authentication surface the controller
// drives. Implemented by transport.Client; stubbed in tests.
type CredentialExchanger interface {
	Login(ctx context.Context, identifier, secret string) (domain.AuthResult, error)
	SignUp(ctx context.Context, identifier, secret string) (domain.AuthResult, error)
	VerifyFederatedIdentity(ctx context.Context, assertion string) (domain.AuthResult, error)
}

// SessionController owns the in-memory session and is its only mutator. All
// transitions are serialized under the controller mutex; the durable write
// completes before a transition becomes observable, so no caller ever sees
// Authenticated while storage still disagrees. Network calls run outside the
// lock.
type SessionController struct {
	store      store.SessionStore
	transport  CredentialExchanger
	dispatcher events.Dispatcher
	logger     *zap.Logger

	federatedDefaultRole domain.Role

	mu      sync.Mutex
	state   State
	session domain.Session
}

// Dependencies encapsulates collaborator requirements for the controller.
type Dependencies struct {
	Store      store.SessionStore
	Transport  CredentialExchanger
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewSessionController builds the controller in the Initializing state.
func NewSessionController(cfg config.SessionConfig, deps Dependencies) *SessionController {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionController{
		store:                deps.Store,
		transport:            deps.Transport,
		dispatcher:           deps.Dispatcher,
		logger:               logger,
		federatedDefaultRole: domain.ParseRole(cfg.FederatedDefaultRole),
		state:                StateInitializing,
	}
}

// RestoreResult reports the outcome of the startup restore.
type RestoreResult struct {
	State State
	Role  domain.Role
	// StorageErr is set when the durable read failed and the controller fell
	// back to an unauthenticated session.
	StorageErr error
}

// RestoreSession performs the single startup read of the durable store and
// decides the first screen. It never touches the network. A storage failure
// is not fatal: the controller lands in Unauthenticated and reports the error
// in the result. Cancelling ctx aborts the restore and is the only error
// return.
func (c *SessionController) RestoreSession(ctx context.Context) (RestoreResult, error) {
	c.mu.Lock()
	c.state = StateRestoring
	c.mu.Unlock()

	sess, err := c.store.Read(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// Back out of Restoring so a retried restore starts coherent.
		c.mu.Lock()
		c.state = StateInitializing
		c.mu.Unlock()
		return RestoreResult{}, ctxErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Warn("session restore failed, treating as no session", zap.Error(err))
		c.session = domain.Session{}
		c.state = StateUnauthenticated
		return RestoreResult{State: c.state, StorageErr: err}, nil
	}

	if sess.Present() {
		c.session = sess
		c.state = StateAuthenticated
		c.logger.Info("session restored", zap.String("role", string(sess.Role)))
		return RestoreResult{State: c.state, Role: sess.Role}, nil
	}

	c.session = domain.Session{}
	c.state = StateUnauthenticated
	c.logger.Info("no stored session")
	return RestoreResult{State: c.state}, nil
}

// Login exchanges a username/password pair for a session. On success the
// token/role pair is persisted before the state flips to Authenticated; on
// failure nothing is persisted and the backend message is surfaced in the
// returned error.
func (c *SessionController) Login(ctx context.Context, identifier, secret string) (State, error) {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(secret) == "" {
		return c.CurrentState(), util.NewValidationError("identifier and secret are required", nil)
	}

	result, err := c.transport.Login(ctx, identifier, secret)
	if err != nil {
		return c.CurrentState(), err
	}
	if !result.Success || result.Token == "" {
		return c.CurrentState(), util.NewUnauthorized(failureMessage(result, "login failed"))
	}

	role := domain.RoleUnrecognized
	if result.User != nil && result.User.Role != "" {
		role = domain.ParseRole(result.User.Role)
	}
	return c.establish(ctx, result.Token, role)
}

// SignUp registers a new account. Success never changes the session state:
// the caller routes back to the login entry point.
func (c *SessionController) SignUp(ctx context.Context, identifier, secret string) error {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(secret) == "" {
		return util.NewValidationError("identifier and secret are required", nil)
	}

	result, err := c.transport.SignUp(ctx, identifier, secret)
	if err != nil {
		return err
	}
	if !result.Success {
		return util.NewRejected(failureMessage(result, "signup failed"))
	}
	return nil
}

// FederatedLogin exchanges an identity-provider assertion for a session. When
// the backend omits the role, the configured federated default role is
// persisted instead.
func (c *SessionController) FederatedLogin(ctx context.Context, assertion string) (State, error) {
	if strings.TrimSpace(assertion) == "" {
		return c.CurrentState(), util.NewValidationError("assertion is required", nil)
	}

	result, err := c.transport.VerifyFederatedIdentity(ctx, assertion)
	if err != nil {
		return c.CurrentState(), err
	}
	if !result.Success || result.Token == "" {
		return c.CurrentState(), util.NewUnauthorized(failureMessage(result, "federated login failed"))
	}

	role := c.federatedDefaultRole
	if result.User != nil && result.User.Role != "" {
		role = domain.ParseRole(result.User.Role)
	}
	return c.establish(ctx, result.Token, role)
}

// Logout clears the durable session and resets the in-memory state. It is
// idempotent, and it has no failure path that strands the caller: even when
// the storage clear fails, the in-memory session is gone and the state is
// Unauthenticated, with the storage error returned as a diagnostic.
func (c *SessionController) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUnauthenticated {
		return nil
	}

	c.state = StateLoggingOut
	err := c.store.Clear(ctx)

	c.session = domain.Session{}
	c.state = StateUnauthenticated
	c.publishLocked(ctx, events.EventSessionCleared, domain.Role(""))

	if err != nil {
		c.logger.Warn("session clear failed, in-memory state reset regardless", zap.Error(err))
		return err
	}
	c.logger.Info("logged out")
	return nil
}

// CurrentState returns the published state.
func (c *SessionController) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentRole returns the role of the active session, or RoleUnrecognized
// outside Authenticated.
func (c *SessionController) CurrentRole() domain.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated {
		return domain.RoleUnrecognized
	}
	return c.session.Role
}

// establish persists the pair and flips the state, as one critical section.
// A persistence failure leaves the previous state in place.
func (c *SessionController) establish(ctx context.Context, token string, role domain.Role) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Write(ctx, token, role); err != nil {
		c.logger.Error("session persist failed", zap.Error(err))
		return c.state, err
	}

	c.session = domain.Session{Token: token, Role: role}
	c.state = StateAuthenticated
	c.publishLocked(ctx, events.EventSessionEstablished, role)
	c.logger.Info("session established", zap.String("role", string(role)))
	return c.state, nil
}

func (c *SessionController) publishLocked(ctx context.Context, eventType events.EventType, role domain.Role) {
	if c.dispatcher == nil {
		return
	}
	c.dispatcher.Publish(ctx, events.Event{
		Type:      eventType,
		Role:      role,
		Timestamp: time.Now(),
	})
}

func failureMessage(result domain.AuthResult, fallback string) string {
	if result.Message != "" {
		return result.Message
	}
	return fallback
}
