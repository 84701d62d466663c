// Package session owns the session state machine of the rollcall client. The
// Controller is the orchestration root: it composes the session store, the
// auth and attendance clients, and the deep-link completion channel, and
// exposes an observable snapshot for the presentation layer.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/campuskit/rollcall/internal/deeplink"
	"github.com/campuskit/rollcall/internal/domain"
	apperrors "github.com/campuskit/rollcall/internal/errors"
	"github.com/campuskit/rollcall/internal/layout"
	"github.com/campuskit/rollcall/internal/metrics"
	"github.com/campuskit/rollcall/internal/platform/correlation"
)

// Snapshot is the observable state the presentation layer renders. It is a
// copy; mutating it has no effect on the controller.
type Snapshot struct {
	Status   domain.Status
	Identity string
	Message  string
	Err      string
	Flags    domain.OperationFlags
	Batch    domain.AttendanceBatch
	Widths   domain.ColumnWidthModel
}

// Controller drives the session lifecycle. All state is guarded by one mutex:
// operations run their logic sections serially, network calls run outside the
// lock, and a monotonic epoch guards against stale fetch results arriving
// after the session has left Active.
type Controller struct {
	store domain.SessionStore
	auth  domain.AuthService
	data  domain.AttendanceService
	open  domain.URLOpener
	clock clockwork.Clock
	log   *slog.Logger

	mu      sync.Mutex
	session domain.Session
	flags   domain.OperationFlags
	message string
	errMsg  string
	batch   domain.AttendanceBatch
	widths  domain.ColumnWidthModel
	epoch   uint64
}

// NewController creates a Controller in the LoggedOut state.
func NewController(
	store domain.SessionStore,
	auth domain.AuthService,
	data domain.AttendanceService,
	open domain.URLOpener,
	clock clockwork.Clock,
	log *slog.Logger,
) *Controller {
	return &Controller{
		store: store,
		auth:  auth,
		data:  data,
		open:  open,
		clock: clock,
		log:   log,
		session: domain.Session{
			Status: domain.StatusLoggedOut,
		},
	}
}

// Restore loads a previously stored token and identity. A stored token sets
// the session straight to Active without revalidation: the first
// authenticated call validates it against the backend. Storage failures are
// logged and leave the session in memory-only LoggedOut.
func (c *Controller) Restore(ctx context.Context) {
	ctx = correlation.WithID(ctx, correlation.NewID())

	token, err := c.store.GetToken(ctx)
	if err != nil {
		c.log.WarnContext(ctx, "failed to restore session token", "error", err)
	}
	identity, err := c.store.GetIdentity(ctx)
	if err != nil {
		c.log.WarnContext(ctx, "failed to restore identity", "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.Identity = identity
	if token != "" {
		c.session.Token = token
		c.setStatus(domain.StatusActive)
		c.log.InfoContext(ctx, "session restored", "identity", identity)
	}
}

// Register creates an account. The identity is persisted on success for
// pre-fill; registration does not authenticate.
func (c *Controller) Register(ctx context.Context, identity, secret string) error {
	ctx = correlation.WithID(ctx, correlation.NewID())

	if err := validateCredentials(identity, secret); err != nil {
		c.reportError(err)
		return err
	}

	c.mu.Lock()
	c.flags.Register = true
	c.setStatus(domain.StatusAuthenticating)
	c.mu.Unlock()

	message, err := c.auth.Register(ctx, domain.Credentials{Identity: identity, Secret: secret})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags.Register = false
	c.setStatus(domain.StatusLoggedOut)

	if err != nil {
		c.log.WarnContext(ctx, "registration failed", "error", err)
		c.setError(apperrors.UserMessage(err))
		return err
	}

	if message == "" {
		message = "registered successfully"
	}
	c.setMessage(message)
	c.session.Identity = identity
	c.persistIdentity(ctx, identity)
	return nil
}

// Login exchanges credentials for a session token and transitions to Active.
func (c *Controller) Login(ctx context.Context, identity, secret string) error {
	ctx = correlation.WithID(ctx, correlation.NewID())

	if err := validateCredentials(identity, secret); err != nil {
		c.reportError(err)
		return err
	}

	c.mu.Lock()
	c.flags.Login = true
	c.setStatus(domain.StatusAuthenticating)
	c.mu.Unlock()

	token, message, err := c.auth.Login(ctx, domain.Credentials{Identity: identity, Secret: secret})

	// Persist before taking the lock so the write is awaited ahead of any
	// dependent read.
	if err == nil {
		if storeErr := c.store.SetToken(ctx, token); storeErr != nil {
			c.log.WarnContext(ctx, "failed to persist token, continuing in memory", "error", storeErr)
		}
		c.persistIdentity(ctx, identity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags.Login = false

	if err != nil {
		c.log.WarnContext(ctx, "login failed", "error", err)
		c.setStatus(domain.StatusLoggedOut)
		c.setError(apperrors.UserMessage(err))
		return err
	}

	c.session.Identity = identity
	c.session.Token = token
	c.setStatus(domain.StatusActive)
	if message == "" {
		message = "logged in"
	}
	c.setMessage(message)
	c.log.InfoContext(ctx, "login succeeded", "identity", identity)
	return nil
}

// BeginExternalAuth persists the identity, resolves the provider
// authorization URL, and hands it to the browser. The token does not come
// back here; completion arrives asynchronously through HandleDeepLink.
func (c *Controller) BeginExternalAuth(ctx context.Context, identity string) error {
	ctx = correlation.WithID(ctx, correlation.NewID())

	if strings.TrimSpace(identity) == "" {
		err := apperrors.ValidationError("identity is required")
		c.reportError(err)
		return err
	}

	c.mu.Lock()
	c.flags.ExternalAuth = true
	prior := c.session.Status
	c.session.Identity = identity
	c.setStatus(domain.StatusAuthenticating)
	c.mu.Unlock()

	// Identity goes to the store first so the completion step has it to
	// correlate against.
	c.persistIdentity(ctx, identity)

	authURL, err := c.auth.ExternalAuthURL(ctx, identity)
	if err == nil {
		if openErr := c.open(authURL); openErr != nil {
			err = apperrors.AuthError("could not open the browser", openErr)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.log.WarnContext(ctx, "external auth start failed", "error", err)
		c.flags.ExternalAuth = false
		if prior == domain.StatusActive && c.session.Token != "" {
			// A begin-failure never invalidated the existing session; keep it.
			c.setStatus(domain.StatusActive)
		} else {
			c.setStatus(domain.StatusLoggedOut)
		}
		c.setError(apperrors.UserMessage(err))
		return err
	}

	c.setMessage("continue signing in from your browser")
	c.log.InfoContext(ctx, "external auth started", "identity", identity)
	return nil
}

// HandleDeepLink consumes an incoming URL from the host. URLs without a
// token parameter are not auth completions and are ignored.
func (c *Controller) HandleDeepLink(ctx context.Context, raw string) {
	token, ok := deeplink.Token(raw)
	if !ok {
		c.log.DebugContext(ctx, "ignoring deep link without token")
		return
	}
	c.CompleteExternalAuth(ctx, token)
}

// CompleteExternalAuth installs a token delivered by the deep-link channel.
// Idempotent: a token arriving while already Active simply overwrites.
func (c *Controller) CompleteExternalAuth(ctx context.Context, token string) {
	if token == "" {
		return
	}
	ctx = correlation.WithID(ctx, correlation.NewID())

	if err := c.store.SetToken(ctx, token); err != nil {
		c.log.WarnContext(ctx, "failed to persist token, continuing in memory", "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.Token = token
	c.setStatus(domain.StatusActive)
	c.flags.ExternalAuth = false
	c.setMessage("signed in")
	c.log.InfoContext(ctx, "external auth completed")
}

// FetchAttendance retrieves the dataset and recomputes the column widths. A
// 401 tears the session down; a result arriving after the session left
// Active is discarded.
func (c *Controller) FetchAttendance(ctx context.Context) error {
	ctx = correlation.WithID(ctx, correlation.NewID())

	c.mu.Lock()
	if c.session.Status != domain.StatusActive || c.session.Token == "" {
		c.mu.Unlock()
		err := apperrors.ValidationError("not signed in")
		c.reportError(err)
		return err
	}
	c.flags.Fetch = true
	token := c.session.Token
	epoch := c.epoch
	c.mu.Unlock()

	batch, err := c.data.FetchAttendance(ctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags.Fetch = false

	if c.epoch != epoch {
		// The session left Active while the fetch was in flight; the result
		// must not resurrect the dataset or the status.
		c.log.InfoContext(ctx, "discarding stale fetch result")
		return nil
	}

	if err != nil {
		if apperrors.IsKind(err, apperrors.KindSessionExpired) {
			c.expireLocked(ctx)
			return err
		}
		c.log.WarnContext(ctx, "attendance fetch failed", "error", err)
		c.batch = domain.AttendanceBatch{}
		c.widths = domain.ColumnWidthModel{}
		c.setError(apperrors.UserMessage(err))
		return err
	}

	c.batch = batch
	c.widths = layout.Widths(batch)
	c.setMessage("")
	c.log.InfoContext(ctx, "attendance fetched", "records", len(batch.Records))
	return nil
}

// Logout clears the persisted and in-memory token; the identity stays for
// pre-fill on the next login. Safe to call in any status.
func (c *Controller) Logout(ctx context.Context) {
	ctx = correlation.WithID(ctx, correlation.NewID())

	c.mu.Lock()
	c.session.Token = ""
	c.batch = domain.AttendanceBatch{}
	c.widths = domain.ColumnWidthModel{}
	c.flags.ExternalAuth = false
	c.setStatus(domain.StatusLoggedOut)
	c.setMessage("")
	c.mu.Unlock()

	if err := c.store.ClearToken(ctx); err != nil {
		c.log.WarnContext(ctx, "failed to clear persisted token", "error", err)
	}
	c.log.InfoContext(ctx, "logged out")
}

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Status:   c.session.Status,
		Identity: c.session.Identity,
		Message:  c.message,
		Err:      c.errMsg,
		Flags:    c.flags,
		Batch:    copyBatch(c.batch),
		Widths:   copyWidths(c.widths),
	}
}

// expireLocked performs the 401-mandated teardown: Active → Expired →
// LoggedOut, token evicted, dataset cleared. Caller holds the lock.
func (c *Controller) expireLocked(ctx context.Context) {
	metrics.SessionExpiries.Inc()
	c.log.InfoContext(ctx, "session expired, tearing down")

	c.setStatus(domain.StatusExpired)
	c.session.Token = ""
	c.batch = domain.AttendanceBatch{}
	c.widths = domain.ColumnWidthModel{}
	c.setStatus(domain.StatusLoggedOut)
	c.setError("session expired, please log in again")

	// Evicted under the lock so a concurrent login's write cannot interleave.
	if err := c.store.ClearToken(ctx); err != nil {
		c.log.WarnContext(ctx, "failed to clear persisted token", "error", err)
	}
}

// setStatus transitions the status and bumps the epoch when the session
// enters LoggedOut or Expired, invalidating in-flight fetch results.
func (c *Controller) setStatus(status domain.Status) {
	if c.session.Status == status {
		return
	}
	c.session.Status = status
	c.session.UpdatedAt = c.clock.Now()
	if status == domain.StatusLoggedOut || status == domain.StatusExpired {
		c.epoch++
	}
}

func (c *Controller) setMessage(message string) {
	c.message = message
	c.errMsg = ""
}

func (c *Controller) setError(message string) {
	c.errMsg = message
	c.message = ""
}

func (c *Controller) reportError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setError(apperrors.UserMessage(err))
}

func (c *Controller) persistIdentity(ctx context.Context, identity string) {
	if err := c.store.SetIdentity(ctx, identity); err != nil {
		c.log.WarnContext(ctx, "failed to persist identity, continuing in memory", "error", err)
	}
}

func validateCredentials(identity, secret string) error {
	if strings.TrimSpace(identity) == "" {
		return apperrors.ValidationError("identity is required")
	}
	if strings.TrimSpace(secret) == "" {
		return apperrors.ValidationError("password is required")
	}
	return nil
}

func copyBatch(batch domain.AttendanceBatch) domain.AttendanceBatch {
	out := domain.AttendanceBatch{}
	if len(batch.Headers) > 0 {
		out.Headers = append([]string(nil), batch.Headers...)
	}
	if len(batch.Records) > 0 {
		out.Records = append([]domain.AttendanceRecord(nil), batch.Records...)
	}
	return out
}

func copyWidths(widths domain.ColumnWidthModel) domain.ColumnWidthModel {
	out := make(domain.ColumnWidthModel, len(widths))
	for k, v := range widths {
		out[k] = v
	}
	return out
}
