// Package domain holds the core types of the rollcall client and the
// interfaces its collaborators implement.
package domain

import (
	"context"
	"time"
)

// Status describes the client's belief about its credential for the backend.
type Status string

const (
	StatusLoggedOut      Status = "logged_out"
	StatusAuthenticating Status = "authenticating"
	StatusActive         Status = "active"
	StatusExpired        Status = "expired"
)

// Session is the in-memory session state. Status is Active exactly when Token
// is non-empty and has not been invalidated by a 401 since it was last set.
type Session struct {
	Identity  string
	Token     string
	Status    Status
	UpdatedAt time.Time
}

// Credentials are held only for the duration of a register or login call and
// are never persisted.
type Credentials struct {
	Identity string
	Secret   string
}

// AttendanceRecord is one row of the heterogeneous dataset: a mapping from
// field name to a scalar value (string, number, or boolean). Different
// records in a batch may expose different key sets.
type AttendanceRecord map[string]any

// AttendanceBatch is one wholesale fetch result. Headers is the key set of
// the first record in server-sent order; Go maps do not preserve insertion
// order, so the fetch path captures it separately.
type AttendanceBatch struct {
	Headers []string
	Records []AttendanceRecord
}

// Empty reports whether the batch carries no rows.
func (b AttendanceBatch) Empty() bool {
	return len(b.Records) == 0
}

// ColumnWidthModel maps a field name to its rendering width in abstract units.
type ColumnWidthModel map[string]int

// OperationFlags is the per-call-kind busy state. Each flag is owned by the
// call that set it and cleared on that call's completion.
type OperationFlags struct {
	Register     bool
	Login        bool
	Fetch        bool
	ExternalAuth bool
}

// SessionStore persists the token and last-used identity across restarts.
// A missing slot reads as the empty string, not an error.
type SessionStore interface {
	GetToken(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	GetIdentity(ctx context.Context) (string, error)
	SetIdentity(ctx context.Context, identity string) error
	Clear(ctx context.Context) error
}

// AuthService performs the unauthenticated register/login calls and resolves
// the provider authorization URL for the external browser flow.
type AuthService interface {
	Register(ctx context.Context, creds Credentials) (message string, err error)
	Login(ctx context.Context, creds Credentials) (token, message string, err error)
	ExternalAuthURL(ctx context.Context, identity string) (string, error)
}

// AttendanceService fetches the attendance dataset over the authenticated
// channel.
type AttendanceService interface {
	FetchAttendance(ctx context.Context, token string) (AttendanceBatch, error)
}

// URLOpener hands a browser-navigable URL to the host OS.
type URLOpener func(url string) error
