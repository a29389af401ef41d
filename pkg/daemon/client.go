// Package daemon provides a client interface for interacting with the
// casemgmt daemon (casemgmtd). It implements a transparent fallback pattern:
// if the daemon is running, use its socket API; if not, run the store
// in-process.
package daemon

import (
	"context"
	"time"

	"github.com/grovetools/casemgmt/config"
	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/pkg/models"
)

// Client defines the interface for interacting with the store.
// Both RemoteClient (socket) and LocalClient (in-process) implement it.
type Client interface {
	// GetState returns a snapshot of the store.
	GetState(ctx context.Context) (*State, error)

	// SetSelection sets the selected value of a list. A nil id clears it.
	SetSelection(ctx context.Context, field Field, id *int64) (*SelectionResponse, error)

	// GetEnvironment returns the environment requests currently target.
	GetEnvironment(ctx context.Context) (*EnvironmentResponse, error)

	// SetEnvironment switches between live and stage, clearing and
	// re-fetching the reference lists when it changes.
	SetEnvironment(ctx context.Context, env models.Environment) (*EnvironmentResponse, error)

	// GetActionModal returns the action modal.
	GetActionModal(ctx context.Context) (*models.ActionModal, error)

	// SetActionModal replaces the action modal. The reload counter is kept.
	SetActionModal(ctx context.Context, m models.ActionModal) (*models.ActionModal, error)

	// ResetActionModal restores the default action modal.
	ResetActionModal(ctx context.Context) (*models.ActionModal, error)

	// BumpReload increments the action modal's reload counter.
	BumpReload(ctx context.Context) (int, error)

	// SetFlags updates the flags that are set in req.
	SetFlags(ctx context.Context, req FlagsRequest) (*Flags, error)

	// Refresh re-issues the reference-list fetches and, when a sheet type is
	// selected, the command fetches.
	Refresh(ctx context.Context) error

	// StreamState subscribes to real-time state updates.
	// The channel is closed when ctx is canceled or the stream ends.
	StreamState(ctx context.Context) (<-chan StateUpdate, error)

	// IsRunning returns true if the daemon is available and responding.
	IsRunning() bool

	// Close cleans up any resources used by the client.
	Close() error
}

// Store types shared with clients.
type (
	State             = store.State
	Selections        = store.Selections
	Field             = store.Field
	Flags             = store.Flags
	SelectionChange   = store.SelectionChange
	EnvironmentChange = store.EnvironmentChange
)

// SelectionRequest is the body of POST /api/selection.
type SelectionRequest struct {
	Field Field  `json:"field"`
	ID    *int64 `json:"id"`
}

// SelectionResponse reports the selection after a change.
type SelectionResponse struct {
	Changed bool   `json:"changed"`
	Field   Field  `json:"field"`
	ID      *int64 `json:"id"`
}

// EnvironmentRequest is the body of POST /api/environment.
type EnvironmentRequest struct {
	Environment models.Environment `json:"environment"`
}

// EnvironmentResponse reports the active environment.
type EnvironmentResponse struct {
	Changed     bool               `json:"changed"`
	Environment models.Environment `json:"environment"`
	IsLiveAPI   bool               `json:"isLiveApi"`
}

// FlagsRequest is the body of POST /api/flags. Nil fields are left alone.
type FlagsRequest struct {
	HasNewDataCommand *bool `json:"hasNewDataCommand,omitempty"`
	HasDraggedPayload *bool `json:"hasDraggedPayload,omitempty"`
}

// ReloadResponse is returned by POST /api/action-modal/reload.
type ReloadResponse struct {
	Reload int `json:"reload"`
}

// RunningConfig is the configuration the daemon was started with, as served
// by /api/config. The API token is redacted.
type RunningConfig struct {
	API        config.APIConfig `json:"api"`
	ConfigFile string           `json:"config_file,omitempty"`
	Socket     string           `json:"socket"`
	PID        int              `json:"pid"`
	StartedAt  time.Time        `json:"started_at"`
}

// UpdateTypeInitial marks the first message of a stream, carrying the full state.
const UpdateTypeInitial = "initial"

// StateUpdate represents an update pushed from the daemon to subscribers.
// State always holds the snapshot taken when the update was sent.
type StateUpdate struct {
	UpdateType  string             `json:"update_type"`
	Source      string             `json:"source,omitempty"`
	Scanned     int                `json:"scanned,omitempty"`
	State       *State             `json:"state,omitempty"`
	Selection   *SelectionChange   `json:"selection,omitempty"`
	Environment *EnvironmentChange `json:"environment,omitempty"`
	ConfigFile  string             `json:"config_file,omitempty"`
}

// InitialUpdate wraps a snapshot as the first message of a stream.
func InitialUpdate(snapshot State) StateUpdate {
	return StateUpdate{UpdateType: UpdateTypeInitial, State: &snapshot}
}

// NewStateUpdate converts an internal store update to the public format.
func NewStateUpdate(u store.Update, snapshot State) StateUpdate {
	out := StateUpdate{
		UpdateType: string(u.Type),
		Source:     u.Source,
		Scanned:    u.Scanned,
		State:      &snapshot,
	}
	switch p := u.Payload.(type) {
	case store.SelectionChange:
		out.Selection = &p
	case store.EnvironmentChange:
		out.Environment = &p
	case string:
		if u.Type == store.UpdateConfigReload {
			out.ConfigFile = p
		}
	}
	return out
}
