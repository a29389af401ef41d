package store

import (
	"sync"

	"github.com/grovetools/casemgmt/pkg/models"
)

// Handler reacts to a committed change. Handlers run on the goroutine that
// made the change, after the store lock is released, in registration order.
type Handler func(Update)

// Store is the in-memory state store for the daemon.
// It is thread-safe and supports pub/sub for real-time updates.
type Store struct {
	mu          sync.RWMutex
	state       *State
	subscribers map[chan Update]struct{}
	handlers    map[UpdateType][]Handler
}

// New creates a new Store starting in env with empty lists and the default
// action modal.
func New(env models.Environment) *Store {
	st := &State{
		IsLiveAPI:   env.IsLive(),
		ActionModal: models.DefaultActionModal(),
	}
	resetLists(st)
	return &Store{
		state:       st,
		subscribers: make(map[chan Update]struct{}),
		handlers:    make(map[UpdateType][]Handler),
	}
}

func resetLists(st *State) {
	st.PaymentTypes = []models.LookupOption{}
	st.FileTypes = []models.FileTypeOption{}
	st.SheetTypes = []models.SheetTypeOption{}
	st.FlowCommandTypes = []models.LookupOption{}
	st.DataCommandTypes = []models.LookupOption{}
	st.FlowCommands = []models.Command{}
	st.DataCommands = []models.Command{}
	st.Selections = Selections{}
}

// Get returns a copy of the current state.
// Lists are copied; command records are shared since they are never mutated.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := *s.state
	out.PaymentTypes = append([]models.LookupOption{}, s.state.PaymentTypes...)
	out.FileTypes = append([]models.FileTypeOption{}, s.state.FileTypes...)
	out.SheetTypes = append([]models.SheetTypeOption{}, s.state.SheetTypes...)
	out.FlowCommandTypes = append([]models.LookupOption{}, s.state.FlowCommandTypes...)
	out.DataCommandTypes = append([]models.LookupOption{}, s.state.DataCommandTypes...)
	out.FlowCommands = append([]models.Command{}, s.state.FlowCommands...)
	out.DataCommands = append([]models.Command{}, s.state.DataCommands...)
	for _, f := range Fields {
		*out.Selections.ref(f) = s.state.Selections.Get(f)
	}
	out.ActionModal = s.state.ActionModal.Clone()
	return out
}

// Environment returns the environment requests should target.
func (s *Store) Environment() models.Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.EnvironmentFromLive(s.state.IsLiveAPI)
}

// Selection returns the selected value of f.
func (s *Store) Selection(f Field) *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Selections.Get(f)
}

// ApplyUpdate replaces a list and notifies subscribers.
// Payloads of the wrong type are ignored.
func (s *Store) ApplyUpdate(u Update) {
	s.mu.Lock()

	switch u.Type {
	case UpdatePaymentTypes:
		if opts, ok := u.Payload.([]models.LookupOption); ok {
			s.state.PaymentTypes = opts
		}
	case UpdateFileTypes:
		if opts, ok := u.Payload.([]models.FileTypeOption); ok {
			s.state.FileTypes = opts
		}
	case UpdateSheetTypes:
		if opts, ok := u.Payload.([]models.SheetTypeOption); ok {
			s.state.SheetTypes = opts
		}
	case UpdateFlowCommandTypes:
		if opts, ok := u.Payload.([]models.LookupOption); ok {
			s.state.FlowCommandTypes = opts
		}
	case UpdateDataCommandTypes:
		if opts, ok := u.Payload.([]models.LookupOption); ok {
			s.state.DataCommandTypes = opts
		}
	case UpdateFlowCommands:
		if cmds, ok := u.Payload.([]models.Command); ok {
			s.state.FlowCommands = cmds
		}
	case UpdateDataCommands:
		if cmds, ok := u.Payload.([]models.Command); ok {
			s.state.DataCommands = cmds
		}
	}

	s.broadcast(u)
	s.mu.Unlock()
	s.notify(u)
}

// SetSelection sets the selected value of f. It reports whether the value
// changed; handlers only run on a change.
func (s *Store) SetSelection(f Field, id *int64) bool {
	s.mu.Lock()
	ref := s.state.Selections.ref(f)
	if ref == nil || equalID(*ref, id) {
		s.mu.Unlock()
		return false
	}
	change := SelectionChange{Field: f, Previous: copyID(*ref), Current: copyID(id)}
	*ref = copyID(id)
	u := Update{Type: UpdateSelection, Source: "client", Payload: change}
	s.broadcast(u)
	s.mu.Unlock()

	s.notify(u)
	return true
}

// SetLiveAPI switches between the live and stage backends and empties every
// list and selection in the same step, so no snapshot pairs the new
// environment with the old lists. It reports whether the environment changed.
func (s *Store) SetLiveAPI(live bool) bool {
	s.mu.Lock()
	if s.state.IsLiveAPI == live {
		s.mu.Unlock()
		return false
	}
	change := EnvironmentChange{
		Previous: models.EnvironmentFromLive(s.state.IsLiveAPI),
		Current:  models.EnvironmentFromLive(live),
	}
	s.state.IsLiveAPI = live
	resetLists(s.state)
	u := Update{Type: UpdateEnvironment, Source: "client", Payload: change}
	s.broadcast(u)
	s.mu.Unlock()

	s.notify(u)
	return true
}

// SetHasNewDataCommand sets the hasNewDataCommand flag.
func (s *Store) SetHasNewDataCommand(v bool) bool {
	return s.setFlag(func(f *Flags) { f.HasNewDataCommand = v })
}

// SetHasDraggedPayload sets the hasDraggedPayload flag.
func (s *Store) SetHasDraggedPayload(v bool) bool {
	return s.setFlag(func(f *Flags) { f.HasDraggedPayload = v })
}

func (s *Store) setFlag(fn func(*Flags)) bool {
	s.mu.Lock()
	before := Flags{HasNewDataCommand: s.state.HasNewDataCommand, HasDraggedPayload: s.state.HasDraggedPayload}
	after := before
	fn(&after)
	if after == before {
		s.mu.Unlock()
		return false
	}
	s.state.HasNewDataCommand = after.HasNewDataCommand
	s.state.HasDraggedPayload = after.HasDraggedPayload
	u := Update{Type: UpdateFlags, Source: "client", Payload: after}
	s.broadcast(u)
	s.mu.Unlock()

	s.notify(u)
	return true
}

// ActionModal returns a copy of the action modal.
func (s *Store) ActionModal() models.ActionModal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActionModal.Clone()
}

// UpdateActionModal applies fn to a copy of the modal and stores the result.
func (s *Store) UpdateActionModal(fn func(*models.ActionModal)) models.ActionModal {
	s.mu.Lock()
	m := s.state.ActionModal.Clone()
	fn(&m)
	u := s.setActionModalLocked(m)
	s.mu.Unlock()

	s.notify(u)
	return u.Payload.(models.ActionModal).Clone()
}

// EditActionModal applies fn to a copy of the modal and stores the result
// unless fn fails. The reload counter is kept as it is: only BumpReload and
// ResetActionModal move it.
func (s *Store) EditActionModal(fn func(*models.ActionModal) error) (models.ActionModal, error) {
	s.mu.Lock()
	m := s.state.ActionModal.Clone()
	if err := fn(&m); err != nil {
		cur := s.state.ActionModal.Clone()
		s.mu.Unlock()
		return cur, err
	}
	m.Data.Reload = s.state.ActionModal.Data.Reload
	u := s.setActionModalLocked(m)
	s.mu.Unlock()

	s.notify(u)
	return u.Payload.(models.ActionModal).Clone(), nil
}

func (s *Store) setActionModalLocked(m models.ActionModal) Update {
	s.state.ActionModal = m
	u := Update{Type: UpdateActionModal, Source: "client", Payload: m.Clone()}
	s.broadcast(u)
	return u
}

// ResetActionModal restores the default action modal.
func (s *Store) ResetActionModal() models.ActionModal {
	return s.UpdateActionModal(func(m *models.ActionModal) {
		*m = models.DefaultActionModal()
	})
}

// BumpReload increments the modal's reload counter and returns the new value.
func (s *Store) BumpReload() int {
	m := s.UpdateActionModal(func(m *models.ActionModal) {
		m.Data.Reload++
	})
	return m.Data.Reload
}

// Clear empties every list and selection. Flags, environment and the action
// modal are left alone.
func (s *Store) Clear() {
	s.mu.Lock()
	resetLists(s.state)
	u := Update{Type: UpdateCleared, Source: "client"}
	s.broadcast(u)
	s.mu.Unlock()

	s.notify(u)
}

// Watch registers h to run after every committed update of type t.
func (s *Store) Watch(t UpdateType, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[t] = append(s.handlers[t], h)
}

// Subscribe creates a new subscription channel for state updates.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 100) // Buffered
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; !ok {
		return
	}
	delete(s.subscribers, ch)
	close(ch)
}

// BroadcastConfigReload sends a config reload notification to all subscribers.
func (s *Store) BroadcastConfigReload(file string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.broadcast(Update{
		Type:    UpdateConfigReload,
		Source:  "config",
		Payload: file,
	})
}

// broadcast must be called with s.mu held.
func (s *Store) broadcast(u Update) {
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Non-blocking send to prevent slow clients from stalling the daemon
		}
	}
}

func (s *Store) notify(u Update) {
	s.mu.RLock()
	handlers := append([]Handler(nil), s.handlers[u.Type]...)
	s.mu.RUnlock()
	for _, h := range handlers {
		h(u)
	}
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
