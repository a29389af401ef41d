package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CommandKind identifies which command entity a modal acts on.
type CommandKind string

const (
	CommandKindData CommandKind = "dataCommand"
	CommandKindFlow CommandKind = "flowCommand"
)

// Valid reports whether k is one of the known kinds.
func (k CommandKind) Valid() bool {
	return k == CommandKindData || k == CommandKindFlow
}

// ModalAction is the pending operation of the action modal.
// The integer codes are part of the wire format and must not change.
type ModalAction int

const (
	AddDataCommand    ModalAction = 1
	UpdateDataCommand ModalAction = 2
	DeleteDataCommand ModalAction = 3
	AddFlowCommand    ModalAction = 4
	UpdateFlowCommand ModalAction = 5
	DeleteFlowCommand ModalAction = 6
)

var modalActionNames = map[ModalAction]string{
	AddDataCommand:    "AddDataCommand",
	UpdateDataCommand: "UpdateDataCommand",
	DeleteDataCommand: "DeleteDataCommand",
	AddFlowCommand:    "AddFlowCommand",
	UpdateFlowCommand: "UpdateFlowCommand",
	DeleteFlowCommand: "DeleteFlowCommand",
}

// String returns the action name.
func (a ModalAction) String() string {
	if name, ok := modalActionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ModalAction(%d)", int(a))
}

// Valid reports whether a is one of the six defined actions.
func (a ModalAction) Valid() bool {
	_, ok := modalActionNames[a]
	return ok
}

// ParseModalAction accepts an action name (case-insensitive) or its code.
func ParseModalAction(s string) (ModalAction, bool) {
	for a, name := range modalActionNames {
		if strings.EqualFold(name, s) || strconv.Itoa(int(a)) == s {
			return a, true
		}
	}
	return 0, false
}

// Kind returns the command entity the action applies to.
func (a ModalAction) Kind() CommandKind {
	if a >= AddFlowCommand {
		return CommandKindFlow
	}
	return CommandKindData
}

// UnmarshalJSON rejects codes outside 1..6.
func (a *ModalAction) UnmarshalJSON(b []byte) error {
	var code int
	if err := json.Unmarshal(b, &code); err != nil {
		return fmt.Errorf("modal action must be an integer: %w", err)
	}
	if !ModalAction(code).Valid() {
		return fmt.Errorf("unknown modal action %d", code)
	}
	*a = ModalAction(code)
	return nil
}

// ActionModalData carries the command being edited by the modal.
type ActionModalData struct {
	ID            *int64  `json:"id"`
	ParentCommand *int64  `json:"parentCommand"`
	CommandType   *int64  `json:"commandType"`
	Field         *string `json:"field"`
	// Reload is bumped whenever dependents should re-fetch.
	Reload  int     `json:"reload"`
	Payload *string `json:"payload"`
	Order   string  `json:"order"`
}

// ActionModal describes a pending add/update/delete dialog.
type ActionModal struct {
	Show   bool            `json:"show"`
	Type   *CommandKind    `json:"type"`
	Action *ModalAction    `json:"action"`
	Data   ActionModalData `json:"data"`
}

// DefaultOrder is the order assigned to a command created from a fresh modal.
const DefaultOrder = "1"

// DefaultActionModal returns a fresh modal in its reset state.
func DefaultActionModal() ActionModal {
	return ActionModal{
		Data: ActionModalData{
			Order: DefaultOrder,
		},
	}
}

// Open shows the modal for action, setting the matching command kind.
func (m *ActionModal) Open(action ModalAction) {
	kind := action.Kind()
	m.Show = true
	m.Type = &kind
	m.Action = &action
}

// Clone returns a copy that shares no pointers with m.
func (m ActionModal) Clone() ActionModal {
	out := m
	out.Type = clonePtr(m.Type)
	out.Action = clonePtr(m.Action)
	out.Data.ID = clonePtr(m.Data.ID)
	out.Data.ParentCommand = clonePtr(m.Data.ParentCommand)
	out.Data.CommandType = clonePtr(m.Data.CommandType)
	out.Data.Field = clonePtr(m.Data.Field)
	out.Data.Payload = clonePtr(m.Data.Payload)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Validate checks the enum fields and that action and type agree.
func (m ActionModal) Validate() error {
	if m.Type != nil && !m.Type.Valid() {
		return fmt.Errorf("unknown command kind %q", string(*m.Type))
	}
	if m.Action != nil && !m.Action.Valid() {
		return fmt.Errorf("unknown modal action %d", int(*m.Action))
	}
	if m.Type != nil && m.Action != nil && m.Action.Kind() != *m.Type {
		return fmt.Errorf("action %s does not apply to %s", m.Action, *m.Type)
	}
	return nil
}
