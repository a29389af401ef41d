// Package store provides the in-memory state store for the casemgmt daemon.
package store

import (
	"fmt"

	"github.com/grovetools/casemgmt/pkg/models"
)

// Field names one selected value of the store.
type Field string

const (
	FieldPaymentType     Field = "payment_type"
	FieldFileType        Field = "file_type"
	FieldSheetType       Field = "sheet_type"
	FieldFlowCommandType Field = "flow_command_type"
	FieldDataCommandType Field = "data_command_type"
	FieldFlowCommand     Field = "flow_command"
	FieldDataCommand     Field = "data_command"
)

// Fields lists every selectable field.
var Fields = []Field{
	FieldPaymentType,
	FieldFileType,
	FieldSheetType,
	FieldFlowCommandType,
	FieldDataCommandType,
	FieldFlowCommand,
	FieldDataCommand,
}

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Selections holds the selected value of each list. Nil means nothing selected.
type Selections struct {
	PaymentType     *int64 `json:"paymentType"`
	FileType        *int64 `json:"fileType"`
	SheetType       *int64 `json:"sheetType"`
	FlowCommandType *int64 `json:"flowCommandType"`
	DataCommandType *int64 `json:"dataCommandType"`
	FlowCommand     *int64 `json:"flowCommand"`
	DataCommand     *int64 `json:"dataCommand"`
}

func (s *Selections) ref(f Field) **int64 {
	switch f {
	case FieldPaymentType:
		return &s.PaymentType
	case FieldFileType:
		return &s.FileType
	case FieldSheetType:
		return &s.SheetType
	case FieldFlowCommandType:
		return &s.FlowCommandType
	case FieldDataCommandType:
		return &s.DataCommandType
	case FieldFlowCommand:
		return &s.FlowCommand
	case FieldDataCommand:
		return &s.DataCommand
	}
	return nil
}

// Get returns the selection for f.
func (s Selections) Get(f Field) *int64 {
	if p := s.ref(f); p != nil {
		return copyID(*p)
	}
	return nil
}

// State represents the complete world view of the daemon.
type State struct {
	PaymentTypes     []models.LookupOption    `json:"paymentTypes"`
	FileTypes        []models.FileTypeOption  `json:"fileTypes"`
	SheetTypes       []models.SheetTypeOption `json:"sheetTypes"`
	FlowCommandTypes []models.LookupOption    `json:"flowCommandTypes"`
	DataCommandTypes []models.LookupOption    `json:"dataCommandTypes"`
	FlowCommands     []models.Command         `json:"flowCommands"`
	DataCommands     []models.Command         `json:"dataCommands"`

	Selections Selections `json:"selections"`

	HasNewDataCommand bool `json:"hasNewDataCommand"`
	HasDraggedPayload bool `json:"hasDraggedPayload"`
	IsLiveAPI         bool `json:"isLiveApi"`

	ActionModal models.ActionModal `json:"actionModal"`
}

// Environment returns the environment selected by IsLiveAPI.
func (s State) Environment() models.Environment {
	return models.EnvironmentFromLive(s.IsLiveAPI)
}

// UpdateType defines what kind of data changed.
type UpdateType string

const (
	UpdatePaymentTypes     UpdateType = "payment_types"
	UpdateFileTypes        UpdateType = "file_types"
	UpdateSheetTypes       UpdateType = "sheet_types"
	UpdateFlowCommandTypes UpdateType = "flow_command_types"
	UpdateDataCommandTypes UpdateType = "data_command_types"
	UpdateFlowCommands     UpdateType = "flow_commands"
	UpdateDataCommands     UpdateType = "data_commands"
	UpdateSelection        UpdateType = "selection"
	UpdateEnvironment      UpdateType = "environment"
	UpdateFlags            UpdateType = "flags"
	UpdateActionModal      UpdateType = "action_modal"
	UpdateCleared          UpdateType = "cleared"
	UpdateConfigReload     UpdateType = "config_reload"
)

// Update represents a change to the state.
type Update struct {
	Type    UpdateType
	Source  string // Which collector or client caused the update (e.g. "payment-types", "client")
	Scanned int    // Number of records received, for list updates
	Payload interface{}
}

// SelectionChange is the payload of an UpdateSelection.
type SelectionChange struct {
	Field    Field  `json:"field"`
	Previous *int64 `json:"previous"`
	Current  *int64 `json:"current"`
}

// EnvironmentChange is the payload of an UpdateEnvironment.
type EnvironmentChange struct {
	Previous models.Environment `json:"previous"`
	Current  models.Environment `json:"current"`
}

// Flags is the payload of an UpdateFlags.
type Flags struct {
	HasNewDataCommand bool `json:"hasNewDataCommand"`
	HasDraggedPayload bool `json:"hasDraggedPayload"`
}
