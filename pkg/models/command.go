package models

import (
	"encoding/json"
	"math"
)

// SheetTypeField is the command attribute linking a command to a sheet type.
const SheetTypeField = "frozen_import_sheet_type_id"

// Command is a data command or flow command as returned by the backend.
// The record is kept verbatim; only the sheet-type link is interpreted.
type Command map[string]interface{}

// CommandRecord describes the fields of a command that must be well formed.
// Any other attributes are passed through untouched.
type CommandRecord struct {
	ID          int64  `json:"id"`
	SheetTypeID *int64 `json:"frozen_import_sheet_type_id,omitempty" jsonschema:"oneof_type=integer;null"`
}

// ID returns the command id.
func (c Command) ID() (int64, bool) {
	return toInt64(c["id"])
}

// SheetTypeID returns the sheet type the command is bound to.
// It returns false for global commands and for records without the field.
func (c Command) SheetTypeID() (int64, bool) {
	return toInt64(c[SheetTypeField])
}

// IsGlobal reports whether the command carries an explicit null sheet type.
func (c Command) IsGlobal() bool {
	v, ok := c[SheetTypeField]
	return ok && v == nil
}

// AppliesTo reports whether the command belongs to sheetTypeID or is global.
func (c Command) AppliesTo(sheetTypeID int64) bool {
	if c.IsGlobal() {
		return true
	}
	id, ok := c.SheetTypeID()
	return ok && id == sheetTypeID
}

// FilterCommands keeps the commands that apply to sheetTypeID.
func FilterCommands(commands []Command, sheetTypeID int64) []Command {
	out := make([]Command, 0, len(commands))
	for _, c := range commands {
		if c.AppliesTo(sheetTypeID) {
			out = append(out, c)
		}
	}
	return out
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
