package models

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func TestModalActionCodes(t *testing.T) {
	tests := []struct {
		action ModalAction
		code   int
		kind   CommandKind
	}{
		{AddDataCommand, 1, CommandKindData},
		{UpdateDataCommand, 2, CommandKindData},
		{DeleteDataCommand, 3, CommandKindData},
		{AddFlowCommand, 4, CommandKindFlow},
		{UpdateFlowCommand, 5, CommandKindFlow},
		{DeleteFlowCommand, 6, CommandKindFlow},
	}
	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, int(tt.action))
			assert.Equal(t, tt.kind, tt.action.Kind())
			assert.True(t, tt.action.Valid())

			b, err := json.Marshal(tt.action)
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(tt.code), string(b))
		})
	}

	assert.False(t, ModalAction(0).Valid())
	assert.False(t, ModalAction(7).Valid())
	assert.Equal(t, "ModalAction(9)", ModalAction(9).String())
}

func TestModalActionUnmarshalRejectsUnknownCodes(t *testing.T) {
	var a ModalAction
	require.NoError(t, json.Unmarshal([]byte("5"), &a))
	assert.Equal(t, UpdateFlowCommand, a)

	assert.Error(t, json.Unmarshal([]byte("0"), &a))
	assert.Error(t, json.Unmarshal([]byte("7"), &a))
	assert.Error(t, json.Unmarshal([]byte(`"add"`), &a))
}

func TestDefaultActionModalJSON(t *testing.T) {
	b, err := json.Marshal(DefaultActionModal())
	require.NoError(t, err)

	want := `{"show":false,"type":null,"action":null,"data":{"id":null,"parentCommand":null,"commandType":null,"field":null,"reload":0,"payload":null,"order":"1"}}`
	assert.JSONEq(t, want, string(b))
}

func TestActionModalOpenAndClone(t *testing.T) {
	m := DefaultActionModal()
	m.Open(DeleteFlowCommand)
	m.Data.ID = int64p(12)

	require.NotNil(t, m.Type)
	assert.True(t, m.Show)
	assert.Equal(t, CommandKindFlow, *m.Type)
	assert.Equal(t, DeleteFlowCommand, *m.Action)

	c := m.Clone()
	*c.Data.ID = 99
	*c.Action = AddDataCommand
	assert.Equal(t, int64(12), *m.Data.ID, "clone must not alias the original")
	assert.Equal(t, DeleteFlowCommand, *m.Action)
}

func TestProjections(t *testing.T) {
	assert.Equal(t,
		LookupOption{Label: "Cash", Value: 3},
		PaymentTypeOption(PaymentTypeRecord{ID: 3, PaymentName: "Cash"}))

	assert.Equal(t,
		FileTypeOption{LookupOption: LookupOption{Label: "CSV", Value: 4}, PaymentTypeID: int64p(3)},
		FileTypeOptionFrom(FileTypeRecord{ID: 4, Name: "CSV", PaymentTypeID: int64p(3)}))

	assert.Equal(t,
		SheetTypeOption{LookupOption: LookupOption{Label: "Main", Value: 7}, FileTypeID: nil},
		SheetTypeOptionFrom(SheetTypeRecord{ID: 7, Name: "Main"}))

	assert.Equal(t,
		LookupOption{Label: "Copy", Value: 1},
		CommandTypeOption(CommandTypeRecord{ID: 1, Name: "Copy"}))
}

func TestOptionJSONShape(t *testing.T) {
	b, err := json.Marshal(SheetTypeOption{LookupOption: LookupOption{Label: "Main", Value: 7}, FileTypeID: int64p(2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Main","value":7,"fileTypeId":2}`, string(b))

	b, err = json.Marshal(FileTypeOption{LookupOption: LookupOption{Label: "CSV", Value: 4}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"CSV","value":4,"paymentTypeId":null}`, string(b))
}

func TestCommandSheetTypeMatching(t *testing.T) {
	var commands []Command
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": 1, "frozen_import_sheet_type_id": 7},
		{"id": 2, "frozen_import_sheet_type_id": null},
		{"id": 3, "frozen_import_sheet_type_id": 8},
		{"id": 4}
	]`), &commands))

	assert.True(t, commands[0].AppliesTo(7))
	assert.True(t, commands[1].AppliesTo(7))
	assert.True(t, commands[1].IsGlobal())
	assert.False(t, commands[2].AppliesTo(7))
	assert.False(t, commands[3].AppliesTo(7), "a missing link is not a null link")

	filtered := FilterCommands(commands, 7)
	require.Len(t, filtered, 2)
	id, ok := filtered[0].ID()
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
	id, _ = filtered[1].ID()
	assert.Equal(t, int64(2), id)
}

func TestCommandSheetTypeWithJSONNumber(t *testing.T) {
	c := Command{"id": json.Number("5"), SheetTypeField: json.Number("7")}
	id, ok := c.SheetTypeID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	c = Command{SheetTypeField: 7.5}
	_, ok = c.SheetTypeID()
	assert.False(t, ok)
}

func TestEnvironment(t *testing.T) {
	assert.Equal(t, Live, EnvironmentFromLive(true))
	assert.Equal(t, Stage, EnvironmentFromLive(false))
	assert.Equal(t, "1", Live.HeaderValue())
	assert.Equal(t, "0", Stage.HeaderValue())
	assert.Equal(t, "live", Live.String())

	env, ok := ParseEnvironment("stage")
	assert.True(t, ok)
	assert.Equal(t, Stage, env)
	_, ok = ParseEnvironment("prod")
	assert.False(t, ok)
}

func TestActionModalValidate(t *testing.T) {
	m := DefaultActionModal()
	assert.NoError(t, m.Validate())

	m.Open(UpdateFlowCommand)
	assert.NoError(t, m.Validate())

	data := CommandKindData
	m.Type = &data
	assert.Error(t, m.Validate())

	bogus := CommandKind("sheet")
	assert.Error(t, ActionModal{Type: &bogus}.Validate())

	bad := ModalAction(9)
	assert.Error(t, ActionModal{Action: &bad}.Validate())
}

func TestEnvironmentJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Environment{"env": Live})
	require.NoError(t, err)
	assert.JSONEq(t, `{"env":"live"}`, string(data))

	var env Environment
	require.NoError(t, json.Unmarshal([]byte(`"stage"`), &env))
	assert.Equal(t, Stage, env)
	assert.Error(t, json.Unmarshal([]byte(`"prod"`), &env))
}

func TestParseModalAction(t *testing.T) {
	a, ok := ParseModalAction("addflowcommand")
	assert.True(t, ok)
	assert.Equal(t, AddFlowCommand, a)

	a, ok = ParseModalAction("3")
	assert.True(t, ok)
	assert.Equal(t, DeleteDataCommand, a)

	_, ok = ParseModalAction("7")
	assert.False(t, ok)
	_, ok = ParseModalAction("RenameCommand")
	assert.False(t, ok)
}
