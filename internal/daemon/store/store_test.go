package store

import (
	"encoding/json"
	"testing"

	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(v int64) *int64 { return &v }

func TestNewStoreIsEmpty(t *testing.T) {
	s := New(models.Live)
	st := s.Get()

	assert.True(t, st.IsLiveAPI)
	assert.Equal(t, models.Live, s.Environment())
	assert.NotNil(t, st.PaymentTypes)
	assert.Empty(t, st.PaymentTypes)
	assert.Empty(t, st.DataCommands)
	assert.Nil(t, st.Selections.SheetType)
	assert.Equal(t, models.DefaultActionModal(), st.ActionModal)

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"flowCommands":[]`)
	assert.Contains(t, string(data), `"isLiveApi":true`)
}

func TestApplyUpdateReplacesListAndBroadcasts(t *testing.T) {
	s := New(models.Stage)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	opts := []models.LookupOption{{Label: "Cash", Value: 1}}
	s.ApplyUpdate(Update{Type: UpdatePaymentTypes, Source: "payment-types", Scanned: 1, Payload: opts})

	assert.Equal(t, opts, s.Get().PaymentTypes)
	u := <-ch
	assert.Equal(t, UpdatePaymentTypes, u.Type)
	assert.Equal(t, 1, u.Scanned)

	// Wrong payload type is ignored
	s.ApplyUpdate(Update{Type: UpdatePaymentTypes, Payload: "nope"})
	assert.Equal(t, opts, s.Get().PaymentTypes)
}

func TestGetReturnsCopy(t *testing.T) {
	s := New(models.Stage)
	s.ApplyUpdate(Update{Type: UpdateFlowCommandTypes, Payload: []models.LookupOption{{Label: "a", Value: 1}}})
	s.SetSelection(FieldSheetType, id(7))

	st := s.Get()
	st.FlowCommandTypes[0].Label = "changed"
	*st.Selections.SheetType = 99
	st.ActionModal.Open(models.AddDataCommand)

	again := s.Get()
	assert.Equal(t, "a", again.FlowCommandTypes[0].Label)
	assert.Equal(t, int64(7), *again.Selections.SheetType)
	assert.False(t, again.ActionModal.Show)
}

func TestSetSelectionOnlyNotifiesOnChange(t *testing.T) {
	s := New(models.Stage)
	var changes []SelectionChange
	s.Watch(UpdateSelection, func(u Update) {
		changes = append(changes, u.Payload.(SelectionChange))
	})

	assert.True(t, s.SetSelection(FieldSheetType, id(7)))
	assert.False(t, s.SetSelection(FieldSheetType, id(7)))
	assert.True(t, s.SetSelection(FieldSheetType, nil))
	assert.False(t, s.SetSelection(FieldSheetType, nil))
	assert.False(t, s.SetSelection(Field("bogus"), id(1)))

	require.Len(t, changes, 2)
	assert.Equal(t, FieldSheetType, changes[0].Field)
	assert.Nil(t, changes[0].Previous)
	assert.Equal(t, int64(7), *changes[0].Current)
	assert.Equal(t, int64(7), *changes[1].Previous)
	assert.Nil(t, changes[1].Current)
}

func TestSetLiveAPI(t *testing.T) {
	s := New(models.Stage)
	var got []EnvironmentChange
	s.Watch(UpdateEnvironment, func(u Update) {
		got = append(got, u.Payload.(EnvironmentChange))
	})

	assert.False(t, s.SetLiveAPI(false))
	assert.True(t, s.SetLiveAPI(true))
	assert.Equal(t, models.Live, s.Environment())
	assert.True(t, s.SetLiveAPI(false))

	require.Len(t, got, 2)
	assert.Equal(t, EnvironmentChange{Previous: models.Stage, Current: models.Live}, got[0])
	assert.Equal(t, EnvironmentChange{Previous: models.Live, Current: models.Stage}, got[1])
}

func TestHandlersRunInRegistrationOrderAndMayUseStore(t *testing.T) {
	s := New(models.Stage)
	var order []string
	s.Watch(UpdateEnvironment, func(Update) {
		order = append(order, "first")
		s.Clear()
	})
	s.Watch(UpdateEnvironment, func(Update) {
		order = append(order, "second")
		assert.Empty(t, s.Get().PaymentTypes)
	})

	s.ApplyUpdate(Update{Type: UpdatePaymentTypes, Payload: []models.LookupOption{{Label: "x", Value: 1}}})
	s.SetLiveAPI(true)

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestClear(t *testing.T) {
	s := New(models.Stage)
	s.ApplyUpdate(Update{Type: UpdateSheetTypes, Payload: []models.SheetTypeOption{{LookupOption: models.LookupOption{Label: "s", Value: 7}}}})
	s.ApplyUpdate(Update{Type: UpdateDataCommands, Payload: []models.Command{{"id": 1}}})
	s.SetSelection(FieldSheetType, id(7))
	s.SetSelection(FieldPaymentType, id(1))
	s.SetHasNewDataCommand(true)
	s.UpdateActionModal(func(m *models.ActionModal) { m.Open(models.AddFlowCommand) })

	cleared := 0
	s.Watch(UpdateCleared, func(Update) { cleared++ })
	s.Clear()

	st := s.Get()
	assert.Empty(t, st.SheetTypes)
	assert.Empty(t, st.DataCommands)
	assert.Equal(t, Selections{}, st.Selections)
	assert.True(t, st.HasNewDataCommand)
	assert.True(t, st.ActionModal.Show)
	assert.Equal(t, 1, cleared)
}

func TestFlags(t *testing.T) {
	s := New(models.Stage)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	assert.False(t, s.SetHasDraggedPayload(false))
	assert.True(t, s.SetHasDraggedPayload(true))
	assert.True(t, s.SetHasNewDataCommand(true))

	st := s.Get()
	assert.True(t, st.HasDraggedPayload)
	assert.True(t, st.HasNewDataCommand)

	u := <-ch
	assert.Equal(t, Flags{HasDraggedPayload: true}, u.Payload)
	u = <-ch
	assert.Equal(t, Flags{HasNewDataCommand: true, HasDraggedPayload: true}, u.Payload)
}

func TestActionModalLifecycle(t *testing.T) {
	s := New(models.Stage)

	m := s.UpdateActionModal(func(m *models.ActionModal) {
		m.Open(models.UpdateDataCommand)
		m.Data.ID = id(42)
	})
	assert.True(t, m.Show)
	assert.Equal(t, models.UpdateDataCommand, *s.ActionModal().Action)
	assert.Equal(t, int64(42), *s.ActionModal().Data.ID)

	assert.Equal(t, 1, s.BumpReload())
	assert.Equal(t, 2, s.BumpReload())
	assert.True(t, s.ActionModal().Show)

	reset := s.ResetActionModal()
	assert.Equal(t, models.DefaultActionModal(), reset)

	data, err := json.Marshal(s.ActionModal())
	require.NoError(t, err)
	assert.JSONEq(t, `{"show":false,"type":null,"action":null,"data":{"id":null,"parentCommand":null,"commandType":null,"field":null,"reload":0,"payload":null,"order":"1"}}`, string(data))
}

func TestEditActionModalKeepsReload(t *testing.T) {
	s := New(models.Stage)
	stale := s.ActionModal()
	s.BumpReload()
	s.BumpReload()

	stale.Open(models.AddDataCommand)
	m, err := s.EditActionModal(func(cur *models.ActionModal) error {
		*cur = stale.Clone()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Data.Reload)
	assert.True(t, m.Show)
	assert.Equal(t, 2, s.ActionModal().Data.Reload)
	assert.Equal(t, 3, s.BumpReload())
}

func TestEditActionModalFailureLeavesModal(t *testing.T) {
	s := New(models.Stage)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	m, err := s.EditActionModal(func(cur *models.ActionModal) error {
		cur.Show = true
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, models.DefaultActionModal(), m)
	assert.Equal(t, models.DefaultActionModal(), s.ActionModal())
	assert.Empty(t, ch)
}

func TestSetLiveAPIEmptiesListsBeforeNotifying(t *testing.T) {
	s := New(models.Stage)
	s.ApplyUpdate(Update{Type: UpdatePaymentTypes, Payload: []models.LookupOption{{Label: "x", Value: 1}}})
	s.SetSelection(FieldPaymentType, id(1))
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	var seen State
	s.Watch(UpdateEnvironment, func(Update) { seen = s.Get() })
	require.True(t, s.SetLiveAPI(true))

	assert.True(t, seen.IsLiveAPI)
	assert.Empty(t, seen.PaymentTypes)
	assert.Nil(t, seen.Selections.PaymentType)

	// The environment update is the only one sent for the switch.
	u := <-ch
	assert.Equal(t, UpdateEnvironment, u.Type)
	assert.Empty(t, ch)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	s := New(models.Stage)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	for i := 0; i < 150; i++ {
		s.BumpReload()
	}
	assert.Len(t, ch, 100)
	assert.Equal(t, 150, s.ActionModal().Data.Reload)
}

func TestUnsubscribeTwice(t *testing.T) {
	s := New(models.Stage)
	ch := s.Subscribe()
	s.Unsubscribe(ch)
	s.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("sheet_type")
	require.NoError(t, err)
	assert.Equal(t, FieldSheetType, f)

	_, err = ParseField("sheetType")
	assert.Error(t, err)
}
