package api

import (
	"context"
	"encoding/json"
	"testing"

	storeerrors "github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/grovetools/casemgmt/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func TestEndpointHelpers(t *testing.T) {
	assert.Equal(t, "payment-types?page_size=1000", ReferenceEndpoint(EndpointPaymentTypes))
	assert.Equal(t, "frozen-import-flow-commands?frozen_import_sheet_type_id=7", SheetTypeFilter(EndpointFlowCommands, 7))
	assert.Equal(t, "data-command-types", WithQuery(EndpointDataCommandTypes, nil))
}

func TestFetchDecodesRecords(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetRawData(EndpointFileTypes, `[
		{"id": 3, "name": "CSV", "payment_type_id": 9, "extra": true},
		{"id": 4, "name": "XLS", "payment_type_id": null}
	]`)
	env := models.Stage
	c := newTestClient(b, b, &env)

	records, err := Fetch[models.FileTypeRecord](context.Background(), c, EndpointFileTypes, FileTypeSchema)
	require.NoError(t, err)
	assert.Equal(t, []models.FileTypeRecord{
		{ID: 3, Name: "CSV", PaymentTypeID: int64p(9)},
		{ID: 4, Name: "XLS"},
	}, records)
}

func TestFetchEmptyList(t *testing.T) {
	b := testutil.NewBackend(t)
	env := models.Stage
	c := newTestClient(b, b, &env)

	records, err := Fetch[models.PaymentTypeRecord](context.Background(), c, EndpointPaymentTypes, PaymentTypeSchema)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetchSchemaMismatchFailsWholeList(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "string id", data: `[{"id": 1, "payment_name": "Cash"}, {"id": "2", "payment_name": "Card"}]`},
		{name: "missing name", data: `[{"id": 1}]`},
		{name: "not a list", data: `{"id": 1, "payment_name": "Cash"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewBackend(t)
			b.SetRawData(EndpointPaymentTypes, tt.data)
			env := models.Stage
			c := newTestClient(b, b, &env)

			records, err := Fetch[models.PaymentTypeRecord](context.Background(), c, EndpointPaymentTypes, PaymentTypeSchema)
			assert.Nil(t, records)
			assert.True(t, storeerrors.Is(err, storeerrors.ErrCodeSchemaMismatch), "got %v", err)
		})
	}
}

func TestFetchCommandsKeepsRecordsVerbatim(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetRawData(EndpointDataCommands, `[
		{"id": 1, "frozen_import_sheet_type_id": 7, "field": "amount", "order": 2},
		{"id": 2, "frozen_import_sheet_type_id": null, "field": "date"}
	]`)
	env := models.Stage
	c := newTestClient(b, b, &env)

	cmds, err := FetchCommands(context.Background(), c, EndpointDataCommands)
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, "amount", cmds[0]["field"])
	assert.Equal(t, json.Number("2"), cmds[0]["order"])
	id, ok := cmds[0].SheetTypeID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
	assert.True(t, cmds[1].IsGlobal())
}

func TestFetchCommandsRejectsBadSheetType(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetRawData(EndpointFlowCommands, `[{"id": 1, "frozen_import_sheet_type_id": "seven"}]`)
	env := models.Stage
	c := newTestClient(b, b, &env)

	_, err := FetchCommands(context.Background(), c, EndpointFlowCommands)
	assert.True(t, storeerrors.Is(err, storeerrors.ErrCodeSchemaMismatch))
}

func TestFetchPropagatesGetError(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetResponse(EndpointSheetTypes, 503, "")
	env := models.Stage
	c := newTestClient(b, b, &env)

	_, err := Fetch[models.SheetTypeRecord](context.Background(), c, EndpointSheetTypes, SheetTypeSchema)
	assert.True(t, storeerrors.Is(err, storeerrors.ErrCodeHTTPStatus))
}
