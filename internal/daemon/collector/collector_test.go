package collector

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/grovetools/casemgmt/config"
	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/pkg/api"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/grovetools/casemgmt/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(b *testutil.Backend) *api.Client {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return api.NewClient(config.APIConfig{StageURL: b.URL()}, nil, api.WithLogger(logrus.NewEntry(l)))
}

func runOne(t *testing.T, c Collector) (store.Update, error) {
	t.Helper()
	updates := make(chan store.Update, 1)
	err := c.Run(context.Background(), store.New(models.Stage), updates)
	close(updates)
	u := <-updates
	return u, err
}

func int64p(v int64) *int64 { return &v }

func TestLookupProjections(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetRawData(api.EndpointPaymentTypes, `[{"id": 1, "payment_name": "Cash", "code": "C"}]`)
	b.SetRawData(api.EndpointFileTypes, `[{"id": 2, "name": "CSV", "payment_type_id": 1}, {"id": 3, "name": "XML", "payment_type_id": null}]`)
	b.SetRawData(api.EndpointSheetTypes, `[{"id": 7, "name": "Main", "frozen_import_file_type_id": 2}]`)
	b.SetRawData(api.EndpointFlowCommandTypes, `[{"id": 4, "name": "Copy"}]`)
	b.SetRawData(api.EndpointDataCommandTypes, `[{"id": 5, "name": "Trim"}]`)
	g := newClient(b)

	tests := []struct {
		collector Collector
		update    store.UpdateType
		want      interface{}
		wantJSON  string
	}{
		{
			collector: NewPaymentTypesCollector(g),
			update:    store.UpdatePaymentTypes,
			want:      []models.LookupOption{{Label: "Cash", Value: 1}},
			wantJSON:  `[{"label":"Cash","value":1}]`,
		},
		{
			collector: NewFileTypesCollector(g),
			update:    store.UpdateFileTypes,
			want: []models.FileTypeOption{
				{LookupOption: models.LookupOption{Label: "CSV", Value: 2}, PaymentTypeID: int64p(1)},
				{LookupOption: models.LookupOption{Label: "XML", Value: 3}},
			},
			wantJSON: `[{"label":"CSV","value":2,"paymentTypeId":1},{"label":"XML","value":3,"paymentTypeId":null}]`,
		},
		{
			collector: NewSheetTypesCollector(g),
			update:    store.UpdateSheetTypes,
			want:      []models.SheetTypeOption{{LookupOption: models.LookupOption{Label: "Main", Value: 7}, FileTypeID: int64p(2)}},
			wantJSON:  `[{"label":"Main","value":7,"fileTypeId":2}]`,
		},
		{
			collector: NewFlowCommandTypesCollector(g),
			update:    store.UpdateFlowCommandTypes,
			want:      []models.LookupOption{{Label: "Copy", Value: 4}},
			wantJSON:  `[{"label":"Copy","value":4}]`,
		},
		{
			collector: NewDataCommandTypesCollector(g),
			update:    store.UpdateDataCommandTypes,
			want:      []models.LookupOption{{Label: "Trim", Value: 5}},
			wantJSON:  `[{"label":"Trim","value":5}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.collector.Name(), func(t *testing.T) {
			u, err := runOne(t, tt.collector)
			require.NoError(t, err)
			assert.Equal(t, tt.update, u.Type)
			assert.Equal(t, tt.collector.Name(), u.Source)
			assert.Equal(t, tt.want, u.Payload)

			data, err := json.Marshal(u.Payload)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(data))

			reqs := b.RequestsFor(tt.collector.Name())
			require.NotEmpty(t, reqs)
			assert.Equal(t, "1000", reqs[len(reqs)-1].Query.Get("page_size"))
		})
	}
}

func TestBaseCollectorsCoverFiveLists(t *testing.T) {
	var names []string
	for _, c := range BaseCollectors(nil) {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{
		api.EndpointPaymentTypes,
		api.EndpointFileTypes,
		api.EndpointSheetTypes,
		api.EndpointFlowCommandTypes,
		api.EndpointDataCommandTypes,
	}, names)
}

func TestLookupErrorEmitsNothing(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetResponse(api.EndpointPaymentTypes, 500, "")

	u, err := runOne(t, NewPaymentTypesCollector(newClient(b)))
	assert.Error(t, err)
	assert.Equal(t, store.Update{}, u)
}

func TestCommandCollectorsFilterBySheetType(t *testing.T) {
	b := testutil.NewBackend(t)
	records := `[
		{"id": 1, "frozen_import_sheet_type_id": 7},
		{"id": 2, "frozen_import_sheet_type_id": null},
		{"id": 3, "frozen_import_sheet_type_id": 8},
		{"id": 4}
	]`
	b.SetRawData(api.EndpointDataCommands, records)
	b.SetRawData(api.EndpointFlowCommands, records)
	g := newClient(b)

	for _, c := range CommandCollectors(g, 7) {
		t.Run(c.Name(), func(t *testing.T) {
			u, err := runOne(t, c)
			require.NoError(t, err)
			assert.Equal(t, 4, u.Scanned)

			cmds := u.Payload.([]models.Command)
			var ids []int64
			for _, cmd := range cmds {
				id, _ := cmd.ID()
				ids = append(ids, id)
			}
			assert.Equal(t, []int64{1, 2}, ids)
		})
	}

	flow := b.RequestsFor(api.EndpointFlowCommands)
	require.Len(t, flow, 1)
	assert.Equal(t, "7", flow[0].Query.Get(models.SheetTypeField))

	data := b.RequestsFor(api.EndpointDataCommands)
	require.Len(t, data, 1)
	assert.Empty(t, data[0].Query)
}
