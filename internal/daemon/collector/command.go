package collector

import (
	"context"

	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/pkg/api"
	"github.com/grovetools/casemgmt/pkg/models"
)

// CommandCollector fetches data or flow commands for one sheet type and keeps
// the records bound to that sheet type or to none.
type CommandCollector struct {
	endpoint     string
	update       store.UpdateType
	sheetTypeID  int64
	serverFilter bool
	getter       api.Getter
}

// NewDataCommandsCollector fetches every data command and filters locally.
func NewDataCommandsCollector(g api.Getter, sheetTypeID int64) *CommandCollector {
	return &CommandCollector{
		endpoint:    api.EndpointDataCommands,
		update:      store.UpdateDataCommands,
		sheetTypeID: sheetTypeID,
		getter:      g,
	}
}

// NewFlowCommandsCollector asks the backend to filter by sheet type and
// filters locally as well.
func NewFlowCommandsCollector(g api.Getter, sheetTypeID int64) *CommandCollector {
	return &CommandCollector{
		endpoint:     api.EndpointFlowCommands,
		update:       store.UpdateFlowCommands,
		sheetTypeID:  sheetTypeID,
		serverFilter: true,
		getter:       g,
	}
}

// Name returns the endpoint the collector reads.
func (c *CommandCollector) Name() string {
	return c.endpoint
}

// SheetTypeID returns the sheet type the collector filters by.
func (c *CommandCollector) SheetTypeID() int64 {
	return c.sheetTypeID
}

// Run fetches and filters the commands.
func (c *CommandCollector) Run(ctx context.Context, _ *store.Store, updates chan<- store.Update) error {
	endpoint := c.endpoint
	if c.serverFilter {
		endpoint = api.SheetTypeFilter(endpoint, c.sheetTypeID)
	}

	cmds, err := api.FetchCommands(ctx, c.getter, endpoint)
	if err != nil {
		return err
	}

	updates <- store.Update{
		Type:    c.update,
		Source:  c.endpoint,
		Scanned: len(cmds),
		Payload: models.FilterCommands(cmds, c.sheetTypeID),
	}
	return nil
}

// CommandCollectors returns the data and flow command collectors for sheetTypeID.
func CommandCollectors(g api.Getter, sheetTypeID int64) []Collector {
	return []Collector{
		NewDataCommandsCollector(g, sheetTypeID),
		NewFlowCommandsCollector(g, sheetTypeID),
	}
}
