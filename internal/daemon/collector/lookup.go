package collector

import (
	"context"

	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/pkg/api"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/grovetools/casemgmt/schema"
)

// LookupCollector fetches one reference list and projects each record into
// its option shape.
type LookupCollector[R any, O any] struct {
	endpoint  string
	update    store.UpdateType
	validator *schema.Validator
	project   func(R) O
	getter    api.Getter
}

// Name returns the endpoint the collector reads.
func (c *LookupCollector[R, O]) Name() string {
	return c.endpoint
}

// Run fetches the list with the reference page size.
func (c *LookupCollector[R, O]) Run(ctx context.Context, _ *store.Store, updates chan<- store.Update) error {
	records, err := api.Fetch[R](ctx, c.getter, api.ReferenceEndpoint(c.endpoint), c.validator)
	if err != nil {
		return err
	}

	options := make([]O, 0, len(records))
	for _, r := range records {
		options = append(options, c.project(r))
	}

	updates <- store.Update{
		Type:    c.update,
		Source:  c.endpoint,
		Scanned: len(records),
		Payload: options,
	}
	return nil
}

// NewPaymentTypesCollector projects payment types: label=payment_name, value=id.
func NewPaymentTypesCollector(g api.Getter) Collector {
	return &LookupCollector[models.PaymentTypeRecord, models.LookupOption]{
		endpoint:  api.EndpointPaymentTypes,
		update:    store.UpdatePaymentTypes,
		validator: api.PaymentTypeSchema,
		project:   models.PaymentTypeOption,
		getter:    g,
	}
}

// NewFileTypesCollector projects file types with their payment type.
func NewFileTypesCollector(g api.Getter) Collector {
	return &LookupCollector[models.FileTypeRecord, models.FileTypeOption]{
		endpoint:  api.EndpointFileTypes,
		update:    store.UpdateFileTypes,
		validator: api.FileTypeSchema,
		project:   models.FileTypeOptionFrom,
		getter:    g,
	}
}

// NewSheetTypesCollector projects sheet types with their file type.
func NewSheetTypesCollector(g api.Getter) Collector {
	return &LookupCollector[models.SheetTypeRecord, models.SheetTypeOption]{
		endpoint:  api.EndpointSheetTypes,
		update:    store.UpdateSheetTypes,
		validator: api.SheetTypeSchema,
		project:   models.SheetTypeOptionFrom,
		getter:    g,
	}
}

// NewFlowCommandTypesCollector projects flow-command types: label=name, value=id.
func NewFlowCommandTypesCollector(g api.Getter) Collector {
	return &LookupCollector[models.CommandTypeRecord, models.LookupOption]{
		endpoint:  api.EndpointFlowCommandTypes,
		update:    store.UpdateFlowCommandTypes,
		validator: api.CommandTypeSchema,
		project:   models.CommandTypeOption,
		getter:    g,
	}
}

// NewDataCommandTypesCollector projects data-command types: label=name, value=id.
func NewDataCommandTypesCollector(g api.Getter) Collector {
	return &LookupCollector[models.CommandTypeRecord, models.LookupOption]{
		endpoint:  api.EndpointDataCommandTypes,
		update:    store.UpdateDataCommandTypes,
		validator: api.CommandTypeSchema,
		project:   models.CommandTypeOption,
		getter:    g,
	}
}

// BaseCollectors returns the five reference-list collectors fetched on
// attach and after every environment change.
func BaseCollectors(g api.Getter) []Collector {
	return []Collector{
		NewPaymentTypesCollector(g),
		NewFileTypesCollector(g),
		NewSheetTypesCollector(g),
		NewFlowCommandTypesCollector(g),
		NewDataCommandTypesCollector(g),
	}
}
