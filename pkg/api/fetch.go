package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	storeerrors "github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/grovetools/casemgmt/schema"
	"github.com/mitchellh/mapstructure"
)

// Endpoints served by the backend.
const (
	EndpointPaymentTypes     = "payment-types"
	EndpointFileTypes        = "frozen-import-file-types"
	EndpointSheetTypes       = "frozen-import-sheet-types"
	EndpointFlowCommandTypes = "flow-command-types"
	EndpointDataCommandTypes = "data-command-types"
	EndpointDataCommands     = "frozen-import-data-commands"
	EndpointFlowCommands     = "frozen-import-flow-commands"
)

// ReferencePageSize is the page size requested for reference lists.
const ReferencePageSize = 1000

// Record validators, one per endpoint shape.
var (
	PaymentTypeSchema = schema.MustValidator("payment-type", &models.PaymentTypeRecord{})
	FileTypeSchema    = schema.MustValidator("file-type", &models.FileTypeRecord{})
	SheetTypeSchema   = schema.MustValidator("sheet-type", &models.SheetTypeRecord{})
	CommandTypeSchema = schema.MustValidator("command-type", &models.CommandTypeRecord{})
	CommandSchema     = schema.MustValidator("command", &models.CommandRecord{})
)

// WithQuery appends query parameters to endpoint.
func WithQuery(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

// ReferenceEndpoint returns endpoint with the reference-list page size.
func ReferenceEndpoint(endpoint string) string {
	return WithQuery(endpoint, url.Values{"page_size": {strconv.Itoa(ReferencePageSize)}})
}

// SheetTypeFilter returns endpoint filtered server-side by sheet type.
func SheetTypeFilter(endpoint string, sheetTypeID int64) string {
	return WithQuery(endpoint, url.Values{models.SheetTypeField: {strconv.FormatInt(sheetTypeID, 10)}})
}

// Fetch gets endpoint and decodes every record of data into T. Records are
// validated against v first; any mismatch fails the whole fetch.
func Fetch[T any](ctx context.Context, g Getter, endpoint string, v *schema.Validator) ([]T, error) {
	var (
		out       []T
		decodeErr error
	)
	err := g.Get(ctx, endpoint, func(data json.RawMessage) {
		out, decodeErr = decodeRecords[T](endpoint, data, v)
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return out, nil
}

// FetchCommands gets a command endpoint. Records are kept verbatim after
// validation.
func FetchCommands(ctx context.Context, g Getter, endpoint string) ([]models.Command, error) {
	var (
		out       []models.Command
		decodeErr error
	)
	err := g.Get(ctx, endpoint, func(data json.RawMessage) {
		var items []interface{}
		items, decodeErr = decodeItems(endpoint, data, CommandSchema)
		if decodeErr != nil {
			return
		}
		out = make([]models.Command, 0, len(items))
		for i, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				decodeErr = storeerrors.SchemaMismatch(endpoint, fmt.Errorf("record %d is not an object", i))
				return
			}
			out = append(out, models.Command(m))
		}
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return out, nil
}

func decodeItems(endpoint string, data json.RawMessage, v *schema.Validator) ([]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var items []interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, storeerrors.SchemaMismatch(endpoint, fmt.Errorf("data is not a list: %w", err))
	}
	if v != nil {
		if err := v.ValidateEach(items); err != nil {
			return nil, storeerrors.SchemaMismatch(endpoint, err)
		}
	}
	return items, nil
}

func decodeRecords[T any](endpoint string, data json.RawMessage, v *schema.Validator) ([]T, error) {
	items, err := decodeItems(endpoint, data, v)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &out,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(items); err != nil {
		return nil, storeerrors.SchemaMismatch(endpoint, err)
	}
	return out, nil
}
