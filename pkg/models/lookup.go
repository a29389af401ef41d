package models

// LookupOption is a reference-list entry shaped for selection controls.
type LookupOption struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// FileTypeOption is a frozen-import file type with the payment type it belongs to.
type FileTypeOption struct {
	LookupOption
	PaymentTypeID *int64 `json:"paymentTypeId"`
}

// SheetTypeOption is a frozen-import sheet type with the file type it belongs to.
type SheetTypeOption struct {
	LookupOption
	FileTypeID *int64 `json:"fileTypeId"`
}

// PaymentTypeRecord is a raw record from the payment-types endpoint.
type PaymentTypeRecord struct {
	ID          int64  `json:"id" mapstructure:"id"`
	PaymentName string `json:"payment_name" mapstructure:"payment_name"`
}

// FileTypeRecord is a raw record from the frozen-import-file-types endpoint.
type FileTypeRecord struct {
	ID            int64  `json:"id" mapstructure:"id"`
	Name          string `json:"name" mapstructure:"name"`
	PaymentTypeID *int64 `json:"payment_type_id" mapstructure:"payment_type_id" jsonschema:"oneof_type=integer;null"`
}

// SheetTypeRecord is a raw record from the frozen-import-sheet-types endpoint.
type SheetTypeRecord struct {
	ID         int64  `json:"id" mapstructure:"id"`
	Name       string `json:"name" mapstructure:"name"`
	FileTypeID *int64 `json:"frozen_import_file_type_id" mapstructure:"frozen_import_file_type_id" jsonschema:"oneof_type=integer;null"`
}

// CommandTypeRecord is a raw record from the flow-command-types and
// data-command-types endpoints.
type CommandTypeRecord struct {
	ID   int64  `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
}

// PaymentTypeOption projects a payment type: label=payment_name, value=id.
func PaymentTypeOption(r PaymentTypeRecord) LookupOption {
	return LookupOption{Label: r.PaymentName, Value: r.ID}
}

// FileTypeOptionFrom projects a file type: label=name, value=id,
// paymentTypeId=payment_type_id.
func FileTypeOptionFrom(r FileTypeRecord) FileTypeOption {
	return FileTypeOption{
		LookupOption:  LookupOption{Label: r.Name, Value: r.ID},
		PaymentTypeID: r.PaymentTypeID,
	}
}

// SheetTypeOptionFrom projects a sheet type: label=name, value=id,
// fileTypeId=frozen_import_file_type_id.
func SheetTypeOptionFrom(r SheetTypeRecord) SheetTypeOption {
	return SheetTypeOption{
		LookupOption: LookupOption{Label: r.Name, Value: r.ID},
		FileTypeID:   r.FileTypeID,
	}
}

// CommandTypeOption projects a flow or data command type: label=name, value=id.
func CommandTypeOption(r CommandTypeRecord) LookupOption {
	return LookupOption{Label: r.Name, Value: r.ID}
}
