package logging

// Standardized field names for structured logging.
const (
	FieldFile          = "file_path"
	FieldParser        = "parser"
	FieldProvider      = "provider_id"
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceID     = "invoice_id"
	FieldAction        = "action"
	FieldAccount       = "account_id"
	FieldStrategy      = "strategy"
	FieldCurrency      = "currency"
	FieldDate          = "date"
	FieldRate          = "rate"
	FieldAttempt       = "attempt"
	FieldStatus        = "status"
	FieldCount         = "count"
	FieldRunID         = "run_id"
	FieldDuration      = "duration_ms"
)
