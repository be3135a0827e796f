// Package parser provides the adapter contract, the shared base embedded by
// every adapter and the CSV row reader.
package parser

import (
	"fjacquet/pod-ledger/internal/logging"
)

// BaseParser provides common functionality for all adapter implementations.
//
// Adapters embed BaseParser to inherit it:
//
//	type Adapter struct {
//		parser.BaseParser
//	}
type BaseParser struct {
	name   string
	logger logging.Logger
}

// NewBaseParser creates a new BaseParser for the adapter registered as name.
// If logger is nil, a default logger will be used.
func NewBaseParser(name string, logger logging.Logger) BaseParser {
	logger = logging.OrDefault(logger)
	return BaseParser{
		name:   name,
		logger: logger.WithField(logging.FieldParser, name),
	}
}

// Name returns the registry key of the adapter.
func (b *BaseParser) Name() string {
	return b.name
}

// SetLogger replaces the logger; nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger.WithField(logging.FieldParser, b.name)
	}
}

// GetLogger returns the current logger instance.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}
