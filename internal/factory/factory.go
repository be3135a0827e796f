// Package factory is the closed registry of source adapters.
package factory

import (
	"fmt"
	"sort"
	"strings"

	"fjacquet/pod-ledger/internal/genericparser"
	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/metaadsparser"
	"fjacquet/pod-ledger/internal/parser"
	"fjacquet/pod-ledger/internal/parsererror"
	"fjacquet/pod-ledger/internal/printifyparser"
)

// ParserType is the adapter key stored on a provider.
type ParserType string

const (
	MetaAds  ParserType = metaadsparser.Name
	Printify ParserType = printifyparser.Name
	Generic  ParserType = genericparser.Name
)

// Dependencies are handed to every adapter constructor.
type Dependencies struct {
	Logger    logging.Logger
	Providers genericparser.ProviderMatcher
}

type constructor func(deps Dependencies) parser.Parser

var registry = map[ParserType]constructor{
	MetaAds: func(deps Dependencies) parser.Parser {
		return metaadsparser.NewAdapter(deps.Logger)
	},
	Printify: func(deps Dependencies) parser.Parser {
		return printifyparser.NewAdapter(deps.Logger)
	},
	Generic: func(deps Dependencies) parser.Parser {
		return genericparser.NewAdapter(deps.Logger, deps.Providers)
	},
}

// GetParserWithLogger returns a new adapter for parserType. An unregistered
// type is an error wrapping parsererror.ErrUnknownAdapter.
func GetParserWithLogger(parserType ParserType, deps Dependencies) (parser.Parser, error) {
	build, ok := registry[parserType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", parsererror.ErrUnknownAdapter, parserType)
	}
	return build(deps), nil
}

// Resolve maps a provider's importer key to a registered type. Empty and
// unknown keys resolve to Generic; the second result reports whether the key
// was recognised.
func Resolve(key string) (ParserType, bool) {
	parserType := ParserType(strings.TrimSpace(strings.ToLower(key)))
	if _, ok := registry[parserType]; ok {
		return parserType, true
	}
	return Generic, parserType == ""
}

// ForImporter returns the adapter selected by a provider's importer key,
// falling back to the generic adapter.
func ForImporter(key string, deps Dependencies) parser.Parser {
	parserType, known := Resolve(key)
	if !known {
		logging.OrDefault(deps.Logger).Warn("Unknown importer, using generic adapter",
			logging.F(logging.FieldParser, key))
	}
	p, _ := GetParserWithLogger(parserType, deps)
	return p
}

// Registered lists the registered adapter keys in sorted order.
func Registered() []ParserType {
	types := make([]ParserType, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
