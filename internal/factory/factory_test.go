package factory_test

import (
	"errors"
	"testing"

	"fjacquet/pod-ledger/internal/factory"
	"fjacquet/pod-ledger/internal/genericparser"
	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/metaadsparser"
	"fjacquet/pod-ledger/internal/parsererror"
	"fjacquet/pod-ledger/internal/printifyparser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetParserWithLogger(t *testing.T) {
	tests := []struct {
		name        string
		parserType  factory.ParserType
		expectError bool
	}{
		{name: "Meta ads", parserType: factory.MetaAds},
		{name: "Printify", parserType: factory.Printify},
		{name: "Generic", parserType: factory.Generic},
		{name: "Unknown", parserType: "unknown", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := factory.Dependencies{Logger: logging.NewMockLogger()}
			p, err := factory.GetParserWithLogger(tt.parserType, deps)

			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, parsererror.ErrUnknownAdapter))
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}

func TestForImporter(t *testing.T) {
	tests := []struct {
		key      string
		wantType interface{}
		wantWarn bool
	}{
		{key: "meta_ads", wantType: &metaadsparser.Adapter{}},
		{key: " Printify ", wantType: &printifyparser.Adapter{}},
		{key: "generic", wantType: &genericparser.Adapter{}},
		{key: "", wantType: &genericparser.Adapter{}},
		{key: "shopify", wantType: &genericparser.Adapter{}, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			logger := logging.NewMockLogger()
			p := factory.ForImporter(tt.key, factory.Dependencies{Logger: logger})

			assert.IsType(t, tt.wantType, p)
			assert.Equal(t, tt.wantWarn, len(logger.GetEntriesByLevel("WARN")) > 0)
		})
	}
}

func TestRegistered(t *testing.T) {
	assert.Equal(t, []factory.ParserType{factory.Generic, factory.MetaAds, factory.Printify}, factory.Registered())
}
