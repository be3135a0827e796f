package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fjacquet/pod-ledger/internal/models"
)

// Seed is the reference data loaded by the seed command.
type Seed struct {
	Accounts  []models.Account  `yaml:"accounts"`
	Providers []models.Provider `yaml:"providers"`
	Orders    []models.Order    `yaml:"orders"`
}

// FindSeedFile looks for a seed file in standard locations.
func FindSeedFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".pod-ledger", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadSeed reads and validates a YAML seed file.
func LoadSeed(filename string) (Seed, error) {
	path, err := FindSeedFile(filename)
	if err != nil {
		return Seed{}, fmt.Errorf("seed file %s: %w", filename, err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path chosen by the operator
	if err != nil {
		return Seed{}, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if err := seed.Validate(); err != nil {
		return Seed{}, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return seed, nil
}

// Validate checks ids, names, account types and currencies. Parent links are
// not checked for cycles.
func (s Seed) Validate() error {
	accountIDs := make(map[uint]bool, len(s.Accounts))
	for _, a := range s.Accounts {
		if a.ID == 0 || a.Name == "" {
			return fmt.Errorf("account needs an id and a name: %+v", a)
		}
		if !a.Type.Valid() {
			return fmt.Errorf("account %q has unknown type %q", a.Name, a.Type)
		}
		if accountIDs[a.ID] {
			return fmt.Errorf("duplicate account id %d", a.ID)
		}
		accountIDs[a.ID] = true
	}

	providerIDs := make(map[uint]bool, len(s.Providers))
	for _, p := range s.Providers {
		if p.ID == 0 || p.Name == "" {
			return fmt.Errorf("provider needs an id and a name: %+v", p)
		}
		if !models.ValidCurrency(p.CurrencyCode) {
			return fmt.Errorf("provider %q has unknown currency %q", p.Name, p.CurrencyCode)
		}
		if providerIDs[p.ID] {
			return fmt.Errorf("duplicate provider id %d", p.ID)
		}
		providerIDs[p.ID] = true
	}

	for _, o := range s.Orders {
		if o.OrderNumber == "" {
			return fmt.Errorf("order %d has no number", o.ID)
		}
	}
	return nil
}
