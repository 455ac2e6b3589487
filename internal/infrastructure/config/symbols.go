package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// SymbolsFile is the optional market symbols overlay:
//
//	coins:
//	  BTC-USD: bitcoin
//	  ADA-USD: cardano
//	baselines:
//	  ADA-USD: 0.45
type SymbolsFile struct {
	Coins     map[string]string  `yaml:"coins"`
	Baselines map[string]float64 `yaml:"baselines"`
}

// LoadSymbols reads a symbols file. An empty path yields an empty overlay.
func LoadSymbols(path string) (*SymbolsFile, error) {
	out := &SymbolsFile{}
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbols file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to parse symbols file %s: %w", path, err)
	}

	for symbol, coin := range out.Coins {
		if symbol == "" || coin == "" {
			return nil, fmt.Errorf("symbols file %s: empty symbol or coin id", path)
		}
	}
	for symbol, price := range out.Baselines {
		if price <= 0 {
			return nil, fmt.Errorf("symbols file %s: baseline for %s must be positive", path, symbol)
		}
	}
	return out, nil
}
