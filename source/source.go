// Package source loads raw configuration payloads into chain layers.
// Decoding happens once at load time; the resulting layers are ordinary
// in-memory map layers and perform no further I/O, keeping the chain
// itself a pure lookup structure.
package source

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	chain "github.com/goliatone/go-chain"
	"gopkg.in/yaml.v3"
)

// TOML decodes a TOML document into a layer.
func TOML(data []byte) (*chain.MapLayer[string, any], error) {
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("source: decode toml: %w", err)
	}
	return chain.NewMapLayer(m), nil
}

// TOMLFile reads path and decodes it as TOML.
func TOMLFile(path string) (*chain.MapLayer[string, any], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	return TOML(data)
}

// YAML decodes a YAML document into a layer.
func YAML(data []byte) (*chain.MapLayer[string, any], error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("source: decode yaml: %w", err)
	}
	return chain.NewMapLayer(m), nil
}

// YAMLFile reads path and decodes it as YAML.
func YAMLFile(path string) (*chain.MapLayer[string, any], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	return YAML(data)
}

// JSON decodes a JSON object into a layer.
func JSON(data []byte) (*chain.MapLayer[string, any], error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("source: decode json: %w", err)
	}
	return chain.NewMapLayer(m), nil
}

// JSONFile reads path and decodes it as JSON.
func JSONFile(path string) (*chain.MapLayer[string, any], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	return JSON(data)
}
