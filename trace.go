package chain

import "encoding/json"

// Trace captures provenance information for one key across every layer a
// lookup would consult to produce the effective value.
type Trace struct {
	Key    any          `json:"key"`
	Policy string       `json:"policy"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how a specific layer contributed to a traced key.
type Provenance struct {
	Index int  `json:"index"`
	Value any  `json:"value,omitempty"`
	Found bool `json:"found"`
}

// TraceKey walks every layer and records whether it holds key and with
// which value. No policy is applied; the result is the raw per-layer
// picture the configured policy resolves over.
func (c *Chain[K, V]) TraceKey(key K) Trace {
	trace := Trace{Key: key, Policy: c.cfg.policy.String()}
	for i, layer := range c.layers {
		entry := Provenance{Index: i}
		if value, ok := layer.Get(key); ok {
			entry.Value = value
			entry.Found = true
		}
		trace.Layers = append(trace.Layers, entry)
	}
	return trace
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated
// via ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// Description summarises a chain's shape for diagnostics. It is
// JSON-serialisable.
type Description struct {
	Policy     string       `json:"policy"`
	HasDefault bool         `json:"has_default"`
	Layers     []LayerStats `json:"layers"`
}

// LayerStats describes one layer entry within a Description.
type LayerStats struct {
	Index   int  `json:"index"`
	Keys    int  `json:"keys"`
	Mutable bool `json:"mutable"`
}

// Describe reports the chain's policy, default presence, and per-layer
// key counts. Only layer 0 is ever written through the chain, so Mutable
// is false for every other index regardless of the layer's own type.
func (c *Chain[K, V]) Describe() Description {
	desc := Description{
		Policy:     c.cfg.policy.String(),
		HasDefault: c.cfg.hasDefault,
	}
	for i, layer := range c.layers {
		_, mutable := layer.(MutableLayer[K, V])
		desc.Layers = append(desc.Layers, LayerStats{
			Index:   i,
			Keys:    len(layer.Keys()),
			Mutable: mutable && i == 0,
		})
	}
	return desc
}
