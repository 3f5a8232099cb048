package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Voiceprint records are flat structs of strings, timestamps and float
// slices, which JSON represents losslessly enough for this purpose
// (embedding floats survive a float32 round-trip). Unknown fields are
// ignored on decode, which is what keeps old artifacts readable as
// optional fields are added.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used for new artifacts.
//
// Existing artifacts are self-describing (the codec name is part of the
// artifact extension) and are decoded with whichever codec wrote them.
var Default Codec = GoJSON{}
