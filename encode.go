package mcmc

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"

	"github.com/scigolib/mcmc/internal/errutil"
)

// EncodeJSON serializes the bundle as indented JSON. The encoding carries
// the group and variable order alongside the keyed maps, so a decoded
// bundle iterates in the original order.
func (id *InferenceData) EncodeJSON() ([]byte, error) {
	out, err := json.MarshalIndent(id, "", "  ")
	return out, errutil.Wrap("encoding inference data as JSON", err)
}

// DecodeJSON deserializes a bundle produced by EncodeJSON.
func DecodeJSON(data []byte) (*InferenceData, error) {
	var id InferenceData
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, errutil.Wrap("decoding inference data from JSON", err)
	}
	return &id, nil
}

// EncodeCBOR serializes the bundle in compact CBOR, the preferred format
// for large draw arrays.
func (id *InferenceData) EncodeCBOR() ([]byte, error) {
	out, err := cbor.Marshal(id)
	return out, errutil.Wrap("encoding inference data as CBOR", err)
}

// DecodeCBOR deserializes a bundle produced by EncodeCBOR.
func DecodeCBOR(data []byte) (*InferenceData, error) {
	var id InferenceData
	if err := cbor.Unmarshal(data, &id); err != nil {
		return nil, errutil.Wrap("decoding inference data from CBOR", err)
	}
	return &id, nil
}
