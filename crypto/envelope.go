package crypto

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NonceSize is the GCM nonce length carried by every envelope.
const NonceSize = 12

// Envelope is the stored form of an encrypted message: the nonce plus
// ciphertext including the authentication tag.
type Envelope struct {
	Nonce []byte
	Data  []byte
}

// envelopeWire mirrors the persisted JSON shape. Byte values are
// encoded as numeric arrays, not base64, to stay readable by clients
// that already hold envelopes in this form.
type envelopeWire struct {
	IV   []int `json:"iv"`
	Data []int `json:"data"`
}

// Marshal encodes the envelope as its storage text form.
func (e Envelope) Marshal() (string, error) {
	if len(e.Nonce) != NonceSize {
		return "", fmt.Errorf("invalid nonce length: got %d want %d", len(e.Nonce), NonceSize)
	}
	if len(e.Data) == 0 {
		return "", errors.New("envelope data is required")
	}

	raw, err := json.Marshal(envelopeWire{
		IV:   toInts(e.Nonce),
		Data: toInts(e.Data),
	})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	return string(raw), nil
}

// ParseEnvelope decodes the storage text form of an envelope.
func ParseEnvelope(raw string) (Envelope, error) {
	var wire envelopeWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	if len(wire.IV) != NonceSize {
		return Envelope{}, fmt.Errorf("invalid envelope nonce length: got %d want %d", len(wire.IV), NonceSize)
	}
	if len(wire.Data) == 0 {
		return Envelope{}, errors.New("envelope data is required")
	}

	nonce, err := toBytes(wire.IV)
	if err != nil {
		return Envelope{}, err
	}
	data, err := toBytes(wire.Data)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{Nonce: nonce, Data: data}, nil
}

func toInts(values []byte) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}

func toBytes(values []int) ([]byte, error) {
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("envelope byte value out of range: %d", v)
		}
		out[i] = byte(v)
	}
	return out, nil
}
