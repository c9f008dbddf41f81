// Package codec encodes keys, encapsulated keys and ciphertexts for JSON
// transport.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ToBase64URL encodes bytes to URL-safe base64 without padding.
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// FromBase64URL decodes URL-safe base64 without padding.
func FromBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// Decode accepts base64url or standard base64, with or without padding.
// Values produced by other HPKE implementations use either alphabet.
func Decode(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.StdEncoding,
	} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	// The input may be key material, so only its length is reported.
	return nil, fmt.Errorf("not valid base64 (%d characters)", len(s))
}

// Bytes is a byte slice carried in JSON as unpadded base64url.
type Bytes []byte

// MarshalJSON implements json.Marshaler.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToBase64URL(b))
}

// UnmarshalJSON implements json.Unmarshaler using the lenient Decode.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := Decode(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
