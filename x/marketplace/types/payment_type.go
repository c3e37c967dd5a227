package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// PaymentType is a 32-byte tag selecting the balance tracker that settles a request.
type PaymentType [32]byte

// PaymentTypeFromName derives the tag keccak256(name).
func PaymentTypeFromName(name string) PaymentType {
	var pt PaymentType
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	copy(pt[:], h.Sum(nil))
	return pt
}

// ParsePaymentType decodes a hex tag, with or without 0x prefix.
func ParsePaymentType(s string) (PaymentType, error) {
	var pt PaymentType
	bz, err := decodeHex32(s)
	if err != nil {
		return pt, fmt.Errorf("payment type: %w", err)
	}
	copy(pt[:], bz)
	return pt, nil
}

// IsZero reports whether the tag is the zero sentinel.
func (pt PaymentType) IsZero() bool {
	return pt == PaymentType{}
}

func (pt PaymentType) String() string {
	return "0x" + hex.EncodeToString(pt[:])
}

func (pt PaymentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(pt.String())
}

func (pt *PaymentType) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	parsed, err := ParsePaymentType(s)
	if err != nil {
		return err
	}
	*pt = parsed
	return nil
}

func decodeHex32(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(bz) != 32 {
		return nil, fmt.Errorf("expected 32 bytes, got %d", len(bz))
	}
	return bz, nil
}
