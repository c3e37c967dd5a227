package types

import (
	"bytes"

	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// PubKeyLength is the size of a compressed secp256k1 public key.
	PubKeyLength = secp256k1.PubKeySize
	// SignatureLength is the size of an r||s secp256k1 signature.
	SignatureLength = 64
	// PlainKeySignatureLength is pubkey||signature.
	PlainKeySignatureLength = PubKeyLength + SignatureLength
)

// DeliverWithSignature is one off-chain request delivered with the requester's
// signature over its request id.
type DeliverWithSignature struct {
	RequestData  []byte `json:"request_data"`
	Signature    []byte `json:"signature"`
	DeliveryData []byte `json:"delivery_data"`
}

// VerifyPlainKeySignature checks a pubkey||signature blob over id and that the
// key belongs to signer.
func VerifyPlainKeySignature(signer sdk.AccAddress, id RequestID, sig []byte) bool {
	if len(sig) != PlainKeySignatureLength {
		return false
	}

	pubKey := &secp256k1.PubKey{Key: bytes.Clone(sig[:PubKeyLength])}
	if !bytes.Equal(pubKey.Address(), signer) {
		return false
	}
	return pubKey.VerifySignature(id[:], sig[PubKeyLength:])
}

// SignRequestID produces a plain-key signature blob for id.
func SignRequestID(privKey *secp256k1.PrivKey, id RequestID) ([]byte, error) {
	sig, err := privKey.Sign(id[:])
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, PlainKeySignatureLength)
	blob = append(blob, privKey.PubKey().Bytes()...)
	return append(blob, sig...), nil
}
