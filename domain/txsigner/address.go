package txsigner

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/pkg/errors"
)

const hash160Size = 20

// EncodeAddress encodes a 20-byte hash with the given version byte into a
// base58check address string.
func EncodeAddress(hash []byte, version byte) (string, error) {
	if len(hash) != hash160Size {
		return "", errors.Errorf("address hash must be %d bytes, got %d", hash160Size, len(hash))
	}
	return base58.CheckEncode(hash, version), nil
}

// DecodeAddress decodes a base58check address into its hash and version byte.
func DecodeAddress(address string) (hash []byte, version byte, err error) {
	hash, version, err = base58.CheckDecode(address)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "error decoding address %s", address)
	}
	if len(hash) != hash160Size {
		return nil, 0, errors.Errorf("address %s decodes to %d bytes, want %d", address, len(hash), hash160Size)
	}
	return hash, version, nil
}

// ValidateAddress checks that address is a well-formed pay-to-pubkey-hash or
// pay-to-script-hash address for the given network.
func ValidateAddress(address string, params *config.Params) error {
	_, version, err := DecodeAddress(address)
	if err != nil {
		return err
	}
	if version != params.P2PKHVersion && version != params.P2SHVersion {
		return errors.Errorf("address %s has version %#x, not valid on %s", address, version, params.Name)
	}
	return nil
}

// PubKeyAddress derives the pay-to-pubkey-hash address of a serialized public
// key.
func PubKeyAddress(serializedPubKey []byte, params *config.Params) (string, error) {
	return EncodeAddress(Hash160(serializedPubKey), params.P2PKHVersion)
}
