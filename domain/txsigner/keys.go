package txsigner

import (
	"encoding/hex"

	"github.com/btcsuite/btcutil/base58"
	secp256k1 "github.com/kaspanet/go-secp256k1"
	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/pkg/errors"
	bip39 "github.com/tyler-smith/go-bip39"
)

const privateKeySize = 32

// compressedFlag is the trailing WIF byte marking that the key's address uses
// the compressed public key serialization.
const compressedFlag = 0x01

// PrivateKey wraps a secp256k1 private key together with the helpers the
// wallet needs: address derivation and transaction signing. Public keys are
// always serialized compressed.
type PrivateKey struct {
	key *secp256k1.ECDSAPrivateKey
}

// PrivateKeyFromBytes parses a 32-byte scalar into a private key.
func PrivateKeyFromBytes(data []byte) (*PrivateKey, error) {
	if len(data) != privateKeySize {
		return nil, errors.Errorf("private key must be %d bytes, got %d", privateKeySize, len(data))
	}
	key, err := secp256k1.DeserializeECDSAPrivateKeyFromSlice(data)
	if err != nil {
		return nil, errors.Wrap(err, "error deserializing private key")
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromHex parses a raw hex-encoded 32-byte scalar.
func PrivateKeyFromHex(keyHex string) (*PrivateKey, error) {
	data, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing private key hex")
	}
	return PrivateKeyFromBytes(data)
}

// PrivateKeyFromWIF parses a base58check wallet-import-format key and checks
// it against the network's WIF version byte.
func PrivateKeyFromWIF(wif string, params *config.Params) (*PrivateKey, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding WIF")
	}
	if version != params.WIFVersion {
		return nil, errors.Errorf("WIF version %#x does not match network %s", version, params.Name)
	}
	if len(payload) == privateKeySize+1 && payload[privateKeySize] == compressedFlag {
		payload = payload[:privateKeySize]
	}
	return PrivateKeyFromBytes(payload)
}

// PrivateKeyFromSeedPhrase derives a private key from a BIP-39 mnemonic. The
// first 32 bytes of the binary seed are used as the key scalar.
func PrivateKeyFromSeedPhrase(mnemonic, passphrase string) (*PrivateKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid seed phrase")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	return PrivateKeyFromBytes(seed[:privateKeySize])
}

// ToWIF serializes the key in wallet-import-format for the given network,
// with the compressed-pubkey flag set.
func (k *PrivateKey) ToWIF(params *config.Params) string {
	serialized := k.key.Serialize()
	payload := make([]byte, 0, privateKeySize+1)
	payload = append(payload, serialized[:]...)
	payload = append(payload, compressedFlag)
	return base58.CheckEncode(payload, params.WIFVersion)
}

// SerializedPublicKey returns the 33-byte compressed public key.
func (k *PrivateKey) SerializedPublicKey() ([]byte, error) {
	pubKey, err := k.key.ECDSAPublicKey()
	if err != nil {
		return nil, errors.Wrap(err, "error deriving public key")
	}
	serialized, err := pubKey.Serialize()
	if err != nil {
		return nil, errors.Wrap(err, "error serializing public key")
	}
	return serialized[:], nil
}

// Address derives the key's pay-to-pubkey-hash address on the given network.
func (k *PrivateKey) Address(params *config.Params) (string, error) {
	serializedPubKey, err := k.SerializedPublicKey()
	if err != nil {
		return "", err
	}
	return PubKeyAddress(serializedPubKey, params)
}

// SignHash signs a 32-byte message hash and returns the 64-byte compact
// (r || s) signature.
func (k *PrivateKey) SignHash(hash [32]byte) ([]byte, error) {
	secpHash := secp256k1.Hash(hash)
	signature, err := k.key.ECDSASign(&secpHash)
	if err != nil {
		return nil, errors.Wrap(err, "error signing hash")
	}
	serialized := signature.Serialize()
	return serialized[:], nil
}

// ScalarAddress interprets an arbitrary 32-byte value as a private key scalar
// and derives its pay-to-pubkey-hash address. This is how asset tag addresses
// are produced: the address is purely nominal and nobody is expected to
// control it.
func ScalarAddress(scalar []byte, params *config.Params) (string, error) {
	key, err := PrivateKeyFromBytes(scalar)
	if err != nil {
		return "", errors.Wrap(err, "error using scalar as private key")
	}
	return key.Address(params)
}
