package txsigner

import (
	"encoding/binary"

	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/pkg/errors"
)

// Script opcodes used by the wallet.
const (
	OpReturn      = 0x6a
	OpDup         = 0x76
	OpEqual       = 0x87
	OpEqualVerify = 0x88
	OpHash160     = 0xa9
	OpCheckSig    = 0xac
	OpPushData1   = 0x4c
	OpPushData2   = 0x4d
	OpPushData4   = 0x4e
)

// maxNullDataPayload bounds the payload of a null-data output.
const maxNullDataPayload = 4096

// appendDataPush appends a minimal data push of data to script.
func appendDataPush(script []byte, data []byte) []byte {
	switch {
	case len(data) < OpPushData1:
		script = append(script, byte(len(data)))
	case len(data) <= 0xff:
		script = append(script, OpPushData1, byte(len(data)))
	case len(data) <= 0xffff:
		script = append(script, OpPushData2)
		var l [2]byte
		binary.LittleEndian.PutUint16(l[:], uint16(len(data)))
		script = append(script, l[:]...)
	default:
		script = append(script, OpPushData4)
		var l [4]byte
		binary.LittleEndian.PutUint32(l[:], uint32(len(data)))
		script = append(script, l[:]...)
	}
	return append(script, data...)
}

// PayToAddrScript creates a locking script paying to the given address:
// pay-to-pubkey-hash or pay-to-script-hash depending on the address version.
func PayToAddrScript(address string, params *config.Params) ([]byte, error) {
	hash, version, err := DecodeAddress(address)
	if err != nil {
		return nil, err
	}
	switch version {
	case params.P2PKHVersion:
		script := make([]byte, 0, 25)
		script = append(script, OpDup, OpHash160)
		script = appendDataPush(script, hash)
		return append(script, OpEqualVerify, OpCheckSig), nil
	case params.P2SHVersion:
		script := make([]byte, 0, 23)
		script = append(script, OpHash160)
		script = appendDataPush(script, hash)
		return append(script, OpEqual), nil
	default:
		return nil, errors.Errorf("address %s has unknown version %#x on %s", address, version, params.Name)
	}
}

// NullDataScript creates an unspendable data-carrying script with the given
// payload.
func NullDataScript(data []byte) ([]byte, error) {
	if len(data) > maxNullDataPayload {
		return nil, errors.Errorf("null-data payload of %d bytes exceeds the %d byte limit",
			len(data), maxNullDataPayload)
	}
	return appendDataPush([]byte{OpReturn}, data), nil
}

// IsPayToPubKeyHash returns whether script has the canonical
// pay-to-pubkey-hash form.
func IsPayToPubKeyHash(script []byte) bool {
	return len(script) == 25 &&
		script[0] == OpDup &&
		script[1] == OpHash160 &&
		script[2] == hash160Size &&
		script[23] == OpEqualVerify &&
		script[24] == OpCheckSig
}

// IsPayToScriptHash returns whether script has the canonical
// pay-to-script-hash form.
func IsPayToScriptHash(script []byte) bool {
	return len(script) == 23 &&
		script[0] == OpHash160 &&
		script[1] == hash160Size &&
		script[22] == OpEqual
}

// IsNullData returns whether script is an unspendable data carrier.
func IsNullData(script []byte) bool {
	return len(script) > 0 && script[0] == OpReturn
}

// PushedData extracts the payload of a null-data script.
func PushedData(script []byte) ([]byte, error) {
	if !IsNullData(script) {
		return nil, errors.New("script is not a null-data script")
	}
	pushes, err := parsePushes(script[1:])
	if err != nil {
		return nil, err
	}
	if len(pushes) == 0 {
		return nil, errors.New("null-data script carries no payload")
	}
	return pushes[0], nil
}

// ExtractScriptAddress returns the address a pay-to-pubkey-hash or
// pay-to-script-hash locking script pays to.
func ExtractScriptAddress(script []byte, params *config.Params) (string, error) {
	switch {
	case IsPayToPubKeyHash(script):
		return EncodeAddress(script[3:23], params.P2PKHVersion)
	case IsPayToScriptHash(script):
		return EncodeAddress(script[2:22], params.P2SHVersion)
	default:
		return "", errors.New("script pays to no extractable address")
	}
}

// AddressFromSignatureScript recovers the spender's address from a
// pay-to-pubkey-hash unlocking script, whose final push is the spender's
// public key.
func AddressFromSignatureScript(signatureScript []byte, params *config.Params) (string, error) {
	pushes, err := parsePushes(signatureScript)
	if err != nil {
		return "", errors.Wrap(err, "error parsing signature script")
	}
	if len(pushes) == 0 {
		return "", errors.New("signature script contains no pushes")
	}
	pubKey := pushes[len(pushes)-1]
	if len(pubKey) != 33 && len(pubKey) != 65 {
		return "", errors.Errorf("final signature script push of %d bytes is not a public key", len(pubKey))
	}
	return EncodeAddress(Hash160(pubKey), params.P2PKHVersion)
}

// parsePushes splits a script consisting purely of data pushes into the
// pushed chunks.
func parsePushes(script []byte) ([][]byte, error) {
	var pushes [][]byte
	for i := 0; i < len(script); {
		op := script[i]
		i++
		var dataLen int
		switch {
		case op < OpPushData1:
			dataLen = int(op)
		case op == OpPushData1:
			if i+1 > len(script) {
				return nil, errors.New("truncated OP_PUSHDATA1")
			}
			dataLen = int(script[i])
			i++
		case op == OpPushData2:
			if i+2 > len(script) {
				return nil, errors.New("truncated OP_PUSHDATA2")
			}
			dataLen = int(binary.LittleEndian.Uint16(script[i : i+2]))
			i += 2
		case op == OpPushData4:
			if i+4 > len(script) {
				return nil, errors.New("truncated OP_PUSHDATA4")
			}
			dataLen = int(binary.LittleEndian.Uint32(script[i : i+4]))
			i += 4
		default:
			return nil, errors.Errorf("opcode %#x is not a data push", op)
		}
		if i+dataLen > len(script) {
			return nil, errors.New("push runs past the end of the script")
		}
		pushes = append(pushes, script[i:i+dataLen])
		i += dataLen
	}
	return pushes, nil
}
