package txsigner

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

// maxInputsOutputs bounds deserialization so a malformed length prefix cannot
// force a huge allocation.
const maxInputsOutputs = 100000

// DeserializeTransaction decodes a transaction from its wire form.
func DeserializeTransaction(serialized []byte) (*Transaction, error) {
	r := bytes.NewReader(serialized)
	tx := &Transaction{}

	version, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	tx.Version = int32(version)

	tx.Timestamp, err = readUint32(r)
	if err != nil {
		return nil, err
	}

	inputCount, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if inputCount > maxInputsOutputs {
		return nil, errors.Errorf("input count %d exceeds limit", inputCount)
	}
	tx.TxIn = make([]*TxIn, inputCount)
	for i := range tx.TxIn {
		txIn := &TxIn{}
		txIn.PreviousOutpoint, err = readOutpoint(r)
		if err != nil {
			return nil, err
		}
		txIn.SignatureScript, err = readVarBytes(r)
		if err != nil {
			return nil, err
		}
		txIn.Sequence, err = readUint32(r)
		if err != nil {
			return nil, err
		}
		tx.TxIn[i] = txIn
	}

	outputCount, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if outputCount > maxInputsOutputs {
		return nil, errors.Errorf("output count %d exceeds limit", outputCount)
	}
	tx.TxOut = make([]*TxOut, outputCount)
	for i := range tx.TxOut {
		txOut := &TxOut{}
		txOut.Value, err = readUint64(r)
		if err != nil {
			return nil, err
		}
		txOut.ScriptPubKey, err = readVarBytes(r)
		if err != nil {
			return nil, err
		}
		tx.TxOut[i] = txOut
	}

	tx.LockTime, err = readUint32(r)
	if err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, errors.Errorf("%d trailing bytes after transaction", r.Len())
	}
	return tx, nil
}

// DeserializeTransactionHex decodes a transaction from its hex-encoded wire
// form, as returned by the remote data providers.
func DeserializeTransactionHex(serializedHex string) (*Transaction, error) {
	serialized, err := hex.DecodeString(serializedHex)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding transaction hex")
	}
	return DeserializeTransaction(serialized)
}

func readOutpoint(r io.Reader) (Outpoint, error) {
	var txID [32]byte
	_, err := io.ReadFull(r, txID[:])
	if err != nil {
		return Outpoint{}, errors.WithStack(err)
	}
	reverseInPlace(txID[:])
	index, err := readUint32(r)
	if err != nil {
		return Outpoint{}, err
	}
	return Outpoint{TxID: hex.EncodeToString(txID[:]), Index: index}, nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readVarInt(r io.Reader) (uint64, error) {
	var discriminant [1]byte
	_, err := io.ReadFull(r, discriminant[:])
	if err != nil {
		return 0, errors.WithStack(err)
	}
	switch discriminant[0] {
	case 0xfd:
		var buf [2]byte
		_, err := io.ReadFull(r, buf[:])
		if err != nil {
			return 0, errors.WithStack(err)
		}
		return uint64(binary.LittleEndian.Uint16(buf[:])), nil
	case 0xfe:
		var buf [4]byte
		_, err := io.ReadFull(r, buf[:])
		if err != nil {
			return 0, errors.WithStack(err)
		}
		return uint64(binary.LittleEndian.Uint32(buf[:])), nil
	case 0xff:
		var buf [8]byte
		_, err := io.ReadFull(r, buf[:])
		if err != nil {
			return 0, errors.WithStack(err)
		}
		return binary.LittleEndian.Uint64(buf[:]), nil
	default:
		return uint64(discriminant[0]), nil
	}
}

func readVarBytes(r io.Reader) ([]byte, error) {
	length, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if length > 1<<24 {
		return nil, errors.Errorf("byte array length %d exceeds limit", length)
	}
	buf := make([]byte, length)
	_, err = io.ReadFull(r, buf)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return buf, nil
}
