package txsigner

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

// TxVersion is the transaction version this wallet produces.
const TxVersion int32 = 1

// maxSequence marks an input as final.
const maxSequence uint32 = 0xffffffff

// SigHashAll commits the signature to all inputs and outputs.
const SigHashAll byte = 0x01

// Outpoint references one output of a previous transaction.
type Outpoint struct {
	TxID  string
	Index uint32
}

// TxIn is one transaction input.
type TxIn struct {
	PreviousOutpoint Outpoint
	SignatureScript  []byte
	Sequence         uint32
}

// TxOut is one transaction output.
type TxOut struct {
	Value        uint64
	ScriptPubKey []byte
}

// Transaction is a raw ledger transaction in the chain family's timestamped
// format: version, timestamp, inputs, outputs, lock time.
type Transaction struct {
	Version   int32
	Timestamp uint32
	TxIn      []*TxIn
	TxOut     []*TxOut
	LockTime  uint32
}

// AddTxIn adds an unsigned input spending the given outpoint.
func (tx *Transaction) AddTxIn(outpoint Outpoint) {
	tx.TxIn = append(tx.TxIn, &TxIn{
		PreviousOutpoint: outpoint,
		Sequence:         maxSequence,
	})
}

// AddTxOut adds an output.
func (tx *Transaction) AddTxOut(value uint64, scriptPubKey []byte) {
	tx.TxOut = append(tx.TxOut, &TxOut{Value: value, ScriptPubKey: scriptPubKey})
}

// Serialize encodes the transaction into its wire form.
func (tx *Transaction) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	err := tx.encode(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeSize returns the length in bytes of the serialized transaction.
func (tx *Transaction) SerializeSize() (int, error) {
	serialized, err := tx.Serialize()
	if err != nil {
		return 0, err
	}
	return len(serialized), nil
}

// ID returns the transaction id: the double-sha256 of the serialized
// transaction in reversed (display) hex order.
func (tx *Transaction) ID() (string, error) {
	serialized, err := tx.Serialize()
	if err != nil {
		return "", err
	}
	hash := DoubleSha256(serialized)
	reverseInPlace(hash[:])
	return hex.EncodeToString(hash[:]), nil
}

func (tx *Transaction) encode(w io.Writer) error {
	err := writeUint32(w, uint32(tx.Version))
	if err != nil {
		return err
	}
	err = writeUint32(w, tx.Timestamp)
	if err != nil {
		return err
	}

	err = writeVarInt(w, uint64(len(tx.TxIn)))
	if err != nil {
		return err
	}
	for _, txIn := range tx.TxIn {
		err = writeOutpoint(w, txIn.PreviousOutpoint)
		if err != nil {
			return err
		}
		err = writeVarBytes(w, txIn.SignatureScript)
		if err != nil {
			return err
		}
		err = writeUint32(w, txIn.Sequence)
		if err != nil {
			return err
		}
	}

	err = writeVarInt(w, uint64(len(tx.TxOut)))
	if err != nil {
		return err
	}
	for _, txOut := range tx.TxOut {
		err = writeUint64(w, txOut.Value)
		if err != nil {
			return err
		}
		err = writeVarBytes(w, txOut.ScriptPubKey)
		if err != nil {
			return err
		}
	}

	return writeUint32(w, tx.LockTime)
}

// signatureHash computes the double-sha256 digest an input signature commits
// to: the transaction with every signature script emptied except the signed
// input's, which carries the locking script of the output being spent, with
// the hash type appended.
func (tx *Transaction) signatureHash(inputIndex int, lockingScript []byte, hashType byte) ([32]byte, error) {
	var zero [32]byte
	if inputIndex < 0 || inputIndex >= len(tx.TxIn) {
		return zero, errors.Errorf("input index %d out of range", inputIndex)
	}

	txCopy := &Transaction{
		Version:   tx.Version,
		Timestamp: tx.Timestamp,
		LockTime:  tx.LockTime,
		TxIn:      make([]*TxIn, len(tx.TxIn)),
		TxOut:     tx.TxOut,
	}
	for i, txIn := range tx.TxIn {
		script := []byte(nil)
		if i == inputIndex {
			script = lockingScript
		}
		txCopy.TxIn[i] = &TxIn{
			PreviousOutpoint: txIn.PreviousOutpoint,
			SignatureScript:  script,
			Sequence:         txIn.Sequence,
		}
	}

	var buf bytes.Buffer
	err := txCopy.encode(&buf)
	if err != nil {
		return zero, err
	}
	err = writeUint32(&buf, uint32(hashType))
	if err != nil {
		return zero, err
	}
	return DoubleSha256(buf.Bytes()), nil
}

func writeOutpoint(w io.Writer, outpoint Outpoint) error {
	txID, err := hex.DecodeString(outpoint.TxID)
	if err != nil {
		return errors.Wrapf(err, "error decoding outpoint txid %s", outpoint.TxID)
	}
	if len(txID) != 32 {
		return errors.Errorf("outpoint txid %s is %d bytes, want 32", outpoint.TxID, len(txID))
	}
	// txids display in reversed byte order; the wire carries them
	// little-endian.
	reverseInPlace(txID)
	_, err = w.Write(txID)
	if err != nil {
		return errors.WithStack(err)
	}
	return writeUint32(w, outpoint.Index)
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

// writeVarInt writes a bitcoin-style compact size integer.
func writeVarInt(w io.Writer, v uint64) error {
	switch {
	case v < 0xfd:
		_, err := w.Write([]byte{byte(v)})
		return errors.WithStack(err)
	case v <= 0xffff:
		var buf [3]byte
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(v))
		_, err := w.Write(buf[:])
		return errors.WithStack(err)
	case v <= 0xffffffff:
		var buf [5]byte
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(v))
		_, err := w.Write(buf[:])
		return errors.WithStack(err)
	default:
		var buf [9]byte
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], v)
		_, err := w.Write(buf[:])
		return errors.WithStack(err)
	}
}

func writeVarBytes(w io.Writer, b []byte) error {
	err := writeVarInt(w, uint64(len(b)))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return errors.WithStack(err)
}

func reverseInPlace(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
