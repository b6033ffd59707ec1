package txsigner

import (
	"bytes"
	"strings"
	"testing"
)

func sampleTransaction() *Transaction {
	tx := &Transaction{
		Version:   TxVersion,
		Timestamp: 1700000000,
	}
	tx.AddTxIn(Outpoint{
		TxID:  strings.Repeat("ab", 32),
		Index: 1,
	})
	tx.AddTxOut(2500000, append([]byte{OpDup, OpHash160, 20}, append(bytes.Repeat([]byte{0x07}, 20), OpEqualVerify, OpCheckSig)...))
	return tx
}

func TestTransactionSerializeRoundTrip(t *testing.T) {
	tx := sampleTransaction()
	tx.TxIn[0].SignatureScript = []byte{0x01, 0x02}

	serialized, err := tx.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %s", err)
	}

	decoded, err := DeserializeTransaction(serialized)
	if err != nil {
		t.Fatalf("DeserializeTransaction: %s", err)
	}

	if decoded.Version != tx.Version || decoded.Timestamp != tx.Timestamp || decoded.LockTime != tx.LockTime {
		t.Errorf("header fields changed in round trip: %+v", decoded)
	}
	if len(decoded.TxIn) != 1 || len(decoded.TxOut) != 1 {
		t.Fatalf("got %d inputs, %d outputs", len(decoded.TxIn), len(decoded.TxOut))
	}
	if decoded.TxIn[0].PreviousOutpoint != tx.TxIn[0].PreviousOutpoint {
		t.Errorf("outpoint changed: got %+v, want %+v",
			decoded.TxIn[0].PreviousOutpoint, tx.TxIn[0].PreviousOutpoint)
	}
	if !bytes.Equal(decoded.TxIn[0].SignatureScript, tx.TxIn[0].SignatureScript) {
		t.Error("signature script changed in round trip")
	}
	if decoded.TxOut[0].Value != tx.TxOut[0].Value {
		t.Errorf("output value changed: got %d", decoded.TxOut[0].Value)
	}
	if !bytes.Equal(decoded.TxOut[0].ScriptPubKey, tx.TxOut[0].ScriptPubKey) {
		t.Error("output script changed in round trip")
	}

	id, err := tx.ID()
	if err != nil {
		t.Fatalf("ID: %s", err)
	}
	if len(id) != 64 {
		t.Errorf("transaction id %q is not 32 hex bytes", id)
	}
	decodedID, err := decoded.ID()
	if err != nil {
		t.Fatalf("decoded ID: %s", err)
	}
	if decodedID != id {
		t.Errorf("id changed in round trip: %s != %s", decodedID, id)
	}
}

func TestDeserializeRejectsTrailingBytes(t *testing.T) {
	serialized, err := sampleTransaction().Serialize()
	if err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	_, err = DeserializeTransaction(append(serialized, 0x00))
	if err == nil {
		t.Error("expected an error for trailing bytes")
	}
}

func TestSignatureHashDiffersPerInput(t *testing.T) {
	tx := sampleTransaction()
	tx.AddTxIn(Outpoint{TxID: strings.Repeat("cd", 32), Index: 0})

	lockingScript := bytes.Repeat([]byte{0x51}, 25)
	hash0, err := tx.signatureHash(0, lockingScript, SigHashAll)
	if err != nil {
		t.Fatalf("signatureHash(0): %s", err)
	}
	hash1, err := tx.signatureHash(1, lockingScript, SigHashAll)
	if err != nil {
		t.Fatalf("signatureHash(1): %s", err)
	}
	if hash0 == hash1 {
		t.Error("signature hashes for different inputs are identical")
	}

	_, err = tx.signatureHash(2, lockingScript, SigHashAll)
	if err == nil {
		t.Error("expected an error for an out-of-range input index")
	}
}
