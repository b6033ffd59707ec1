package txsigner

import (
	"bytes"
	"testing"

	"github.com/peerassets/pawallet/infrastructure/config"
)

var testParams = config.ParamsFor(config.Mainnet, config.Production)

func TestScriptPredicates(t *testing.T) {
	hash := bytes.Repeat([]byte{0x11}, 20)

	p2pkh := append([]byte{OpDup, OpHash160, 20}, hash...)
	p2pkh = append(p2pkh, OpEqualVerify, OpCheckSig)

	p2sh := append([]byte{OpHash160, 20}, hash...)
	p2sh = append(p2sh, OpEqual)

	nullData, err := NullDataScript([]byte("payload"))
	if err != nil {
		t.Fatalf("NullDataScript: %s", err)
	}

	tests := []struct {
		name                       string
		script                     []byte
		isP2PKH, isP2SH, isNull    bool
	}{
		{"pay to pubkey hash", p2pkh, true, false, false},
		{"pay to script hash", p2sh, false, true, false},
		{"null data", nullData, false, false, true},
		{"empty", nil, false, false, false},
		{"truncated p2pkh", p2pkh[:24], false, false, false},
	}

	for _, test := range tests {
		if got := IsPayToPubKeyHash(test.script); got != test.isP2PKH {
			t.Errorf("%s: IsPayToPubKeyHash = %v, want %v", test.name, got, test.isP2PKH)
		}
		if got := IsPayToScriptHash(test.script); got != test.isP2SH {
			t.Errorf("%s: IsPayToScriptHash = %v, want %v", test.name, got, test.isP2SH)
		}
		if got := IsNullData(test.script); got != test.isNull {
			t.Errorf("%s: IsNullData = %v, want %v", test.name, got, test.isNull)
		}
	}
}

func TestNullDataRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte{},
		[]byte("short"),
		bytes.Repeat([]byte{0xab}, 80),
		bytes.Repeat([]byte{0xcd}, 300), // needs OP_PUSHDATA2
	}
	for _, payload := range payloads {
		script, err := NullDataScript(payload)
		if err != nil {
			t.Fatalf("NullDataScript(%d bytes): %s", len(payload), err)
		}
		got, err := PushedData(script)
		if err != nil {
			t.Fatalf("PushedData(%d bytes): %s", len(payload), err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("round trip of %d bytes came back as %d bytes", len(payload), len(got))
		}
	}
}

func TestPayToAddrScriptRoundTrip(t *testing.T) {
	hash := bytes.Repeat([]byte{0x42}, 20)
	address, err := EncodeAddress(hash, testParams.P2PKHVersion)
	if err != nil {
		t.Fatalf("EncodeAddress: %s", err)
	}

	script, err := PayToAddrScript(address, testParams)
	if err != nil {
		t.Fatalf("PayToAddrScript: %s", err)
	}
	if !IsPayToPubKeyHash(script) {
		t.Fatal("script is not pay-to-pubkey-hash")
	}

	extracted, err := ExtractScriptAddress(script, testParams)
	if err != nil {
		t.Fatalf("ExtractScriptAddress: %s", err)
	}
	if extracted != address {
		t.Errorf("extracted %s, want %s", extracted, address)
	}
}

func TestAddressFromSignatureScript(t *testing.T) {
	pubKey := append([]byte{0x02}, bytes.Repeat([]byte{0x55}, 32)...)
	expected, err := EncodeAddress(Hash160(pubKey), testParams.P2PKHVersion)
	if err != nil {
		t.Fatalf("EncodeAddress: %s", err)
	}

	var sigScript []byte
	sigScript = appendDataPush(sigScript, bytes.Repeat([]byte{0x30}, 71)) // signature stand-in
	sigScript = appendDataPush(sigScript, pubKey)

	got, err := AddressFromSignatureScript(sigScript, testParams)
	if err != nil {
		t.Fatalf("AddressFromSignatureScript: %s", err)
	}
	if got != expected {
		t.Errorf("got %s, want %s", got, expected)
	}

	_, err = AddressFromSignatureScript([]byte{0x01, 0xff}, testParams)
	if err == nil {
		t.Error("expected an error for a script without a public key push")
	}
}

func TestDEREncodeSignature(t *testing.T) {
	compact := make([]byte, 64)
	compact[0] = 0x80 // high bit forces a zero pad on r
	compact[31] = 0x01
	compact[63] = 0x02

	der, err := derEncodeSignature(compact, SigHashAll)
	if err != nil {
		t.Fatalf("derEncodeSignature: %s", err)
	}
	if der[0] != 0x30 {
		t.Errorf("DER sequence tag: got %#x", der[0])
	}
	if der[len(der)-1] != SigHashAll {
		t.Errorf("hash type suffix: got %#x", der[len(der)-1])
	}
	// r keeps all 32 bytes plus a leading zero; s trims to one byte.
	if der[2] != 0x02 || der[3] != 33 {
		t.Errorf("r header: got tag %#x len %d", der[2], der[3])
	}
	if int(der[1]) != len(der)-3 {
		t.Errorf("sequence length %d does not cover body of %d", der[1], len(der)-3)
	}

	_, err = derEncodeSignature(compact[:63], SigHashAll)
	if err == nil {
		t.Error("expected an error for a short compact signature")
	}
}
