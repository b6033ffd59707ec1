package txsigner

import (
	"time"

	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/peerassets/pawallet/util/coinunits"
	"github.com/pkg/errors"
)

// UTXO is a spendable output the builder can fund a transaction from.
type UTXO struct {
	TxID         string
	Index        uint32
	ScriptPubKey []byte
	Amount       coinunits.Amount
}

// estimatedSignatureScriptSize is the size of a pay-to-pubkey-hash unlocking
// script with a DER signature and a compressed public key.
const estimatedSignatureScriptSize = 107

// Builder assembles a transaction from chained verbs: From, To, AddData,
// Change, Fee, then Sign. Errors stick to the builder and surface at Sign, so
// calls can be chained without intermediate checks.
type Builder struct {
	params        *config.Params
	tx            *Transaction
	utxos         []*UTXO
	changeAddress string
	fee           coinunits.Amount
	feeSet        bool
	err           error
}

// NewBuilder creates a builder for the given network.
func NewBuilder(params *config.Params) *Builder {
	return &Builder{
		params: params,
		tx: &Transaction{
			Version:   TxVersion,
			Timestamp: uint32(time.Now().Unix()),
		},
	}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// From adds the given outputs as inputs. Outputs with non-positive amounts
// are dust and skipped.
func (b *Builder) From(utxos ...*UTXO) *Builder {
	for _, utxo := range utxos {
		if utxo.Amount <= 0 {
			continue
		}
		b.utxos = append(b.utxos, utxo)
		b.tx.AddTxIn(Outpoint{TxID: utxo.TxID, Index: utxo.Index})
	}
	return b
}

// To adds an output paying amount to address.
func (b *Builder) To(address string, amount coinunits.Amount) *Builder {
	script, err := PayToAddrScript(address, b.params)
	if err != nil {
		return b.fail(err)
	}
	b.tx.AddTxOut(uint64(amount), script)
	return b
}

// AddData adds a null-data output carrying the given payload.
func (b *Builder) AddData(data []byte) *Builder {
	script, err := NullDataScript(data)
	if err != nil {
		return b.fail(err)
	}
	b.tx.AddTxOut(0, script)
	return b
}

// Change sets the address leftover value is returned to. The change output is
// appended last, after all shape-positional outputs.
func (b *Builder) Change(address string) *Builder {
	b.changeAddress = address
	return b
}

// Fee sets an explicit fee, overriding the estimate. Applying the computed
// fee back through this verb keeps the deduction deterministic instead of
// implicit in leftover value.
func (b *Builder) Fee(fee coinunits.Amount) *Builder {
	b.fee = fee
	b.feeSet = true
	return b
}

// EstimateFee returns the size-based fee for the transaction as currently
// assembled, including the change output and unlocking scripts still to be
// added.
func (b *Builder) EstimateFee() (coinunits.Amount, error) {
	if b.err != nil {
		return 0, b.err
	}
	size, err := b.tx.SerializeSize()
	if err != nil {
		return 0, err
	}
	size += len(b.utxos) * estimatedSignatureScriptSize
	if b.changeAddress != "" {
		size += 34 // value + script length + pay-to-pubkey-hash script
	}
	kilobytes := coinunits.Amount((size + 999) / 1000)
	return b.params.RelayFeePerKB * kilobytes, nil
}

// Sign funds, finalizes and signs the transaction with key. All inputs must
// be pay-to-pubkey-hash outputs held by key.
func (b *Builder) Sign(key *PrivateKey) (*Transaction, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.utxos) == 0 {
		return nil, errors.New("transaction has no spendable inputs")
	}

	fee := b.fee
	if !b.feeSet {
		estimated, err := b.EstimateFee()
		if err != nil {
			return nil, err
		}
		fee = estimated
	}

	var totalIn, totalOut coinunits.Amount
	for _, utxo := range b.utxos {
		totalIn += utxo.Amount
	}
	for _, txOut := range b.tx.TxOut {
		totalOut += coinunits.Amount(txOut.Value)
	}

	change := totalIn - totalOut - fee
	if change < 0 {
		return nil, errors.Errorf("insufficient funds: have %s, need %s plus %s fee",
			totalIn, totalOut, fee)
	}
	if change > 0 {
		if b.changeAddress == "" {
			return nil, errors.New("leftover value but no change address set")
		}
		changeScript, err := PayToAddrScript(b.changeAddress, b.params)
		if err != nil {
			return nil, err
		}
		b.tx.AddTxOut(uint64(change), changeScript)
	}

	serializedPubKey, err := key.SerializedPublicKey()
	if err != nil {
		return nil, err
	}
	for i, utxo := range b.utxos {
		hash, err := b.tx.signatureHash(i, utxo.ScriptPubKey, SigHashAll)
		if err != nil {
			return nil, err
		}
		compactSig, err := key.SignHash(hash)
		if err != nil {
			return nil, err
		}
		derSig, err := derEncodeSignature(compactSig, SigHashAll)
		if err != nil {
			return nil, err
		}
		var script []byte
		script = appendDataPush(script, derSig)
		script = appendDataPush(script, serializedPubKey)
		b.tx.TxIn[i].SignatureScript = script
	}

	log.Debugf("signed transaction with %d inputs, %d outputs, fee %s",
		len(b.tx.TxIn), len(b.tx.TxOut), fee)
	return b.tx, nil
}

// derEncodeSignature converts a 64-byte compact (r || s) signature into DER
// form with the hash type appended, as expected by script verification.
func derEncodeSignature(compact []byte, hashType byte) ([]byte, error) {
	if len(compact) != 64 {
		return nil, errors.Errorf("compact signature is %d bytes, want 64", len(compact))
	}
	r := derInteger(compact[:32])
	s := derInteger(compact[32:])

	body := make([]byte, 0, len(r)+len(s)+4)
	body = append(body, 0x02, byte(len(r)))
	body = append(body, r...)
	body = append(body, 0x02, byte(len(s)))
	body = append(body, s...)

	der := make([]byte, 0, len(body)+3)
	der = append(der, 0x30, byte(len(body)))
	der = append(der, body...)
	return append(der, hashType), nil
}

// derInteger strips leading zero bytes and re-adds one if the value would
// otherwise read as negative.
func derInteger(b []byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	trimmed := b[i:]
	if trimmed[0]&0x80 != 0 {
		return append([]byte{0}, trimmed...)
	}
	return trimmed
}
