package txbuilder

import (
	"encoding/hex"

	"github.com/peerassets/pawallet/domain/assets"
	"github.com/peerassets/pawallet/domain/ledger"
	"github.com/peerassets/pawallet/domain/txsigner"
	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/peerassets/pawallet/util/coinunits"
	"github.com/pkg/errors"
)

// Builder assembles, funds and signs the wallet's outgoing transactions.
type Builder struct {
	params *config.Params
	codec  *assets.Codec
}

// New returns a builder for the given network.
func New(params *config.Params, codec *assets.Codec) *Builder {
	return &Builder{params: params, codec: codec}
}

// Recipient is one receiver of a card transfer. Amount is in raw cards, the
// deck's smallest indivisible unit.
type Recipient struct {
	Address string
	Amount  uint64
}

// SpendRequest describes a plain value transfer.
type SpendRequest struct {
	UnspentOutputs []*ledger.UTXO
	ToAddress      string
	Amount         coinunits.Amount
	ChangeAddress  string
}

// DeckSpawnRequest describes the registration of a new deck.
type DeckSpawnRequest struct {
	UnspentOutputs    []*ledger.UTXO
	ChangeAddress     string
	Name              string
	NumberOfDecimals  uint32
	IssueMode         assets.IssueMode
	AssetSpecificData string
}

// CardTransferRequest describes a movement of cards of one deck. Issuance
// marks a transfer by the deck owner that mints new cards and is therefore
// exempt from the asset balance check.
type CardTransferRequest struct {
	UnspentOutputs    []*ledger.UTXO
	ChangeAddress     string
	DeckID            string
	Recipients        []Recipient
	NumberOfDecimals  uint32
	AssetSpecificData string
	AssetBalance      uint64
	Issuance          bool
}

// Result is a signed transaction ready for broadcast, along with the
// wallet-relative record of what it does.
type Result struct {
	Tx            *txsigner.Transaction
	TxID          string
	SerializedHex string
	Fee           coinunits.Amount

	// Amount is the signed coin value the sender's address loses to other
	// addresses, fee not included, matching how synced history is
	// normalized.
	Amount    coinunits.Amount
	Direction ledger.Direction
	Addresses []string
}

// Spend builds and signs a plain value transfer: every positive spendable
// output funds one payment to the destination with change returned to the
// sender. The size-based fee estimate is applied back explicitly before
// signing, so the deduction is deterministic rather than implicit in
// leftover value. A payment whose destination is the change address is a
// self send.
func (b *Builder) Spend(request *SpendRequest, key *txsigner.PrivateKey) (*Result, error) {
	if request.Amount <= 0 {
		return nil, validationErrorf("amount %s is not positive", request.Amount)
	}
	utxos, spendable, err := signerUTXOs(request.UnspentOutputs)
	if err != nil {
		return nil, err
	}
	if request.Amount >= spendable {
		return nil, validationErrorf("amount %s is not below the spendable balance %s",
			request.Amount, spendable)
	}

	builder := txsigner.NewBuilder(b.params).
		From(utxos...).
		To(request.ToAddress, request.Amount).
		Change(request.ChangeAddress)
	result, err := b.finalize(builder, key)
	if err != nil {
		return nil, err
	}

	result.Direction = ledger.DirectionDebit
	if request.ToAddress == request.ChangeAddress {
		result.Direction = ledger.DirectionSelfSend
	} else {
		result.Amount = -request.Amount
		result.Addresses = []string{request.ToAddress}
	}
	return result, nil
}

// SpawnDeck builds and signs a deck spawn: the tag fee paid to the network's
// deck spawn tag address in output 0 and the deck spawn message in output 1.
// Output order is load-bearing, the decoder is shape-positional.
func (b *Builder) SpawnDeck(request *DeckSpawnRequest, key *txsigner.PrivateKey) (*Result, error) {
	if request.Name == "" {
		return nil, validationErrorf("deck has no name")
	}
	utxos, _, err := signerUTXOs(request.UnspentOutputs)
	if err != nil {
		return nil, err
	}

	message := &assets.DeckSpawnMessage{
		Version:           assets.MessageVersion,
		Name:              request.Name,
		NumberOfDecimals:  request.NumberOfDecimals,
		IssueMode:         request.IssueMode,
		AssetSpecificData: request.AssetSpecificData,
	}
	builder := txsigner.NewBuilder(b.params).
		From(utxos...).
		To(b.params.DeckSpawnTagAddress, b.params.TagFee).
		AddData(message.Serialize()).
		Change(request.ChangeAddress)
	result, err := b.finalize(builder, key)
	if err != nil {
		return nil, err
	}

	result.Direction = ledger.DirectionDebit
	result.Amount = -b.params.TagFee
	result.Addresses = []string{b.params.DeckSpawnTagAddress}
	return result, nil
}

// TransferCards builds and signs a card transfer: the tag fee paid to the
// deck's tag address in output 0, the card transfer message in output 1 and
// one output per recipient from output 2 on, in the recipients' given order.
func (b *Builder) TransferCards(request *CardTransferRequest, key *txsigner.PrivateKey) (*Result, error) {
	err := validateRecipients(request.Recipients, request.AssetBalance, request.Issuance)
	if err != nil {
		return nil, err
	}
	utxos, _, err := signerUTXOs(request.UnspentOutputs)
	if err != nil {
		return nil, err
	}
	tagAddress, err := b.codec.TagAddress(request.DeckID)
	if err != nil {
		return nil, errors.Wrapf(err, "error deriving the tag address of deck %s", request.DeckID)
	}

	amounts := make([]uint64, len(request.Recipients))
	addresses := make([]string, len(request.Recipients))
	for i, recipient := range request.Recipients {
		amounts[i] = recipient.Amount
		addresses[i] = recipient.Address
	}
	message := &assets.CardTransferMessage{
		Version:           assets.MessageVersion,
		NumberOfDecimals:  request.NumberOfDecimals,
		Amounts:           amounts,
		AssetSpecificData: request.AssetSpecificData,
	}

	builder := txsigner.NewBuilder(b.params).
		From(utxos...).
		To(tagAddress, b.params.TagFee).
		AddData(message.Serialize())
	for _, recipient := range request.Recipients {
		builder.To(recipient.Address, b.params.CarriedOutputAmount)
	}
	builder.Change(request.ChangeAddress)

	result, err := b.finalize(builder, key)
	if err != nil {
		return nil, err
	}
	result.Direction = ledger.DirectionDebit
	result.Amount = -(b.params.TagFee +
		b.params.CarriedOutputAmount*coinunits.Amount(len(request.Recipients)))
	result.Addresses = addresses
	return result, nil
}

// finalize estimates the fee, re-applies it explicitly, signs and
// serializes.
func (b *Builder) finalize(builder *txsigner.Builder, key *txsigner.PrivateKey) (*Result, error) {
	fee, err := builder.EstimateFee()
	if err != nil {
		return nil, err
	}
	tx, err := builder.Fee(fee).Sign(key)
	if err != nil {
		return nil, err
	}
	serialized, err := tx.Serialize()
	if err != nil {
		return nil, err
	}
	txID, err := tx.ID()
	if err != nil {
		return nil, err
	}
	log.Debugf("Built transaction %s with fee %s", txID, fee)
	return &Result{
		Tx:            tx,
		TxID:          txID,
		SerializedHex: hex.EncodeToString(serialized),
		Fee:           fee,
	}, nil
}

// signerUTXOs converts the wallet's spendable outputs to the signer's shape,
// keeping only positive amounts, and returns the spendable total.
func signerUTXOs(utxos []*ledger.UTXO) ([]*txsigner.UTXO, coinunits.Amount, error) {
	converted := make([]*txsigner.UTXO, 0, len(utxos))
	var spendable coinunits.Amount
	for _, utxo := range utxos {
		if utxo.Amount <= 0 {
			continue
		}
		script, err := hex.DecodeString(utxo.ScriptPubKey)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "error decoding the locking script of %s:%d",
				utxo.TxID, utxo.Vout)
		}
		converted = append(converted, &txsigner.UTXO{
			TxID:         utxo.TxID,
			Index:        utxo.Vout,
			ScriptPubKey: script,
			Amount:       utxo.Amount,
		})
		spendable += utxo.Amount
	}
	if len(converted) == 0 {
		return nil, 0, validationErrorf("no spendable outputs")
	}
	return converted, spendable, nil
}
