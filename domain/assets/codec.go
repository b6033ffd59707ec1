package assets

import (
	"encoding/hex"

	"github.com/peerassets/pawallet/domain/txsigner"
	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/pkg/errors"
)

// Codec decodes and classifies asset transactions against one network's
// parameter set.
type Codec struct {
	params *config.Params
}

// NewCodec returns a codec for the given network parameters.
func NewCodec(params *config.Params) *Codec {
	return &Codec{params: params}
}

// TagAddress derives the tag address of the given deck. Card transfers of a
// deck pay their tag fee to this address, which makes them discoverable by
// watching it. The deck ID doubles as the private scalar, so the address is
// derivable by anyone while its key is known to nobody in particular.
func (c *Codec) TagAddress(deckID string) (string, error) {
	scalar, err := hex.DecodeString(deckID)
	if err != nil {
		return "", errors.Wrapf(err, "deck ID %s is not valid hex", deckID)
	}
	return txsigner.ScalarAddress(scalar, c.params)
}

// DecodeDeckSpawn decodes a deck spawn transaction into a Deck. A deck spawn
// has the constant network tag address paid at least the tag fee by output 0
// and a DeckSpawnMessage in a null-data output 1. The deck's ID is the
// transaction's ID and its issuer is the address that signed input 0.
//
// Transactions without this shape fail with ErrNotAssetTransaction.
func (c *Codec) DecodeDeckSpawn(tx *txsigner.Transaction) (*Deck, error) {
	if len(tx.TxOut) < 2 {
		return nil, errors.Wrap(ErrNotAssetTransaction, "fewer than two outputs")
	}
	if err := c.checkTagOutput(tx.TxOut[0], c.params.DeckSpawnTagAddress); err != nil {
		return nil, err
	}
	payload, err := nullDataPayload(tx.TxOut[1])
	if err != nil {
		return nil, err
	}
	msg, err := DeserializeDeckSpawnMessage(payload)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding deck spawn message")
	}
	if len(tx.TxIn) == 0 {
		return nil, errors.Wrap(ErrNotAssetTransaction, "no inputs")
	}
	issuer, err := txsigner.AddressFromSignatureScript(tx.TxIn[0].SignatureScript, c.params)
	if err != nil {
		return nil, errors.Wrap(err, "error extracting deck issuer address")
	}
	id, err := tx.ID()
	if err != nil {
		return nil, err
	}
	return &Deck{
		ID:                id,
		Name:              msg.Name,
		NumberOfDecimals:  msg.NumberOfDecimals,
		IssueMode:         msg.IssueMode,
		Issuer:            issuer,
		AssetSpecificData: msg.AssetSpecificData,
	}, nil
}

// DecodeCardTransfer decodes a card transfer transaction. A card transfer has
// a tag output 0, a CardTransferMessage in a null-data output 1 and one
// receiver output per message amount from output 2 on; amount i goes to the
// address of output 2+i. Outputs past the last receiver, such as the change
// output, are ignored. The sender is the address that signed input 0.
//
// This is a structural decode: output 0's tag address is not matched against
// any particular deck because the deck is not known here. Resolve it with
// VerifyCardTransferTag once the candidate deck is.
//
// Transactions without this shape fail with ErrNotAssetTransaction.
func (c *Codec) DecodeCardTransfer(tx *txsigner.Transaction) (*CardTransfer, error) {
	if len(tx.TxOut) < 3 {
		return nil, errors.Wrap(ErrNotAssetTransaction, "fewer than three outputs")
	}
	if !txsigner.IsPayToPubKeyHash(tx.TxOut[0].ScriptPubKey) {
		return nil, errors.Wrap(ErrNotAssetTransaction, "output 0 is not pay-to-pubkey-hash")
	}
	if tx.TxOut[0].Value < uint64(c.params.TagFee) {
		return nil, errors.Wrap(ErrNotAssetTransaction, "output 0 pays less than the tag fee")
	}
	payload, err := nullDataPayload(tx.TxOut[1])
	if err != nil {
		return nil, err
	}
	msg, err := DeserializeCardTransferMessage(payload)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding card transfer message")
	}
	if len(tx.TxOut) < 2+len(msg.Amounts) {
		return nil, errors.Wrapf(ErrNotAssetTransaction,
			"card transfer carries %d amounts but only %d receiver outputs",
			len(msg.Amounts), len(tx.TxOut)-2)
	}
	receivers := tx.TxOut[2 : 2+len(msg.Amounts)]
	if len(tx.TxIn) == 0 {
		return nil, errors.Wrap(ErrNotAssetTransaction, "no inputs")
	}
	from, err := txsigner.AddressFromSignatureScript(tx.TxIn[0].SignatureScript, c.params)
	if err != nil {
		return nil, errors.Wrap(err, "error extracting card sender address")
	}
	to := make(map[string]uint64, len(receivers))
	for i, out := range receivers {
		address, err := txsigner.ExtractScriptAddress(out.ScriptPubKey, c.params)
		if err != nil {
			return nil, errors.Wrapf(err, "error extracting receiver address from output %d", 2+i)
		}
		to[address] += msg.Amounts[i]
	}
	id, err := tx.ID()
	if err != nil {
		return nil, err
	}
	return &CardTransfer{
		TxID:              id,
		From:              from,
		To:                to,
		NumberOfDecimals:  msg.NumberOfDecimals,
		AssetSpecificData: msg.AssetSpecificData,
	}, nil
}

// VerifyCardTransferTag reports whether the transaction's tag output pays the
// given deck's tag address. It completes the structural DecodeCardTransfer by
// binding the transfer to a concrete deck.
func (c *Codec) VerifyCardTransferTag(tx *txsigner.Transaction, deckID string) (bool, error) {
	if len(tx.TxOut) == 0 {
		return false, nil
	}
	tagAddress, err := c.TagAddress(deckID)
	if err != nil {
		return false, err
	}
	err = c.checkTagOutput(tx.TxOut[0], tagAddress)
	if err != nil {
		if errors.Is(err, ErrNotAssetTransaction) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AssetActionType classifies a transaction. Card transfers are probed first
// because their shape is the stricter of the two. Any decode failure
// classifies the transaction as a plain transfer.
func (c *Codec) AssetActionType(tx *txsigner.Transaction) ActionType {
	if _, err := c.DecodeCardTransfer(tx); err == nil {
		return ActionCardTransfer
	}
	if _, err := c.DecodeDeckSpawn(tx); err == nil {
		return ActionDeckSpawn
	}
	return ActionNone
}

func (c *Codec) checkTagOutput(out *txsigner.TxOut, tagAddress string) error {
	if !txsigner.IsPayToPubKeyHash(out.ScriptPubKey) {
		return errors.Wrap(ErrNotAssetTransaction, "tag output is not pay-to-pubkey-hash")
	}
	address, err := txsigner.ExtractScriptAddress(out.ScriptPubKey, c.params)
	if err != nil {
		return errors.Wrap(err, "error extracting tag output address")
	}
	if address != tagAddress {
		return errors.Wrapf(ErrNotAssetTransaction, "tag output pays %s, not %s", address, tagAddress)
	}
	if out.Value < uint64(c.params.TagFee) {
		return errors.Wrap(ErrNotAssetTransaction, "tag output pays less than the tag fee")
	}
	return nil
}

func nullDataPayload(out *txsigner.TxOut) ([]byte, error) {
	if !txsigner.IsNullData(out.ScriptPubKey) {
		return nil, errors.Wrap(ErrNotAssetTransaction, "output 1 is not a null-data output")
	}
	payload, err := txsigner.PushedData(out.ScriptPubKey)
	if err != nil {
		return nil, errors.Wrap(err, "error extracting null-data payload")
	}
	return payload, nil
}
