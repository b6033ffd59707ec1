package ledger

import (
	"time"

	"github.com/peerassets/pawallet/domain/assets"
	"github.com/peerassets/pawallet/domain/txsigner"
	"github.com/peerassets/pawallet/util/coinunits"
)

// AddressSummary is a provider's headline view of one address.
type AddressSummary struct {
	Address           string
	Balance           coinunits.Amount
	Received          coinunits.Amount
	Sent              coinunits.Amount
	TotalTransactions uint64
}

// NormalizeTransaction makes a full transaction detail relative to the
// tracked address: direction, counterpart addresses, fee and the signed
// amount the address gained or lost. A credit's amount is the value its
// outputs pay the address; a debit's is the negated value paid to other
// addresses, with the fee carried separately.
//
// When the detail carries the raw transaction, the codec classifies its
// asset action; transactions the codec cannot read are plain transfers.
func NormalizeTransaction(trackedAddress string, detail *TransactionDetail,
	codec *assets.Codec) *Transaction {

	direction, addresses := Classify(trackedAddress, detail)
	fee := Fee(detail)

	var amount coinunits.Amount
	if direction != DirectionCredit {
		var totalIn coinunits.Amount
		for _, input := range detail.Inputs {
			totalIn += input.Amount
		}
		amount = -(totalIn - fee)
	}
	for _, output := range detail.Outputs {
		if output.Address == trackedAddress {
			amount += output.Amount
		}
	}

	return &Transaction{
		ID:            detail.ID,
		Direction:     direction,
		Amount:        amount,
		Fee:           fee,
		Confirmations: detail.Confirmations,
		BlockIndex:    detail.BlockIndex,
		Timestamp:     detail.Timestamp,
		Addresses:     addresses,
		AssetAction:   assetAction(detail, codec),
	}
}

func assetAction(detail *TransactionDetail, codec *assets.Codec) assets.ActionType {
	if detail.RawHex == "" || codec == nil {
		return assets.ActionNone
	}
	tx, err := txsigner.DeserializeTransactionHex(detail.RawHex)
	if err != nil {
		log.Tracef("transaction %s raw bytes are unreadable, classifying as a "+
			"plain transfer: %s", detail.ID, err)
		return assets.ActionNone
	}
	return codec.AssetActionType(tx)
}

// BuildWallet assembles the canonical wallet of an address from an address
// summary, the full details of its transactions in newest-first order, and
// its spendable outputs. Details must be the address's complete history or
// every running balance older than the gap is wrong.
func BuildWallet(summary *AddressSummary, details []*TransactionDetail,
	unspent []*UTXO, lastSeenBlock uint64, codec *assets.Codec) *Wallet {

	transactions := make([]*Transaction, 0, len(details))
	for _, detail := range details {
		transactions = append(transactions, NormalizeTransaction(summary.Address, detail, codec))
	}
	AssignRunningBalances(summary.Balance, transactions)

	now := time.Now()
	return &Wallet{
		Address:           summary.Address,
		Balance:           summary.Balance,
		Received:          summary.Received,
		Sent:              summary.Sent,
		TotalTransactions: summary.TotalTransactions,
		Transactions:      transactions,
		UnspentOutputs:    NormalizeUnspent(unspent),
		LastSeenBlock:     lastSeenBlock,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
