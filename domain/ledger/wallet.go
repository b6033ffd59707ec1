package ledger

import (
	"time"

	"github.com/peerassets/pawallet/domain/assets"
	"github.com/peerassets/pawallet/util/coinunits"
)

// Direction classifies a transaction relative to the tracked address.
type Direction string

// Direction constants.
const (
	DirectionCredit   Direction = "CREDIT"
	DirectionDebit    Direction = "DEBIT"
	DirectionSelfSend Direction = "SELF_SEND"
)

// Transaction is the canonical view of one ledger transaction relative to a
// tracked address. Amount is signed: positive for value flowing to the
// address, negative for value leaving it. Balance is the running balance of
// the tracked address immediately after this transaction.
type Transaction struct {
	ID            string
	Direction     Direction
	Amount        coinunits.Amount
	Fee           coinunits.Amount
	Confirmations uint64
	BlockIndex    uint64
	Timestamp     time.Time
	Balance       coinunits.Amount

	// Addresses are the counterpart addresses of the transaction,
	// deduplicated in first-seen order, never containing the tracked
	// address itself.
	Addresses []string

	AssetAction assets.ActionType
}

// UTXO is a spendable output of the tracked address.
type UTXO struct {
	TxID         string
	Vout         uint32
	ScriptPubKey string
	Amount       coinunits.Amount
}

// Wallet is the canonical reconstructed view of one address. Transactions
// are ordered newest first and the wallet exclusively owns both slices.
type Wallet struct {
	Address           string
	Balance           coinunits.Amount
	Received          coinunits.Amount
	Sent              coinunits.Amount
	TotalTransactions uint64
	Transactions      []*Transaction
	UnspentOutputs    []*UTXO
	LastSeenBlock     uint64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EmptyWallet returns the wallet of an address the providers have never
// seen: zero balance, no history.
func EmptyWallet(address string, lastSeenBlock uint64) *Wallet {
	now := time.Now()
	return &Wallet{
		Address:       address,
		LastSeenBlock: lastSeenBlock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NormalizeUnspent filters the given outputs down to the spendable set,
// dropping every entry whose amount is not positive.
func NormalizeUnspent(utxos []*UTXO) []*UTXO {
	normalized := make([]*UTXO, 0, len(utxos))
	for _, utxo := range utxos {
		if utxo.Amount <= 0 {
			continue
		}
		normalized = append(normalized, utxo)
	}
	return normalized
}

// AssignRunningBalances walks a newest-first transaction list and assigns
// each transaction the tracked address's balance immediately after it,
// starting from the present balance. The list must be the address's gapless
// history: a missing transaction shifts every older balance in the trail.
func AssignRunningBalances(presentBalance coinunits.Amount, transactions []*Transaction) {
	balance := presentBalance
	for _, tx := range transactions {
		tx.Balance = balance
		balance -= tx.Amount
	}
}
