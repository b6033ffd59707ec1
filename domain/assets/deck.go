package assets

import "github.com/pkg/errors"

// ErrNotAssetTransaction is returned by the decode functions when the given
// transaction does not carry an asset message of the requested kind. Callers
// that probe arbitrary transactions should test for it with errors.Is.
var ErrNotAssetTransaction = errors.New("transaction is not an asset transaction")

// ActionType classifies what, if anything, a transaction does in the asset
// overlay.
type ActionType int

const (
	// ActionNone marks a plain value transfer with no asset semantics.
	ActionNone ActionType = iota

	// ActionDeckSpawn marks a transaction that registers a new deck.
	ActionDeckSpawn

	// ActionCardTransfer marks a transaction that moves cards of some deck.
	ActionCardTransfer
)

func (at ActionType) String() string {
	switch at {
	case ActionNone:
		return "NONE"
	case ActionDeckSpawn:
		return "DECK_SPAWN"
	case ActionCardTransfer:
		return "CARD_TRANSFER"
	}
	return "UNKNOWN"
}

// Deck is a registered asset class. Its identity is the ID of the
// transaction that spawned it.
type Deck struct {
	ID                string
	Name              string
	NumberOfDecimals  uint32
	IssueMode         IssueMode
	Issuer            string
	AssetSpecificData string
}

// CardTransfer is a decoded movement of cards. To maps receiving addresses
// to the raw card amounts they are sent, positionally zipped from the
// transaction's outputs.
type CardTransfer struct {
	TxID              string
	From              string
	To                map[string]uint64
	NumberOfDecimals  uint32
	AssetSpecificData string
}
