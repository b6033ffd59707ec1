package ledger

import (
	"time"

	"github.com/peerassets/pawallet/util/coinunits"
)

// AddressAmount is one input or output of a transaction as reported by a
// provider with full vin/vout detail.
type AddressAmount struct {
	Address string
	Amount  coinunits.Amount
}

// TransactionDetail is a provider's full view of one transaction, before it
// is made relative to a tracked address.
type TransactionDetail struct {
	ID            string
	BlockIndex    uint64
	Confirmations uint64
	Timestamp     time.Time
	Inputs        []AddressAmount
	Outputs       []AddressAmount

	// RawHex is the serialized transaction, when the provider exposes it.
	// It is only needed for asset classification.
	RawHex string
}

// Classify determines the transaction's direction relative to the tracked
// address, and its counterpart addresses: the deduplicated, first-seen-order
// addresses on the other side of the value flow. A debit whose counterpart
// set is empty moved value only between the address's own outputs and is a
// self send.
func Classify(trackedAddress string, detail *TransactionDetail) (Direction, []string) {
	direction := DirectionCredit
	for _, input := range detail.Inputs {
		if input.Address == trackedAddress {
			direction = DirectionDebit
			break
		}
	}

	counterpartSide := detail.Inputs
	if direction == DirectionDebit {
		counterpartSide = detail.Outputs
	}
	addresses := dedupAddresses(counterpartSide, trackedAddress)

	if direction == DirectionDebit && len(addresses) == 0 {
		direction = DirectionSelfSend
	}
	return direction, addresses
}

// dedupAddresses collects the addresses of one transaction side, excluding
// the tracked address, keeping the first occurrence of each.
func dedupAddresses(side []AddressAmount, trackedAddress string) []string {
	seen := make(map[string]struct{}, len(side))
	addresses := []string{}
	for _, entry := range side {
		if entry.Address == trackedAddress || entry.Address == "" {
			continue
		}
		if _, ok := seen[entry.Address]; ok {
			continue
		}
		seen[entry.Address] = struct{}{}
		addresses = append(addresses, entry.Address)
	}
	return addresses
}

// Fee is the value a transaction surrenders to the network: total input
// minus total output, computed in minor units.
func Fee(detail *TransactionDetail) coinunits.Amount {
	var totalIn, totalOut coinunits.Amount
	for _, input := range detail.Inputs {
		totalIn += input.Amount
	}
	for _, output := range detail.Outputs {
		totalOut += output.Amount
	}
	return totalIn - totalOut
}
