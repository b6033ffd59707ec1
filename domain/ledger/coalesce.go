package ledger

import (
	"time"

	"github.com/peerassets/pawallet/util/coinunits"
)

// Segment is one record of an aggregated address history. A transaction that
// hits the tracked address more than once is reported as Hits consecutive
// segments carrying one signed change each; the first segment of the run
// carries the full hit count.
type Segment struct {
	TxID          string
	Confirmations uint64
	Change        coinunits.Amount
	Timestamp     time.Time
	Hits          int
}

// CoalesceSegments folds an aggregated segment list into one transaction per
// real ledger transaction. A segment with Hits = n > 1 consumes the next n-1
// segments of the list and sums their signed changes into its own. A run
// that claims more segments than the list still holds is cut off at the end
// of the list.
//
// The returned transactions preserve the input order and carry no running
// balances; assign those with AssignRunningBalances.
func CoalesceSegments(segments []*Segment) []*Transaction {
	transactions := make([]*Transaction, 0, len(segments))
	for i := 0; i < len(segments); i++ {
		segment := segments[i]
		change := segment.Change
		for hits := segment.Hits; hits > 1; hits-- {
			if i+1 >= len(segments) {
				log.Warnf("transaction %s claims %d more address hits than the "+
					"segment list holds", segment.TxID, hits-1)
				break
			}
			i++
			change += segments[i].Change
		}

		direction := DirectionCredit
		if change < 0 {
			direction = DirectionDebit
		}
		transactions = append(transactions, &Transaction{
			ID:            segment.TxID,
			Direction:     direction,
			Amount:        change,
			Confirmations: segment.Confirmations,
			Timestamp:     segment.Timestamp,
		})
	}
	return transactions
}
