package ledger

import (
	"reflect"
	"testing"

	"github.com/peerassets/pawallet/util/coinunits"
)

func TestCoalesceSegments(t *testing.T) {
	tests := []struct {
		name        string
		segments    []*Segment
		wantAmounts []coinunits.Amount
	}{
		{
			name: "single-hit segments pass through",
			segments: []*Segment{
				{TxID: "a", Change: 100, Hits: 1},
				{TxID: "b", Change: -40, Hits: 1},
			},
			wantAmounts: []coinunits.Amount{100, -40},
		},
		{
			name: "a multi-hit run consumes exactly its followers",
			segments: []*Segment{
				{TxID: "a", Change: 100, Hits: 3},
				{TxID: "a", Change: -30, Hits: 1},
				{TxID: "a", Change: 5, Hits: 1},
				{TxID: "b", Change: 7, Hits: 1},
			},
			wantAmounts: []coinunits.Amount{75, 7},
		},
		{
			name: "unspecified hit count means one hit",
			segments: []*Segment{
				{TxID: "a", Change: 100},
				{TxID: "b", Change: 50},
			},
			wantAmounts: []coinunits.Amount{100, 50},
		},
		{
			name: "a run claiming past the end of the list is cut off",
			segments: []*Segment{
				{TxID: "a", Change: 100, Hits: 5},
				{TxID: "a", Change: -30, Hits: 1},
			},
			wantAmounts: []coinunits.Amount{70},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			transactions := CoalesceSegments(test.segments)
			if len(transactions) != len(test.wantAmounts) {
				t.Fatalf("got %d transactions, want %d", len(transactions), len(test.wantAmounts))
			}
			for i, tx := range transactions {
				if tx.Amount != test.wantAmounts[i] {
					t.Errorf("transaction %d: amount %d, want %d", i, tx.Amount, test.wantAmounts[i])
				}
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tracked := "PTracked"
	tests := []struct {
		name          string
		detail        *TransactionDetail
		wantDirection Direction
		wantAddresses []string
	}{
		{
			name: "payment received is a credit with the senders as counterparts",
			detail: &TransactionDetail{
				Inputs:  []AddressAmount{{Address: "PAlice", Amount: 500}, {Address: "PAlice", Amount: 200}},
				Outputs: []AddressAmount{{Address: tracked, Amount: 690}},
			},
			wantDirection: DirectionCredit,
			wantAddresses: []string{"PAlice"},
		},
		{
			name: "payment sent is a debit with the receivers as counterparts",
			detail: &TransactionDetail{
				Inputs: []AddressAmount{{Address: tracked, Amount: 1000}},
				Outputs: []AddressAmount{
					{Address: "PBob", Amount: 400},
					{Address: "PCarol", Amount: 300},
					{Address: tracked, Amount: 290},
				},
			},
			wantDirection: DirectionDebit,
			wantAddresses: []string{"PBob", "PCarol"},
		},
		{
			name: "a debit paying only the tracked address is a self send",
			detail: &TransactionDetail{
				Inputs:  []AddressAmount{{Address: tracked, Amount: 1000}},
				Outputs: []AddressAmount{{Address: tracked, Amount: 990}},
			},
			wantDirection: DirectionSelfSend,
			wantAddresses: []string{},
		},
		{
			name: "counterparts keep first-seen order without repeats",
			detail: &TransactionDetail{
				Inputs: []AddressAmount{{Address: tracked, Amount: 1000}},
				Outputs: []AddressAmount{
					{Address: "PCarol", Amount: 100},
					{Address: "PBob", Amount: 100},
					{Address: "PCarol", Amount: 100},
				},
			},
			wantDirection: DirectionDebit,
			wantAddresses: []string{"PCarol", "PBob"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			direction, addresses := Classify(tracked, test.detail)
			if direction != test.wantDirection {
				t.Errorf("direction: got %s, want %s", direction, test.wantDirection)
			}
			if !reflect.DeepEqual(addresses, test.wantAddresses) {
				t.Errorf("addresses: got %v, want %v", addresses, test.wantAddresses)
			}
		})
	}
}

func TestNormalizeTransactionAmounts(t *testing.T) {
	tracked := "PTracked"

	t.Run("credit amount is the value paid to the address", func(t *testing.T) {
		tx := NormalizeTransaction(tracked, &TransactionDetail{
			ID:      "a",
			Inputs:  []AddressAmount{{Address: "PAlice", Amount: 1000}},
			Outputs: []AddressAmount{{Address: tracked, Amount: 700}, {Address: "PAlice", Amount: 290}},
		}, nil)
		if tx.Amount != 700 {
			t.Errorf("amount: got %d, want 700", tx.Amount)
		}
		if tx.Fee != 10 {
			t.Errorf("fee: got %d, want 10", tx.Fee)
		}
	})

	t.Run("debit amount is value paid to others, fee accounted separately", func(t *testing.T) {
		tx := NormalizeTransaction(tracked, &TransactionDetail{
			ID:      "b",
			Inputs:  []AddressAmount{{Address: tracked, Amount: 1000}},
			Outputs: []AddressAmount{{Address: "PBob", Amount: 600}, {Address: tracked, Amount: 390}},
		}, nil)
		if tx.Amount != -600 {
			t.Errorf("amount: got %d, want -600", tx.Amount)
		}
		if tx.Fee != 10 {
			t.Errorf("fee: got %d, want 10", tx.Fee)
		}
	})
}

func TestAssignRunningBalances(t *testing.T) {
	transactions := []*Transaction{
		{ID: "newest", Amount: 50},
		{ID: "middle", Amount: -200},
		{ID: "oldest", Amount: 1000},
	}
	AssignRunningBalances(850, transactions)

	wantBalances := []coinunits.Amount{850, 800, 1000}
	for i, tx := range transactions {
		if tx.Balance != wantBalances[i] {
			t.Errorf("transaction %s: balance %d, want %d", tx.ID, tx.Balance, wantBalances[i])
		}
	}
	// The chain bottoms out at the opening balance after the oldest entry.
	if opening := transactions[2].Balance - transactions[2].Amount; opening != 0 {
		t.Errorf("opening balance: got %d, want 0", opening)
	}
}

func TestNormalizeUnspentDropsDust(t *testing.T) {
	utxos := []*UTXO{
		{TxID: "a", Amount: 100},
		{TxID: "b", Amount: 0},
		{TxID: "c", Amount: -5},
		{TxID: "d", Amount: 1},
	}
	normalized := NormalizeUnspent(utxos)
	if len(normalized) != 2 || normalized[0].TxID != "a" || normalized[1].TxID != "d" {
		t.Fatalf("unexpected spendable set: %v", normalized)
	}
}

func TestBuildWallet(t *testing.T) {
	tracked := "PTracked"
	summary := &AddressSummary{
		Address:           tracked,
		Balance:           850,
		Received:          1050,
		Sent:              200,
		TotalTransactions: 2,
	}
	details := []*TransactionDetail{
		{
			ID:      "newest",
			Inputs:  []AddressAmount{{Address: "PAlice", Amount: 60}},
			Outputs: []AddressAmount{{Address: tracked, Amount: 50}},
		},
		{
			ID:      "oldest",
			Inputs:  []AddressAmount{{Address: "PAlice", Amount: 900}},
			Outputs: []AddressAmount{{Address: tracked, Amount: 800}},
		},
	}
	wallet := BuildWallet(summary, details, []*UTXO{{TxID: "newest", Amount: 50}}, 1234, nil)

	if wallet.Balance != 850 || wallet.LastSeenBlock != 1234 {
		t.Fatalf("unexpected wallet header: %+v", wallet)
	}
	if len(wallet.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(wallet.Transactions))
	}
	if wallet.Transactions[0].Balance != 850 || wallet.Transactions[1].Balance != 800 {
		t.Errorf("running balances: got %d, %d; want 850, 800",
			wallet.Transactions[0].Balance, wallet.Transactions[1].Balance)
	}
}
