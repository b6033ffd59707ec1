package explorer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/peerassets/pawallet/domain/assets"
	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/pkg/errors"
)

// testProviders spins up one HTTP server standing in for both providers and
// returns clients pointed at it.
func testProviders(t *testing.T, handler http.Handler) (*Cryptoid, *RESTExplorer, func()) {
	t.Helper()
	server := httptest.NewServer(handler)

	params := config.ParamsFor(config.Mainnet, config.Production)
	params.CryptoidURL = server.URL
	params.ExplorerURL = server.URL

	client := NewClient(nil)
	cryptoid := NewCryptoid(client, params)
	rest := NewRESTExplorer(client, cryptoid, assets.NewCodec(params), params)
	return cryptoid, rest, server.Close
}

func TestCryptoidUnspent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pnd/api.dws", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "unspent" {
			t.Errorf("unexpected call %q", got)
		}
		if r.URL.Query().Get("key") == "" {
			t.Error("api key missing from request")
		}
		fmt.Fprint(w, `{"unspent_outputs": [
			{"tx_hash": "aa", "script": "76a914", "tx_ouput_n": 1, "value": "500000000"},
			{"tx_hash": "bb", "script": "76a914", "tx_ouput_n": 0, "value": "0"}
		]}`)
	})
	cryptoid, _, teardown := testProviders(t, mux)
	defer teardown()

	utxos, err := cryptoid.Unspent(context.Background(), "PTracked")
	if err != nil {
		t.Fatalf("Unspent: %+v", err)
	}
	if len(utxos) != 1 {
		t.Fatalf("got %d outputs, want the zero-value one dropped", len(utxos))
	}
	// 500000000 legacy units are 5 coins, 5000000 native units.
	if utxos[0].TxID != "aa" || utxos[0].Vout != 1 || utxos[0].Amount != 5000000 {
		t.Fatalf("unexpected output: %+v", utxos[0])
	}
}

func TestCryptoidErrorPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pnd/api.dws", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": "rate limited"}`)
	})
	cryptoid, _, teardown := testProviders(t, mux)
	defer teardown()

	_, err := cryptoid.Unspent(context.Background(), "PTracked")
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected a ProviderError, got %v", err)
	}
	if providerErr.Message != "rate limited" || providerErr.Call != "unspent" {
		t.Fatalf("unexpected provider error: %+v", providerErr)
	}
}

func TestCryptoidWalletDegradesWithoutUnspent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pnd/api.dws", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "multiaddr":
			fmt.Fprint(w, `{
				"addresses": [{"address": "PTracked", "total_sent": 0,
					"total_received": 300, "final_balance": 300, "n_tx": 2}],
				"txs": [
					{"hash": "aa", "confirmations": 4, "change": 100, "time_utc": "2026-01-02 03:04:05", "n": 2},
					{"hash": "aa", "confirmations": 4, "change": 50, "time_utc": "2026-01-02 03:04:05"},
					{"hash": "bb", "confirmations": 9, "change": 150, "time_utc": "2026-01-01 00:00:00"}
				]
			}`)
		case "unspent":
			fmt.Fprint(w, `{"error": "unavailable"}`)
		default:
			t.Errorf("unexpected call %q", r.URL.Query().Get("q"))
		}
	})
	cryptoid, _, teardown := testProviders(t, mux)
	defer teardown()

	wallet, err := cryptoid.Wallet(context.Background(), "PTracked")
	if err != nil {
		t.Fatalf("Wallet: %+v", err)
	}
	if len(wallet.Transactions) != 2 {
		t.Fatalf("got %d transactions, want the two-hit record coalesced", len(wallet.Transactions))
	}
	if wallet.Transactions[0].Amount != 150 {
		t.Errorf("coalesced amount: got %d, want 150", wallet.Transactions[0].Amount)
	}
	if wallet.Transactions[0].Balance != 300 || wallet.Transactions[1].Balance != 150 {
		t.Errorf("running balances: got %d, %d; want 300, 150",
			wallet.Transactions[0].Balance, wallet.Transactions[1].Balance)
	}
	if len(wallet.UnspentOutputs) != 0 {
		t.Errorf("spendable set should be empty when the unspent call fails")
	}
}

func TestRESTExplorerWalletForUnknownAddress(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/getblockcount", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "123456")
	})
	mux.HandleFunc("/ext/getaddress/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": "address not found."}`)
	})
	_, rest, teardown := testProviders(t, mux)
	defer teardown()

	wallet, err := rest.Wallet(context.Background(), "PFresh")
	if err != nil {
		t.Fatalf("Wallet: %+v", err)
	}
	if wallet.Address != "PFresh" || wallet.Balance != 0 || len(wallet.Transactions) != 0 {
		t.Fatalf("expected an empty wallet, got %+v", wallet)
	}
	if wallet.LastSeenBlock != 123456 {
		t.Errorf("last seen block: got %d, want 123456", wallet.LastSeenBlock)
	}
}

func TestRESTExplorerWallet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/getblockcount", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "777")
	})
	mux.HandleFunc("/ext/getaddress/PTracked", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"address": "PTracked", "sent": 0, "received": 7, "balance": "7",
			"last_txs": [{"addresses": "aa", "type": "vout"}]
		}`)
	})
	mux.HandleFunc("/api/getrawtransaction", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("txid") != "aa" || r.URL.Query().Get("decrypt") != "1" {
			t.Errorf("unexpected getrawtransaction query %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"txid": "aa", "time": 1767322800, "confirmations": 12, "hex": ""}`)
	})
	mux.HandleFunc("/pnd/api.dws", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "txinfo":
			fmt.Fprint(w, `{
				"hash": "aa", "blockindex": 42, "timestamp": 1767322800, "total": 800000000,
				"inputs": [{"addresses": "PAlice", "txid": "99", "amount": 801000000}],
				"outputs": [
					{"addresses": "PTracked", "amount": 700000000},
					{"addresses": "PAlice", "amount": 100000000}
				]
			}`)
		case "unspent":
			fmt.Fprint(w, `{"unspent_outputs": [{"tx_hash": "aa", "script": "76a914", "tx_ouput_n": 0, "value": "700000000"}]}`)
		default:
			t.Errorf("unexpected call %q", r.URL.Query().Get("q"))
		}
	})
	_, rest, teardown := testProviders(t, mux)
	defer teardown()

	wallet, err := rest.Wallet(context.Background(), "PTracked")
	if err != nil {
		t.Fatalf("Wallet: %+v", err)
	}
	if wallet.Balance != 7000000 {
		t.Errorf("balance: got %d, want 7000000", wallet.Balance)
	}
	if len(wallet.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(wallet.Transactions))
	}
	tx := wallet.Transactions[0]
	if tx.Direction != "CREDIT" {
		t.Errorf("direction: got %s, want CREDIT", tx.Direction)
	}
	// The credit is the 7 coins paid to the address.
	if tx.Amount != 7000000 {
		t.Errorf("amount: got %d, want 7000000", tx.Amount)
	}
	if tx.Confirmations != 12 || tx.BlockIndex != 42 {
		t.Errorf("unexpected metadata: %+v", tx)
	}
	if len(tx.Addresses) != 1 || tx.Addresses[0] != "PAlice" {
		t.Errorf("counterparts: got %v, want [PAlice]", tx.Addresses)
	}
	if len(wallet.UnspentOutputs) != 1 || wallet.UnspentOutputs[0].Amount != 7000000 {
		t.Errorf("unexpected spendable set: %+v", wallet.UnspentOutputs)
	}
}

func TestBroadcast(t *testing.T) {
	rejected := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sendrawtransaction", func(w http.ResponseWriter, r *http.Request) {
		if rejected {
			fmt.Fprint(w, "There was an error. Check your console.")
			return
		}
		fmt.Fprint(w, `"aabbcc"`)
	})
	_, rest, teardown := testProviders(t, mux)
	defer teardown()

	txID, err := rest.Broadcast(context.Background(), "0100")
	if err != nil {
		t.Fatalf("Broadcast: %+v", err)
	}
	if txID != "aabbcc" {
		t.Errorf("txID: got %q, want aabbcc", txID)
	}

	rejected = true
	_, err = rest.Broadcast(context.Background(), "0100")
	if !errors.Is(err, ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction, got %v", err)
	}
}
