package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/peerassets/pawallet/domain/ledger"
	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/peerassets/pawallet/util/coinunits"
	"github.com/pkg/errors"
)

const cryptoidProviderName = "cryptoid"

// multiAddrTimeLayout is the UTC timestamp format of aggregated history
// records.
const multiAddrTimeLayout = "2006-01-02 15:04:05"

// Cryptoid is the key-scoped JSON provider. Its api.dws endpoint takes a
// call name plus query parameters; a handful of block explorer endpoints
// live under explorer/*.dws instead.
type Cryptoid struct {
	client *Client
	params *config.Params
}

// NewCryptoid returns a Cryptoid provider for the configured network.
func NewCryptoid(client *Client, params *config.Params) *Cryptoid {
	return &Cryptoid{client: client, params: params}
}

func (c *Cryptoid) apiURL(call string, query url.Values) string {
	query.Set("q", call)
	query.Set("key", c.params.CryptoidKey)
	return fmt.Sprintf("%s/%s/api.dws?%s", c.params.CryptoidURL, c.params.CryptoidChain, query.Encode())
}

func (c *Cryptoid) blockURL(call string, query url.Values) string {
	query.Set("coin", c.params.CryptoidChain)
	return fmt.Sprintf("%s/explorer/%s.dws?%s", c.params.CryptoidURL, call, query.Encode())
}

// Balance returns the address's confirmed balance.
func (c *Cryptoid) Balance(ctx context.Context, address string) (coinunits.Amount, error) {
	var balance json.Number
	err := c.client.getJSON(ctx, cryptoidProviderName, "getbalance",
		c.apiURL("getbalance", url.Values{"a": []string{address}}), &balance)
	if err != nil {
		return 0, err
	}
	coins, err := balance.Float64()
	if err != nil {
		return 0, errors.Wrapf(err, "error parsing balance %q of %s", balance, address)
	}
	return coinunits.FromCoins(coins)
}

type unspentResponse struct {
	UnspentOutputs []struct {
		TxHash  string      `json:"tx_hash"`
		Script  string      `json:"script"`
		TxOutN  uint32      `json:"tx_ouput_n"`
		Value   json.Number `json:"value"`
	} `json:"unspent_outputs"`
}

// Unspent returns the address's spendable outputs. The endpoint reports
// values in legacy minor units; non-positive entries are dropped.
func (c *Cryptoid) Unspent(ctx context.Context, address string) ([]*ledger.UTXO, error) {
	response := &unspentResponse{}
	err := c.client.getJSON(ctx, cryptoidProviderName, "unspent",
		c.apiURL("unspent", url.Values{"active": []string{address}}), response)
	if err != nil {
		return nil, err
	}
	utxos := make([]*ledger.UTXO, 0, len(response.UnspentOutputs))
	for _, output := range response.UnspentOutputs {
		value, err := output.Value.Int64()
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing unspent output value %q of %s",
				output.Value, output.TxHash)
		}
		utxos = append(utxos, &ledger.UTXO{
			TxID:         output.TxHash,
			Vout:         output.TxOutN,
			ScriptPubKey: output.Script,
			Amount:       coinunits.FromLegacyUnits(value),
		})
	}
	return ledger.NormalizeUnspent(utxos), nil
}

type multiAddrResponse struct {
	Addresses []struct {
		Address       string `json:"address"`
		TotalSent     int64  `json:"total_sent"`
		TotalReceived int64  `json:"total_received"`
		FinalBalance  int64  `json:"final_balance"`
		NTx           uint64 `json:"n_tx"`
	} `json:"addresses"`
	Txs []struct {
		Hash          string `json:"hash"`
		Confirmations uint64 `json:"confirmations"`
		Change        int64  `json:"change"`
		TimeUTC       string `json:"time_utc"`
		N             int    `json:"n"`
	} `json:"txs"`
}

// Wallet reconstructs the address's wallet from the aggregated multiaddr
// history. Multi-hit records are coalesced; running balances descend from
// the reported final balance. Spendable outputs degrade to an empty set on
// error.
func (c *Cryptoid) Wallet(ctx context.Context, address string) (*ledger.Wallet, error) {
	response := &multiAddrResponse{}
	err := c.client.getJSON(ctx, cryptoidProviderName, "multiaddr",
		c.apiURL("multiaddr", url.Values{"active": []string{address}}), response)
	if err != nil {
		return nil, err
	}
	if len(response.Addresses) == 0 {
		return nil, errors.Errorf("multiaddr response for %s names no addresses", address)
	}

	segments := make([]*ledger.Segment, 0, len(response.Txs))
	for _, tx := range response.Txs {
		timestamp, err := time.Parse(multiAddrTimeLayout, tx.TimeUTC)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing timestamp %q of %s", tx.TimeUTC, tx.Hash)
		}
		segments = append(segments, &ledger.Segment{
			TxID:          tx.Hash,
			Confirmations: tx.Confirmations,
			Change:        coinunits.Amount(tx.Change),
			Timestamp:     timestamp,
			Hits:          tx.N,
		})
	}
	transactions := ledger.CoalesceSegments(segments)

	totals := response.Addresses[0]
	ledger.AssignRunningBalances(coinunits.Amount(totals.FinalBalance), transactions)

	unspent, err := c.Unspent(ctx, address)
	if err != nil {
		log.Warnf("Could not fetch unspent outputs of %s, continuing with an "+
			"empty spendable set: %s", address, err)
		unspent = nil
	}

	now := time.Now()
	return &ledger.Wallet{
		Address:           address,
		Balance:           coinunits.Amount(totals.FinalBalance),
		Received:          coinunits.Amount(totals.TotalReceived),
		Sent:              coinunits.Amount(totals.TotalSent),
		TotalTransactions: totals.NTx,
		Transactions:      transactions,
		UnspentOutputs:    unspent,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

type txInfoResponse struct {
	Hash       string `json:"hash"`
	BlockIndex uint64 `json:"blockindex"`
	Timestamp  int64  `json:"timestamp"`
	Total      int64  `json:"total"`
	Inputs     []struct {
		Addresses string `json:"addresses"`
		TxID      string `json:"txid"`
		Amount    int64  `json:"amount"`
	} `json:"inputs"`
	Outputs []struct {
		Script    string `json:"script"`
		Addresses string `json:"addresses"`
		Amount    int64  `json:"amount"`
	} `json:"outputs"`
}

// TransactionInfo returns a transaction's full input/output detail. Amounts
// are reported in legacy minor units and converted here.
func (c *Cryptoid) TransactionInfo(ctx context.Context, txID string) (*ledger.TransactionDetail, error) {
	response := &txInfoResponse{}
	err := c.client.getJSON(ctx, cryptoidProviderName, "txinfo",
		c.apiURL("txinfo", url.Values{"t": []string{txID}}), response)
	if err != nil {
		return nil, err
	}

	detail := &ledger.TransactionDetail{
		ID:         txID,
		BlockIndex: response.BlockIndex,
		Timestamp:  time.Unix(response.Timestamp, 0),
	}
	for _, input := range response.Inputs {
		detail.Inputs = append(detail.Inputs, ledger.AddressAmount{
			Address: input.Addresses,
			Amount:  coinunits.FromLegacyUnits(input.Amount),
		})
	}
	for _, output := range response.Outputs {
		detail.Outputs = append(detail.Outputs, ledger.AddressAmount{
			Address: output.Addresses,
			Amount:  coinunits.FromLegacyUnits(output.Amount),
		})
	}
	return detail, nil
}

// RawTransactionHex returns a transaction's serialized bytes as hex via the
// block explorer endpoint.
func (c *Cryptoid) RawTransactionHex(ctx context.Context, txID string) (string, error) {
	var response struct {
		Hex string `json:"hex"`
	}
	err := c.client.getJSON(ctx, cryptoidProviderName, "tx.raw",
		c.blockURL("tx.raw", url.Values{"id": []string{txID}}), &response)
	if err != nil {
		return "", err
	}
	return response.Hex, nil
}
