package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/peerassets/pawallet/domain/assets"
	"github.com/peerassets/pawallet/domain/ledger"
	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/peerassets/pawallet/util/coinunits"
	"github.com/pkg/errors"
)

const restProviderName = "explorer"

// addressNotFoundMessage is the provider's error payload for an address the
// chain has never seen. It yields an empty wallet, not a failure.
const addressNotFoundMessage = "address not found."

// broadcastRejectedBody is the explorer's plain-text sentinel for a rejected
// raw transaction.
const broadcastRejectedBody = "There was an error. Check your console."

// RESTExplorer is the iquidus-style REST provider: JSON endpoints under
// /api and /ext, plain text for transaction broadcast. Transaction detail
// comes from the Cryptoid provider because this explorer's own txinfo
// endpoint omits input addresses.
type RESTExplorer struct {
	client   *Client
	cryptoid *Cryptoid
	codec    *assets.Codec
	params   *config.Params
}

// NewRESTExplorer returns a RESTExplorer for the configured network.
func NewRESTExplorer(client *Client, cryptoid *Cryptoid, codec *assets.Codec,
	params *config.Params) *RESTExplorer {

	return &RESTExplorer{client: client, cryptoid: cryptoid, codec: codec, params: params}
}

func (e *RESTExplorer) apiURL(call string, query url.Values) string {
	requestURL := fmt.Sprintf("%s/api/%s", e.params.ExplorerURL, call)
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}
	return requestURL
}

func (e *RESTExplorer) extURL(call string, param string) string {
	return fmt.Sprintf("%s/ext/%s/%s", e.params.ExplorerURL, call, url.PathEscape(param))
}

// Balance returns the address's balance in native minor units.
func (e *RESTExplorer) Balance(ctx context.Context, address string) (coinunits.Amount, error) {
	var balance json.Number
	err := e.client.getJSON(ctx, restProviderName, "getbalance",
		e.extURL("getbalance", address), &balance)
	if err != nil {
		return 0, err
	}
	coins, err := balance.Float64()
	if err != nil {
		return 0, errors.Wrapf(err, "error parsing balance %q of %s", balance, address)
	}
	return coinunits.FromCoins(coins)
}

// BlockCount returns the chain's current height.
func (e *RESTExplorer) BlockCount(ctx context.Context) (uint64, error) {
	body, err := e.client.getText(ctx, e.apiURL("getblockcount", nil))
	if err != nil {
		return 0, err
	}
	count, err := strconv.ParseUint(strings.TrimSpace(body), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "error parsing block count %q", body)
	}
	return count, nil
}

// RawTransactionResponse is the decoded /api/getrawtransaction payload,
// reduced to the fields the wallet consumes.
type RawTransactionResponse struct {
	Hex           string `json:"hex"`
	TxID          string `json:"txid"`
	Time          int64  `json:"time"`
	Confirmations uint64 `json:"confirmations"`
}

// RawTransaction returns a transaction's serialized hex along with its
// confirmation count and timestamp.
func (e *RESTExplorer) RawTransaction(ctx context.Context, txID string) (*RawTransactionResponse, error) {
	response := &RawTransactionResponse{}
	err := e.client.getJSON(ctx, restProviderName, "getrawtransaction",
		e.apiURL("getrawtransaction", url.Values{
			"txid":    []string{txID},
			"decrypt": []string{"1"},
		}), response)
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Broadcast submits a serialized transaction and returns the explorer's
// response body, typically the accepted transaction's ID. A rejection is
// reported with ErrInvalidTransaction.
func (e *RESTExplorer) Broadcast(ctx context.Context, serializedTxHex string) (string, error) {
	body, err := e.client.getText(ctx,
		e.apiURL("sendrawtransaction", url.Values{"hex": []string{serializedTxHex}}))
	if err != nil {
		return "", err
	}
	body = strings.TrimSpace(body)
	if body == broadcastRejectedBody {
		return "", errors.WithStack(ErrInvalidTransaction)
	}
	return strings.Trim(body, `"`), nil
}

type addressResponse struct {
	Address  string      `json:"address"`
	Sent     float64     `json:"sent"`
	Received float64     `json:"received"`
	Balance  json.Number `json:"balance"`
	LastTxs  []struct {
		Addresses string `json:"addresses"`
		Type      string `json:"type"`
	} `json:"last_txs"`
}

// relativeTransaction assembles a transaction's full detail relative to the
// tracked address, combining the explorer's raw view with the Cryptoid
// input/output detail.
func (e *RESTExplorer) relativeTransaction(ctx context.Context, txID, address string) (*ledger.TransactionDetail, error) {
	raw, err := e.RawTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	detail, err := e.cryptoid.TransactionInfo(ctx, txID)
	if err != nil {
		return nil, err
	}
	detail.ID = txID
	detail.Confirmations = raw.Confirmations
	detail.RawHex = raw.Hex
	if raw.Time != 0 {
		detail.Timestamp = time.Unix(raw.Time, 0)
	}
	return detail, nil
}

// Wallet reconstructs the canonical wallet of an address. The address
// summary and per-transaction detail are hard requirements: a transaction
// that cannot be resolved fails the sync, because a gap in the history
// corrupts every running balance older than it. Spendable outputs and the
// block count are auxiliary and degrade to an empty set and zero.
//
// An address the chain has never seen yields an explicitly empty wallet.
func (e *RESTExplorer) Wallet(ctx context.Context, address string) (*ledger.Wallet, error) {
	lastSeenBlock, err := e.BlockCount(ctx)
	if err != nil {
		log.Warnf("Could not fetch the current block count: %s", err)
		lastSeenBlock = 0
	}

	response := &addressResponse{}
	err = e.client.getJSON(ctx, restProviderName, "getaddress",
		e.extURL("getaddress", address), response)
	if err != nil {
		var providerErr *ProviderError
		if errors.As(err, &providerErr) && providerErr.Message == addressNotFoundMessage {
			log.Debugf("Address %s not found, returning an empty wallet", address)
			return ledger.EmptyWallet(address, lastSeenBlock), nil
		}
		return nil, err
	}

	// last_txs is reported oldest first; the canonical wallet is newest
	// first.
	details := make([]*ledger.TransactionDetail, len(response.LastTxs))
	for i, tx := range response.LastTxs {
		detail, err := e.relativeTransaction(ctx, tx.Addresses, address)
		if err != nil {
			return nil, errors.Wrapf(err, "error resolving transaction %s of %s",
				tx.Addresses, address)
		}
		details[len(details)-1-i] = detail
	}

	unspent, err := e.cryptoid.Unspent(ctx, address)
	if err != nil {
		log.Warnf("Could not fetch unspent outputs of %s, continuing with an "+
			"empty spendable set: %s", address, err)
		unspent = nil
	}

	balanceCoins, err := response.Balance.Float64()
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing balance %q of %s", response.Balance, address)
	}
	balance, err := coinunits.FromCoins(balanceCoins)
	if err != nil {
		return nil, err
	}
	received, err := coinunits.FromCoins(response.Received)
	if err != nil {
		return nil, err
	}
	sent, err := coinunits.FromCoins(response.Sent)
	if err != nil {
		return nil, err
	}

	summary := &ledger.AddressSummary{
		Address:           address,
		Balance:           balance,
		Received:          received,
		Sent:              sent,
		TotalTransactions: uint64(len(details)),
	}
	return ledger.BuildWallet(summary, details, unspent, lastSeenBlock, e.codec), nil
}
