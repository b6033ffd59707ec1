package sync

import (
	"context"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/peerassets/pawallet/domain/ledger"
	"github.com/peerassets/pawallet/domain/txbuilder"
	"github.com/peerassets/pawallet/domain/txsigner"
	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/peerassets/pawallet/infrastructure/network/explorer"
	"github.com/peerassets/pawallet/infrastructure/routine"
	"github.com/pkg/errors"
)

// Routine names. Hosts receive lifecycle messages tagged with these, e.g.
// SYNC_WALLET_DONE.
const (
	SyncWalletRoutine      = "SYNC_WALLET"
	SendTransactionRoutine = "SEND_TRANSACTION"
	SpawnDeckRoutine       = "SPAWN_DECK"
	SendCardsRoutine       = "SEND_CARDS"
)

// DefaultPollInterval is how often the wallet is re-synced once polling is
// on.
const DefaultPollInterval = time.Minute

// SyncParams identifies the wallet a sync execution works on.
type SyncParams struct {
	Address string
}

// SendParams describes a plain value transfer to broadcast.
type SendParams struct {
	Wallet  *ledger.Wallet
	Key     *txsigner.PrivateKey
	Request *txbuilder.SpendRequest
}

// SpawnDeckParams describes a deck spawn to broadcast.
type SpawnDeckParams struct {
	Wallet  *ledger.Wallet
	Key     *txsigner.PrivateKey
	Request *txbuilder.DeckSpawnRequest
}

// SendCardsParams describes a card transfer to broadcast.
type SendCardsParams struct {
	Wallet  *ledger.Wallet
	Key     *txsigner.PrivateKey
	Request *txbuilder.CardTransferRequest
}

// Orchestrator owns the wallet's routines: the polling sync plus the
// one-shot broadcast routines. All outcomes flow to the message bus; the
// orchestrator holds no wallet state of its own beyond the snapshots it
// hands to the store.
type Orchestrator struct {
	params   *config.Params
	bus      *routine.Bus
	store    Store
	provider *explorer.RESTExplorer
	builder  *txbuilder.Builder

	syncPoller      *routine.Poller
	sendTransaction *routine.Routine
	spawnDeck       *routine.Routine
	sendCards       *routine.Routine
}

// Store is the snapshot persistence the orchestrator hands reconstructed
// wallets to.
type Store interface {
	PutWallet(wallet *ledger.Wallet) error
}

// New wires the orchestrator's routines onto the given bus.
func New(params *config.Params, bus *routine.Bus, store Store,
	provider *explorer.RESTExplorer, builder *txbuilder.Builder,
	pollInterval time.Duration) *Orchestrator {

	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	o := &Orchestrator{
		params:   params,
		bus:      bus,
		store:    store,
		provider: provider,
		builder:  builder,
	}
	o.syncPoller = routine.NewPoller(
		routine.New(SyncWalletRoutine, o.syncWorker, bus), pollInterval)
	o.sendTransaction = routine.NewThrowing(SendTransactionRoutine, o.sendWorker, bus)
	o.spawnDeck = routine.NewThrowing(SpawnDeckRoutine, o.spawnDeckWorker, bus)
	o.sendCards = routine.NewThrowing(SendCardsRoutine, o.sendCardsWorker, bus)
	return o
}

// Start runs the control listener: a SYNC_WALLET_STOP message on the bus
// halts polling and cancels the in-flight sync. It returns immediately; the
// listener exits when ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	messages := o.bus.Subscribe()
	spawn(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-messages:
				if _, ok := msg.(routine.Stop); ok && msg.RoutineName() == SyncWalletRoutine {
					log.Infof("Stop requested, halting wallet sync")
					o.StopSync()
				}
			}
		}
	})
}

// SyncWallet starts polling the wallet of address: one sync immediately,
// then one every poll interval after the first success.
func (o *Orchestrator) SyncWallet(ctx context.Context, address string) error {
	return o.syncPoller.Start(ctx, &SyncParams{Address: address})
}

// SyncOnce runs a single sync execution without starting the schedule.
func (o *Orchestrator) SyncOnce(ctx context.Context, address string) <-chan routine.Result {
	return o.syncPoller.Routine().Trigger(ctx, &SyncParams{Address: address})
}

// StopSync halts polling and requests cancellation of an in-flight sync.
func (o *Orchestrator) StopSync() {
	o.syncPoller.Stop()
}

// IsSyncing returns whether the polling schedule is running.
func (o *Orchestrator) IsSyncing() bool {
	return o.syncPoller.IsPolling()
}

// SendTransaction triggers a one-shot value transfer execution.
func (o *Orchestrator) SendTransaction(ctx context.Context, params *SendParams) <-chan routine.Result {
	return o.sendTransaction.Trigger(ctx, params)
}

// SpawnDeck triggers a one-shot deck spawn execution.
func (o *Orchestrator) SpawnDeck(ctx context.Context, params *SpawnDeckParams) <-chan routine.Result {
	return o.spawnDeck.Trigger(ctx, params)
}

// SendCards triggers a one-shot card transfer execution.
func (o *Orchestrator) SendCards(ctx context.Context, params *SendCardsParams) <-chan routine.Result {
	return o.sendCards.Trigger(ctx, params)
}

func (o *Orchestrator) syncWorker(ctx context.Context, params interface{}) (interface{}, error) {
	syncParams, ok := params.(*SyncParams)
	if !ok {
		return nil, errors.Errorf("unexpected sync parameters of type %T", params)
	}

	wallet, err := o.provider.Wallet(ctx, syncParams.Address)
	if err != nil {
		return nil, err
	}
	log.Debugf("Synced wallet %s: balance %s, %d transactions",
		wallet.Address, wallet.Balance, len(wallet.Transactions))
	log.Tracef("Reconstructed wallet: %s", spew.Sdump(wallet))

	if o.store != nil {
		err = o.store.PutWallet(wallet)
		if err != nil {
			// The reconstructed view is still usable without the
			// snapshot.
			log.Warnf("Could not store the snapshot of %s: %s", wallet.Address, err)
		}
	}
	return wallet, nil
}

func (o *Orchestrator) sendWorker(ctx context.Context, params interface{}) (interface{}, error) {
	sendParams, ok := params.(*SendParams)
	if !ok {
		return nil, errors.Errorf("unexpected send parameters of type %T", params)
	}
	result, err := o.builder.Spend(sendParams.Request, sendParams.Key)
	if err != nil {
		return nil, err
	}
	return o.broadcast(ctx, result)
}

func (o *Orchestrator) spawnDeckWorker(ctx context.Context, params interface{}) (interface{}, error) {
	spawnParams, ok := params.(*SpawnDeckParams)
	if !ok {
		return nil, errors.Errorf("unexpected deck spawn parameters of type %T", params)
	}
	result, err := o.builder.SpawnDeck(spawnParams.Request, spawnParams.Key)
	if err != nil {
		return nil, err
	}
	return o.broadcast(ctx, result)
}

func (o *Orchestrator) sendCardsWorker(ctx context.Context, params interface{}) (interface{}, error) {
	cardParams, ok := params.(*SendCardsParams)
	if !ok {
		return nil, errors.Errorf("unexpected card transfer parameters of type %T", params)
	}
	result, err := o.builder.TransferCards(cardParams.Request, cardParams.Key)
	if err != nil {
		return nil, err
	}
	return o.broadcast(ctx, result)
}

// broadcast submits a signed transaction and returns the wallet-relative
// pending record the host can merge into its view before the next sync
// confirms it.
func (o *Orchestrator) broadcast(ctx context.Context, result *txbuilder.Result) (*ledger.Transaction, error) {
	_, err := o.provider.Broadcast(ctx, result.SerializedHex)
	if err != nil {
		return nil, errors.Wrapf(err, "error broadcasting transaction %s", result.TxID)
	}
	log.Infof("Broadcast transaction %s", result.TxID)

	return &ledger.Transaction{
		ID:        result.TxID,
		Direction: result.Direction,
		Amount:    result.Amount,
		Fee:       result.Fee,
		Timestamp: time.Now(),
		Addresses: result.Addresses,
	}, nil
}
