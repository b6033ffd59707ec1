package main

import (
	"context"

	"github.com/peerassets/pawallet/app/sync"
	"github.com/peerassets/pawallet/domain/ledger"
	"github.com/peerassets/pawallet/domain/txbuilder"
	"github.com/peerassets/pawallet/util/coinunits"
)

func send(mainCfg *configFlags, conf *sendConfig) error {
	key, err := conf.privateKey(conf.ActiveNetParams)
	if err != nil {
		return err
	}
	amount, err := coinunits.FromCoins(conf.SendAmount)
	if err != nil {
		return err
	}
	orchestrator, _, store, err := newOrchestrator(mainCfg, &conf.ProxyFlags,
		conf.ActiveNetParams, sync.DefaultPollInterval)
	if err != nil {
		return err
	}
	defer store.Close()

	wallet, err := fetchWallet(orchestrator, key, conf.ActiveNetParams)
	if err != nil {
		return err
	}
	result := <-orchestrator.SendTransaction(context.Background(), &sync.SendParams{
		Wallet: wallet,
		Key:    key,
		Request: &txbuilder.SpendRequest{
			UnspentOutputs: wallet.UnspentOutputs,
			ToAddress:      conf.ToAddress,
			Amount:         amount,
			ChangeAddress:  wallet.Address,
		},
	})
	if result.Err != nil {
		return result.Err
	}
	pending := result.Value.(*ledger.Transaction)
	printBroadcastResult(pending.ID, pending.Fee)
	return nil
}
