package main

import (
	"context"
	"fmt"

	"github.com/peerassets/pawallet/app/sync"
	"github.com/peerassets/pawallet/domain/assets"
	"github.com/peerassets/pawallet/domain/ledger"
	"github.com/peerassets/pawallet/domain/txbuilder"
)

func spawnDeck(mainCfg *configFlags, conf *spawnDeckConfig) error {
	key, err := conf.privateKey(conf.ActiveNetParams)
	if err != nil {
		return err
	}
	issueMode, err := assets.ParseIssueMode(conf.IssueMode)
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
	result := <-orchestrator.SpawnDeck(context.Background(), &sync.SpawnDeckParams{
		Wallet: wallet,
		Key:    key,
		Request: &txbuilder.DeckSpawnRequest{
			UnspentOutputs:    wallet.UnspentOutputs,
			ChangeAddress:     wallet.Address,
			Name:              conf.Name,
			NumberOfDecimals:  conf.Decimals,
			IssueMode:         issueMode,
			AssetSpecificData: conf.Data,
		},
	})
	if result.Err != nil {
		return result.Err
	}
	pending := result.Value.(*ledger.Transaction)
	printBroadcastResult(pending.ID, pending.Fee)
	// The deck's ID is the spawn transaction's ID.
	fmt.Printf("Deck ID: \t\t%s\n", pending.ID)
	return nil
}
