package main

import (
	"context"

	"github.com/peerassets/pawallet/app/sync"
	"github.com/peerassets/pawallet/domain/ledger"
	"github.com/peerassets/pawallet/domain/txbuilder"
)

func sendCards(mainCfg *configFlags, conf *sendCardsConfig) error {
	key, err := conf.privateKey(conf.ActiveNetParams)
	if err != nil {
		return err
	}
	recipients, err := parseRecipients(conf.Recipients)
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
	result := <-orchestrator.SendCards(context.Background(), &sync.SendCardsParams{
		Wallet: wallet,
		Key:    key,
		Request: &txbuilder.CardTransferRequest{
			UnspentOutputs:    wallet.UnspentOutputs,
			ChangeAddress:     wallet.Address,
			DeckID:            conf.DeckID,
			Recipients:        recipients,
			NumberOfDecimals:  conf.Decimals,
			AssetSpecificData: conf.Data,
			AssetBalance:      conf.Balance,
			Issuance:          conf.Issuance,
		},
	})
	if result.Err != nil {
		return result.Err
	}
	pending := result.Value.(*ledger.Transaction)
	printBroadcastResult(pending.ID, pending.Fee)
	return nil
}
