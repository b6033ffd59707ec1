package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/peerassets/pawallet/app/sync"
	"github.com/peerassets/pawallet/domain/ledger"
	"github.com/peerassets/pawallet/infrastructure/routine"
)

func syncWallet(mainCfg *configFlags, conf *syncConfig) error {
	orchestrator, bus, store, err := newOrchestrator(mainCfg, &conf.ProxyFlags,
		conf.ActiveNetParams, conf.PollInterval)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !conf.Poll {
		result := <-orchestrator.SyncOnce(ctx, conf.Address)
		if result.Err != nil {
			return result.Err
		}
		printWallet(result.Value.(*ledger.Wallet))
		return nil
	}

	messages := bus.Subscribe()
	orchestrator.Start(ctx)
	if err := orchestrator.SyncWallet(ctx, conf.Address); err != nil {
		return err
	}
	fmt.Printf("Polling %s every %s, press Ctrl+C to stop\n", conf.Address, conf.PollInterval)
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	for {
		select {
		case msg := <-messages:
			if done, ok := msg.(routine.Done); ok && msg.RoutineName() == sync.SyncWalletRoutine {
				printWallet(done.Result.(*ledger.Wallet))
			}
			if failed, ok := msg.(routine.Failed); ok {
				fmt.Fprintf(os.Stderr, "%s: %s\n", failed.Type(), failed.Err)
			}
		case <-interrupt:
			orchestrator.StopSync()
			return nil
		}
	}
}

func printWallet(wallet *ledger.Wallet) {
	fmt.Printf("Address: \t%s\n", wallet.Address)
	fmt.Printf("Balance: \t%s\n", wallet.Balance)
	fmt.Printf("Received: \t%s\n", wallet.Received)
	fmt.Printf("Sent: \t\t%s\n", wallet.Sent)
	fmt.Printf("Transactions: \t%d (last seen block %d)\n",
		wallet.TotalTransactions, wallet.LastSeenBlock)
	for _, tx := range wallet.Transactions {
		action := ""
		if tx.AssetAction.String() != "NONE" {
			action = " [" + tx.AssetAction.String() + "]"
		}
		fmt.Printf("  %s  %-9s %14s  balance %s%s\n",
			tx.ID, tx.Direction, tx.Amount, tx.Balance, action)
	}
}
