package main

import (
	"context"
	"fmt"
)

func balance(conf *balanceConfig) error {
	provider, _ := newProviders(&conf.ProxyFlags, conf.ActiveNetParams)
	amount, err := provider.Balance(context.Background(), conf.Address)
	if err != nil {
		return err
	}
	fmt.Printf("Balance: \t\t%s\n", amount)
	return nil
}
