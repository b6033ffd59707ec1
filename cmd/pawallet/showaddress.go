package main

import (
	"fmt"
)

func showAddress(conf *showAddressConfig) error {
	key, err := conf.privateKey(conf.ActiveNetParams)
	if err != nil {
		return err
	}
	address, err := key.Address(conf.ActiveNetParams)
	if err != nil {
		return err
	}
	fmt.Printf("Address (%s): \t%s\n", conf.ActiveNetParams.Name, address)
	fmt.Printf("WIF: \t\t\t%s\n", key.ToWIF(conf.ActiveNetParams))
	return nil
}
