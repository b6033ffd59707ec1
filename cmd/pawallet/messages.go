package main

import (
	"fmt"
	"path/filepath"

	"github.com/peerassets/pawallet/infrastructure/db/walletstore"
)

func messages(mainCfg *configFlags, conf *messagesConfig) error {
	dir, err := appDir(mainCfg, conf.ActiveNetParams)
	if err != nil {
		return err
	}
	store, err := walletstore.Open(filepath.Join(dir, "walletstore"))
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Messages(conf.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No messages recorded yet")
		return nil
	}
	for _, record := range records {
		line := fmt.Sprintf("%6d  %s  %s", record.Sequence,
			record.Time.Format("2006-01-02 15:04:05"), record.Type)
		if record.Error != "" {
			line += "  " + record.Error
		}
		fmt.Println(line)
	}
	return nil
}
