package main

import (
	"fmt"
	"os"

	"github.com/peerassets/pawallet/infrastructure/logger"
	"github.com/pkg/errors"
)

func main() {
	defer logger.Close()
	subCmd, mainCfg, config := parseCommandLine()

	var err error
	switch subCmd {
	case syncSubCmd:
		conf := config.(*syncConfig)
		if err = setupLog(mainCfg, conf.ActiveNetParams); err == nil {
			err = syncWallet(mainCfg, conf)
		}
	case balanceSubCmd:
		conf := config.(*balanceConfig)
		if err = setupLog(mainCfg, conf.ActiveNetParams); err == nil {
			err = balance(conf)
		}
	case sendSubCmd:
		conf := config.(*sendConfig)
		if err = setupLog(mainCfg, conf.ActiveNetParams); err == nil {
			err = send(mainCfg, conf)
		}
	case spawnDeckSubCmd:
		conf := config.(*spawnDeckConfig)
		if err = setupLog(mainCfg, conf.ActiveNetParams); err == nil {
			err = spawnDeck(mainCfg, conf)
		}
	case sendCardsSubCmd:
		conf := config.(*sendCardsConfig)
		if err = setupLog(mainCfg, conf.ActiveNetParams); err == nil {
			err = sendCards(mainCfg, conf)
		}
	case showAddressSubCmd:
		err = showAddress(config.(*showAddressConfig))
	case messagesSubCmd:
		err = messages(mainCfg, config.(*messagesConfig))
	default:
		err = errors.Errorf("Unknown sub-command '%s'\n", subCmd)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
