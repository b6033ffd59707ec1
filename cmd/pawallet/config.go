package main

import (
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/pkg/errors"
)

const (
	syncSubCmd        = "sync"
	balanceSubCmd     = "balance"
	sendSubCmd        = "send"
	spawnDeckSubCmd   = "spawn-deck"
	sendCardsSubCmd   = "send-cards"
	showAddressSubCmd = "show-address"
	messagesSubCmd    = "messages"
)

type configFlags struct {
	config.NetworkFlags
	config.ProxyFlags
	AppDir   string `long:"appdir" short:"b" description:"Directory to store wallet data and logs in"`
	LogLevel string `long:"loglevel" short:"d" default:"info" description:"Logging level {trace, debug, info, warn, error, critical}"`
}

type keyFlags struct {
	PrivateKey string `long:"private-key" short:"k" description:"The private key of the wallet (encoded in hex)"`
	WIF        string `long:"wif" description:"The private key of the wallet (WIF encoded)"`
	SeedPhrase bool   `long:"seed-phrase" description:"Prompt for a BIP39 seed phrase instead of a private key"`
}

type syncConfig struct {
	Address      string        `long:"address" short:"a" description:"The public address to sync" required:"true"`
	Poll         bool          `long:"poll" description:"Keep polling the providers instead of syncing once"`
	PollInterval time.Duration `long:"poll-interval" default:"1m" description:"Interval between polls when --poll is given"`
	config.NetworkFlags
	config.ProxyFlags
}

type balanceConfig struct {
	Address string `long:"address" short:"a" description:"The public address to check the balance of" required:"true"`
	config.NetworkFlags
	config.ProxyFlags
}

type sendConfig struct {
	keyFlags
	ToAddress  string  `long:"to-address" short:"t" description:"The public address to send coins to" required:"true"`
	SendAmount float64 `long:"send-amount" short:"v" description:"An amount to send in coins (e.g. 1234.123456)" required:"true"`
	config.NetworkFlags
	config.ProxyFlags
}

type spawnDeckConfig struct {
	keyFlags
	Name      string `long:"name" short:"n" description:"The name of the new deck" required:"true"`
	Decimals  uint32 `long:"decimals" description:"Number of decimals of the deck's cards"`
	IssueMode string `long:"issue-mode" default:"ONCE" description:"Comma-separated issue mode flags {CUSTOM, ONCE, MULTI, MONO, UNFLUSHABLE}"`
	Data      string `long:"data" description:"Optional asset specific data to attach"`
	config.NetworkFlags
	config.ProxyFlags
}

type sendCardsConfig struct {
	keyFlags
	DeckID     string   `long:"deck" description:"The ID of the deck the cards belong to" required:"true"`
	Recipients []string `long:"to" short:"t" description:"A receiver as 'address:amount', may be given multiple times" required:"true"`
	Decimals   uint32   `long:"decimals" description:"Number of decimals of the deck's cards"`
	Issuance   bool     `long:"issuance" description:"Issue new cards as the deck owner instead of transferring held ones"`
	Balance    uint64   `long:"card-balance" description:"The sender's current card balance in the deck, checked before a non-issuance transfer"`
	Data       string   `long:"data" description:"Optional asset specific data to attach"`
	config.NetworkFlags
	config.ProxyFlags
}

type showAddressConfig struct {
	keyFlags
	config.NetworkFlags
	config.ProxyFlags
}

type messagesConfig struct {
	Limit int `long:"limit" short:"l" default:"25" description:"Maximum number of log entries to show, newest kept"`
	config.NetworkFlags
	config.ProxyFlags
}

func parseCommandLine() (subCommand string, mainConfig *configFlags, config interface{}) {
	cfg := &configFlags{}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)

	syncConf := &syncConfig{}
	parser.AddCommand(syncSubCmd, "Syncs a wallet from the providers",
		"Reconstructs the wallet of a public address from the block explorer providers and stores the snapshot", syncConf)

	balanceConf := &balanceConfig{}
	parser.AddCommand(balanceSubCmd, "Shows the balance of a public address",
		"Shows the balance for a public address in coins", balanceConf)

	sendConf := &sendConfig{}
	parser.AddCommand(sendSubCmd, "Sends a transaction to a public address",
		"Builds, signs and broadcasts a plain value transfer", sendConf)

	spawnDeckConf := &spawnDeckConfig{}
	parser.AddCommand(spawnDeckSubCmd, "Registers a new asset deck",
		"Builds, signs and broadcasts a deck spawn transaction", spawnDeckConf)

	sendCardsConf := &sendCardsConfig{}
	parser.AddCommand(sendCardsSubCmd, "Sends cards of a deck",
		"Builds, signs and broadcasts a card transfer transaction", sendCardsConf)

	showAddressConf := &showAddressConfig{}
	parser.AddCommand(showAddressSubCmd, "Shows the address of a private key",
		"Shows the public address and WIF encoding of a private key", showAddressConf)

	messagesConf := &messagesConfig{}
	parser.AddCommand(messagesSubCmd, "Shows the routine message log",
		"Shows the persisted lifecycle message log of past wallet routines", messagesConf)

	_, err := parser.Parse()

	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		} else {
			os.Exit(1)
		}
		return "", nil, nil
	}

	switch parser.Command.Active.Name {
	case syncSubCmd:
		combineNetworkFlags(&syncConf.NetworkFlags, &cfg.NetworkFlags)
		combineProxyFlags(&syncConf.ProxyFlags, &cfg.ProxyFlags)
		syncConf.ResolveNetwork()
		config = syncConf
	case balanceSubCmd:
		combineNetworkFlags(&balanceConf.NetworkFlags, &cfg.NetworkFlags)
		combineProxyFlags(&balanceConf.ProxyFlags, &cfg.ProxyFlags)
		balanceConf.ResolveNetwork()
		config = balanceConf
	case sendSubCmd:
		combineNetworkFlags(&sendConf.NetworkFlags, &cfg.NetworkFlags)
		combineProxyFlags(&sendConf.ProxyFlags, &cfg.ProxyFlags)
		sendConf.ResolveNetwork()
		config = sendConf
	case spawnDeckSubCmd:
		combineNetworkFlags(&spawnDeckConf.NetworkFlags, &cfg.NetworkFlags)
		combineProxyFlags(&spawnDeckConf.ProxyFlags, &cfg.ProxyFlags)
		spawnDeckConf.ResolveNetwork()
		config = spawnDeckConf
	case sendCardsSubCmd:
		combineNetworkFlags(&sendCardsConf.NetworkFlags, &cfg.NetworkFlags)
		combineProxyFlags(&sendCardsConf.ProxyFlags, &cfg.ProxyFlags)
		sendCardsConf.ResolveNetwork()
		config = sendCardsConf
	case showAddressSubCmd:
		combineNetworkFlags(&showAddressConf.NetworkFlags, &cfg.NetworkFlags)
		combineProxyFlags(&showAddressConf.ProxyFlags, &cfg.ProxyFlags)
		showAddressConf.ResolveNetwork()
		config = showAddressConf
	case messagesSubCmd:
		combineNetworkFlags(&messagesConf.NetworkFlags, &cfg.NetworkFlags)
		combineProxyFlags(&messagesConf.ProxyFlags, &cfg.ProxyFlags)
		messagesConf.ResolveNetwork()
		config = messagesConf
	}

	return parser.Command.Active.Name, cfg, config
}

func combineNetworkFlags(dst, src *config.NetworkFlags) {
	dst.Testnet = dst.Testnet || src.Testnet
	dst.TestingDeployment = dst.TestingDeployment || src.TestingDeployment
}

func combineProxyFlags(dst, src *config.ProxyFlags) {
	if dst.Proxy == "" {
		dst.Proxy = src.Proxy
		dst.ProxyUser = src.ProxyUser
		dst.ProxyPass = src.ProxyPass
	}
}
