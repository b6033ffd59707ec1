package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peerassets/pawallet/app/sync"
	"github.com/peerassets/pawallet/domain/assets"
	"github.com/peerassets/pawallet/domain/ledger"
	"github.com/peerassets/pawallet/domain/txbuilder"
	"github.com/peerassets/pawallet/domain/txsigner"
	"github.com/peerassets/pawallet/infrastructure/config"
	"github.com/peerassets/pawallet/infrastructure/db/walletstore"
	"github.com/peerassets/pawallet/infrastructure/logger"
	"github.com/peerassets/pawallet/infrastructure/network/explorer"
	"github.com/peerassets/pawallet/infrastructure/routine"
	"github.com/peerassets/pawallet/util/coinunits"
	"github.com/peerassets/pawallet/version"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// appDir resolves the directory wallet data and logs live in, creating it if
// needed. Snapshots of different networks must not mix, so the active network
// name is appended.
func appDir(cfg *configFlags, params *config.Params) (string, error) {
	dir := cfg.AppDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "could not resolve the home directory")
		}
		dir = filepath.Join(home, ".pawallet")
	}
	dir = filepath.Join(dir, params.Name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errors.Wrapf(err, "could not create app directory '%s'", dir)
	}
	return dir, nil
}

func setupLog(cfg *configFlags, params *config.Params) error {
	dir, err := appDir(cfg, params)
	if err != nil {
		return err
	}
	logFile := filepath.Join(dir, "logs", "pawallet.log")
	errLogFile := filepath.Join(dir, "logs", "pawallet_err.log")
	if err := logger.InitLog(logFile, errLogFile); err != nil {
		return err
	}
	level, ok := logger.LevelFromString(cfg.LogLevel)
	if !ok {
		return errors.Errorf("unknown log level '%s'", cfg.LogLevel)
	}
	logger.SetLogLevels(level)
	log.Debugf("Version %s on %s", version.Version(), params.Name)
	return nil
}

// newProviders wires the HTTP client and both explorer providers for the
// active network, including the asset codec the providers classify
// transactions with.
func newProviders(proxy *config.ProxyFlags, params *config.Params) (*explorer.RESTExplorer, *assets.Codec) {
	client := explorer.NewClient(proxy.DialFunc())
	codec := assets.NewCodec(params)
	cryptoid := explorer.NewCryptoid(client, params)
	return explorer.NewRESTExplorer(client, cryptoid, codec, params), codec
}

func newBuilder(codec *assets.Codec, params *config.Params) *txbuilder.Builder {
	return txbuilder.New(params, codec)
}

// privateKey resolves the wallet's private key from the flags, falling back
// to a no-echo terminal prompt when no key flag was given.
func (f *keyFlags) privateKey(params *config.Params) (*txsigner.PrivateKey, error) {
	switch {
	case f.PrivateKey != "":
		return txsigner.PrivateKeyFromHex(f.PrivateKey)
	case f.WIF != "":
		return txsigner.PrivateKeyFromWIF(f.WIF, params)
	case f.SeedPhrase:
		phrase, err := promptSecret("Seed phrase:")
		if err != nil {
			return nil, err
		}
		return txsigner.PrivateKeyFromSeedPhrase(phrase, "")
	default:
		keyHex, err := promptSecret("Private key (hex):")
		if err != nil {
			return nil, err
		}
		return txsigner.PrivateKeyFromHex(keyHex)
	}
}

func promptSecret(prompt string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s ", prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", errors.Wrap(err, "error reading secret from terminal")
		}
		return strings.TrimSpace(string(secret)), nil
	}
	// Piped input, e.g. in scripts.
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "error reading secret from stdin")
	}
	return strings.TrimSpace(line), nil
}

// parseRecipients parses repeated --to flags of the form 'address:amount',
// where amount is a whole number of card units.
func parseRecipients(raw []string) ([]txbuilder.Recipient, error) {
	recipients := make([]txbuilder.Recipient, 0, len(raw))
	for _, entry := range raw {
		colon := strings.LastIndex(entry, ":")
		if colon <= 0 || colon == len(entry)-1 {
			return nil, errors.Errorf("malformed receiver '%s', expected 'address:amount'", entry)
		}
		amount, err := strconv.ParseUint(entry[colon+1:], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed amount in receiver '%s'", entry)
		}
		recipients = append(recipients, txbuilder.Recipient{
			Address: entry[:colon],
			Amount:  amount,
		})
	}
	return recipients, nil
}

// newOrchestrator wires the full wallet stack: the persistent store doubles
// as the message log sink on the bus.
func newOrchestrator(mainCfg *configFlags, proxy *config.ProxyFlags,
	params *config.Params, pollInterval time.Duration) (
	*sync.Orchestrator, *routine.Bus, *walletstore.Store, error) {

	dir, err := appDir(mainCfg, params)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := walletstore.Open(filepath.Join(dir, "walletstore"))
	if err != nil {
		return nil, nil, nil, err
	}
	bus := routine.NewBus()
	bus.AddSink(store)
	provider, codec := newProviders(proxy, params)
	orchestrator := sync.New(params, bus, store, provider,
		newBuilder(codec, params), pollInterval)
	return orchestrator, bus, store, nil
}

// fetchWallet resolves the sender's address from the key and syncs its
// wallet so the builder has fresh unspent outputs to fund from.
func fetchWallet(orchestrator *sync.Orchestrator, key *txsigner.PrivateKey,
	params *config.Params) (*ledger.Wallet, error) {

	address, err := key.Address(params)
	if err != nil {
		return nil, err
	}
	result := <-orchestrator.SyncOnce(context.Background(), address)
	if result.Err != nil {
		return nil, result.Err
	}
	return result.Value.(*ledger.Wallet), nil
}

func printBroadcastResult(txID string, fee coinunits.Amount) {
	fmt.Printf("Transaction was sent successfully\n")
	fmt.Printf("Transaction ID: \t%s\n", txID)
	fmt.Printf("Fee paid: \t\t%s\n", fee)
}
