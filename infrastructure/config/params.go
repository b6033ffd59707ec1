package config

import (
	"github.com/peerassets/pawallet/util/coinunits"
)

// Network selects the chain the client talks to.
type Network string

// Network constants.
const (
	Mainnet Network = "MAINNET"
	Testnet Network = "TESTNET"
)

// DeploymentMode selects between the production asset deployment and the
// testing deployment that shares the same chain.
type DeploymentMode string

// DeploymentMode constants.
const (
	Production DeploymentMode = "PRODUCTION"
	Testing    DeploymentMode = "TESTING"
)

// deckSpawnTagAddresses are the four well-known constant addresses deck spawn
// transactions pay their tag fee to, keyed by network and deployment mode.
// They are nominal grouping addresses; nobody holds their keys.
var deckSpawnTagAddresses = map[Network]map[DeploymentMode]string{
	Mainnet: {
		Production: "PW8RpmJd5A8d8463g2HinboHRkW7mQDvHW",
		Testing:    "PAtesth4QreCwMzXJjYHBcCVKbC4wjbYKP",
	},
	Testnet: {
		Production: "miHhMLaMWubq4Wx6SdTEqZcUHEGp8RKMZt",
		Testing:    "mvfR2sSxAfmDaGgPcmdsTwPqzS6R9nM5Bo",
	},
}

// Params holds the parameters of one network in one deployment mode.
type Params struct {
	Name           string
	Network        Network
	DeploymentMode DeploymentMode

	// Address and key encoding version bytes.
	P2PKHVersion byte
	P2SHVersion  byte
	WIFVersion   byte

	// DeckSpawnTagAddress is the constant address tagging deck spawn
	// transactions on this network/mode.
	DeckSpawnTagAddress string

	// TagFee is the fixed fee paid to a tag address by asset transactions.
	TagFee coinunits.Amount

	// CarriedOutputAmount is the coin value carried by each receiver
	// output of a card transfer. The asset amounts themselves live in the
	// null-data message, not in the output values.
	CarriedOutputAmount coinunits.Amount

	// RelayFeePerKB is the base transaction fee per serialized kilobyte.
	RelayFeePerKB coinunits.Amount

	// Default provider endpoints.
	ExplorerURL   string
	CryptoidURL   string
	CryptoidChain string
	CryptoidKey   string
}

var mainnetParams = Params{
	Name:                "mainnet",
	Network:             Mainnet,
	P2PKHVersion:        0x37, // addresses start with 'P'
	P2SHVersion:         0x16,
	WIFVersion:          0xb7,
	TagFee:              10 * coinunits.UnitsPerCoin,
	CarriedOutputAmount: 10 * coinunits.UnitsPerCoin,
	RelayFeePerKB:       10 * coinunits.UnitsPerCoin,
	ExplorerURL:         "https://explorer.thepandacoin.net",
	CryptoidURL:         "https://chainz.cryptoid.info",
	CryptoidChain:       "pnd",
	CryptoidKey:         "7547f94398e3",
}

var testnetParams = Params{
	Name:                "testnet",
	Network:             Testnet,
	P2PKHVersion:        0x6f,
	P2SHVersion:         0xc4,
	WIFVersion:          0xef,
	TagFee:              10 * coinunits.UnitsPerCoin,
	CarriedOutputAmount: 10 * coinunits.UnitsPerCoin,
	RelayFeePerKB:       10 * coinunits.UnitsPerCoin,
	ExplorerURL:         "https://testnet-explorer.thepandacoin.net",
	CryptoidURL:         "https://chainz.cryptoid.info",
	CryptoidChain:       "pnd-test",
	CryptoidKey:         "7547f94398e3",
}

// ParamsFor returns the parameter set for the given network and deployment
// mode.
func ParamsFor(network Network, mode DeploymentMode) *Params {
	params := mainnetParams
	if network == Testnet {
		params = testnetParams
	}
	params.DeploymentMode = mode
	params.DeckSpawnTagAddress = deckSpawnTagAddresses[network][mode]
	if mode == Testing {
		params.Name += "-testing"
	}
	return &params
}
