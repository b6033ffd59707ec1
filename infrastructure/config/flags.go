package config

import (
	"net"
	"time"

	"github.com/btcsuite/go-socks/socks"
)

// NetworkFlags holds the go-flags network selection shared by every
// sub-command.
type NetworkFlags struct {
	Testnet           bool `long:"testnet" description:"Use the test network"`
	TestingDeployment bool `long:"testing-deployment" description:"Use the testing asset deployment instead of the production one"`

	ActiveNetParams *Params
}

// ResolveNetwork resolves the active network parameters from the parsed flags.
func (f *NetworkFlags) ResolveNetwork() *Params {
	network := Mainnet
	if f.Testnet {
		network = Testnet
	}
	mode := Production
	if f.TestingDeployment {
		mode = Testing
	}
	f.ActiveNetParams = ParamsFor(network, mode)
	return f.ActiveNetParams
}

// ProxyFlags holds the go-flags SOCKS5 proxy options shared by every
// sub-command that talks to a remote provider.
type ProxyFlags struct {
	Proxy     string `long:"proxy" description:"Connect to providers via SOCKS5 proxy (eg. 127.0.0.1:9050)"`
	ProxyUser string `long:"proxyuser" description:"Username for proxy server"`
	ProxyPass string `long:"proxypass" default-mask:"-" description:"Password for proxy server"`
}

// DialFunc returns the dial function provider HTTP clients should use, or nil
// when no proxy is configured and the default dialer applies.
func (f *ProxyFlags) DialFunc() func(network, addr string) (net.Conn, error) {
	if f.Proxy == "" {
		return nil
	}
	proxy := &socks.Proxy{
		Addr:     f.Proxy,
		Username: f.ProxyUser,
		Password: f.ProxyPass,
	}
	return func(network, addr string) (net.Conn, error) {
		return proxy.DialTimeout(network, addr, 30*time.Second)
	}
}
