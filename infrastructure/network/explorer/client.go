package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"

	"github.com/pkg/errors"
)

// ProviderError is an error a provider reported explicitly in its response
// body, as opposed to a transport or decoding failure on the way there.
type ProviderError struct {
	Provider string
	Call     string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Provider, e.Call, e.Message)
}

// ErrInvalidTransaction is returned when the explorer rejects a broadcast
// transaction.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Client is the HTTP client both providers share. It carries the configured
// proxy dial function and imposes no timeout of its own beyond the
// transport's defaults.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a provider HTTP client. dial may be nil, in which case
// the default dialer is used.
func NewClient(dial func(network, addr string) (net.Conn, error)) *Client {
	httpClient := &http.Client{}
	if dial != nil {
		httpClient.Transport = &http.Transport{
			Dial: dial,
		}
	}
	return &Client{httpClient: httpClient}
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	request, err := http.NewRequest("GET", requestURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "error building request for %s", requestURL)
	}
	response, err := c.httpClient.Do(request.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "error requesting %s", requestURL)
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading response of %s", requestURL)
	}
	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("response status %s for %s\nresponse body:\n%s",
			response.Status, requestURL, body)
	}
	return body, nil
}

// getJSON fetches requestURL and unmarshals its JSON body into target. A
// body carrying an explicit {"error": ...} payload becomes a ProviderError
// attributed to provider and call.
func (c *Client) getJSON(ctx context.Context, provider, call, requestURL string,
	target interface{}) error {

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return err
	}
	if providerErr := probeErrorPayload(provider, call, body); providerErr != nil {
		return providerErr
	}
	err = json.Unmarshal(body, target)
	if err != nil {
		return errors.Wrapf(err, "error unmarshalling %s.%s response", provider, call)
	}
	return nil
}

// getText fetches requestURL and returns its body as plain text.
func (c *Client) getText(ctx context.Context, requestURL string) (string, error) {
	body, err := c.get(ctx, requestURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// probeErrorPayload detects the providers' explicit error bodies. Both
// providers signal failure with a JSON object carrying an "error" key.
func probeErrorPayload(provider, call string, body []byte) *ProviderError {
	var payload struct {
		Error *string `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil || payload.Error == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Call: call, Message: *payload.Error}
}
