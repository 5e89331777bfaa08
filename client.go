package externalmatch

import (
	"context"
	"fmt"
	"net/http"
)

const (
	requestExternalQuoteRoute  = "/v0/matching-engine/quote"
	assembleExternalMatchRoute = "/v0/matching-engine/assemble-external-match"
	requestExternalMatchRoute  = "/v0/matching-engine/request-external-match"
)

// ExternalMatchClient is a client for the relayer's external matching API.
//
// The client is stateless across calls: it holds only the API credentials and
// the underlying HTTP client, so independent calls may be issued concurrently.
// Sequencing a quote into an assembly is the caller's responsibility.
type ExternalMatchClient struct {
	apiKey     string
	httpClient *RelayerHTTPClient
}

// ClientConfig holds configuration for creating an ExternalMatchClient
type ClientConfig struct {
	// BaseURL is the relayer base URL; defaults to the Arbitrum Sepolia
	// deployment when empty
	BaseURL string
	// APIKey identifies the caller on every request
	APIKey string
	// APISecret is the base64-encoded shared secret used for request signing
	APISecret string
}

// NewClient creates a new ExternalMatchClient
func NewClient(config ClientConfig) (*ExternalMatchClient, error) {
	if config.APIKey == "" || config.APISecret == "" {
		return nil, ErrMissingCredentials
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURLs[NetworkArbitrumSepolia]
	}

	httpClient, err := NewRelayerHTTPClient(config.BaseURL, config.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create relayer http client: %w", err)
	}

	return &ExternalMatchClient{
		apiKey:     config.APIKey,
		httpClient: httpClient,
	}, nil
}

// NewSepoliaClient creates a client configured for the Arbitrum Sepolia
// testnet deployment
func NewSepoliaClient(apiKey, apiSecret string) (*ExternalMatchClient, error) {
	return newNetworkClient(NetworkArbitrumSepolia, apiKey, apiSecret)
}

// NewMainnetClient creates a client configured for the Arbitrum One mainnet
// deployment
func NewMainnetClient(apiKey, apiSecret string) (*ExternalMatchClient, error) {
	return newNetworkClient(NetworkArbitrumOne, apiKey, apiSecret)
}

// NewBaseSepoliaClient creates a client configured for the Base Sepolia
// testnet deployment
func NewBaseSepoliaClient(apiKey, apiSecret string) (*ExternalMatchClient, error) {
	return newNetworkClient(NetworkBaseSepolia, apiKey, apiSecret)
}

func newNetworkClient(network Network, apiKey, apiSecret string) (*ExternalMatchClient, error) {
	return NewClient(ClientConfig{
		BaseURL:   DefaultBaseURLs[network],
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
}

// RequestQuote requests a quote for the given order with default options.
// It returns nil with no error when the relayer has no viable quote.
func (c *ExternalMatchClient) RequestQuote(ctx context.Context, order *ExternalOrder) (*SignedExternalQuote, error) {
	return c.RequestQuoteWithOptions(ctx, order, NewRequestQuoteOptions())
}

// RequestQuoteWithOptions requests a quote for the given order.
//
// The order is validated before any network call. A 204 response yields
// (nil, nil); any other non-200 response yields an *APIError.
func (c *ExternalMatchClient) RequestQuoteWithOptions(ctx context.Context, order *ExternalOrder, options RequestQuoteOptions) (*SignedExternalQuote, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	request := externalQuoteRequest{ExternalOrder: *order}
	path := options.buildRequestPath()

	var response externalQuoteResponse
	found, err := c.httpClient.PostJSON(ctx, path, request, c.apiHeaders(), &response)
	if err != nil || !found {
		return nil, err
	}

	// The sponsorship signature travels alongside the quote signature in the
	// response envelope rather than inside the signed quote
	return &SignedExternalQuote{
		Quote:              response.SignedQuote.Quote,
		Signature:          response.SignedQuote.Signature,
		GasSponsorshipInfo: response.GasSponsorshipInfo,
	}, nil
}

// AssembleQuote assembles a signed quote into a settlement bundle with
// default options. It returns nil with no error when no match is available.
func (c *ExternalMatchClient) AssembleQuote(ctx context.Context, quote *SignedExternalQuote) (*ExternalMatchResponse, error) {
	return c.AssembleQuoteWithOptions(ctx, quote, NewAssembleExternalMatchOptions())
}

// AssembleQuoteWithOptions assembles a signed quote into a settlement bundle.
//
// The quote's signature is echoed back unmodified for the relayer to
// re-validate. When options carry an updated order it is sent alongside the
// original signed quote; the quote itself is never mutated.
func (c *ExternalMatchClient) AssembleQuoteWithOptions(ctx context.Context, quote *SignedExternalQuote, options AssembleExternalMatchOptions) (*ExternalMatchResponse, error) {
	if options.UpdatedOrder != nil {
		if err := options.UpdatedOrder.Validate(); err != nil {
			return nil, fmt.Errorf("invalid updated order: %w", err)
		}
	}

	request := assembleExternalMatchRequest{
		DoGasEstimation: options.DoGasEstimation,
		ReceiverAddress: options.ReceiverAddress,
		SignedQuote:     *quote,
		UpdatedOrder:    options.UpdatedOrder,
	}
	path := options.buildRequestPath(quote)

	var response ExternalMatchResponse
	found, err := c.httpClient.PostJSON(ctx, path, request, c.apiHeaders(), &response)
	if err != nil || !found {
		return nil, err
	}

	return &response, nil
}

// RequestMatch requests and assembles a match in one call with default
// options.
//
// Deprecated: use RequestQuote followed by AssembleQuote.
func (c *ExternalMatchClient) RequestMatch(ctx context.Context, order *ExternalOrder) (*ExternalMatchResponse, error) {
	return c.RequestMatchWithOptions(ctx, order, NewExternalMatchOptions())
}

// RequestMatchWithOptions requests and assembles a match in one call.
//
// Deprecated: use RequestQuote followed by AssembleQuote.
func (c *ExternalMatchClient) RequestMatchWithOptions(ctx context.Context, order *ExternalOrder, options ExternalMatchOptions) (*ExternalMatchResponse, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	request := externalMatchRequest{
		DoGasEstimation: options.DoGasEstimation,
		ReceiverAddress: options.ReceiverAddress,
		ExternalOrder:   *order,
	}
	path := options.buildRequestPath()

	var response ExternalMatchResponse
	found, err := c.httpClient.PostJSON(ctx, path, request, c.apiHeaders(), &response)
	if err != nil || !found {
		return nil, err
	}

	return &response, nil
}

// apiHeaders returns the headers identifying the caller on every request
func (c *ExternalMatchClient) apiHeaders() http.Header {
	headers := make(http.Header)
	headers.Set(renegadeAPIKeyHeaderName, c.apiKey)
	return headers
}
