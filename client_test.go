package externalmatch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *ExternalMatchClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	secret := base64.StdEncoding.EncodeToString([]byte("test-secret"))
	client, err := NewClient(ClientConfig{
		BaseURL:   server.URL,
		APIKey:    "test-api-key",
		APISecret: secret,
	})
	require.NoError(t, err)

	client.httpClient.now = func() time.Time { return testNow }
	return client
}

func testQuoteEnvelope(order ExternalOrder, sponsored bool) externalQuoteResponse {
	response := externalQuoteResponse{
		SignedQuote: signedQuote{
			Quote: ExternalQuote{
				Order: order,
				MatchResult: ExternalMatchResult{
					QuoteMint:   order.QuoteMint,
					BaseMint:    order.BaseMint,
					QuoteAmount: 30_000_000,
					BaseAmount:  12_000_000_000_000_000,
					Direction:   order.Side,
				},
				Fees:      FeeTake{RelayerFee: 12_000, ProtocolFee: 18_000},
				Send:      AssetTransfer{Mint: order.BaseMint, Amount: 12_000_000_000_000_000},
				Receive:   AssetTransfer{Mint: order.QuoteMint, Amount: 29_970_000},
				Price:     TimestampedPrice{Price: "2500.00", Timestamp: 1700000000000},
				Timestamp: 1700000000000,
			},
			Signature: "quote-signature",
		},
	}
	if sponsored {
		response.GasSponsorshipInfo = &SignedGasSponsorshipInfo{
			GasSponsorshipInfo: GasSponsorshipInfo{RefundAmount: 1_000},
			Signature:          "sponsor-signature",
		}
	}
	return response
}

func testMatchResponse(direction OrderSide) ExternalMatchResponse {
	return ExternalMatchResponse{
		MatchBundle: AtomicMatchApiBundle{
			MatchResult: ExternalMatchResult{
				QuoteMint:   testQuoteMint,
				BaseMint:    testBaseMint,
				QuoteAmount: 30_000_000,
				BaseAmount:  12_000_000_000_000_000,
				Direction:   direction,
			},
			Fees:    FeeTake{RelayerFee: 12_000, ProtocolFee: 18_000},
			Receive: AssetTransfer{Mint: testQuoteMint, Amount: 29_970_000},
			Send:    AssetTransfer{Mint: testBaseMint, Amount: 12_000_000_000_000_000},
			SettlementTx: SettlementTransaction{
				Type:  "0x02",
				To:    "0x4Ca73dD0d7D1e186f1eDa5D4FC2E45686b7EBDd4",
				Data:  "0xdeadbeef",
				Value: "0x0",
			},
		},
		GasSponsored: false,
	}
}

func TestRequestQuoteDecodesResponse(t *testing.T) {
	order := validOrder()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, requestExternalQuoteRoute, r.URL.Path)
		assert.Equal(t, "disable_gas_sponsorship=false", r.URL.RawQuery)

		assert.Equal(t, "test-api-key", r.Header.Get(renegadeAPIKeyHeaderName))
		assert.NotEmpty(t, r.Header.Get(renegadeAuthHeaderName))
		assert.Equal(t, "1700000010000", r.Header.Get(renegadeSigExpirationHeaderName))

		var request externalQuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, uint64(30_000_000), request.ExternalOrder.QuoteAmount)

		require.NoError(t, json.NewEncoder(w).Encode(testQuoteEnvelope(request.ExternalOrder, true)))
	}))

	quote, err := client.RequestQuote(context.Background(), &order)
	require.NoError(t, err)
	require.NotNil(t, quote)

	assert.Equal(t, "quote-signature", quote.Signature)
	assert.Equal(t, uint64(30_000), quote.Quote.Fees.Total())
	require.NotNil(t, quote.GasSponsorshipInfo)
	assert.Equal(t, "sponsor-signature", quote.GasSponsorshipInfo.Signature)
	assert.Equal(t, uint64(1_000), quote.GasSponsorshipInfo.GasSponsorshipInfo.RefundAmount)
}

func TestRequestQuoteNoContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	order := validOrder()
	quote, err := client.RequestQuote(context.Background(), &order)
	require.NoError(t, err)
	assert.Nil(t, quote)
}

func TestRequestQuoteTransportError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal relayer error"))
	}))

	order := validOrder()
	quote, err := client.RequestQuote(context.Background(), &order)
	require.Error(t, err)
	assert.Nil(t, quote)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "internal relayer error", apiErr.Body)
}

func TestRequestQuoteValidatesBeforeNetwork(t *testing.T) {
	called := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	order := validOrder()
	order.QuoteAmount = 0

	_, err := client.RequestQuote(context.Background(), &order)
	assert.ErrorIs(t, err, ErrNoAmountSet)
	assert.False(t, called)
}

func TestAssembleQuoteOmitsSponsorshipParamsWhenNegotiated(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, assembleExternalMatchRoute, r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		require.NoError(t, json.NewEncoder(w).Encode(testMatchResponse(OrderSideSell)))
	}))

	order := validOrder()
	envelope := testQuoteEnvelope(order, true)
	quote := &SignedExternalQuote{
		Quote:              envelope.SignedQuote.Quote,
		Signature:          envelope.SignedQuote.Signature,
		GasSponsorshipInfo: envelope.GasSponsorshipInfo,
	}

	// Even explicitly requesting sponsorship must not emit the params
	options := NewAssembleExternalMatchOptions().
		WithGasSponsorship(true).
		WithGasRefundAddress("0x99D9133afE1B9eC1726C077cA2b79Dcbb5969707")

	bundle, err := client.AssembleQuoteWithOptions(context.Background(), quote, options)
	require.NoError(t, err)
	require.NotNil(t, bundle)
}

func TestAssembleQuoteSendsUpdatedOrderBesideQuote(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request assembleExternalMatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		// The signed quote is echoed untouched; the mutation rides alongside
		assert.Equal(t, "quote-signature", request.SignedQuote.Signature)
		assert.Equal(t, uint64(30_000_000), request.SignedQuote.Quote.Order.QuoteAmount)
		require.NotNil(t, request.UpdatedOrder)
		assert.Equal(t, uint64(19_000_000), request.UpdatedOrder.QuoteAmount)

		require.NoError(t, json.NewEncoder(w).Encode(testMatchResponse(OrderSideSell)))
	}))

	order := validOrder()
	envelope := testQuoteEnvelope(order, false)
	quote := &SignedExternalQuote{
		Quote:     envelope.SignedQuote.Quote,
		Signature: envelope.SignedQuote.Signature,
	}

	updated := validOrder()
	updated.QuoteAmount = 19_000_000
	options := NewAssembleExternalMatchOptions().WithUpdatedOrder(&updated)

	bundle, err := client.AssembleQuoteWithOptions(context.Background(), quote, options)
	require.NoError(t, err)
	require.NotNil(t, bundle)
}

func TestAssembleQuoteNoContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	order := validOrder()
	envelope := testQuoteEnvelope(order, false)
	quote := &SignedExternalQuote{Quote: envelope.SignedQuote.Quote, Signature: envelope.SignedQuote.Signature}

	bundle, err := client.AssembleQuote(context.Background(), quote)
	require.NoError(t, err)
	assert.Nil(t, bundle)
}

func TestQuoteThenAssembleFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(requestExternalQuoteRoute, func(w http.ResponseWriter, r *http.Request) {
		var request externalQuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.NoError(t, json.NewEncoder(w).Encode(testQuoteEnvelope(request.ExternalOrder, false)))
	})
	mux.HandleFunc(assembleExternalMatchRoute, func(w http.ResponseWriter, r *http.Request) {
		var request assembleExternalMatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.NoError(t, json.NewEncoder(w).Encode(testMatchResponse(request.SignedQuote.Quote.Order.Side)))
	})
	client := newTestClient(t, mux)

	order := ExternalOrder{
		QuoteMint:   testQuoteMint,
		BaseMint:    testBaseMint,
		Side:        OrderSideSell,
		QuoteAmount: 30_000_000,
		MinFillSize: 3_000_000,
	}

	ctx := context.Background()
	quote, err := client.RequestQuote(ctx, &order)
	require.NoError(t, err)
	require.NotNil(t, quote)
	assert.Equal(t, quote.Quote.Fees.RelayerFee+quote.Quote.Fees.ProtocolFee, quote.Quote.Fees.Total())

	bundle, err := client.AssembleQuote(ctx, quote)
	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Equal(t, OrderSideSell, bundle.MatchBundle.MatchResult.Direction)
}

func TestRequestMatchLegacyRoute(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, requestExternalMatchRoute, r.URL.Path)
		assert.Equal(t, "disable_gas_sponsorship=true", r.URL.RawQuery)

		var request externalMatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "0xE7E9D6A7Bb6Df9d2C1BbBaf2bc7dF0cc2cC4CF7C", request.ReceiverAddress)

		require.NoError(t, json.NewEncoder(w).Encode(testMatchResponse(request.ExternalOrder.Side)))
	}))

	order := validOrder()
	options := NewExternalMatchOptions().
		WithGasSponsorshipDisabled(true).
		WithReceiverAddress("0xE7E9D6A7Bb6Df9d2C1BbBaf2bc7dF0cc2cC4CF7C")

	bundle, err := client.RequestMatchWithOptions(context.Background(), &order, options)
	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Equal(t, OrderSideSell, bundle.MatchBundle.MatchResult.Direction)
}

func TestNewClientRejectsMissingCredentials(t *testing.T) {
	_, err := NewClient(ClientConfig{APIKey: "", APISecret: ""})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestNewClientRejectsMalformedSecret(t *testing.T) {
	_, err := NewClient(ClientConfig{APIKey: "key", APISecret: "!!!not-base64!!!"})
	assert.ErrorIs(t, err, ErrInvalidAPISecret)
}
