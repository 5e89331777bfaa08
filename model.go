package externalmatch

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// OrderSide represents the side of an order
type OrderSide int

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell
)

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "Buy"
	case OrderSideSell:
		return "Sell"
	}
	return fmt.Sprintf("OrderSide(%d)", int(s))
}

// MarshalJSON encodes the side as the wire strings "Buy" or "Sell"
func (s OrderSide) MarshalJSON() ([]byte, error) {
	switch s {
	case OrderSideBuy, OrderSideSell:
		return json.Marshal(s.String())
	}
	return nil, fmt.Errorf("invalid order side: %d", int(s))
}

// UnmarshalJSON decodes the wire strings "Buy" and "Sell"
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "Buy":
		*s = OrderSideBuy
	case "Sell":
		*s = OrderSideSell
	default:
		return fmt.Errorf("invalid order side: %q", raw)
	}
	return nil
}

// ExternalOrder is an order submitted to the relayer for matching.
//
// Exactly one of BaseAmount, QuoteAmount, ExactBaseOutput, or ExactQuoteOutput
// must be nonzero. Absent amount fields are omitted on the wire.
type ExternalOrder struct {
	QuoteMint        string    `json:"quote_mint"`
	BaseMint         string    `json:"base_mint"`
	Side             OrderSide `json:"side"`
	BaseAmount       uint64    `json:"base_amount,omitempty"`
	QuoteAmount      uint64    `json:"quote_amount,omitempty"`
	ExactBaseOutput  uint64    `json:"exact_base_output,omitempty"`
	ExactQuoteOutput uint64    `json:"exact_quote_output,omitempty"`
	MinFillSize      uint64    `json:"min_fill_size"`
}

// Validate checks the amount invariant and normalizes the mint addresses to
// their EIP-55 checksummed form
func (o *ExternalOrder) Validate() error {
	if !common.IsHexAddress(o.QuoteMint) {
		return fmt.Errorf("%w: quote mint %q", ErrInvalidMint, o.QuoteMint)
	}
	if !common.IsHexAddress(o.BaseMint) {
		return fmt.Errorf("%w: base mint %q", ErrInvalidMint, o.BaseMint)
	}
	o.QuoteMint = common.HexToAddress(o.QuoteMint).Hex()
	o.BaseMint = common.HexToAddress(o.BaseMint).Hex()

	if o.Side != OrderSideBuy && o.Side != OrderSideSell {
		return fmt.Errorf("invalid order side: %d", int(o.Side))
	}

	set := 0
	for _, amount := range []uint64{o.BaseAmount, o.QuoteAmount, o.ExactBaseOutput, o.ExactQuoteOutput} {
		if amount != 0 {
			set++
		}
	}
	if set == 0 {
		return ErrNoAmountSet
	}
	if set > 1 {
		return ErrMultipleAmountsSet
	}
	return nil
}

// AssetTransfer describes a single ERC20 transfer in a match
type AssetTransfer struct {
	Mint   string `json:"mint"`
	Amount uint64 `json:"amount"`
}

// TimestampedPrice is the price a quote was given at
type TimestampedPrice struct {
	Price     string `json:"price"`
	Timestamp int64  `json:"timestamp"`
}

// DecimalPrice parses the price string into a decimal value
func (p TimestampedPrice) DecimalPrice() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q: %w", p.Price, err)
	}
	return price, nil
}

// ExternalMatchResult is the outcome of matching an order
type ExternalMatchResult struct {
	QuoteMint   string    `json:"quote_mint"`
	BaseMint    string    `json:"base_mint"`
	QuoteAmount uint64    `json:"quote_amount"`
	BaseAmount  uint64    `json:"base_amount"`
	Direction   OrderSide `json:"direction"`
}

// FeeTake is the fee breakdown charged on a match
type FeeTake struct {
	RelayerFee  uint64 `json:"relayer_fee"`
	ProtocolFee uint64 `json:"protocol_fee"`
}

// Total returns the combined relayer and protocol fee
func (f FeeTake) Total() uint64 {
	return f.RelayerFee + f.ProtocolFee
}

// ExternalQuote is a quote produced by the relayer for an external order
type ExternalQuote struct {
	Order       ExternalOrder       `json:"order"`
	MatchResult ExternalMatchResult `json:"match_result"`
	Fees        FeeTake             `json:"fees"`
	Send        AssetTransfer       `json:"send"`
	Receive     AssetTransfer       `json:"receive"`
	Price       TimestampedPrice    `json:"price"`
	Timestamp   int64               `json:"timestamp"`
}

// GasSponsorshipInfo describes the gas refund granted on a sponsored match.
// When RefundNativeEth is false the refund is paid in-kind through the quoted
// price, directed to RefundAddress when set and to the receiver otherwise.
type GasSponsorshipInfo struct {
	RefundAmount    uint64 `json:"refund_amount"`
	RefundNativeEth bool   `json:"refund_native_eth"`
	RefundAddress   string `json:"refund_address,omitempty"`
}

// SignedGasSponsorshipInfo is sponsorship info signed by the gas sponsor
type SignedGasSponsorshipInfo struct {
	GasSponsorshipInfo GasSponsorshipInfo `json:"gas_sponsorship_info"`
	Signature          string             `json:"signature"`
}

// SignedExternalQuote is a relayer-signed quote. The signature is opaque to
// the client and is echoed back unmodified when the quote is assembled.
type SignedExternalQuote struct {
	Quote              ExternalQuote             `json:"quote"`
	Signature          string                    `json:"signature"`
	GasSponsorshipInfo *SignedGasSponsorshipInfo `json:"gas_sponsorship_info,omitempty"`
}

// SettlementTransaction is the transaction that settles a match on chain.
// The client treats it as opaque data to be submitted by the caller's wallet.
type SettlementTransaction struct {
	Type  string `json:"type,omitempty"`
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

// AtomicMatchApiBundle is an assembled match ready for settlement
type AtomicMatchApiBundle struct {
	MatchResult  ExternalMatchResult   `json:"match_result"`
	Fees         FeeTake               `json:"fees"`
	Receive      AssetTransfer         `json:"receive"`
	Send         AssetTransfer         `json:"send"`
	SettlementTx SettlementTransaction `json:"settlement_tx"`
}

// ExternalMatchResponse is the relayer's response to an assemble or legacy
// match request
type ExternalMatchResponse struct {
	MatchBundle AtomicMatchApiBundle `json:"match_bundle"`
	// GasSponsored indicates the bundle is routed through the gas rebate
	// contract, which refunds settlement gas to the configured address
	GasSponsored       bool                `json:"is_sponsored"`
	GasSponsorshipInfo *GasSponsorshipInfo `json:"gas_sponsorship_info,omitempty"`
}

type externalQuoteRequest struct {
	ExternalOrder ExternalOrder `json:"external_order"`
}

type externalQuoteResponse struct {
	SignedQuote        signedQuote               `json:"signed_quote"`
	GasSponsorshipInfo *SignedGasSponsorshipInfo `json:"gas_sponsorship_info,omitempty"`
}

type signedQuote struct {
	Quote     ExternalQuote `json:"quote"`
	Signature string        `json:"signature"`
}

type assembleExternalMatchRequest struct {
	DoGasEstimation bool                `json:"do_gas_estimation"`
	ReceiverAddress string              `json:"receiver_address,omitempty"`
	SignedQuote     SignedExternalQuote `json:"signed_quote"`
	UpdatedOrder    *ExternalOrder      `json:"updated_order,omitempty"`
}

type externalMatchRequest struct {
	DoGasEstimation bool          `json:"do_gas_estimation"`
	ReceiverAddress string        `json:"receiver_address,omitempty"`
	ExternalOrder   ExternalOrder `json:"external_order"`
}
