package externalmatch

import "fmt"

const (
	disableGasSponsorshipQueryParam = "disable_gas_sponsorship"
	gasRefundAddressQueryParam      = "refund_address"
	refundNativeEthQueryParam       = "refund_native_eth"
)

// RequestQuoteOptions configures a quote request.
//
// The zero value requests a gas-sponsored quote with the refund paid in-kind
// to the receiver. Options are plain values; the With* builders return a
// modified copy, so a shared options value is never mutated across calls.
type RequestQuoteOptions struct {
	// DisableGasSponsorship opts the quote out of gas sponsorship
	DisableGasSponsorship bool
	// GasRefundAddress is the address the gas refund is directed to. When
	// unset, in-kind refunds are folded into the quoted price for the receiver
	GasRefundAddress string
	// RefundNativeEth requests the refund in native ETH rather than in-kind
	RefundNativeEth bool
}

// NewRequestQuoteOptions creates options with the default values
func NewRequestQuoteOptions() RequestQuoteOptions {
	return RequestQuoteOptions{}
}

// WithGasSponsorshipDisabled returns a copy with sponsorship opted out
func (o RequestQuoteOptions) WithGasSponsorshipDisabled(disabled bool) RequestQuoteOptions {
	o.DisableGasSponsorship = disabled
	return o
}

// WithGasRefundAddress returns a copy with the refund address set
func (o RequestQuoteOptions) WithGasRefundAddress(address string) RequestQuoteOptions {
	o.GasRefundAddress = address
	return o
}

// WithRefundNativeEth returns a copy with the native ETH refund flag set
func (o RequestQuoteOptions) WithRefundNativeEth(refundNativeEth bool) RequestQuoteOptions {
	o.RefundNativeEth = refundNativeEth
	return o
}

// buildRequestPath builds the quote request path with its query params
func (o RequestQuoteOptions) buildRequestPath() string {
	path := fmt.Sprintf("%s?%s=%t", requestExternalQuoteRoute, disableGasSponsorshipQueryParam, o.DisableGasSponsorship)
	if o.GasRefundAddress != "" {
		path += fmt.Sprintf("&%s=%s", gasRefundAddressQueryParam, o.GasRefundAddress)
	}
	if o.RefundNativeEth {
		path += fmt.Sprintf("&%s=%t", refundNativeEthQueryParam, o.RefundNativeEth)
	}
	return path
}

// AssembleExternalMatchOptions configures the assembly of a signed quote into
// a settlement bundle
type AssembleExternalMatchOptions struct {
	// DoGasEstimation asks the relayer to estimate gas for the settlement tx
	DoGasEstimation bool
	// ReceiverAddress overrides the address receiving the matched tokens
	ReceiverAddress string
	// UpdatedOrder is a modified order sent alongside the original signed
	// quote. The relayer re-validates that the update is consistent with the
	// quote; the client does not diff the two
	UpdatedOrder *ExternalOrder
	// RequestGasSponsorship requests sponsorship at assembly time.
	//
	// Deprecated: negotiate sponsorship at quote time via RequestQuoteOptions.
	RequestGasSponsorship bool
	// GasRefundAddress is the refund address for assembly-time sponsorship.
	//
	// Deprecated: negotiate sponsorship at quote time via RequestQuoteOptions.
	GasRefundAddress string
}

// NewAssembleExternalMatchOptions creates options with the default values
func NewAssembleExternalMatchOptions() AssembleExternalMatchOptions {
	return AssembleExternalMatchOptions{}
}

// WithGasEstimation returns a copy with gas estimation set
func (o AssembleExternalMatchOptions) WithGasEstimation(doGasEstimation bool) AssembleExternalMatchOptions {
	o.DoGasEstimation = doGasEstimation
	return o
}

// WithReceiverAddress returns a copy with the receiver address set
func (o AssembleExternalMatchOptions) WithReceiverAddress(address string) AssembleExternalMatchOptions {
	o.ReceiverAddress = address
	return o
}

// WithUpdatedOrder returns a copy with the updated order set
func (o AssembleExternalMatchOptions) WithUpdatedOrder(order *ExternalOrder) AssembleExternalMatchOptions {
	o.UpdatedOrder = order
	return o
}

// WithGasSponsorship returns a copy requesting assembly-time sponsorship.
//
// Deprecated: negotiate sponsorship at quote time via RequestQuoteOptions.
func (o AssembleExternalMatchOptions) WithGasSponsorship(request bool) AssembleExternalMatchOptions {
	o.RequestGasSponsorship = request
	return o
}

// WithGasRefundAddress returns a copy with the refund address set.
//
// Deprecated: negotiate sponsorship at quote time via RequestQuoteOptions.
func (o AssembleExternalMatchOptions) WithGasRefundAddress(address string) AssembleExternalMatchOptions {
	o.GasRefundAddress = address
	return o
}

// buildRequestPath builds the assemble request path for the given quote.
//
// Sponsorship negotiated at quote time is already fixed and signed into the
// quote; restating it at assembly violates the relayer's contract, so no
// sponsorship params are emitted in that case. They are emitted only for the
// deprecated assembly-time sponsorship request.
func (o AssembleExternalMatchOptions) buildRequestPath(quote *SignedExternalQuote) string {
	if quote.GasSponsorshipInfo != nil || !o.RequestGasSponsorship {
		return assembleExternalMatchRoute
	}

	path := fmt.Sprintf("%s?%s=%t", assembleExternalMatchRoute, disableGasSponsorshipQueryParam, false)
	if o.GasRefundAddress != "" {
		path += fmt.Sprintf("&%s=%s", gasRefundAddressQueryParam, o.GasRefundAddress)
	}
	return path
}

// ExternalMatchOptions configures the legacy combined request-and-assemble
// flow.
//
// Deprecated: use the quote and assemble flow instead.
type ExternalMatchOptions struct {
	DoGasEstimation       bool
	ReceiverAddress       string
	DisableGasSponsorship bool
	GasRefundAddress      string
}

// NewExternalMatchOptions creates options with the default values
func NewExternalMatchOptions() ExternalMatchOptions {
	return ExternalMatchOptions{}
}

// WithGasEstimation returns a copy with gas estimation set
func (o ExternalMatchOptions) WithGasEstimation(doGasEstimation bool) ExternalMatchOptions {
	o.DoGasEstimation = doGasEstimation
	return o
}

// WithReceiverAddress returns a copy with the receiver address set
func (o ExternalMatchOptions) WithReceiverAddress(address string) ExternalMatchOptions {
	o.ReceiverAddress = address
	return o
}

// WithGasSponsorshipDisabled returns a copy with sponsorship opted out
func (o ExternalMatchOptions) WithGasSponsorshipDisabled(disabled bool) ExternalMatchOptions {
	o.DisableGasSponsorship = disabled
	return o
}

// WithGasRefundAddress returns a copy with the refund address set
func (o ExternalMatchOptions) WithGasRefundAddress(address string) ExternalMatchOptions {
	o.GasRefundAddress = address
	return o
}

// buildRequestPath builds the legacy match request path with its query params
func (o ExternalMatchOptions) buildRequestPath() string {
	path := fmt.Sprintf("%s?%s=%t", requestExternalMatchRoute, disableGasSponsorshipQueryParam, o.DisableGasSponsorship)
	if o.GasRefundAddress != "" {
		path += fmt.Sprintf("&%s=%s", gasRefundAddressQueryParam, o.GasRefundAddress)
	}
	return path
}
