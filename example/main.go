// Example usage of the external match SDK: request a quote, assemble it into
// a settlement bundle, and submit the bundle on chain.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	externalmatch "github.com/renegade-fi/external-match-sdk-go"
	"github.com/renegade-fi/external-match-sdk-go/chain"
)

const (
	baseMint  = "0xc3414a7ef14aaaa9c4522dfc00a4e66e74e9c25a" // Testnet wETH
	quoteMint = "0xdf8d259c04020562717557f2b5a3cf28e92707d1" // Testnet USDC

	usdcDecimals = 6
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("EXTERNAL_MATCH_KEY")
	apiSecret := os.Getenv("EXTERNAL_MATCH_SECRET")
	if apiKey == "" || apiSecret == "" {
		log.Fatal("EXTERNAL_MATCH_KEY and EXTERNAL_MATCH_SECRET must be set")
	}

	client, err := externalmatch.NewSepoliaClient(apiKey, apiSecret)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	// Sell $30 of wETH for USDC, with a $3 minimum fill
	quoteAmount, err := externalmatch.AmountToAtoms(decimal.NewFromInt(30), usdcDecimals)
	if err != nil {
		log.Fatalf("Failed to convert quote amount: %v", err)
	}
	minFillSize, err := externalmatch.AmountToAtoms(decimal.NewFromInt(3), usdcDecimals)
	if err != nil {
		log.Fatalf("Failed to convert min fill size: %v", err)
	}

	order := &externalmatch.ExternalOrder{
		QuoteMint:   quoteMint,
		BaseMint:    baseMint,
		Side:        externalmatch.OrderSideSell,
		QuoteAmount: quoteAmount,
		MinFillSize: minFillSize,
	}

	ctx := context.Background()

	fmt.Println("Fetching quote...")
	quote, err := client.RequestQuote(ctx, order)
	if err != nil {
		log.Fatalf("Failed to request quote: %v", err)
	}
	if quote == nil {
		log.Fatal("No quote available")
	}

	price, err := quote.Quote.Price.DecimalPrice()
	if err != nil {
		log.Fatalf("Failed to parse quote price: %v", err)
	}
	fmt.Printf("Quote price: %s\n", price)
	fmt.Printf("Receive amount: %d\n", quote.Quote.Receive.Amount)
	fmt.Printf("Total fees: %d\n", quote.Quote.Fees.Total())

	if quote.GasSponsorshipInfo != nil {
		info := quote.GasSponsorshipInfo.GasSponsorshipInfo
		fmt.Printf("Gas sponsored: refund %d (native ETH: %t)\n", info.RefundAmount, info.RefundNativeEth)
	}

	fmt.Println("\nAssembling quote...")
	bundle, err := client.AssembleQuote(ctx, quote)
	if err != nil {
		log.Fatalf("Failed to assemble quote: %v", err)
	}
	if bundle == nil {
		log.Fatal("No bundle available")
	}

	// Submit the settlement bundle on chain
	rpcURL := os.Getenv("RPC_URL")
	privateKey := os.Getenv("PKEY")
	if rpcURL == "" || privateKey == "" {
		log.Fatal("RPC_URL and PKEY must be set")
	}

	executor, err := chain.NewSettlementExecutor(rpcURL, privateKey)
	if err != nil {
		log.Fatalf("Failed to create settlement executor: %v", err)
	}
	defer executor.Close()

	settlementTx := bundle.MatchBundle.SettlementTx
	tx, err := chain.ParseSettlementTx(settlementTx.To, settlementTx.Data, settlementTx.Value)
	if err != nil {
		log.Fatalf("Failed to parse settlement tx: %v", err)
	}

	fmt.Println("\nSubmitting bundle...")
	receipt, err := executor.ExecuteTx(ctx, tx)
	if err != nil {
		log.Fatalf("Failed to execute settlement tx: %v", err)
	}
	fmt.Printf("Transaction submitted: %s\n", receipt.TxHash.Hex())
}
