package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// SettlementTx is the decoded form of a relayer settlement transaction
type SettlementTx struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

// ParseSettlementTx decodes the hex-encoded fields of a settlement
// transaction as returned by the relayer
func ParseSettlementTx(to, data, value string) (*SettlementTx, error) {
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("invalid settlement tx to address: %q", to)
	}

	dataBytes, err := hexutil.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid settlement tx data: %w", err)
	}

	txValue := big.NewInt(0)
	if value != "" && value != "0x" {
		if strings.HasPrefix(value, "0x") {
			txValue, err = hexutil.DecodeBig(value)
			if err != nil {
				return nil, fmt.Errorf("invalid settlement tx value: %w", err)
			}
		} else {
			var ok bool
			txValue, ok = new(big.Int).SetString(value, 10)
			if !ok {
				return nil, fmt.Errorf("invalid settlement tx value: %q", value)
			}
		}
	}

	return &SettlementTx{
		To:    common.HexToAddress(to),
		Data:  dataBytes,
		Value: txValue,
	}, nil
}

// SettlementExecutor submits relayer settlement transactions on chain
type SettlementExecutor struct {
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
}

// NewSettlementExecutor creates a new SettlementExecutor connected to the
// given RPC endpoint
func NewSettlementExecutor(rpcURL, privateKeyHex string) (*SettlementExecutor, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &SettlementExecutor{
		client:     client,
		privateKey: privateKey,
	}, nil
}

// SignerAddress returns the address of the signer
func (se *SettlementExecutor) SignerAddress() common.Address {
	publicKey := se.privateKey.Public()
	publicKeyECDSA, _ := publicKey.(*ecdsa.PublicKey)
	return crypto.PubkeyToAddress(*publicKeyECDSA)
}

// CheckGasBalance checks if the signer has enough native balance to cover the
// estimated gas at the given price
func (se *SettlementExecutor) CheckGasBalance(ctx context.Context, estimatedGas uint64, gasPrice *big.Int) error {
	signerAddr := se.SignerAddress()
	balance, err := se.client.BalanceAt(ctx, signerAddr, nil)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}

	// Add 20% safety margin
	estimatedGasWithMargin := new(big.Int).Mul(big.NewInt(int64(estimatedGas)), big.NewInt(120))
	estimatedGasWithMargin.Div(estimatedGasWithMargin, big.NewInt(100))

	requiredEth := new(big.Int).Mul(estimatedGasWithMargin, gasPrice)

	if balance.Cmp(requiredEth) < 0 {
		return fmt.Errorf("insufficient gas balance: signer %s has %s wei, but needs approximately %s wei for gas",
			signerAddr.Hex(),
			balance.String(),
			requiredEth.String(),
		)
	}

	return nil
}

// ExecuteTx fills in the fee and nonce fields of a settlement transaction,
// signs it, submits it, and waits for the receipt. It returns an error when
// the transaction reverts on chain.
func (se *SettlementExecutor) ExecuteTx(ctx context.Context, tx *SettlementTx) (*types.Receipt, error) {
	chainID, err := se.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	signerAddr := se.SignerAddress()
	nonce, err := se.client.PendingNonceAt(ctx, signerAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	head, err := se.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	tipCap, err := se.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas tip cap: %w", err)
	}

	// maxFeePerGas = 2 * baseFee + tip
	feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tipCap)

	gas, err := se.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  signerAddr,
		To:    &tx.To,
		Value: tx.Value,
		Data:  tx.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	// Add 10% buffer
	gas = gas * 110 / 100

	if err := se.CheckGasBalance(ctx, gas, feeCap); err != nil {
		return nil, err
	}

	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &tx.To,
		Value:     tx.Value,
		Data:      tx.Data,
	})

	signedTx, err := types.SignTx(unsigned, types.LatestSignerForChainID(chainID), se.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := se.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	receipt, err := se.waitForReceipt(ctx, signedTx.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to wait for settlement transaction: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("settlement transaction failed: tx hash %s", signedTx.Hash().Hex())
	}

	return receipt, nil
}

// waitForReceipt waits for a transaction receipt with timeout
func (se *SettlementExecutor) waitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	for {
		receipt, err := se.client.TransactionReceipt(timeoutCtx, txHash)
		if err == nil {
			return receipt, nil
		}

		select {
		case <-timeoutCtx.Done():
			return nil, fmt.Errorf("timeout waiting for transaction receipt: %s", txHash.Hex())
		default:
			time.Sleep(2 * time.Second)
		}
	}
}

// Close closes the Ethereum client connection
func (se *SettlementExecutor) Close() {
	if se.client != nil {
		se.client.Close()
	}
}
