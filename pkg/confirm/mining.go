// Package confirm implements the two confirmation loops run after submitting
// a transaction: waiting for it to be mined, and waiting for its effects to
// appear in the indexed read model. Both poll strictly sequentially, one
// in-flight request at a time, and are cancellable through the caller's
// context.
package confirm

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/tokenforge/asset-gateway/internal/metrics"
	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
	"github.com/tokenforge/asset-gateway/pkg/portal"
)

// Default mining-wait parameters.
const (
	DefaultMiningInterval = 500 * time.Millisecond
	DefaultMiningTimeout  = 3 * time.Minute
)

// ReceiptSource looks up a transaction confirmation, returning (nil, nil)
// while the transaction is not yet mined.
type ReceiptSource interface {
	GetConfirmation(ctx context.Context, txHash common.Hash) (*portal.Confirmation, error)
}

// MiningWaiter polls for a transaction receipt until it appears, the
// transaction definitively reverts, or the deadline passes.
type MiningWaiter struct {
	source   ReceiptSource
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// NewMiningWaiter creates a mining waiter. Non-positive interval or timeout
// fall back to the defaults (500ms poll, 3m deadline).
func NewMiningWaiter(source ReceiptSource, interval, timeout time.Duration, logger *zap.Logger) *MiningWaiter {
	if interval <= 0 {
		interval = DefaultMiningInterval
	}
	if timeout <= 0 {
		timeout = DefaultMiningTimeout
	}
	return &MiningWaiter{
		source:   source,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Wait blocks until the transaction is mined, reverted, or the deadline
// passes. A revert terminates immediately with the decoded reason, block
// number and contract address; no further polling happens after a definitive
// outcome. A missing receipt at the deadline yields a transaction timeout,
// distinguishable from a revert by category.
func (w *MiningWaiter) Wait(ctx context.Context, txHash common.Hash) (*portal.Confirmation, error) {
	start := time.Now()
	defer func() {
		metrics.MiningWaitDuration.Observe(time.Since(start).Seconds())
	}()

	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		conf, err := w.source.GetConfirmation(ctx, txHash)
		if err != nil {
			// Transient lookup failures don't abort the wait; the deadline
			// still bounds the whole loop.
			w.logger.Warn("receipt lookup failed",
				zap.String("tx_hash", txHash.Hex()),
				zap.Error(err),
			)
		} else if conf != nil && conf.Receipt != nil {
			if conf.Reverted() {
				return nil, w.revertError(txHash, conf.Receipt)
			}
			w.logger.Debug("transaction mined",
				zap.String("tx_hash", txHash.Hex()),
				zap.Uint64("block_number", conf.Receipt.BlockNumber),
			)
			return conf, nil
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.UnavailableError(ctx.Err(), "mining wait canceled")
		case <-deadline.C:
			return nil, apperrors.TransactionTimeoutError(nil,
				fmt.Sprintf("transaction %s not mined within %s", txHash.Hex(), w.timeout)).
				WithMeta("tx_hash", txHash.Hex()).
				WithMeta("elapsed", time.Since(start).String())
		case <-ticker.C:
		}
	}
}

func (w *MiningWaiter) revertError(txHash common.Hash, receipt *portal.Receipt) error {
	w.logger.Info("transaction reverted",
		zap.String("tx_hash", txHash.Hex()),
		zap.String("revert_reason", receipt.RevertReason),
		zap.Uint64("block_number", receipt.BlockNumber),
	)

	svcErr := apperrors.RevertedError(nil,
		fmt.Sprintf("transaction %s reverted: %s", txHash.Hex(), receipt.RevertReason)).
		WithMeta("tx_hash", txHash.Hex()).
		WithMeta("revert_reason", receipt.RevertReason).
		WithMeta("block_number", receipt.BlockNumber)
	if receipt.ContractAddress != nil {
		svcErr = svcErr.WithMeta("contract_address", receipt.ContractAddress.Hex())
	}
	return svcErr
}
