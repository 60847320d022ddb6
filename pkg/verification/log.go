package verification

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/tokenforge/asset-gateway/pkg/auth"
	"github.com/tokenforge/asset-gateway/pkg/portal"
)

const serviceName = "VerificationService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the verification Service. The
// user-supplied code, challenge secrets and derived responses are never
// logged; only metadata about the attempt is.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) VerifyAndSubmit(
	ctx context.Context,
	wallet common.Address,
	method Method,
	code string,
	req *portal.TransactionRequest,
) (txHash common.Hash, err error) {
	start := time.Now()

	fields := []zap.Field{
		zap.String("service", serviceName),
		zap.String("wallet", wallet.Hex()),
		zap.String("fingerprint", auth.IdentityFingerprint(wallet)),
		zap.String("method", method.String()),
	}
	if systemID, ok := auth.SystemIDFromContext(ctx); ok {
		fields = append(fields, zap.String("system", systemID))
	}

	ls.logger.Info("VerifyAndSubmit started", append(fields, zap.Bool("has_code", code != ""))...)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("VerifyAndSubmit failed",
				zap.String("service", serviceName),
				zap.String("wallet", wallet.Hex()),
				zap.String("method", method.String()),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("VerifyAndSubmit completed",
				zap.String("service", serviceName),
				zap.String("wallet", wallet.Hex()),
				zap.String("method", method.String()),
				zap.String("tx_hash", txHash.Hex()),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.VerifyAndSubmit(ctx, wallet, method, code, req)
}
