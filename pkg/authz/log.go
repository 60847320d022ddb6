package authz

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const serviceName = "AuthorizationService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the authorization Service.
// It logs method entry/exit, duration and the decision outcome. Requirement
// trees are logged; role sets and claims are not, they can be large.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) Authorize(ctx context.Context, mutation string, caller common.Address) (err error) {
	start := time.Now()

	ls.logger.Debug("Authorize started",
		zap.String("service", serviceName),
		zap.String("mutation", mutation),
		zap.String("caller", caller.Hex()),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Info("Authorize denied",
				zap.String("service", serviceName),
				zap.String("mutation", mutation),
				zap.String("caller", caller.Hex()),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Authorize allowed",
				zap.String("service", serviceName),
				zap.String("mutation", mutation),
				zap.String("caller", caller.Hex()),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Authorize(ctx, mutation, caller)
}
