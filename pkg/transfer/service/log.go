package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/bridge-submitter/pkg/transfer"
)

const serviceName = "TransferService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the transfer Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) done(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Info(method+" completed", fields...)
}

// StartTransfer wraps the service method with logging
func (ls *logService) StartTransfer(
	ctx context.Context,
	req *transfer.Request,
	requestedBy string,
) (resp *transfer.Transfer, err error) {
	start := time.Now()
	ls.logger.Info("StartTransfer started",
		zap.String("service", serviceName),
		zap.String("method", "StartTransfer"),
		zap.String("asset", req.Asset),
		zap.String("amount", req.Amount),
		zap.String("destination", req.Destination),
		zap.String("requested_by", requestedBy),
	)
	defer func() {
		var fields []zap.Field
		if resp != nil {
			fields = append(fields, zap.String("transfer_id", resp.ID))
		}
		ls.done("StartTransfer", start, err, fields...)
	}()

	return ls.svc.StartTransfer(ctx, req, requestedBy)
}

// GetTransfer wraps the service method with logging
func (ls *logService) GetTransfer(ctx context.Context, id string) (resp *transfer.Transfer, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.done("GetTransfer", start, err, zap.String("transfer_id", id))
		}
	}()
	return ls.svc.GetTransfer(ctx, id)
}

// ListTransfers wraps the service method with logging
func (ls *logService) ListTransfers(ctx context.Context) (resp []*transfer.Transfer, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.done("ListTransfers", start, err)
		}
	}()
	return ls.svc.ListTransfers(ctx)
}

// CancelTransfer wraps the service method with logging
func (ls *logService) CancelTransfer(ctx context.Context, id string) (resp *transfer.Transfer, err error) {
	start := time.Now()
	ls.logger.Info("CancelTransfer started",
		zap.String("service", serviceName),
		zap.String("method", "CancelTransfer"),
		zap.String("transfer_id", id),
	)
	defer func() {
		var fields []zap.Field
		fields = append(fields, zap.String("transfer_id", id))
		if resp != nil {
			fields = append(fields, zap.String("status", string(resp.Status)))
		}
		ls.done("CancelTransfer", start, err, fields...)
	}()
	return ls.svc.CancelTransfer(ctx, id)
}

// Quote wraps the service method with logging
func (ls *logService) Quote(ctx context.Context, req *transfer.Request) (resp *transfer.Quote, err error) {
	start := time.Now()
	defer func() {
		var fields []zap.Field
		fields = append(fields, zap.String("asset", req.Asset), zap.String("amount", req.Amount))
		if resp != nil {
			fields = append(fields,
				zap.Int("steps", len(resp.Steps)),
				zap.String("required_native", resp.RequiredNative),
				zap.Bool("sufficient", resp.Sufficient))
		}
		ls.done("Quote", start, err, fields...)
	}()
	return ls.svc.Quote(ctx, req)
}
