package submission

import (
	"context"
	"math/big"

	"github.com/chainsafe/bridge-submitter/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// GasEstimator prices the steps of a plan.
type GasEstimator struct {
	simulator   CostSimulator
	fallbackGas uint64
	logger      *zap.Logger
}

// NewGasEstimator creates an estimator. fallbackGas is the transfer gas used
// when the transfer cannot be simulated yet.
func NewGasEstimator(simulator CostSimulator, fallbackGas uint64, logger *zap.Logger) *GasEstimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GasEstimator{
		simulator:   simulator,
		fallbackGas: fallbackGas,
		logger:      logger,
	}
}

// EstimatePlan returns one estimate per step, in plan order.
//
// Simulating a transfer before its approval is mined reverts, so when the plan
// contains an Approve the transfer is priced with the fallback gas units at
// the approve step's gas price instead. The fallback only raises the balance
// check threshold; the transfer is re-estimated when it is sent.
func (g *GasEstimator) EstimatePlan(ctx context.Context, plan []Step, account common.Address) ([]CostEstimate, error) {
	estimates := make([]CostEstimate, 0, len(plan))
	approveRequired := hasStep(plan, StepApprove)

	var lastPrice *big.Int
	for _, step := range plan {
		if step.Kind == StepTransfer && approveRequired {
			est := CostEstimate{
				GasUnits: g.fallbackGas,
				GasPrice: new(big.Int).Set(orZero(lastPrice)),
			}
			metrics.EstimatedGas.WithLabelValues(string(step.Kind), "fallback").Observe(float64(est.GasUnits))
			g.logger.Debug("Using fallback transfer gas",
				zap.Uint64("gas_units", est.GasUnits),
				zap.String("gas_price", est.GasPrice.String()))
			estimates = append(estimates, est)
			continue
		}

		est, err := g.Estimate(ctx, step, account)
		if err != nil {
			return estimates, err
		}
		lastPrice = est.GasPrice
		estimates = append(estimates, est)
	}

	return estimates, nil
}

// Estimate simulates a single step.
func (g *GasEstimator) Estimate(ctx context.Context, step Step, account common.Address) (CostEstimate, error) {
	est, err := g.simulator.SimulateCost(ctx, step, account)
	if err != nil {
		g.logger.Warn("Step estimation failed",
			zap.String("step", string(step.Kind)),
			zap.Error(err))
		return CostEstimate{}, newError(KindEstimationFailure, step.Kind, err)
	}
	if est.GasPrice == nil {
		est.GasPrice = new(big.Int)
	}
	est.Simulated = true

	metrics.EstimatedGas.WithLabelValues(string(step.Kind), "simulated").Observe(float64(est.GasUnits))
	g.logger.Debug("Estimated step cost",
		zap.String("step", string(step.Kind)),
		zap.Uint64("gas_units", est.GasUnits),
		zap.String("gas_price", est.GasPrice.String()))

	return est, nil
}
