package submission

import (
	"math/big"
)

// PlanConfig is the subset of deployment settings the plan depends on.
type PlanConfig struct {
	Mintable  bool
	BridgeFee *big.Int
}

// BuildPlan decides which steps a request needs given the account snapshot.
//
// A mint is only planned for mintable assets; for other assets a balance
// shortfall is left for the transfer to surface. Approve always sets the
// allowance to the full amount rather than topping it up. Transfer is always
// the last step.
func BuildPlan(req TransferRequest, state AccountState, cfg PlanConfig) []Step {
	plan := make([]Step, 0, 3)

	owned := orZero(state.OwnedBalance)
	if owned.Cmp(req.Amount) < 0 && cfg.Mintable {
		plan = append(plan, Step{
			Kind:   StepMint,
			Asset:  req.Asset,
			Amount: new(big.Int).Sub(req.Amount, owned),
		})
	}

	if orZero(state.GrantedAllowance).Cmp(req.Amount) < 0 {
		plan = append(plan, Step{
			Kind:   StepApprove,
			Asset:  req.Asset,
			Amount: new(big.Int).Set(req.Amount),
		})
	}

	plan = append(plan, Step{
		Kind:        StepTransfer,
		Asset:       req.Asset,
		Amount:      new(big.Int).Set(req.Amount),
		Fee:         new(big.Int).Set(orZero(cfg.BridgeFee)),
		Destination: req.Destination,
	})

	return plan
}

func hasStep(plan []Step, kind StepKind) bool {
	for _, s := range plan {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
