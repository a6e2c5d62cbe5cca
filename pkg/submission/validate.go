package submission

import (
	"math/big"
)

// Validation is the outcome of the balance check.
type Validation struct {
	OK        bool
	Required  *big.Int
	Shortfall *big.Int
}

// RequiredNative sums what the plan costs in native currency: gas for every
// step, the value wrapped by a mint and the bridge fee.
func RequiredNative(plan []Step, estimates []CostEstimate) *big.Int {
	total := new(big.Int)
	for _, est := range estimates {
		total.Add(total, est.Cost())
	}
	for _, step := range plan {
		total.Add(total, step.NativeValue())
	}
	return total
}

// Validate checks that nativeBalance covers the whole plan. It must run before
// any step is submitted.
func Validate(plan []Step, estimates []CostEstimate, nativeBalance *big.Int) Validation {
	required := RequiredNative(plan, estimates)
	balance := orZero(nativeBalance)

	if balance.Cmp(required) < 0 {
		return Validation{
			OK:        false,
			Required:  required,
			Shortfall: new(big.Int).Sub(required, balance),
		}
	}
	return Validation{OK: true, Required: required, Shortfall: new(big.Int)}
}

// Err converts a failed validation into a run error.
func (v Validation) Err() error {
	if v.OK {
		return nil
	}
	return &Error{
		Kind:      KindInsufficientBalance,
		Shortfall: new(big.Int).Set(orZero(v.Shortfall)),
	}
}
