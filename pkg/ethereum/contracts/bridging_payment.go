package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// BridgingPaymentABI is the subset of the bridging payment contract the
// submitter uses. requestBridging is payable with the bridge fee and emits
// FeePaid once the fee has been accepted.
const BridgingPaymentABI = `[
{"inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"},{"name":"to","type":"bytes32"}],"name":"requestBridging","outputs":[],"stateMutability":"payable","type":"function"},
{"inputs":[],"name":"fee","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"anonymous":false,"inputs":[],"name":"FeePaid","type":"event"}
]`

var bridgingPaymentABI = mustParseABI("BridgingPayment", BridgingPaymentABI)

// BridgingPayment is a binding to the bridging payment contract.
type BridgingPayment struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewBridgingPayment binds the contract at address.
func NewBridgingPayment(address common.Address, backend bind.ContractBackend) *BridgingPayment {
	return &BridgingPayment{
		address:  address,
		contract: bind.NewBoundContract(address, bridgingPaymentABI, backend, backend, backend),
	}
}

// Address returns the contract address.
func (b *BridgingPayment) Address() common.Address {
	return b.address
}

// Fee is a free data retrieval call binding fee().
func (b *BridgingPayment) Fee(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	if err := b.contract.Call(opts, &out, "fee"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// RequestBridging is a paid mutator transaction binding
// requestBridging(address,uint256,bytes32). opts.Value carries the fee.
func (b *BridgingPayment) RequestBridging(
	opts *bind.TransactOpts,
	token common.Address,
	amount *big.Int,
	to [32]byte,
) (*types.Transaction, error) {
	return b.contract.Transact(opts, "requestBridging", token, amount, to)
}

// PackRequestBridging returns the calldata of requestBridging(token, amount, to).
func PackRequestBridging(token common.Address, amount *big.Int, to [32]byte) ([]byte, error) {
	return bridgingPaymentABI.Pack("requestBridging", token, amount, to)
}

// EventID returns the topic of the named event declared by the bridging
// payment contract.
func EventID(name string) (common.Hash, bool) {
	ev, ok := bridgingPaymentABI.Events[name]
	if !ok {
		return common.Hash{}, false
	}
	return ev.ID, true
}
