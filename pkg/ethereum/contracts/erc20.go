package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ERC20ABI covers the ERC-20 reads and approve, plus the payable deposit of
// wrapped native tokens.
const ERC20ABI = `[
{"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
{"inputs":[],"name":"deposit","outputs":[],"stateMutability":"payable","type":"function"}
]`

var erc20ABI = mustParseABI("ERC20", ERC20ABI)

// Token is a binding to an ERC-20 token contract.
type Token struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewToken binds the token at address.
func NewToken(address common.Address, backend bind.ContractBackend) *Token {
	return &Token{
		address:  address,
		contract: bind.NewBoundContract(address, erc20ABI, backend, backend, backend),
	}
}

// Address returns the token address.
func (t *Token) Address() common.Address {
	return t.address
}

// BalanceOf is a free data retrieval call binding balanceOf(address).
func (t *Token) BalanceOf(opts *bind.CallOpts, owner common.Address) (*big.Int, error) {
	return t.callUint(opts, "balanceOf", owner)
}

// Allowance is a free data retrieval call binding allowance(address,address).
func (t *Token) Allowance(opts *bind.CallOpts, owner, spender common.Address) (*big.Int, error) {
	return t.callUint(opts, "allowance", owner, spender)
}

// Decimals is a free data retrieval call binding decimals().
func (t *Token) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	if err := t.contract.Call(opts, &out, "decimals"); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// Symbol is a free data retrieval call binding symbol().
func (t *Token) Symbol(opts *bind.CallOpts) (string, error) {
	var out []interface{}
	if err := t.contract.Call(opts, &out, "symbol"); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// Approve is a paid mutator transaction binding approve(address,uint256).
func (t *Token) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "approve", spender, amount)
}

// Deposit is a paid mutator transaction binding deposit(). opts.Value is the
// amount wrapped.
func (t *Token) Deposit(opts *bind.TransactOpts) (*types.Transaction, error) {
	return t.contract.Transact(opts, "deposit")
}

func (t *Token) callUint(opts *bind.CallOpts, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(opts, &out, method, params...); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// PackApprove returns the calldata of approve(spender, amount).
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return erc20ABI.Pack("approve", spender, amount)
}

// PackDeposit returns the calldata of deposit().
func PackDeposit() ([]byte, error) {
	return erc20ABI.Pack("deposit")
}

// PackBalanceOf returns the calldata of balanceOf(owner).
func PackBalanceOf(owner common.Address) ([]byte, error) {
	return erc20ABI.Pack("balanceOf", owner)
}
