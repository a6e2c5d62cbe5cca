// Package contracts holds minimal bindings for the contracts the submitter
// calls: ERC-20 tokens (with the WETH-style deposit used for minting) and the
// bridging payment contract.
package contracts

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

func mustParseABI(name, def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid %s ABI: %v", name, err))
	}
	return parsed
}
