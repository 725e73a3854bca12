package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ChecksumAddress returns the EIP-55 form of a hex address.
func ChecksumAddress(s string) (string, error) {
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s).Hex(), nil
}

// ParseAddresses validates and converts hex strings to addresses.
func ParseAddresses(in []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(in))
	for _, s := range in {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		out = append(out, common.HexToAddress(s))
	}
	return out, nil
}
