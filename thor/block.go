// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// BlockNumber is the height of a block. The clock advances exactly once per block.
type BlockNumber = uint32

// Balance is an amount of the native currency.
type Balance = uint64

// SaturatingAdd returns a+b, clamped to the max balance.
func SaturatingAdd(a, b Balance) Balance {
	if c := a + b; c >= a {
		return c
	}
	return ^Balance(0)
}

// SaturatingSub returns a-b, clamped to zero.
func SaturatingSub(a, b Balance) Balance {
	if a < b {
		return 0
	}
	return a - b
}

// SaturatingAddBlocks returns a+b, clamped to the max block number.
func SaturatingAddBlocks(a, b BlockNumber) BlockNumber {
	if c := a + b; c >= a {
		return c
	}
	return ^BlockNumber(0)
}
