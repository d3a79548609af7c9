package domain

import (
	"fmt"
	"math/big"
	"strings"
)

type ChainId int32

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

type TokenId string

func (i TokenId) String() string {
	return string(i)
}

func (i TokenId) ToBig() (*big.Int, error) {
	id, ok := new(big.Int).SetString(i.String(), 10)
	if !ok {
		return nil, fmt.Errorf("invalid token id %s", i)
	}
	return id, nil
}

// Commitment is the public value derived from an identity secret, safe to
// publish on-chain. Stored as the decimal string of a uint256.
type Commitment string

func (c Commitment) String() string {
	return string(c)
}

func (c Commitment) ToBig() (*big.Int, error) {
	v, ok := new(big.Int).SetString(string(c), 10)
	if !ok {
		return nil, fmt.Errorf("invalid commitment %s", c)
	}
	return v, nil
}

func (c Commitment) IsEmpty() bool {
	return len(c) == 0
}

type BlockNumber uint64

type TxHash string

func (h TxHash) String() string {
	return string(h)
}
