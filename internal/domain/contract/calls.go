package contract

import (
	"bytes"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var ErrUnknownSelector = errors.New("unrecognized function selector")

// BuyCall carries the decoded arguments of buyWithVoucherAndPermit. Only the
// voucher tuple matters downstream; the permit is validated on-chain.
type BuyCall struct {
	Buyer common.Address
	Qty   *big.Int
	Price *big.Int
	Nonce *big.Int
	FID   *big.Int
}

// RedeemCall carries the decoded arguments of redeemWithPermit.
type RedeemCall struct {
	Qty     *big.Int
	FID     *big.Int
	WorkCID string
}

type voucherArg struct {
	Buyer common.Address
	Qty   *big.Int
	Price *big.Int
	Nonce *big.Int
	Fid   *big.Int
}

// DecodeBuyCall decodes transaction input against the buy-with-voucher shape.
// Used for best-effort enrichment only: callers fall back to unknown
// identifiers on any error.
func DecodeBuyCall(input []byte) (*BuyCall, error) {
	method := parsedABI.Methods["buyWithVoucherAndPermit"]
	if len(input) < 4 || !bytes.Equal(input[:4], method.ID) {
		return nil, ErrUnknownSelector
	}

	values, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}
	if len(values) != 3 {
		return nil, ErrMalformedPayload
	}

	v := *abi.ConvertType(values[0], new(voucherArg)).(*voucherArg)

	return &BuyCall{
		Buyer: v.Buyer,
		Qty:   v.Qty,
		Price: v.Price,
		Nonce: v.Nonce,
		FID:   v.Fid,
	}, nil
}

// DecodeRedeemCall decodes transaction input against the redeem-with-permit
// shape.
func DecodeRedeemCall(input []byte) (*RedeemCall, error) {
	method := parsedABI.Methods["redeemWithPermit"]
	if len(input) < 4 || !bytes.Equal(input[:4], method.ID) {
		return nil, ErrUnknownSelector
	}

	values, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}
	if len(values) != 4 {
		return nil, ErrMalformedPayload
	}

	qty, ok := values[0].(*big.Int)
	if !ok {
		return nil, ErrMalformedPayload
	}
	fid, ok := values[1].(*big.Int)
	if !ok {
		return nil, ErrMalformedPayload
	}
	workCID, ok := values[2].(string)
	if !ok {
		return nil, ErrMalformedPayload
	}

	return &RedeemCall{Qty: qty, FID: fid, WorkCID: workCID}, nil
}
