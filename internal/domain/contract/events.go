package contract

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrEventMismatch    = errors.New("log does not match event signature")
	ErrMalformedPayload = errors.New("malformed event payload")
)

// PurchaseEvent is a decoded TokensPurchased log.
type PurchaseEvent struct {
	Buyer       common.Address
	Qty         *big.Int
	Price       *big.Int
	TxHash      common.Hash
	BlockNumber uint64
	LogIndex    uint
}

// RedemptionEvent is a decoded Redeemed log.
type RedemptionEvent struct {
	User        common.Address
	Qty         *big.Int
	WorkCID     string
	TxHash      common.Hash
	BlockNumber uint64
	LogIndex    uint
}

// DecodePurchaseLog decodes a raw log as TokensPurchased. The caller filters
// by topic0 already; a mismatch here still fails cleanly rather than
// producing a half-decoded event.
func DecodePurchaseLog(log types.Log) (*PurchaseEvent, error) {
	if len(log.Topics) < 2 || log.Topics[0] != PurchasedEventID() {
		return nil, ErrEventMismatch
	}

	values, err := parsedABI.Unpack("TokensPurchased", log.Data)
	if err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}
	if len(values) != 2 {
		return nil, ErrMalformedPayload
	}

	qty, ok := values[0].(*big.Int)
	if !ok {
		return nil, ErrMalformedPayload
	}
	price, ok := values[1].(*big.Int)
	if !ok {
		return nil, ErrMalformedPayload
	}

	return &PurchaseEvent{
		Buyer:       common.BytesToAddress(log.Topics[1].Bytes()),
		Qty:         qty,
		Price:       price,
		TxHash:      log.TxHash,
		BlockNumber: log.BlockNumber,
		LogIndex:    log.Index,
	}, nil
}

// DecodeRedemptionLog decodes a raw log as Redeemed.
func DecodeRedemptionLog(log types.Log) (*RedemptionEvent, error) {
	if len(log.Topics) < 2 || log.Topics[0] != RedeemedEventID() {
		return nil, ErrEventMismatch
	}

	values, err := parsedABI.Unpack("Redeemed", log.Data)
	if err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}
	if len(values) != 2 {
		return nil, ErrMalformedPayload
	}

	qty, ok := values[0].(*big.Int)
	if !ok {
		return nil, ErrMalformedPayload
	}
	workCID, ok := values[1].(string)
	if !ok {
		return nil, ErrMalformedPayload
	}

	return &RedemptionEvent{
		User:        common.BytesToAddress(log.Topics[1].Bytes()),
		Qty:         qty,
		WorkCID:     workCID,
		TxHash:      log.TxHash,
		BlockNumber: log.BlockNumber,
		LogIndex:    log.Index,
	}, nil
}
