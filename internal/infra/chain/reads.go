package chain

import (
	"context"
	"math/big"

	"devhours-api/internal/domain/contract"
	"devhours-api/internal/infra"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// devHoursTokenID is the single ERC-1155 token id the contract mints.
var devHoursTokenID = big.NewInt(0)

func (c *Client) callView(ctx context.Context, method string, args ...any) ([]any, error) {
	parsed := contract.ABI()

	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to pack view call", err, infra.KindDecode)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, infra.WrapRepoErr("view call failed", err, infra.KindTransport)
	}

	values, err := parsed.Unpack(method, out)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to unpack view result", err, infra.KindDecode)
	}
	return values, nil
}

func firstBigInt(values []any) (*big.Int, error) {
	if len(values) != 1 {
		return nil, infra.WrapRepoErr("unexpected view result arity", nil, infra.KindDecode)
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, infra.WrapRepoErr("unexpected view result type", nil, infra.KindDecode)
	}
	return v, nil
}

// BuyerNonce reads the contract's voucher nonce for a buyer.
func (c *Client) BuyerNonce(ctx context.Context, buyer common.Address) (*big.Int, error) {
	values, err := c.callView(ctx, "nonces", buyer)
	if err != nil {
		return nil, err
	}
	return firstBigInt(values)
}

// HourBalance reads a holder's dev-hours token balance.
func (c *Client) HourBalance(ctx context.Context, holder common.Address) (*big.Int, error) {
	values, err := c.callView(ctx, "balanceOf", holder, devHoursTokenID)
	if err != nil {
		return nil, err
	}
	return firstBigInt(values)
}

func (c *Client) RemainingSupply(ctx context.Context) (*big.Int, error) {
	values, err := c.callView(ctx, "remainingSupply")
	if err != nil {
		return nil, err
	}
	return firstBigInt(values)
}

func (c *Client) RemainingWeeklyCapacity(ctx context.Context) (*big.Int, error) {
	values, err := c.callView(ctx, "remainingWeeklyCapacity")
	if err != nil {
		return nil, err
	}
	return firstBigInt(values)
}
