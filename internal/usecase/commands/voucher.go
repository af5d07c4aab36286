package commands

import (
	"context"
	"log/slog"
	"slices"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/domain/voucher"
	"devhours-api/internal/pkg/config"
	"devhours-api/internal/pkg/errs"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

var (
	ErrInvalidVoucherRequest = errs.New("invalid voucher request")
	ErrAddressNotOwned       = errs.New("address does not belong to caller")
	ErrNoWalletAddress       = errs.New("caller has no wallet address")
)

// VoucherSigner signs vouchers and describes the digest layout.
type VoucherSigner interface {
	SignVoucher(v voucher.Voucher) (string, error)
	Address() string
	Domain() apitypes.TypedDataDomain
}

type VoucherResult struct {
	Buyer              string `json:"buyer"`
	Qty                int64  `json:"qty"`
	Price              string `json:"price"`
	Nonce              int64  `json:"nonce"`
	FID                int64  `json:"fid"`
	Signature          string `json:"signature"`
	SignerAddress      string `json:"signer_address"`
	DiscountPercentage int64  `json:"discount_percentage"`
	DiscountReason     string `json:"discount_reason,omitempty"`
}

type VoucherCommands interface {
	IssueVoucher(ctx context.Context, fid int64, buyerAddress string, qty int64) (*VoucherResult, error)
}

type voucherUseCaseImpl struct {
	contract ContractReader
	signer   VoucherSigner
	resolver AddressResolver
	nonces   NonceCache
	authCfg  config.AuthConfig
	logger   *slog.Logger
}

func NewVoucherUseCase(
	contract ContractReader,
	signer VoucherSigner,
	resolver AddressResolver,
	nonces NonceCache,
	authCfg config.AuthConfig,
	logger *slog.Logger,
) VoucherCommands {
	return &voucherUseCaseImpl{
		contract: contract,
		signer:   signer,
		resolver: resolver,
		nonces:   nonces,
		authCfg:  authCfg,
		logger:   logger,
	}
}

// IssueVoucher prices qty hours for the caller and returns a signed voucher
// the wallet submits to buyWithVoucherAndPermit. The buyer address keeps its
// submitted casing because it is part of the signed message.
func (u *voucherUseCaseImpl) IssueVoucher(ctx context.Context, fid int64, buyerAddress string, qty int64) (*VoucherResult, error) {
	if qty < voucher.MinQty || qty > voucher.MaxQty {
		return nil, errs.Mark(voucher.ErrInvalidQty, ErrInvalidVoucherRequest)
	}

	buyer, err := u.resolveBuyer(ctx, fid, buyerAddress)
	if err != nil {
		return nil, err
	}

	discount := u.resolveDiscount(ctx, fid)
	price := voucher.Price(qty, discount.Percentage)

	nonce, err := u.buyerNonce(ctx, buyer)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrNonceUnavailable)
	}

	v, err := voucher.New(buyer, qty, price, nonce, fid)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidVoucherRequest)
	}

	sig, err := u.signer.SignVoucher(*v)
	if err != nil {
		return nil, errs.Wrap(err, "failed to sign voucher")
	}

	effective := voucher.EffectivePct(qty, price)
	result := &VoucherResult{
		Buyer:              v.Buyer,
		Qty:                v.Qty,
		Price:              v.Price.String(),
		Nonce:              v.Nonce,
		FID:                v.FID,
		Signature:          sig,
		SignerAddress:      u.signer.Address(),
		DiscountPercentage: effective,
	}
	if effective > 0 {
		result.DiscountReason = discount.Reason
	}

	u.logger.Info("voucher issued",
		"fid", fid, "buyer", ledger.NormalizeAddress(buyer), "qty", qty,
		"price", result.Price, "discount_pct", effective,
	)

	return result, nil
}

// resolveBuyer validates an explicit address against the caller's verified
// set, or falls back to the primary resolved address.
func (u *voucherUseCaseImpl) resolveBuyer(ctx context.Context, fid int64, buyerAddress string) (string, error) {
	addrs, err := u.resolver.ResolveAddresses(ctx, fid)
	if err != nil {
		// Resolution is advisory when the caller named an address; without
		// one there is nothing to issue against.
		if buyerAddress == "" {
			return "", errs.Mark(err, ErrNoWalletAddress)
		}
		if !voucher.IsValidAddress(buyerAddress) {
			return "", errs.Mark(voucher.ErrInvalidAddress, ErrInvalidVoucherRequest)
		}
		return buyerAddress, nil
	}

	if buyerAddress == "" {
		if addrs.Primary == "" {
			return "", ErrNoWalletAddress
		}
		return addrs.Primary, nil
	}

	if !voucher.IsValidAddress(buyerAddress) {
		return "", errs.Mark(voucher.ErrInvalidAddress, ErrInvalidVoucherRequest)
	}

	normalized := ledger.NormalizeAddress(buyerAddress)
	owned := slices.ContainsFunc(addrs.All, func(a string) bool {
		return ledger.NormalizeAddress(a) == normalized
	})
	if !owned && ledger.NormalizeAddress(addrs.Primary) != normalized {
		return "", ErrAddressNotOwned
	}

	return buyerAddress, nil
}

func (u *voucherUseCaseImpl) resolveDiscount(ctx context.Context, fid int64) voucher.Discount {
	if u.authCfg.DevMode && fid == u.authCfg.OomfieFID {
		return voucher.Discount{Percentage: 90, Reason: "dev"}
	}
	if slices.Contains(u.authCfg.OGBidderFIDs, fid) {
		return voucher.Discount{Percentage: 10, Reason: "og-bidder"}
	}
	if u.resolver.CheckMutualFollow(ctx, u.authCfg.OomfieFID, fid) {
		return voucher.Discount{Percentage: 5, Reason: "oomfie"}
	}
	return voucher.Discount{}
}

func (u *voucherUseCaseImpl) buyerNonce(ctx context.Context, buyer string) (int64, error) {
	if cached, ok := u.nonces.Get(ctx, buyer); ok {
		return cached.Int64(), nil
	}

	nonce, err := u.contract.BuyerNonce(ctx, common.HexToAddress(buyer))
	if err != nil {
		return 0, err
	}

	if err := u.nonces.Set(ctx, buyer, nonce); err != nil {
		u.logger.Warn("failed to cache buyer nonce", "buyer", ledger.NormalizeAddress(buyer), "error", err)
	}

	return nonce.Int64(), nil
}
