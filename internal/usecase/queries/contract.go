package queries

import (
	"context"
	"math/big"

	"devhours-api/internal/domain/voucher"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

type ContractInfoView struct {
	Address                 string `json:"address"`
	ChainID                 int64  `json:"chain_id"`
	PaymentToken            string `json:"payment_token"`
	SignerAddress           string `json:"signer_address"`
	BasePricePerHour        string `json:"base_price_per_hour"`
	MinPricePerHour         string `json:"min_price_per_hour"`
	MaxQtyPerVoucher        int64  `json:"max_qty_per_voucher"`
	RemainingSupply         string `json:"remaining_supply"`
	RemainingWeeklyCapacity string `json:"remaining_weekly_capacity"`
}

type SigningDomainView struct {
	Domain apitypes.TypedDataDomain   `json:"domain"`
	Types  map[string][]apitypes.Type `json:"types"`
}

type BalanceView struct {
	Address string `json:"address"`
	Hours   string `json:"hours"`
}

type ContractViewReader interface {
	HourBalance(ctx context.Context, holder common.Address) (*big.Int, error)
	RemainingSupply(ctx context.Context) (*big.Int, error)
	RemainingWeeklyCapacity(ctx context.Context) (*big.Int, error)
}

type SignerInfo interface {
	Address() string
	Domain() apitypes.TypedDataDomain
}

type ContractQueries interface {
	Info(ctx context.Context) (*ContractInfoView, error)
	SigningDomain() *SigningDomainView
	Balance(ctx context.Context, address string) (*BalanceView, error)
}

type contractQueriesImpl struct {
	reader       ContractViewReader
	signer       SignerInfo
	address      string
	paymentToken string
	chainID      int64
}

func NewContractQueries(reader ContractViewReader, signer SignerInfo, address, paymentToken string, chainID int64) ContractQueries {
	return &contractQueriesImpl{
		reader:       reader,
		signer:       signer,
		address:      address,
		paymentToken: paymentToken,
		chainID:      chainID,
	}
}

func (q *contractQueriesImpl) Info(ctx context.Context) (*ContractInfoView, error) {
	supply, err := q.reader.RemainingSupply(ctx)
	if err != nil {
		return nil, err
	}
	weekly, err := q.reader.RemainingWeeklyCapacity(ctx)
	if err != nil {
		return nil, err
	}

	return &ContractInfoView{
		Address:                 q.address,
		ChainID:                 q.chainID,
		PaymentToken:            q.paymentToken,
		SignerAddress:           q.signer.Address(),
		BasePricePerHour:        voucher.BasePrice(1).String(),
		MinPricePerHour:         voucher.MinPrice(1).String(),
		MaxQtyPerVoucher:        voucher.MaxQty,
		RemainingSupply:         supply.String(),
		RemainingWeeklyCapacity: weekly.String(),
	}, nil
}

// SigningDomain mirrors the voucher digest layout so wallets can reproduce it.
func (q *contractQueriesImpl) SigningDomain() *SigningDomainView {
	return &SigningDomainView{
		Domain: q.signer.Domain(),
		Types: map[string][]apitypes.Type{
			"Voucher": {
				{Name: "buyer", Type: "address"},
				{Name: "qty", Type: "uint256"},
				{Name: "price", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "fid", Type: "uint256"},
			},
		},
	}
}

func (q *contractQueriesImpl) Balance(ctx context.Context, address string) (*BalanceView, error) {
	balance, err := q.reader.HourBalance(ctx, common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	return &BalanceView{Address: address, Hours: balance.String()}, nil
}
