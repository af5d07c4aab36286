//go:build unit

package queries_test

import (
	"context"
	"math/big"
	"testing"

	"devhours-api/internal/usecase/queries"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeViewReader struct {
	supply *big.Int
	weekly *big.Int
}

func (f *fakeViewReader) HourBalance(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(3), nil
}

func (f *fakeViewReader) RemainingSupply(context.Context) (*big.Int, error) {
	return f.supply, nil
}

func (f *fakeViewReader) RemainingWeeklyCapacity(context.Context) (*big.Int, error) {
	return f.weekly, nil
}

type fakeSignerInfo struct{}

func (fakeSignerInfo) Address() string {
	return "0x9999999999999999999999999999999999999999"
}

func (fakeSignerInfo) Domain() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:    "JC4PDevHours",
		Version: "1",
		ChainId: math.NewHexOrDecimal256(8453),
	}
}

func TestContractQueries_Info(t *testing.T) {
	reader := &fakeViewReader{supply: big.NewInt(940), weekly: big.NewInt(12)}
	q := queries.NewContractQueries(reader, fakeSignerInfo{},
		"0x4242424242424242424242424242424242424242",
		"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		8453,
	)

	view, err := q.Info(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "0x4242424242424242424242424242424242424242", view.Address)
	assert.Equal(t, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", view.PaymentToken)
	assert.Equal(t, int64(8453), view.ChainID)
	assert.Equal(t, "940", view.RemainingSupply)
	assert.Equal(t, "12", view.RemainingWeeklyCapacity)
	assert.Equal(t, "300000000", view.BasePricePerHour)
}
