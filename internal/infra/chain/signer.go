package chain

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"devhours-api/internal/domain/voucher"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/config"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	signingDomainName    = "JC4PDevHours"
	signingDomainVersion = "1"
)

// Signer produces EIP-712 voucher signatures the contract's
// buyWithVoucherAndPermit path verifies on-chain.
type Signer struct {
	key      *ecdsa.PrivateKey
	address  string
	chainID  int64
	contract string
}

func NewSigner(cfg config.ChainConfig) (*Signer, error) {
	raw := strings.TrimPrefix(cfg.SignerPrivateKey, "0x")
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid signer private key", err, infra.KindDecode)
	}

	return &Signer{
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey).Hex(),
		chainID:  cfg.ChainID,
		contract: cfg.ContractAddress,
	}, nil
}

// Address returns the checksummed signer address the contract trusts.
func (s *Signer) Address() string {
	return s.address
}

// Domain returns the EIP-712 domain clients need to reproduce the digest.
func (s *Signer) Domain() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              signingDomainName,
		Version:           signingDomainVersion,
		ChainId:           math.NewHexOrDecimal256(s.chainID),
		VerifyingContract: s.contract,
	}
}

func (s *Signer) typedData(v voucher.Voucher) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Voucher": {
				{Name: "buyer", Type: "address"},
				{Name: "qty", Type: "uint256"},
				{Name: "price", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "fid", Type: "uint256"},
			},
		},
		PrimaryType: "Voucher",
		Domain:      s.Domain(),
		Message: apitypes.TypedDataMessage{
			"buyer": v.Buyer,
			"qty":   new(big.Int).SetInt64(v.Qty),
			"price": v.Price.BigInt(),
			"nonce": new(big.Int).SetInt64(v.Nonce),
			"fid":   new(big.Int).SetInt64(v.FID),
		},
	}
}

// SignVoucher hashes the voucher per EIP-712 and signs it. The recovery byte
// is shifted to 27/28 as Solidity's ecrecover expects.
func (s *Signer) SignVoucher(v voucher.Voucher) (string, error) {
	digest, _, err := apitypes.TypedDataAndHash(s.typedData(v))
	if err != nil {
		return "", infra.WrapRepoErr("failed to hash voucher typed data", err, infra.KindDecode)
	}

	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return "", infra.WrapRepoErr("failed to sign voucher digest", err, infra.KindDecode)
	}
	sig[64] += 27

	return hexutil.Encode(sig), nil
}
