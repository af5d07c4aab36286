// Package contract decodes the dev-hours contract's two event shapes and two
// call shapes. The decode surface is a closed set: anything outside it fails
// with a sentinel error and is never guessed at.
package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const abiJSON = `[
  {"type":"event","name":"TokensPurchased","inputs":[
    {"name":"buyer","type":"address","indexed":true},
    {"name":"qty","type":"uint256","indexed":false},
    {"name":"price","type":"uint256","indexed":false}]},
  {"type":"event","name":"Redeemed","inputs":[
    {"name":"user","type":"address","indexed":true},
    {"name":"qty","type":"uint256","indexed":false},
    {"name":"workCID","type":"string","indexed":false}]},
  {"type":"function","name":"buyWithVoucherAndPermit","stateMutability":"nonpayable","inputs":[
    {"name":"v","type":"tuple","components":[
      {"name":"buyer","type":"address"},
      {"name":"qty","type":"uint256"},
      {"name":"price","type":"uint256"},
      {"name":"nonce","type":"uint256"},
      {"name":"fid","type":"uint256"}]},
    {"name":"vSig","type":"bytes"},
    {"name":"p","type":"tuple","components":[
      {"name":"owner","type":"address"},
      {"name":"spender","type":"address"},
      {"name":"value","type":"uint256"},
      {"name":"nonce","type":"uint256"},
      {"name":"deadline","type":"uint256"},
      {"name":"v","type":"uint8"},
      {"name":"r","type":"bytes32"},
      {"name":"s","type":"bytes32"}]}],
   "outputs":[]},
  {"type":"function","name":"redeemWithPermit","stateMutability":"nonpayable","inputs":[
    {"name":"qty","type":"uint256"},
    {"name":"fid","type":"uint256"},
    {"name":"workCID","type":"string"},
    {"name":"p","type":"tuple","components":[
      {"name":"owner","type":"address"},
      {"name":"spender","type":"address"},
      {"name":"value","type":"uint256"},
      {"name":"nonce","type":"uint256"},
      {"name":"deadline","type":"uint256"},
      {"name":"v","type":"uint8"},
      {"name":"r","type":"bytes32"},
      {"name":"s","type":"bytes32"}]}],
   "outputs":[]},
  {"type":"function","name":"nonces","stateMutability":"view","inputs":[
    {"name":"buyer","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[
    {"name":"account","type":"address"},
    {"name":"id","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"remainingSupply","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"remainingWeeklyCapacity","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]}
]`

var parsedABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic("contract: invalid embedded ABI: " + err.Error())
	}
	return parsed
}

// ABI exposes the parsed contract ABI for read-call packing in the chain layer.
func ABI() abi.ABI {
	return parsedABI
}

// PurchasedEventID returns topic0 of TokensPurchased(address,uint256,uint256).
func PurchasedEventID() common.Hash {
	return parsedABI.Events["TokensPurchased"].ID
}

// RedeemedEventID returns topic0 of Redeemed(address,uint256,string).
func RedeemedEventID() common.Hash {
	return parsedABI.Events["Redeemed"].ID
}
