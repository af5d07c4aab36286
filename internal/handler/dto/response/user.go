package response

type MeResponse struct {
	FID            int64    `json:"fid"`
	PrimaryAddress string   `json:"primary_address,omitempty"`
	Addresses      []string `json:"addresses,omitempty"`
}

type NonceResponse struct {
	Address string `json:"address"`
	Nonce   string `json:"nonce"`
}
