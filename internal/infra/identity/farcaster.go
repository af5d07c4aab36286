package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/config"
	"devhours-api/internal/usecase/commands"
)

// FarcasterClient talks to the Neynar API for FID-to-address resolution and
// follow-graph checks.
type FarcasterClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewFarcasterClient(cfg config.AuthConfig) *FarcasterClient {
	return &FarcasterClient{
		baseURL: cfg.NeynarBaseURL,
		apiKey:  cfg.NeynarAPIKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type neynarUser struct {
	Fid            int64  `json:"fid"`
	CustodyAddress string `json:"custody_address"`
	VerifiedAddrs  struct {
		EthAddresses []string `json:"eth_addresses"`
		Primary      struct {
			EthAddress string `json:"eth_address"`
		} `json:"primary"`
	} `json:"verified_addresses"`
	ViewerContext struct {
		Following  bool `json:"following"`
		FollowedBy bool `json:"followed_by"`
	} `json:"viewer_context"`
}

type neynarBulkResponse struct {
	Users []neynarUser `json:"users"`
}

func (c *FarcasterClient) fetchUser(ctx context.Context, fid int64, viewerFID int64) (*neynarUser, error) {
	q := url.Values{}
	q.Set("fids", strconv.FormatInt(fid, 10))
	if viewerFID > 0 {
		q.Set("viewer_fid", strconv.FormatInt(viewerFID, 10))
	}

	endpoint := fmt.Sprintf("%s/farcaster/user/bulk?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build neynar request", err, infra.KindTransport)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, infra.WrapRepoErr("neynar request failed", err, infra.KindTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, infra.WrapRepoErr("fid not found", nil, infra.KindNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, infra.WrapRepoErr("neynar returned non-200", nil, infra.KindTransport)
	}

	var body neynarBulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, infra.WrapRepoErr("failed to decode neynar response", err, infra.KindDecode)
	}
	if len(body.Users) == 0 {
		return nil, infra.WrapRepoErr("fid not found", nil, infra.KindNotFound)
	}

	return &body.Users[0], nil
}

// ResolveAddresses returns the wallet addresses for a FID. The primary
// verified address wins; custody address is the fallback when no
// verification exists.
func (c *FarcasterClient) ResolveAddresses(ctx context.Context, fid int64) (*commands.UserAddresses, error) {
	user, err := c.fetchUser(ctx, fid, 0)
	if err != nil {
		return nil, err
	}

	primary := user.VerifiedAddrs.Primary.EthAddress
	if primary == "" && len(user.VerifiedAddrs.EthAddresses) > 0 {
		primary = user.VerifiedAddrs.EthAddresses[0]
	}
	if primary == "" {
		primary = user.CustodyAddress
	}

	all := make([]string, 0, len(user.VerifiedAddrs.EthAddresses)+1)
	all = append(all, user.VerifiedAddrs.EthAddresses...)
	if user.CustodyAddress != "" {
		all = append(all, user.CustodyAddress)
	}

	return &commands.UserAddresses{Primary: primary, All: all}, nil
}

// CheckMutualFollow reports whether viewerFID and fid follow each other.
// Errors degrade to false so discount resolution never fails a request.
func (c *FarcasterClient) CheckMutualFollow(ctx context.Context, viewerFID, fid int64) bool {
	user, err := c.fetchUser(ctx, fid, viewerFID)
	if err != nil {
		return false
	}
	return user.ViewerContext.Following && user.ViewerContext.FollowedBy
}
