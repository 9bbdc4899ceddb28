package lookup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/CodingWeeb-Gaurav/backend/types"
)

// Account exposes the authenticated user's saved addresses and the site's
// industry list, both consumed by the final stage.
type Account interface {
	Addresses(ctx context.Context, userAuth string) ([]types.Address, error)
	Industries(ctx context.Context) ([]types.Industry, error)
}

// AccountClient talks to the user/category endpoints.
type AccountClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAccountClient(baseURL string) *AccountClient {
	return &AccountClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type addressesResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Results struct {
		Address []types.Address `json:"address"`
	} `json:"results"`
}

func (c *AccountClient) Addresses(ctx context.Context, userAuth string) ([]types.Address, error) {
	body, err := c.patch(ctx, "/user/getAddresses", userAuth)
	if err != nil {
		return nil, err
	}
	var decoded addressesResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode addresses response: %w", err)
	}
	if decoded.Error {
		return nil, fmt.Errorf("address lookup rejected: %s", decoded.Message)
	}
	return decoded.Results.Address, nil
}

type industriesResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Results struct {
		Inventories []struct {
			ID        string `json:"_id"`
			NameEn    string `json:"name_en"`
			Status    bool   `json:"status"`
			IsDeleted bool   `json:"isDeleted"`
		} `json:"inventories"`
	} `json:"results"`
}

func (c *AccountClient) Industries(ctx context.Context) ([]types.Industry, error) {
	body, err := c.patch(ctx, "/category/getAllIndustries", "")
	if err != nil {
		return nil, err
	}
	var decoded industriesResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode industries response: %w", err)
	}
	if decoded.Error {
		return nil, fmt.Errorf("industry lookup rejected: %s", decoded.Message)
	}
	var out []types.Industry
	for _, ind := range decoded.Results.Inventories {
		if ind.Status && !ind.IsDeleted {
			out = append(out, types.Industry{ID: ind.ID, NameEn: ind.NameEn})
		}
	}
	return out, nil
}

func (c *AccountClient) patch(ctx context.Context, path, userAuth string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.BaseURL+path, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	setBuyerHeaders(req)
	if userAuth != "" {
		req.Header.Set("x-auth-token-user", userAuth)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	return body, nil
}
