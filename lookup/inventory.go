// Package lookup holds the external collaborators the stage handlers consult:
// product search, the user's saved addresses and industries, and order
// placement. All are treated as unreliable.
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

// Inventory searches the product catalog by free text. It may error and may
// return zero results; both are normal.
type Inventory interface {
	Search(ctx context.Context, query string) ([]types.Product, error)
}

// AllowedUnits filters out products whose unit the flow cannot transact in.
func AllowedUnits(products []types.Product) []types.Product {
	var out []types.Product
	for _, p := range products {
		switch p.Unit {
		case "KG", "TON":
			out = append(out, p)
		}
	}
	return out
}

// InventoryClient talks to the inventory query endpoint.
type InventoryClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewInventoryClient(baseURL string) *InventoryClient {
	return &InventoryClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type inventoryResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Results struct {
		Products []types.Product `json:"products"`
	} `json:"results"`
}

func (c *InventoryClient) Search(ctx context.Context, query string) ([]types.Product, error) {
	payload, err := sonic.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("encode inventory query: %w", err)
	}
	// the upstream API takes queries via PATCH
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.BaseURL+"/inventory/getQueryResult", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build inventory request: %w", err)
	}
	setBuyerHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory query: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read inventory response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("inventory query returned status %d", resp.StatusCode)
	}
	var decoded inventoryResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode inventory response: %w", err)
	}
	if decoded.Error {
		return nil, fmt.Errorf("inventory query rejected: %s", decoded.Message)
	}
	return decoded.Results.Products, nil
}

func setBuyerHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-user-type", "Buyer")
	req.Header.Set("x-auth-language", "English")
}
