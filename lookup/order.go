package lookup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/CodingWeeb-Gaurav/backend/types"
)

// ErrKind classifies order placement failures for logging and replies.
type ErrKind string

const (
	ErrAuth       ErrKind = "AUTH_ERROR"
	ErrAPI        ErrKind = "API_ERROR"
	ErrParsing    ErrKind = "PARSING_ERROR"
	ErrTimeout    ErrKind = "TIMEOUT_ERROR"
	ErrConnection ErrKind = "CONNECTION_ERROR"
	ErrUnknown    ErrKind = "UNKNOWN_ERROR"
)

// PlacementError carries the failure kind alongside the message.
type PlacementError struct {
	Kind    ErrKind
	Message string
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// OrderRequest is everything the placement endpoint needs, assembled by the
// finalize handler from the session.
type OrderRequest struct {
	UserAuth      string
	ProductID     string
	RequestType   types.RequestType
	Quantity      float64
	ExpectedPrice float64
	Unit          string
	Address       types.Address
	IndustryID    string
	Incoterm      string
	ModeOfPayment string
	PackagingPref string
	DeliveryDate  string
	Phone         string
}

// OrderResult reports a successful placement.
type OrderResult struct {
	OrderID string
	Message string
}

// OrderPlacer submits the finalized transaction upstream.
type OrderPlacer interface {
	Place(ctx context.Context, req OrderRequest) (*OrderResult, error)
}

// OrderClient talks to the order placement endpoint.
type OrderClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewOrderClient(baseURL string) *OrderClient {
	return &OrderClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *OrderClient) Place(ctx context.Context, order OrderRequest) (*OrderResult, error) {
	if order.UserAuth == "" {
		return nil, &PlacementError{Kind: ErrAuth, Message: "no authentication token available"}
	}

	body, contentType, err := encodeOrderForm(order)
	if err != nil {
		return nil, &PlacementError{Kind: ErrParsing, Message: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/order/placeOrder", body)
	if err != nil {
		return nil, &PlacementError{Kind: ErrUnknown, Message: err.Error()}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-auth-token-user", order.UserAuth)
	req.Header.Set("x-user-type", "Buyer")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, &PlacementError{Kind: ErrTimeout, Message: "request timeout"}
		}
		return nil, &PlacementError{Kind: ErrConnection, Message: "network connection failed"}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &PlacementError{Kind: ErrConnection, Message: err.Error()}
	}

	switch resp.StatusCode {
	// 206 is how the API reports partial processing that still placed the order
	case http.StatusOK, http.StatusCreated, http.StatusPartialContent:
		return decodeOrderResponse(raw)
	case http.StatusUnauthorized:
		return nil, &PlacementError{Kind: ErrAuth, Message: "authentication required"}
	default:
		return nil, &PlacementError{Kind: ErrAPI, Message: fmt.Sprintf("order endpoint returned status %d", resp.StatusCode)}
	}
}

type orderResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Results struct {
		Order struct {
			ID string `json:"_id"`
		} `json:"order"`
	} `json:"results"`
}

func decodeOrderResponse(raw []byte) (*OrderResult, error) {
	var decoded orderResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return nil, &PlacementError{Kind: ErrParsing, Message: "invalid response from server"}
	}
	if decoded.Error {
		return nil, &PlacementError{Kind: ErrAPI, Message: decoded.Message}
	}
	msg := decoded.Message
	if msg == "" {
		msg = "Order placed successfully!"
	}
	return &OrderResult{OrderID: decoded.Results.Order.ID, Message: msg}, nil
}

// encodeOrderForm builds the multipart form the endpoint expects: address as
// a JSON blob, numerics as strings, capitalized request type, and the
// uppercase TRUE sample marker.
func encodeOrderForm(order OrderRequest) (*bytes.Buffer, string, error) {
	addressJSON, err := sonic.MarshalString(map[string]string{
		"email":       order.Address.Email,
		"name":        order.Address.Name,
		"phoneNumber": order.Address.PhoneNumber,
		"countryCode": order.Address.CountryCode,
		"addressLine": order.Address.AddressLine,
		"latitude":    order.Address.Latitude,
		"longitude":   order.Address.Longitude,
	})
	if err != nil {
		return nil, "", fmt.Errorf("encode address: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"address", addressJSON},
		{"product", order.ProductID},
		{"quantity", strconv.FormatFloat(order.Quantity, 'f', -1, 64)},
		{"expectedAmount", strconv.FormatFloat(order.ExpectedPrice, 'f', -1, 64)},
		{"quantityType", order.Unit},
		{"type", capitalize(string(order.RequestType))},
	}
	if order.RequestType == types.RequestSample {
		fields = append(fields, struct{ name, value string }{"isSampleOrder", "TRUE"})
	}
	optional := []struct{ name, value string }{
		{"industry", order.IndustryID},
		{"incoterm", order.Incoterm},
		{"modeOfPayment", order.ModeOfPayment},
		{"packingType", order.PackagingPref},
		{"expectedPurchaseDate", order.DeliveryDate},
		{"shippingContactNumber", order.Phone},
	}
	for _, f := range optional {
		if f.value != "" {
			fields = append(fields, f)
		}
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
