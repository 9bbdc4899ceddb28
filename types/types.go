package types

import "strings"

// Stage names the phase of a conversation. Exactly one stage is active per
// session at any time; the router dispatches on it.
type Stage string

const (
	StageProductSelection Stage = "product_selection"
	StageRequestDetails   Stage = "request_details"
	StageAddressPurpose   Stage = "address_purpose"
)

func (s Stage) Valid() bool {
	switch s {
	case StageProductSelection, StageRequestDetails, StageAddressPurpose:
		return true
	}
	return false
}

// RequestType is set once during product selection and never changes
// afterwards for the lifetime of the session.
type RequestType string

const (
	RequestUnset     RequestType = ""
	RequestSample    RequestType = "sample"
	RequestQuotation RequestType = "quotation"
	RequestPPR       RequestType = "ppr"
	RequestOrder     RequestType = "order"
)

// ParseRequestType normalizes free-form input to a known request type.
func ParseRequestType(s string) (RequestType, bool) {
	switch RequestType(strings.ToLower(strings.TrimSpace(s))) {
	case RequestSample:
		return RequestSample, true
	case RequestQuotation, "quote":
		return RequestQuotation, true
	case RequestPPR:
		return RequestPPR, true
	case RequestOrder:
		return RequestOrder, true
	}
	return RequestUnset, false
}

// Product is an inventory record as returned by the product lookup service.
// A copy is snapshotted into the session at confirmation time so that later
// validation uses consistent bounds even if upstream stock changes.
type Product struct {
	ID              string  `json:"_id"`
	NameEn          string  `json:"name_en"`
	BrandEn         string  `json:"brand_en,omitempty"`
	Unit            string  `json:"unit,omitempty"`
	MinQuantity     float64 `json:"minQuantity,omitempty"`
	Quantity        float64 `json:"quantity,omitempty"` // available stock
	PricePerUnit    float64 `json:"pricePerUnit,omitempty"`
	SpecificationEn string  `json:"specification_en,omitempty"`
	DescriptionEn   string  `json:"description_en,omitempty"`
}

// Industry is a purpose-of-use category from the account service.
type Industry struct {
	ID     string `json:"_id"`
	NameEn string `json:"name_en"`
}

// Address is a saved delivery address tied to the authenticated user. Records
// are kept whole so contact details are never invented downstream.
type Address struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	Latitude    string `json:"latitude,omitempty"`
	Longitude   string `json:"longitude,omitempty"`
}

// FieldInfo describes one collectible field for prompt rendering.
type FieldInfo struct {
	JSONPointer string `json:"json_pointer"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// ValidationIssue reports a rejected field value and the reason.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
