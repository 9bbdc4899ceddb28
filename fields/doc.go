// Package fields owns the request-details document: the typed field map a
// session grows during the RequestDetails stage, the completion engine over
// it, and RFC6902 application of extracted values.
package fields

import (
	"encoding/json"
	"fmt"

	"github.com/eino-contrib/jsonschema"
)

// Details is the request-details document. Every collectible field owned by
// the RequestDetails stage lives here; zero values mean "not yet provided".
type Details struct {
	Unit          string  `json:"unit,omitempty" jsonschema:"description=Unit of measurement,enum=KG,enum=TON"`
	Quantity      float64 `json:"quantity,omitempty" jsonschema:"description=Quantity required"`
	PricePerUnit  float64 `json:"price_per_unit,omitempty" jsonschema:"description=Offered price per unit"`
	ExpectedPrice float64 `json:"expected_price,omitempty" jsonschema:"description=Total price computed as quantity times price per unit"`
	Phone         string  `json:"phone,omitempty" jsonschema:"description=Contact phone number"`
	Incoterm      string  `json:"incoterm,omitempty" jsonschema:"description=International commercial terms,enum=Ex Factory,enum=Deliver to Buyer Factory"`
	ModeOfPayment string  `json:"mode_of_payment,omitempty" jsonschema:"description=Payment method,enum=LC,enum=TT,enum=Cash"`
	PackagingPref string  `json:"packaging_pref,omitempty" jsonschema:"description=Packaging preference,enum=Bulk Tanker,enum=PP Bag,enum=Jerry Can,enum=Drum"`
	DeliveryDate  string  `json:"delivery_date,omitempty" jsonschema:"description=Delivery date in YYYY-MM-DD form"`
}

// Schema reflects the document's JSON schema for extraction prompts.
func Schema() (string, error) {
	s := jsonschema.Reflect(&Details{})
	s.Title = "Request details"
	s.Description = "Commercial details collected for a product request."
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal details schema: %w", err)
	}
	return string(raw), nil
}
