// Package catalog holds the static table of every collectible field: its
// value kind, allowed options, validation rule, the request types it is
// required for, and the stage that owns it. Pure data, loaded at process
// start, never mutated.
package catalog

import (
	"github.com/CodingWeeb-Gaurav/backend/types"
)

type Kind string

const (
	KindSelect     Kind = "select"
	KindNumber     Kind = "number"
	KindPhone      Kind = "phone"
	KindDate       Kind = "date"
	KindCalculated Kind = "calculated"
)

// Rule names the validator applied to a field's raw value.
type Rule string

const (
	RuleNone           Rule = ""
	RuleQuantityBounds Rule = "quantity_bounds"
	RulePositiveNumber Rule = "positive_number"
	RuleFutureDate     Rule = "future_date"
	RuleSelection      Rule = "selection"
	RulePhoneNumber    Rule = "phone_number"
	RuleCalculated     Rule = "calculated"
)

type Field struct {
	Name        string
	Kind        Kind
	Options     []string // for KindSelect with a static option set
	Rule        Rule
	RequiredFor []types.RequestType
	Owner       types.Stage
	Description string
}

// Pointer is the field's JSON pointer within its owning stage's document.
func (f Field) Pointer() string { return "/" + f.Name }

func (f Field) requiredFor(rt types.RequestType) bool {
	for _, r := range f.RequiredFor {
		if r == rt {
			return true
		}
	}
	return false
}

var allTypes = []types.RequestType{types.RequestOrder, types.RequestSample, types.RequestQuotation, types.RequestPPR}

// table is ordered; RequiredFields and FieldsOwnedBy preserve this order.
var table = []Field{
	{
		Name: "unit", Kind: KindSelect,
		Options:     []string{"KG", "TON"},
		Rule:        RuleSelection,
		RequiredFor: allTypes,
		Owner:       types.StageRequestDetails,
		Description: "Unit of measurement for the product",
	},
	{
		Name: "quantity", Kind: KindNumber,
		Rule:        RuleQuantityBounds,
		RequiredFor: allTypes,
		Owner:       types.StageRequestDetails,
		Description: "Quantity required, at least the product minimum and at most the available stock",
	},
	{
		Name: "price_per_unit", Kind: KindNumber,
		Rule:        RulePositiveNumber,
		RequiredFor: allTypes,
		Owner:       types.StageRequestDetails,
		Description: "Offered price per unit, a positive number",
	},
	{
		Name: "expected_price", Kind: KindCalculated,
		Rule:        RuleCalculated,
		RequiredFor: allTypes,
		Owner:       types.StageRequestDetails,
		Description: "Total price, computed as quantity times price per unit",
	},
	{
		Name: "phone", Kind: KindPhone,
		Rule:        RulePhoneNumber,
		RequiredFor: []types.RequestType{types.RequestOrder, types.RequestSample, types.RequestQuotation},
		Owner:       types.StageRequestDetails,
		Description: "Contact phone number",
	},
	{
		Name: "incoterm", Kind: KindSelect,
		Options:     []string{"Ex Factory", "Deliver to Buyer Factory"},
		Rule:        RuleSelection,
		RequiredFor: []types.RequestType{types.RequestOrder, types.RequestSample, types.RequestQuotation},
		Owner:       types.StageRequestDetails,
		Description: "International commercial terms",
	},
	{
		Name: "mode_of_payment", Kind: KindSelect,
		Options:     []string{"LC", "TT", "Cash"},
		Rule:        RuleSelection,
		RequiredFor: []types.RequestType{types.RequestOrder, types.RequestSample, types.RequestQuotation},
		Owner:       types.StageRequestDetails,
		Description: "Payment method",
	},
	{
		Name: "packaging_pref", Kind: KindSelect,
		Options:     []string{"Bulk Tanker", "PP Bag", "Jerry Can", "Drum"},
		Rule:        RuleSelection,
		RequiredFor: []types.RequestType{types.RequestOrder, types.RequestSample, types.RequestQuotation},
		Owner:       types.StageRequestDetails,
		Description: "Packaging preference",
	},
	{
		Name: "delivery_date", Kind: KindDate,
		Rule:        RuleFutureDate,
		RequiredFor: allTypes,
		Owner:       types.StageRequestDetails,
		Description: "Delivery date in YYYY-MM-DD form, strictly after today",
	},
	{
		Name: "address", Kind: KindSelect,
		Rule:        RuleSelection, // options come from the user's saved addresses
		RequiredFor: allTypes,
		Owner:       types.StageAddressPurpose,
		Description: "Delivery address chosen from saved addresses",
	},
	{
		Name: "market", Kind: KindSelect,
		Rule:        RuleSelection, // options come from the site's industry list
		RequiredFor: []types.RequestType{types.RequestOrder, types.RequestPPR},
		Owner:       types.StageAddressPurpose,
		Description: "Target market or industry of use",
	},
}

// Lookup returns the catalog entry for a field name.
func Lookup(name string) (Field, bool) {
	for _, f := range table {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredFields returns, in catalog order, the names of fields required for
// the request type and owned by the asking stage. Deterministic, no errors.
func RequiredFields(rt types.RequestType, stage types.Stage) []string {
	var out []string
	for _, f := range table {
		if f.Owner == stage && f.requiredFor(rt) {
			out = append(out, f.Name)
		}
	}
	return out
}

// FieldsOwnedBy returns the names of every field a stage owns.
func FieldsOwnedBy(stage types.Stage) []string {
	var out []string
	for _, f := range table {
		if f.Owner == stage {
			out = append(out, f.Name)
		}
	}
	return out
}

// Options returns the static option set of a select field, nil otherwise.
func Options(name string) []string {
	f, ok := Lookup(name)
	if !ok {
		return nil
	}
	return f.Options
}

// AllowedPointers lists the JSON pointers extraction may write for a request
// type within the request-details document. The calculated total is excluded;
// it is recomputed rather than extracted.
func AllowedPointers(rt types.RequestType) []string {
	var out []string
	for _, name := range RequiredFields(rt, types.StageRequestDetails) {
		f, _ := Lookup(name)
		if f.Kind == KindCalculated {
			continue
		}
		out = append(out, f.Pointer())
	}
	return out
}

// Infos renders catalog entries as prompt field info for the given names.
func Infos(names []string) []types.FieldInfo {
	out := make([]types.FieldInfo, 0, len(names))
	for _, name := range names {
		f, ok := Lookup(name)
		if !ok {
			continue
		}
		out = append(out, types.FieldInfo{
			JSONPointer: f.Pointer(),
			DisplayName: f.Name,
			Description: f.Description,
			Required:    true,
		})
	}
	return out
}
