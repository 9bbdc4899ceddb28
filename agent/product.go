package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"

	"github.com/CodingWeeb-Gaurav/backend/llm"
	"github.com/CodingWeeb-Gaurav/backend/lookup"
	"github.com/CodingWeeb-Gaurav/backend/session"
	"github.com/CodingWeeb-Gaurav/backend/types"
)

// ProductSelection drives the first stage: it searches the inventory on the
// user's behalf, caches results inside the session, and hands over once the
// user has confirmed exactly one product and a request type.
type ProductSelection struct {
	chatModel model.ToolCallingChatModel
	inventory lookup.Inventory
}

func NewProductSelection(chatModel model.ToolCallingChatModel, inventory lookup.Inventory) *ProductSelection {
	return &ProductSelection{chatModel: chatModel, inventory: inventory}
}

func (h *ProductSelection) Stage() types.Stage { return types.StageProductSelection }

func (h *ProductSelection) Handle(ctx context.Context, input string, s *session.Session) (string, *session.Session) {
	work, err := s.Clone()
	if err != nil {
		slog.Error("product selection clone failed", "session_id", s.ID, "error", err)
		return apologyReply, s
	}
	actions, err := h.actions(work)
	if err != nil {
		slog.Error("product selection actions failed", "session_id", s.ID, "error", err)
		return apologyReply, s
	}
	reply, err := llm.Turn(ctx, h.chatModel, buildProductMessages(work, input), actions)
	if err != nil {
		slog.Error("product selection turn failed", "session_id", s.ID, "error", err)
		return apologyReply, s
	}
	return reply, work
}

type searchArgs struct {
	Query string `json:"query" jsonschema:"required,description=Product name or search terms extracted from the user's message"`
}

type confirmArgs struct {
	ProductID   string `json:"product_id" jsonschema:"required,description=Exact id of the confirmed product from the search results"`
	RequestType string `json:"request_type" jsonschema:"required,enum=sample,enum=quotation,enum=ppr,enum=order,description=The confirmed request type"`
}

type listedProduct struct {
	Number        int     `json:"number"`
	ID            string  `json:"id"`
	NameEn        string  `json:"name_en"`
	BrandEn       string  `json:"brand_en,omitempty"`
	Unit          string  `json:"unit"`
	MinQuantity   float64 `json:"minQuantity,omitempty"`
	AvailableQty  float64 `json:"availableQuantity,omitempty"`
	Specification string  `json:"specification_en,omitempty"`
}

func (h *ProductSelection) actions(work *session.Session) ([]*llm.Action, error) {
	search, err := llm.NewAction("search_inventory",
		"Search the inventory for products. Call this whenever the user mentions a product, chemical, or material.",
		func(ctx context.Context, args *searchArgs) (string, error) {
			products, err := h.search(ctx, work, args.Query)
			if err != nil {
				return "", err
			}
			listed := make([]listedProduct, 0, len(products))
			for i, p := range products {
				listed = append(listed, listedProduct{
					Number: i + 1, ID: p.ID, NameEn: p.NameEn, BrandEn: p.BrandEn,
					Unit: p.Unit, MinQuantity: p.MinQuantity, AvailableQty: p.Quantity,
					Specification: p.SpecificationEn,
				})
			}
			return sonic.MarshalString(map[string]any{
				"count":    len(listed),
				"products": listed,
			})
		})
	if err != nil {
		return nil, err
	}

	confirm, err := llm.NewAction("confirm_selection",
		"Record the confirmed product and request type and hand over to detail collection. Call only after the user explicitly confirmed both.",
		func(ctx context.Context, args *confirmArgs) (string, error) {
			rt, okType := types.ParseRequestType(args.RequestType)
			if !okType {
				return "", fmt.Errorf("invalid request type %q, must be sample, quotation, ppr, or order", args.RequestType)
			}
			product, found := findCachedProduct(work, args.ProductID)
			if !found {
				return "", fmt.Errorf("product %s is not among the search results", args.ProductID)
			}
			if work.Request != types.RequestUnset && work.Request != rt {
				return "", fmt.Errorf("request type already fixed to %s", work.Request)
			}
			snapshot := product
			work.Product = &snapshot
			work.ProductID = product.ID
			work.ProductName = product.NameEn
			work.Request = rt
			work.Stage = types.StageRequestDetails
			return sonic.MarshalString(map[string]string{
				"status":  "success",
				"message": "selection recorded, handing over to detail collection",
			})
		})
	if err != nil {
		return nil, err
	}
	return []*llm.Action{search, confirm}, nil
}

// search serves unit-filtered results, reusing the session cache except when
// the cached entry had no usable products, in which case the lookup is
// retried.
func (h *ProductSelection) search(ctx context.Context, work *session.Session, query string) ([]types.Product, error) {
	if cached, hit := work.CachedSearch(query); hit {
		if usable := lookup.AllowedUnits(cached); len(usable) > 0 {
			return usable, nil
		}
	}
	products, err := h.inventory.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("inventory search: %w", err)
	}
	work.CacheSearch(query, products)
	return lookup.AllowedUnits(products), nil
}

// findCachedProduct only ever resolves ids that a previous search returned,
// so a confirmation can never invent a catalog entry.
func findCachedProduct(work *session.Session, id string) (types.Product, bool) {
	for _, products := range work.Searches {
		for _, p := range lookup.AllowedUnits(products) {
			if p.ID == id {
				return p, true
			}
		}
	}
	return types.Product{}, false
}
