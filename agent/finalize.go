package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"

	"github.com/CodingWeeb-Gaurav/backend/llm"
	"github.com/CodingWeeb-Gaurav/backend/lookup"
	"github.com/CodingWeeb-Gaurav/backend/session"
	"github.com/CodingWeeb-Gaurav/backend/types"
)

// Finalize drives the terminal stage: the user's saved addresses and the
// industry list are fetched once on stage entry, the user picks one of each,
// reviews a summary, and explicitly confirms before the request is placed
// upstream. The session never leaves this stage.
type Finalize struct {
	chatModel model.ToolCallingChatModel
	account   lookup.Account
	orders    lookup.OrderPlacer
}

func NewFinalize(chatModel model.ToolCallingChatModel, account lookup.Account, orders lookup.OrderPlacer) *Finalize {
	return &Finalize{chatModel: chatModel, account: account, orders: orders}
}

func (h *Finalize) Stage() types.Stage { return types.StageAddressPurpose }

func (h *Finalize) Handle(ctx context.Context, input string, s *session.Session) (string, *session.Session) {
	work, err := s.Clone()
	if err != nil {
		slog.Error("finalize clone failed", "session_id", s.ID, "error", err)
		return apologyReply, s
	}
	// a malformed stored session may lack the substructures; reinitialize
	// instead of failing the turn
	if work.Details == nil {
		work.ExpandForDetails()
	}
	if work.Finalize == nil {
		work.ExpandForFinalize()
	}
	fz := work.Finalize

	firstVisit := !fz.Fetched
	if firstVisit {
		h.fetch(ctx, work)
		if len(fz.Addresses) == 0 && len(fz.Industries) == 0 {
			return "I couldn't load your saved addresses or the industry list right now. Please try again in a moment.", work
		}
	}

	actions, err := h.actions(work)
	if err != nil {
		slog.Error("finalize actions failed", "session_id", s.ID, "error", err)
		return apologyReply, s
	}
	reply, err := llm.Turn(ctx, h.chatModel, buildFinalizeMessages(work, input, firstVisit), actions)
	if err != nil {
		slog.Error("finalize turn failed", "session_id", s.ID, "error", err)
		return apologyReply, s
	}
	return reply, work
}

// fetch loads both lookup lists exactly once per session. Failures are
// tolerated so one broken endpoint does not block the other list.
func (h *Finalize) fetch(ctx context.Context, work *session.Session) {
	fz := work.Finalize
	addresses, err := h.account.Addresses(ctx, work.UserAuth)
	if err != nil {
		slog.Error("address lookup failed", "session_id", work.ID, "error", err)
	} else {
		fz.Addresses = addresses
	}
	industries, err := h.account.Industries(ctx)
	if err != nil {
		slog.Error("industry lookup failed", "session_id", work.ID, "error", err)
	} else {
		fz.Industries = industries
	}
	fz.Fetched = true
}

type selectIndustryArgs struct {
	Industry string `json:"industry" jsonschema:"required,description=The industry chosen by the user: its number in the list, its id, or its name"`
}

type selectAddressArgs struct {
	Address string `json:"address" jsonschema:"required,description=The address chosen by the user: its number in the list, its id, or a distinctive part of the address line"`
}

type confirmOrderArgs struct {
	Confirmed bool `json:"confirmed" jsonschema:"required,description=True only when the user explicitly confirmed placing the request after seeing the summary"`
}

type noArgs struct{}

func (h *Finalize) actions(work *session.Session) ([]*llm.Action, error) {
	fz := work.Finalize

	listIndustries, err := llm.NewAction("list_industries",
		"List the selectable industries for the purpose of this request.",
		func(ctx context.Context, _ *noArgs) (string, error) {
			return encodeIndustryList(fz.Industries)
		})
	if err != nil {
		return nil, err
	}

	listAddresses, err := llm.NewAction("list_addresses",
		"List the user's saved delivery addresses.",
		func(ctx context.Context, _ *noArgs) (string, error) {
			return encodeAddressList(fz.Addresses)
		})
	if err != nil {
		return nil, err
	}

	selectIndustry, err := llm.NewAction("select_industry",
		"Record the industry the user picked from the list.",
		func(ctx context.Context, args *selectIndustryArgs) (string, error) {
			ind, found := resolveIndustry(fz.Industries, args.Industry)
			if !found {
				return "", fmt.Errorf("industry %q is not in the list", args.Industry)
			}
			fz.IndustryID = ind.ID
			fz.IndustryName = ind.NameEn
			return sonic.MarshalString(map[string]string{
				"status":   "success",
				"industry": ind.NameEn,
			})
		})
	if err != nil {
		return nil, err
	}

	selectAddress, err := llm.NewAction("select_address",
		"Record the delivery address the user picked from the list.",
		func(ctx context.Context, args *selectAddressArgs) (string, error) {
			addr, found := resolveAddress(fz.Addresses, args.Address)
			if !found {
				return "", fmt.Errorf("address %q is not among the saved addresses", args.Address)
			}
			picked := addr
			fz.Address = &picked
			return sonic.MarshalString(map[string]string{
				"status":  "success",
				"address": addr.AddressLine,
			})
		})
	if err != nil {
		return nil, err
	}

	orderSummary, err := llm.NewAction("order_summary",
		"Show the full request summary for the user to review. Call this once both industry and address are selected, before asking for confirmation.",
		func(ctx context.Context, _ *noArgs) (string, error) {
			if fz.Address == nil || fz.IndustryID == "" || work.Details == nil {
				return sonic.MarshalString(map[string]string{
					"status":  "not_ready",
					"message": "both an address and an industry must be selected first",
				})
			}
			return encodeSummary(work)
		})
	if err != nil {
		return nil, err
	}

	finalizeOrder, err := llm.NewAction("finalize_order",
		"Place the request upstream. Call only after the user explicitly confirmed the summary.",
		func(ctx context.Context, args *confirmOrderArgs) (string, error) {
			return h.place(ctx, work, args.Confirmed)
		})
	if err != nil {
		return nil, err
	}

	return []*llm.Action{listIndustries, listAddresses, selectIndustry, selectAddress, orderSummary, finalizeOrder}, nil
}

func (h *Finalize) place(ctx context.Context, work *session.Session, confirmed bool) (string, error) {
	fz := work.Finalize
	if fz.Completed {
		return sonic.MarshalString(map[string]string{
			"status":  "already_placed",
			"message": "this request has already been placed",
		})
	}
	if !confirmed {
		return "", errors.New("the user has not confirmed placement yet")
	}
	if fz.Address == nil || fz.IndustryID == "" {
		return "", errors.New("both an address and an industry must be selected before placing")
	}
	if work.Details == nil || work.Product == nil {
		return "", errors.New("the session is missing request details")
	}

	d := work.Details
	result, err := h.orders.Place(ctx, lookup.OrderRequest{
		UserAuth:      work.UserAuth,
		ProductID:     work.ProductID,
		RequestType:   work.Request,
		Quantity:      d.Quantity,
		ExpectedPrice: d.ExpectedPrice,
		Unit:          d.Unit,
		Address:       *fz.Address,
		IndustryID:    fz.IndustryID,
		Incoterm:      d.Incoterm,
		ModeOfPayment: d.ModeOfPayment,
		PackagingPref: d.PackagingPref,
		DeliveryDate:  d.DeliveryDate,
		Phone:         d.Phone,
	})
	if err != nil {
		var perr *lookup.PlacementError
		if errors.As(err, &perr) {
			slog.Error("order placement failed", "session_id", work.ID, "kind", perr.Kind, "error", perr.Message)
			return "", fmt.Errorf("placement failed (%s): %s", perr.Kind, perr.Message)
		}
		slog.Error("order placement failed", "session_id", work.ID, "error", err)
		return "", fmt.Errorf("placement failed: %w", err)
	}
	fz.Completed = true
	slog.Info("order placed", "session_id", work.ID, "order_id", result.OrderID, "request", work.Request)
	return sonic.MarshalString(map[string]string{
		"status":   "success",
		"order_id": result.OrderID,
		"message":  result.Message,
	})
}

type listedIndustry struct {
	Number int    `json:"number"`
	ID     string `json:"id"`
	NameEn string `json:"name_en"`
}

func encodeIndustryList(industries []types.Industry) (string, error) {
	listed := make([]listedIndustry, 0, len(industries))
	for i, ind := range industries {
		listed = append(listed, listedIndustry{Number: i + 1, ID: ind.ID, NameEn: ind.NameEn})
	}
	return sonic.MarshalString(map[string]any{
		"count":      len(listed),
		"industries": listed,
	})
}

type listedAddress struct {
	Number      int    `json:"number"`
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
}

func encodeAddressList(addresses []types.Address) (string, error) {
	listed := make([]listedAddress, 0, len(addresses))
	for i, a := range addresses {
		listed = append(listed, listedAddress{
			Number: i + 1, ID: a.ID, Name: a.Name,
			AddressLine: a.AddressLine, City: a.City, Country: a.Country,
		})
	}
	return sonic.MarshalString(map[string]any{
		"count":     len(listed),
		"addresses": listed,
	})
}

func encodeSummary(work *session.Session) (string, error) {
	d := work.Details
	fz := work.Finalize
	return sonic.MarshalString(map[string]any{
		"request_type":    work.Request,
		"product":         work.ProductName,
		"unit":            d.Unit,
		"quantity":        d.Quantity,
		"price_per_unit":  d.PricePerUnit,
		"expected_price":  d.ExpectedPrice,
		"phone":           d.Phone,
		"incoterm":        d.Incoterm,
		"mode_of_payment": d.ModeOfPayment,
		"packaging_pref":  d.PackagingPref,
		"delivery_date":   d.DeliveryDate,
		"industry":        fz.IndustryName,
		"address":         fz.Address.AddressLine,
	})
}

// resolveIndustry matches by list number, id, or case-insensitive name.
func resolveIndustry(industries []types.Industry, ref string) (types.Industry, bool) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(industries) {
		return industries[n-1], true
	}
	for _, ind := range industries {
		if ind.ID == ref || strings.EqualFold(ind.NameEn, ref) {
			return ind, true
		}
	}
	return types.Industry{}, false
}

// resolveAddress matches by list number, id, or case-insensitive substring of
// the address line.
func resolveAddress(addresses []types.Address, ref string) (types.Address, bool) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(addresses) {
		return addresses[n-1], true
	}
	for _, a := range addresses {
		if a.ID == ref {
			return a, true
		}
	}
	lowered := strings.ToLower(ref)
	for _, a := range addresses {
		if strings.Contains(strings.ToLower(a.AddressLine), lowered) {
			return a, true
		}
	}
	return types.Address{}, false
}
