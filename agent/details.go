package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/CodingWeeb-Gaurav/backend/catalog"
	"github.com/CodingWeeb-Gaurav/backend/fields"
	"github.com/CodingWeeb-Gaurav/backend/llm"
	"github.com/CodingWeeb-Gaurav/backend/session"
	"github.com/CodingWeeb-Gaurav/backend/types"
	"github.com/CodingWeeb-Gaurav/backend/validate"
)

// RequestDetails drives the second stage: each turn it bulk-extracts as many
// pending field values as the user's message carries, validates every value
// before storing it, recomputes the derived total, and hands over once the
// required set is satisfied.
type RequestDetails struct {
	chatModel model.ToolCallingChatModel
	extractor *llm.Extractor[*extractInput, fields.UpdateOps]
	docSchema string
	now       func() time.Time
}

func NewRequestDetails(chatModel model.ToolCallingChatModel) (*RequestDetails, error) {
	docSchema, err := fields.Schema()
	if err != nil {
		return nil, err
	}
	extractor, err := llm.NewExtractor[*extractInput, fields.UpdateOps](
		chatModel,
		func(ctx context.Context, in *extractInput) ([]*schema.Message, error) {
			return buildExtractMessages(in)
		},
		updateFieldsToolName,
		"Report request detail values explicitly provided by the user as RFC6902 patch operations.",
	)
	if err != nil {
		return nil, fmt.Errorf("build extraction chain: %w", err)
	}
	return &RequestDetails{
		chatModel: chatModel,
		extractor: extractor,
		docSchema: docSchema,
		now:       time.Now,
	}, nil
}

func (h *RequestDetails) Stage() types.Stage { return types.StageRequestDetails }

func (h *RequestDetails) Handle(ctx context.Context, input string, s *session.Session) (string, *session.Session) {
	work, err := s.Clone()
	if err != nil {
		slog.Error("request details clone failed", "session_id", s.ID, "error", err)
		return apologyReply, s
	}
	// a malformed stored session may lack the substructure; reinitialize
	// instead of failing the turn
	if work.Details == nil {
		work.ExpandForDetails()
	}

	required := catalog.RequiredFields(work.Request, types.StageRequestDetails)
	pendingBefore := fields.Pending(*work.Details, required)

	extracted, err := h.extractor.Invoke(ctx, &extractInput{
		Session: work,
		Input:   input,
		Pending: pendingBefore,
		Allowed: catalog.AllowedPointers(work.Request),
		Schema:  h.docSchema,
		Now:     h.now(),
	})
	if err != nil {
		slog.Error("field extraction failed", "session_id", s.ID, "error", err)
		return apologyReply, s
	}

	accepted, issues := h.screenOps(extracted.Ops, work)
	doc, err := fields.Apply(*work.Details, accepted)
	if err != nil {
		slog.Error("field update failed", "session_id", s.ID, "error", err)
		return apologyReply, s
	}
	work.Details = &doc

	if work.Details.Quantity > 0 && work.Details.PricePerUnit > 0 {
		if total, calcErr := validate.ExpectedPrice(work.Details.Quantity, work.Details.PricePerUnit); calcErr == nil {
			work.Details.ExpectedPrice = total
		}
	}

	handedOver := false
	if fields.Satisfied(*work.Details, required) {
		work.Stage = types.StageAddressPurpose
		handedOver = true
	}

	completed := fields.Completed(*work.Details, required)
	pending := fields.Pending(*work.Details, required)
	reply, err := h.reply(ctx, work, input, completed, pending, issues, handedOver)
	if err != nil {
		// the extraction already landed; fall back to a plain reply
		// instead of discarding validated fields
		slog.Error("details reply generation failed", "session_id", s.ID, "error", err)
		reply = localDetailsReply(pending, issues, handedOver)
	}
	return reply, work
}

// screenOps keeps only operations that target an allowed field and pass that
// field's validator, swapping in normalized values where the validator
// produced one.
func (h *RequestDetails) screenOps(ops []fields.Operation, work *session.Session) ([]fields.Operation, []types.ValidationIssue) {
	allowed := map[string]struct{}{}
	for _, p := range catalog.AllowedPointers(work.Request) {
		allowed[p] = struct{}{}
	}
	var accepted []fields.Operation
	var issues []types.ValidationIssue
	for _, op := range ops {
		name := op.FieldName()
		if _, okPath := allowed[op.Path]; !okPath {
			issues = append(issues, types.ValidationIssue{Field: name, Message: "not a collectible field for this request"})
			continue
		}
		f, _ := catalog.Lookup(name)
		res := h.validateValue(f, op.Value, work.Product)
		if !res.Valid {
			issues = append(issues, types.ValidationIssue{Field: name, Message: res.Reason})
			continue
		}
		if res.Normalized != nil {
			op.Value = res.Normalized
		}
		accepted = append(accepted, op)
	}
	return accepted, issues
}

func (h *RequestDetails) validateValue(f catalog.Field, value any, product *types.Product) validate.Result {
	switch f.Rule {
	case catalog.RuleQuantityBounds:
		min, max := validate.Bounds(product)
		return validate.Quantity(value, min, max)
	case catalog.RulePositiveNumber:
		return validate.PositiveNumber(value)
	case catalog.RuleFutureDate:
		raw, okStr := value.(string)
		if !okStr {
			return validate.Result{Reason: "invalid date format, use YYYY-MM-DD"}
		}
		return validate.Date(raw, h.now())
	case catalog.RuleSelection:
		raw, okStr := value.(string)
		if !okStr {
			return validate.Result{Reason: "invalid selection, allowed options: " + strings.Join(f.Options, ", ")}
		}
		return validate.Selection(raw, f.Options)
	case catalog.RulePhoneNumber:
		raw, okStr := value.(string)
		if !okStr {
			return validate.Result{Reason: "invalid phone number format"}
		}
		return validate.Phone(raw)
	case catalog.RuleCalculated:
		return validate.Result{Reason: "computed automatically, not collected"}
	}
	return validate.Result{Valid: true}
}

func (h *RequestDetails) reply(ctx context.Context, work *session.Session, input string, completed, pending []string, issues []types.ValidationIssue, handedOver bool) (string, error) {
	msgs := buildDetailsReplyMessages(work, input, completed, pending, issues, handedOver)
	response, err := h.chatModel.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("generate details reply: %w", err)
	}
	return response.Content, nil
}

// localDetailsReply is the model-free fallback when reply generation fails
// after fields were already stored.
func localDetailsReply(pending []string, issues []types.ValidationIssue, handedOver bool) string {
	var sb strings.Builder
	for _, issue := range issues {
		fmt.Fprintf(&sb, "%s: %s\n", issue.Field, issue.Message)
	}
	switch {
	case handedOver:
		sb.WriteString("All details are collected. Let's pick the delivery address and purpose next.")
	case len(pending) > 0:
		fmt.Fprintf(&sb, "Please provide: %s.", strings.Join(pending, ", "))
	default:
		sb.WriteString("Please continue with your request details.")
	}
	return sb.String()
}

func (in *extractInput) docJSON() (string, error) {
	if in.Session.Details == nil {
		return "{}", nil
	}
	out, err := sonic.MarshalString(in.Session.Details)
	if err != nil {
		return "", fmt.Errorf("encode details document: %w", err)
	}
	return out, nil
}
