package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"github.com/CodingWeeb-Gaurav/backend/catalog"
	"github.com/CodingWeeb-Gaurav/backend/session"
	"github.com/CodingWeeb-Gaurav/backend/types"
	"github.com/CodingWeeb-Gaurav/backend/validate"
)

// historyReplay is how many past exchanges are replayed to the model.
const historyReplay = 6

func historyMessages(s *session.Session) []*schema.Message {
	var out []*schema.Message
	for _, ex := range s.RecentExchanges(historyReplay) {
		out = append(out, schema.UserMessage(ex.User), schema.AssistantMessage(ex.Agent, nil))
	}
	return out
}

func renderFieldTable(infos []types.FieldInfo) string {
	if len(infos) == 0 {
		return ""
	}
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Pointer", "Options", "Description")
	for _, info := range infos {
		opts := strings.Join(catalog.Options(info.DisplayName), ", ")
		_ = table.Append(info.DisplayName, info.JSONPointer, opts, info.Description)
	}
	_ = table.Render()
	return buf.String()
}

func renderIssues(issues []types.ValidationIssue) string {
	if len(issues) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Rejected values:\n")
	for _, issue := range issues {
		fmt.Fprintf(&buf, "- %s: %s\n", issue.Field, issue.Message)
	}
	return strings.TrimRight(buf.String(), "\n")
}

const productSystemPrompt = `You are a product selection assistant for chemical product requests, the first of three specialists.
Your job ends when the user has explicitly confirmed exactly one product and one request type (sample, quotation, ppr, or order).

Rules:
- When the user mentions any product, chemical, or material, call search_inventory immediately.
- Never invent or present products that the search did not return. If the search finds nothing, say so and suggest rephrasing.
- Present matches as a numbered list with name and brand, then help the user pick one.
- Before handing over, show the chosen product's details and get explicit confirmation of both the product and the request type.
- Only after that confirmation, call confirm_selection with the product id and the request type. Never confirm partial information.`

func buildProductMessages(s *session.Session, input string) []*schema.Message {
	msgs := []*schema.Message{schema.SystemMessage(productSystemPrompt)}
	msgs = append(msgs, historyMessages(s)...)
	return append(msgs, schema.UserMessage(input))
}

const extractSystemPrompt = `You extract commercial request details from a buyer's message and report them by calling %s with RFC6902 patch operations.
Rules: only extract information the user explicitly provided; use replace to update a field and add for a new one; only write the listed allowed pointers; return empty operations when the message contains nothing to extract. Dates must be rewritten to YYYY-MM-DD.`

const updateFieldsToolName = "update_request_fields"

func buildExtractMessages(in *extractInput) ([]*schema.Message, error) {
	doc, err := in.docJSON()
	if err != nil {
		return nil, err
	}
	pendingTable := renderFieldTable(catalog.Infos(in.Pending))

	sections := []string{
		fmt.Sprintf("# Current date:\n%s", in.Now.UTC().Format("2006-01-02")),
		fmt.Sprintf("# Request type:\n%s", in.Session.Request),
		fmt.Sprintf("# Details document JSON:\n```json\n%s\n```", doc),
		fmt.Sprintf("# Document schema:\n```json\n%s\n```", in.Schema),
		fmt.Sprintf("# Allowed pointers:\n%s", strings.Join(in.Allowed, ", ")),
	}
	if pendingTable != "" {
		sections = append(sections, "# Pending required fields:\n"+pendingTable)
	}
	if in.Session.Product != nil {
		min, max := validate.Bounds(in.Session.Product)
		sections = append(sections, fmt.Sprintf(
			"# Product limits:\nproduct: %s\nminimum quantity: %v\navailable stock: %v",
			in.Session.ProductName, min, max))
	}
	sections = append(sections, fmt.Sprintf("# User message:\n%s", in.Input))

	return []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(extractSystemPrompt, updateFieldsToolName)),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}, nil
}

const detailsReplySystemPrompt = `You are a request details specialist for chemical product requests, the second of three specialists.
Respond conversationally in English. Acknowledge values the user just provided, point out any rejected values with their reasons and the allowed options, and ask for the remaining fields. Do not ask for more than a couple of fields at once. If everything is collected, tell the user you are handing over to delivery and purpose selection.`

func buildDetailsReplyMessages(s *session.Session, input string, completed, pending []string, issues []types.ValidationIssue, handedOver bool) []*schema.Message {
	sections := []string{
		fmt.Sprintf("# Request type:\n%s", s.Request),
		fmt.Sprintf("# Product:\n%s", s.ProductName),
		fmt.Sprintf("# Progress:\ncompleted %d of %d required fields", len(completed), len(completed)+len(pending)),
	}
	if t := renderFieldTable(catalog.Infos(pending)); t != "" {
		sections = append(sections, "# Pending required fields:\n"+t)
	}
	if t := renderIssues(issues); t != "" {
		sections = append(sections, t)
	}
	if handedOver {
		sections = append(sections, "# Status:\nall required fields are collected; hand over now")
	}
	sections = append(sections, fmt.Sprintf("# User message:\n%s", input))

	msgs := []*schema.Message{schema.SystemMessage(detailsReplySystemPrompt)}
	msgs = append(msgs, historyMessages(s)...)
	return append(msgs, schema.UserMessage(strings.Join(sections, "\n\n")))
}

const finalizeSystemPrompt = `You are the finalization specialist for chemical product requests, the last of three specialists.
Only ever present industries and addresses returned by the actions; never invent entries, names, emails or phone numbers.

Workflow: show the real industries (list_industries), store the user's pick with select_industry, show the real addresses (list_addresses), store the pick with select_address, present the order summary (order_summary), and only when the user explicitly confirms call finalize_order.`

func buildFinalizeMessages(s *session.Session, input string, firstVisit bool) []*schema.Message {
	msgs := []*schema.Message{schema.SystemMessage(finalizeSystemPrompt)}
	msgs = append(msgs, historyMessages(s)...)
	if firstVisit {
		msgs = append(msgs, schema.SystemMessage(
			"This is the first turn of the finalization stage: list the available industries immediately and ask the user to select one."))
	}
	return append(msgs, schema.UserMessage(input))
}

type extractInput struct {
	Session *session.Session
	Input   string
	Pending []string
	Allowed []string
	Schema  string
	Now     time.Time
}
