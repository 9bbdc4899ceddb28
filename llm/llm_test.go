package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel returns canned responses in order, recording every call.
type scriptedModel struct {
	responses []*schema.Message
	err       error
	calls     [][]*schema.Message
}

func (m *scriptedModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls = append(m.calls, in)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, errors.New("no scripted response left")
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	return next, nil
}

func (m *scriptedModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not scripted")
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func toolCallMessage(name, args string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       "call-1",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
}

type extractOut struct {
	Name string `json:"name" jsonschema:"required"`
	Age  int    `json:"age"`
}

func TestExtractorInvoke(t *testing.T) {
	t.Parallel()
	cm := &scriptedModel{responses: []*schema.Message{
		toolCallMessage("report", `{"name":"acid","age":3}`),
	}}

	extractor, err := NewExtractor[string, extractOut](cm,
		func(ctx context.Context, input string) ([]*schema.Message, error) {
			return []*schema.Message{schema.UserMessage(input)}, nil
		},
		"report", "report the thing")
	require.NoError(t, err)

	out, err := extractor.Invoke(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "acid", out.Name)
	assert.Equal(t, 3, out.Age)
}

func TestExtractorNoToolCall(t *testing.T) {
	t.Parallel()
	cm := &scriptedModel{responses: []*schema.Message{
		schema.AssistantMessage("just chatting", nil),
	}}

	extractor, err := NewExtractor[string, extractOut](cm,
		func(ctx context.Context, input string) ([]*schema.Message, error) {
			return []*schema.Message{schema.UserMessage(input)}, nil
		},
		"report", "report the thing")
	require.NoError(t, err)

	_, err = extractor.Invoke(context.Background(), "hello")
	assert.Error(t, err)
}

type greetArgs struct {
	Who string `json:"who" jsonschema:"required"`
}

func TestTurnWithoutActions(t *testing.T) {
	t.Parallel()
	cm := &scriptedModel{responses: []*schema.Message{
		schema.AssistantMessage("plain reply", nil),
	}}

	reply, err := Turn(context.Background(), cm,
		[]*schema.Message{schema.UserMessage("hi")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "plain reply", reply)
	assert.Len(t, cm.calls, 1)
}

func TestTurnRunsActions(t *testing.T) {
	t.Parallel()
	cm := &scriptedModel{responses: []*schema.Message{
		toolCallMessage("greet", `{"who":"world"}`),
		schema.AssistantMessage("done greeting", nil),
	}}

	var got string
	greet, err := NewAction("greet", "say hi",
		func(ctx context.Context, args *greetArgs) (string, error) {
			got = args.Who
			return `{"status":"ok"}`, nil
		})
	require.NoError(t, err)

	reply, err := Turn(context.Background(), cm,
		[]*schema.Message{schema.UserMessage("greet the world")},
		[]*Action{greet})
	require.NoError(t, err)
	assert.Equal(t, "done greeting", reply)
	assert.Equal(t, "world", got)

	// the follow-up call carries the tool result
	require.Len(t, cm.calls, 2)
	last := cm.calls[1][len(cm.calls[1])-1]
	assert.Equal(t, schema.Tool, last.Role)
	assert.Equal(t, `{"status":"ok"}`, last.Content)
}

func TestTurnActionErrorBecomesToolResult(t *testing.T) {
	t.Parallel()
	cm := &scriptedModel{responses: []*schema.Message{
		toolCallMessage("greet", `{"who":"world"}`),
		schema.AssistantMessage("sorry about that", nil),
	}}

	greet, err := NewAction("greet", "say hi",
		func(ctx context.Context, args *greetArgs) (string, error) {
			return "", errors.New("greeting service down")
		})
	require.NoError(t, err)

	reply, err := Turn(context.Background(), cm,
		[]*schema.Message{schema.UserMessage("greet")},
		[]*Action{greet})
	require.NoError(t, err)
	assert.Equal(t, "sorry about that", reply)

	last := cm.calls[1][len(cm.calls[1])-1]
	assert.Contains(t, last.Content, "greeting service down")
	assert.Contains(t, last.Content, `"status":"error"`)
}
