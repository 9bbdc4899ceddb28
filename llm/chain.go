// Package llm wraps the reasoning service behind two shapes the stage
// handlers need: a forced tool-call chain that turns a prompt into one typed
// struct, and an action runner that lets the model request callable actions
// and then produce a final reply in a single extra round trip.
package llm

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

// PromptFunc builds the message list for one invocation.
type PromptFunc[I any] func(ctx context.Context, input I) ([]*schema.Message, error)

// Extractor calls the model with a single forced tool and decodes the tool
// arguments into O.
type Extractor[I, O any] struct {
	prompt    PromptFunc[I]
	chatModel model.ToolCallingChatModel
	toolInfo  *schema.ToolInfo
}

func NewExtractor[I, O any](
	chatModel model.ToolCallingChatModel,
	prompt PromptFunc[I],
	toolName, toolDesc string,
) (*Extractor[I, O], error) {
	toolInfo, err := utils.GoStruct2ToolInfo[O](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("build tool info for %s: %w", toolName, err)
	}
	return &Extractor[I, O]{
		prompt:    prompt,
		chatModel: chatModel,
		toolInfo:  toolInfo,
	}, nil
}

func (e *Extractor[I, O]) Invoke(ctx context.Context, input I) (*O, error) {
	messages, err := e.prompt(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}
	response, err := e.chatModel.Generate(ctx, messages,
		model.WithTools([]*schema.ToolInfo{e.toolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, e.toolInfo.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("call model: %w", err)
	}
	if len(response.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool call in model response: %s", response.Content)
	}
	var result O
	if err := sonic.UnmarshalString(response.ToolCalls[0].Function.Arguments, &result); err != nil {
		return nil, fmt.Errorf("decode %s arguments: %w", e.toolInfo.Name, err)
	}
	return &result, nil
}
