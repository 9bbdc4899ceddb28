package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

// Action is one callable the model may request during a turn. Run receives
// the raw JSON arguments and returns a JSON result string; side effects
// happen inside Run.
type Action struct {
	Info *schema.ToolInfo
	Run  func(ctx context.Context, args string) (string, error)
}

// NewAction builds an action whose argument schema is reflected from A.
func NewAction[A any](name, desc string, run func(ctx context.Context, args *A) (string, error)) (*Action, error) {
	info, err := utils.GoStruct2ToolInfo[A](name, desc)
	if err != nil {
		return nil, fmt.Errorf("build tool info for %s: %w", name, err)
	}
	return &Action{
		Info: info,
		Run: func(ctx context.Context, raw string) (string, error) {
			var args A
			if raw != "" {
				if err := sonic.UnmarshalString(raw, &args); err != nil {
					return "", fmt.Errorf("decode %s arguments: %w", name, err)
				}
			}
			return run(ctx, &args)
		},
	}, nil
}

// Turn runs one conversational turn: the model sees the messages and the
// action menu, zero or more requested actions are executed, and at most one
// follow-up call produces the final natural-language reply.
func Turn(ctx context.Context, chatModel model.ToolCallingChatModel, messages []*schema.Message, actions []*Action) (string, error) {
	byName := make(map[string]*Action, len(actions))
	infos := make([]*schema.ToolInfo, 0, len(actions))
	for _, a := range actions {
		byName[a.Info.Name] = a
		infos = append(infos, a.Info)
	}

	first, err := chatModel.Generate(ctx, messages, model.WithTools(infos))
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	if len(first.ToolCalls) == 0 {
		return first.Content, nil
	}

	followUp := append(append([]*schema.Message{}, messages...), first)
	for _, call := range first.ToolCalls {
		action, known := byName[call.Function.Name]
		if !known {
			followUp = append(followUp, schema.ToolMessage(
				toolError(fmt.Sprintf("unknown action %s", call.Function.Name)), call.ID))
			continue
		}
		result, runErr := action.Run(ctx, call.Function.Arguments)
		if runErr != nil {
			slog.Debug("action failed", "action", call.Function.Name, "error", runErr)
			followUp = append(followUp, schema.ToolMessage(toolError(runErr.Error()), call.ID))
			continue
		}
		followUp = append(followUp, schema.ToolMessage(result, call.ID))
	}

	final, err := chatModel.Generate(ctx, followUp)
	if err != nil {
		return "", fmt.Errorf("call model for final reply: %w", err)
	}
	return final.Content, nil
}

func toolError(msg string) string {
	out, err := sonic.MarshalString(map[string]string{"status": "error", "message": msg})
	if err != nil {
		return `{"status":"error"}`
	}
	return out
}
