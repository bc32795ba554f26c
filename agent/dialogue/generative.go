package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

// historyWindow is the number of trailing turns forwarded to the model.
const historyWindow = 6

// Generative forwards the persona prompt, a serialized requirements snapshot,
// and the trailing conversation window to a chat model. On any transport
// failure it falls back to the wrapped strategy transparently.
type Generative struct {
	runner   compose.Runnable[map[string]any, *schema.Message]
	fallback Strategy
}

func NewGenerative(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string, fallback Strategy) (*Generative, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, contractx.ErrPromptMissing
	}
	if fallback == nil {
		fallback = NewRuleBased()
	}

	runner, err := compileReplyGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile reply graph: %v", contractx.ErrModelInvoke, err)
	}

	return &Generative{
		runner:   runner,
		fallback: fallback,
	}, nil
}

func (g *Generative) Reply(ctx context.Context, utterance string, history []statex.Turn, reqs statex.Requirements) (string, error) {
	payload := map[string]any{
		"utterance":    utterance,
		"requirements": reqs.Snapshot(),
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return g.fallback.Reply(ctx, utterance, history, reqs)
	}

	msg, err := g.runner.Invoke(ctx, map[string]any{
		"input":   string(input),
		"history": toModelHistory(history),
	})
	if err != nil {
		log.Warn().Err(err).Msg("generative reply failed, using rule-based strategy")
		return g.fallback.Reply(ctx, utterance, history, reqs)
	}

	reply := ""
	if msg != nil {
		reply = strings.TrimSpace(msg.Content)
	}
	if reply == "" {
		log.Warn().Msg("generative reply was empty, using rule-based strategy")
		return g.fallback.Reply(ctx, utterance, history, reqs)
	}
	return reply, nil
}

func compileReplyGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add reply prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add reply model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add reply edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add reply edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add reply edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("dialogue.reply_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile reply graph: %w", err)
	}
	return runner, nil
}

// toModelHistory converts the trailing window of session turns, excluding the
// inbound turn itself, which travels in the payload.
func toModelHistory(history []statex.Turn) []*schema.Message {
	turns := history
	if len(turns) > 0 && turns[len(turns)-1].Role == contractx.RoleUser {
		turns = turns[:len(turns)-1]
	}
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}

	msgs := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case contractx.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(t.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(t.Content))
		}
	}
	return msgs
}
