// Package chat turns user messages into assistant replies. It assembles
// the planner context into a system prompt, calls the configured LLM
// provider, extracts the structured data envelope from the reply, runs
// it through the sanitizer, and reconciles the result against the store.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aisle-dev/aisle/internal/llm"
	"github.com/aisle-dev/aisle/internal/sanitize"
	"github.com/aisle-dev/aisle/internal/store"
)

// historyWindow is how many prior turns get replayed to the model.
const historyWindow = 20

// Service handles one conversation turn end to end.
type Service struct {
	store    *store.Store
	provider llm.Provider
	log      *slog.Logger
}

// NewService wires a chat service.
func NewService(st *store.Store, provider llm.Provider, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: st, provider: provider, log: log}
}

// Reply is what HandleMessage returns to the caller.
type Reply struct {
	Text     string             // user-visible assistant text, warnings appended
	Warnings []string           // sanitizer warning trail
	Applied  store.ApplySummary // what changed in the store
	Result   *sanitize.Result   // sanitized data, nil when no block was emitted
}

// HandleMessage runs one turn: load context, call the model, extract and
// sanitize the data block, apply it, and compose the reply. Sanitizer
// warnings never fail the turn; they ride along in the reply text.
func (s *Service) HandleMessage(ctx context.Context, sessionID string, userText string) (*Reply, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("unknown session %s", sessionID)
	}

	systemPrompt, err := BuildSystemPrompt(ctx, s.store, session.WeddingID)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	history, err := s.store.RecentMessages(ctx, sessionID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: userText})

	raw, err := s.provider.Chat(ctx, messages, llm.ChatOpts{MaxTokens: 1500, Temperature: 0.7})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	visible, block := ExtractDataBlock(raw)

	reply := &Reply{Text: visible}
	if block != "" {
		res := sanitize.Sanitize(block)
		reply.Result = res
		reply.Warnings = res.Warnings

		if !res.Empty() {
			summary, err := s.store.ApplyResult(ctx, session.WeddingID, res)
			if err != nil {
				return nil, fmt.Errorf("applying sanitized result: %w", err)
			}
			reply.Applied = summary
			s.log.Debug("applied chat data",
				"session", sessionID,
				"vendors_added", summary.VendorsAdded,
				"budget_added", summary.BudgetAdded,
				"tasks_added", summary.TasksAdded,
				"warnings", len(res.Warnings))
		}

		if len(res.Warnings) > 0 {
			reply.Text = appendWarnings(reply.Text, res.Warnings)
		}
	}

	if err := s.store.AddMessage(ctx, sessionID, "user", userText); err != nil {
		return nil, fmt.Errorf("recording user message: %w", err)
	}
	if err := s.store.AddMessage(ctx, sessionID, "assistant", visible); err != nil {
		return nil, fmt.Errorf("recording assistant message: %w", err)
	}
	if err := s.store.TouchSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("touching session: %w", err)
	}

	return reply, nil
}

func appendWarnings(text string, warnings []string) string {
	var b strings.Builder
	b.WriteString(text)
	if text != "" {
		b.WriteString("\n\n")
	}
	b.WriteString("Note: some details could not be recorded as given:\n")
	for _, w := range warnings {
		b.WriteString("- ")
		b.WriteString(w)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
