// Package agent owns the conversation turn state machine: input guard,
// routing, tool execution, answer generation, and the output guard. One
// turn is a single linear pass with no cross-turn memory.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finbot-ai/finbot/pkg/embedders"
	"github.com/finbot-ai/finbot/pkg/guard"
	"github.com/finbot-ai/finbot/pkg/llms"
	"github.com/finbot-ai/finbot/pkg/router"
	"github.com/finbot-ai/finbot/pkg/tools"
)

// State is the orchestrator's position within a turn.
type State string

const (
	StateStart       State = "START"
	StateInputGuard  State = "INPUT_GUARD"
	StateRejected    State = "REJECTED"
	StateRouted      State = "ROUTED"
	StateToolExec    State = "TOOL_EXEC"
	StateOutputGuard State = "OUTPUT_GUARD"
	StateDone        State = "DONE"
)

// Degraded-mode replies. Per-turn failures of the external services become
// one of these instead of an error; nothing per-turn crashes the process.
const (
	degradedOracleReply = "I can't reach my reasoning service right now. Please try again in a moment."
	degradedSearchReply = "The news search is temporarily unavailable. Please try again in a moment."
)

// ConversationTurn is the unit of work for one request/response cycle.
// Created at turn start, discarded at turn end.
type ConversationTurn struct {
	ID              string
	UserText        string
	GuardVerdictIn  guard.Verdict
	Selection       router.Selection
	ToolResult      *tools.ToolResult
	GuardVerdictOut guard.Verdict
	FinalReply      string
	State           State
	Elapsed         time.Duration
}

// Agent composes the turn pipeline. All collaborators are fixed at
// construction and never mutated afterwards.
type Agent struct {
	llm      llms.Provider
	router   *router.Router
	guard    *guard.Guard
	registry *tools.Registry
}

func New(llm llms.Provider, rt *router.Router, g *guard.Guard, registry *tools.Registry) *Agent {
	return &Agent{
		llm:      llm,
		router:   rt,
		guard:    g,
		registry: registry,
	}
}

// HandleTurn processes one utterance start to finish. Every turn reaches
// StateDone with a reply; service outages surface as degraded-mode text,
// never as an error. The only returned error is context cancellation.
func (a *Agent) HandleTurn(ctx context.Context, userText string) (*ConversationTurn, error) {
	start := time.Now()
	turn := &ConversationTurn{
		ID:       uuid.NewString(),
		UserText: userText,
		State:    StateStart,
	}
	defer func() {
		turn.Elapsed = time.Since(start)
		slog.Debug("Turn finished", "turn_id", turn.ID, "state", string(turn.State), "elapsed", turn.Elapsed)
	}()

	turn.State = StateInputGuard
	turn.GuardVerdictIn = a.guard.CheckInput(userText)
	if !turn.GuardVerdictIn.Allowed {
		// The refusal is a fixed known-safe template; the output guard
		// is skipped on this path.
		turn.State = StateRejected
		turn.FinalReply = a.guard.RefusalFor(turn.GuardVerdictIn.Reason)
		turn.State = StateDone
		return turn, nil
	}

	turn.State = StateRouted
	selection, err := a.router.Route(ctx, turn.GuardVerdictIn.Sanitized)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Routing failed, degrading turn", "turn_id", turn.ID, "error", err)
		return a.finish(turn, degradedOracleReply), nil
	}
	turn.Selection = selection

	turn.State = StateToolExec
	candidate, err := a.executeAndAnswer(ctx, turn)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Turn degraded", "turn_id", turn.ID, "error", err)
		candidate = degradedReplyFor(err)
	}

	return a.finish(turn, candidate), nil
}

// executeAndAnswer runs the selected tool and asks the oracle for the final
// answer. Tool failures are folded into the answer prompt as untrusted
// content; only service unavailability propagates as an error.
func (a *Agent) executeAndAnswer(ctx context.Context, turn *ConversationTurn) (string, error) {
	if turn.Selection.Kind == router.KindNone {
		return a.generate(ctx, turn.UserText, "")
	}

	result, err := a.execute(ctx, turn.Selection)
	turn.ToolResult = &result
	if err != nil {
		return "", err
	}
	return a.generate(ctx, turn.UserText, result.Content)
}

// execute dispatches over the closed tool set. A missing registry entry
// for a validated selection is a wiring bug, not a runtime condition.
func (a *Agent) execute(ctx context.Context, selection router.Selection) (tools.ToolResult, error) {
	var (
		name string
		args map[string]interface{}
	)
	switch selection.Kind {
	case router.KindSystemStats:
		name = tools.NameSystemStats
	case router.KindMoscowTime:
		name = tools.NameMoscowTime
	case router.KindSearchNews:
		name = tools.NameSearchNews
		args = map[string]interface{}{
			"query": selection.Query,
			"top_k": selection.TopK,
		}
	default:
		return tools.ToolResult{}, fmt.Errorf("unhandled selection kind %d", selection.Kind)
	}

	tool, ok := a.registry.Get(name)
	if !ok {
		return tools.ToolResult{}, fmt.Errorf("tool %q not registered", name)
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		if errors.Is(err, embedders.ErrUnavailable) {
			return result, err
		}
		// Anything else is already reflected in the result; the answer
		// prompt carries the failure text to the oracle.
		slog.Warn("Tool execution failed", "tool", name, "error", err)
	}
	return result, nil
}

// generate produces the final reply. Tool output, when present, is handed
// to the oracle in a separate system message so the model treats it as
// data rather than instructions.
func (a *Agent) generate(ctx context.Context, userText, toolData string) (string, error) {
	messages := []llms.Message{
		{Role: llms.RoleSystem, Content: SystemPrompt},
		{Role: llms.RoleUser, Content: userText},
	}
	if toolData != "" {
		messages = append(messages, llms.Message{
			Role:    llms.RoleSystem,
			Content: "TOOL DATA:\n" + toolData,
		})
	}

	text, _, err := a.llm.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	return text, nil
}

// finish runs the mandatory output guard and closes the turn. It applies
// to degraded replies too; only the input-guard refusal path bypasses it.
func (a *Agent) finish(turn *ConversationTurn, candidate string) *ConversationTurn {
	turn.State = StateOutputGuard
	turn.GuardVerdictOut = a.guard.CheckOutput(candidate)
	turn.FinalReply = turn.GuardVerdictOut.Sanitized
	turn.State = StateDone
	return turn
}

func degradedReplyFor(err error) string {
	if errors.Is(err, embedders.ErrUnavailable) {
		return degradedSearchReply
	}
	return degradedOracleReply
}
