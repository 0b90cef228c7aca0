// Package router decides which tool, if any, handles a user utterance.
//
// The decision itself comes from an external reasoning oracle and is
// legitimately non-deterministic; everything downstream of the Decider
// interface (proposal validation and fallback) is pure and deterministic.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/finbot-ai/finbot/pkg/tools"
)

// ErrOracleUnavailable reports a transient failure of the reasoning oracle.
// The orchestrator surfaces it as a degraded-mode reply.
var ErrOracleUnavailable = errors.New("routing oracle unavailable")

// Kind identifies the selected capability. The set is closed: adding a tool
// means adding a variant here, and the orchestrator's dispatch handles
// every variant exhaustively.
type Kind int

const (
	// KindNone means no tool was selected; the turn takes the plain
	// response path.
	KindNone Kind = iota
	KindSystemStats
	KindMoscowTime
	KindSearchNews
)

func (k Kind) String() string {
	switch k {
	case KindSystemStats:
		return tools.NameSystemStats
	case KindMoscowTime:
		return tools.NameMoscowTime
	case KindSearchNews:
		return tools.NameSearchNews
	default:
		return "none"
	}
}

// Selection is a validated tool choice. Query and TopK are set only for
// KindSearchNews.
type Selection struct {
	Kind  Kind
	Query string
	TopK  int
}

// Proposal is the oracle's raw function-call proposal, not yet validated.
// A nil proposal is a decline.
type Proposal struct {
	Tool string
	Args map[string]interface{}
}

// Decider is the narrow interface isolating the oracle's non-determinism.
// Tests swap it for a deterministic stub.
type Decider interface {
	Decide(ctx context.Context, utterance string, schemas []tools.ToolInfo) (*Proposal, error)
}

// Router validates oracle proposals against the registered tool schemas.
type Router struct {
	decider     Decider
	registry    *tools.Registry
	defaultTopK int
}

func New(decider Decider, registry *tools.Registry, defaultTopK int) *Router {
	return &Router{
		decider:     decider,
		registry:    registry,
		defaultTopK: defaultTopK,
	}
}

// Route asks the oracle for a proposal and validates it. Unknown tool names
// and argument-shape mismatches fall back to the no-tool path rather than
// failing the turn; only oracle transport failure returns an error.
func (r *Router) Route(ctx context.Context, userText string) (Selection, error) {
	proposal, err := r.decider.Decide(ctx, userText, r.registry.List())
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	selection := r.validate(proposal, userText)
	slog.Debug("Routed utterance", "tool", selection.Kind.String())
	return selection, nil
}

// validate is the deterministic part of routing: same proposal, same
// selection, every time.
func (r *Router) validate(proposal *Proposal, userText string) Selection {
	if proposal == nil {
		return Selection{Kind: KindNone}
	}

	if _, registered := r.registry.Get(proposal.Tool); !registered {
		slog.Warn("Oracle proposed unknown tool, falling back", "tool", proposal.Tool)
		return Selection{Kind: KindNone}
	}

	switch proposal.Tool {
	case tools.NameSystemStats:
		return Selection{Kind: KindSystemStats}

	case tools.NameMoscowTime:
		return Selection{Kind: KindMoscowTime}

	case tools.NameSearchNews:
		return r.validateSearch(proposal.Args, userText)

	default:
		// Registered but not part of the closed dispatch set; treat as
		// a shape mismatch.
		slog.Warn("Oracle proposed undispatchable tool, falling back", "tool", proposal.Tool)
		return Selection{Kind: KindNone}
	}
}

func (r *Router) validateSearch(args map[string]interface{}, userText string) Selection {
	query := userText
	if raw, present := args["query"]; present {
		s, ok := raw.(string)
		if !ok {
			slog.Warn("Search proposal has malformed query argument, falling back")
			return Selection{Kind: KindNone}
		}
		if strings.TrimSpace(s) != "" {
			query = s
		}
	}

	topK := r.defaultTopK
	if raw, present := args["top_k"]; present {
		k, ok := numericArg(raw)
		if !ok {
			slog.Warn("Search proposal has malformed top_k argument, falling back")
			return Selection{Kind: KindNone}
		}
		if k >= 1 {
			topK = k
		}
	}

	return Selection{
		Kind:  KindSearchNews,
		Query: query,
		TopK:  topK,
	}
}

func numericArg(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
