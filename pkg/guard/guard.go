// Package guard implements the stateless policy filter applied to inbound
// and outbound text: inbound, it blocks prompt-injection and probing for
// internal details; outbound, it redacts leaked protected strings.
//
// A Guard holds no mutable state between calls. All policy data is compiled
// once at construction and treated as immutable, so a single Guard is safe
// for concurrent use without synchronization.
package guard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/finbot-ai/finbot/pkg/config"
)

// Verdict is the outcome of a policy check. For input checks, Allowed=false
// carries a reason code. For output checks, Sanitized holds the redacted
// text whenever redaction occurred.
type Verdict struct {
	Allowed   bool
	Reason    string
	Sanitized string
}

// Guard is the immutable policy filter.
type Guard struct {
	forbidden []*regexp.Regexp
	injection []*regexp.Regexp
	redact    []*regexp.Regexp
	protected []string
}

// New compiles the built-in policy plus any config extensions.
// protected lists literal strings (e.g. the system prompt text) that must
// never appear verbatim in outbound text.
func New(cfg config.GuardConfig, protected []string) (*Guard, error) {
	forbidden, err := compileAll(append(builtinForbiddenPatterns, cfg.ForbiddenPatterns...))
	if err != nil {
		return nil, fmt.Errorf("invalid forbidden pattern: %w", err)
	}

	injection, err := compileAll(append(builtinInjectionPatterns, cfg.InjectionPatterns...))
	if err != nil {
		return nil, fmt.Errorf("invalid injection pattern: %w", err)
	}

	redact, err := compileAll(builtinRedactPatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid redact pattern: %w", err)
	}

	allProtected := make([]string, 0, len(protected)+len(cfg.ProtectedStrings))
	for _, p := range append(append([]string{}, protected...), cfg.ProtectedStrings...) {
		if strings.TrimSpace(p) != "" {
			allProtected = append(allProtected, p)
		}
	}

	return &Guard{
		forbidden: forbidden,
		injection: injection,
		redact:    redact,
		protected: allProtected,
	}, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// CheckInput classifies inbound text against the disallowed intents.
// Injection attempts are checked first; both yield Allowed=false with a
// reason code. On allow, Sanitized carries the text for the next stage.
func (g *Guard) CheckInput(text string) Verdict {
	normalized := normalize(text)

	for _, re := range g.injection {
		if re.MatchString(normalized) {
			return Verdict{Allowed: false, Reason: ReasonPromptInjection}
		}
	}

	for _, re := range g.forbidden {
		if re.MatchString(normalized) {
			return Verdict{Allowed: false, Reason: ReasonForbiddenTopic}
		}
	}

	return Verdict{Allowed: true, Sanitized: text}
}

// CheckOutput scans a candidate reply for verbatim leakage of protected
// strings and credential-like content, redacting every occurrence. The
// result is always allowed; Sanitized carries the vetted text.
func (g *Guard) CheckOutput(text string) Verdict {
	sanitized := text
	redacted := false

	for _, p := range g.protected {
		if strings.Contains(sanitized, p) {
			sanitized = strings.ReplaceAll(sanitized, p, RedactionMarker)
			redacted = true
		}
	}

	for _, re := range g.redact {
		if re.MatchString(sanitized) {
			sanitized = re.ReplaceAllString(sanitized, RedactionMarker)
			redacted = true
		}
	}

	v := Verdict{Allowed: true, Sanitized: sanitized}
	if redacted {
		v.Reason = "redacted"
	}
	return v
}

// RefusalFor returns the fixed refusal template for a reason code.
func (g *Guard) RefusalFor(reason string) string {
	if t, ok := refusalTemplates[reason]; ok {
		return t
	}
	return defaultRefusal
}

// normalize collapses whitespace so multi-line and padded phrasings match
// the same patterns.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
