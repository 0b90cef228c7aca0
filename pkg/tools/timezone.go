package tools

import (
	"context"
	"time"
)

const moscowTimeFormat = "2006-01-02 15:04:05 MST"

// MoscowTimeTool reports the current wall-clock time in Moscow.
type MoscowTimeTool struct {
	loc *time.Location
	now func() time.Time
}

func NewMoscowTimeTool() *MoscowTimeTool {
	return &MoscowTimeTool{
		loc: moscowLocation(),
		now: time.Now,
	}
}

// NewMoscowTimeToolWithClock creates the tool with a fixed clock for tests.
func NewMoscowTimeToolWithClock(now func() time.Time) *MoscowTimeTool {
	return &MoscowTimeTool{
		loc: moscowLocation(),
		now: now,
	}
}

// moscowLocation resolves Europe/Moscow, falling back to a fixed UTC+3
// offset when the host has no tzdata. Moscow has no DST, so the fixed
// offset is always correct.
func moscowLocation() *time.Location {
	if loc, err := time.LoadLocation("Europe/Moscow"); err == nil {
		return loc
	}
	return time.FixedZone("MSK", 3*60*60)
}

func (t *MoscowTimeTool) GetInfo() ToolInfo {
	return ToolInfo{
		Name:        NameMoscowTime,
		Description: "Get the current time in Moscow. Use for questions about the time in Moscow.",
		Parameters:  []ToolParameter{},
	}
}

func (t *MoscowTimeTool) GetName() string {
	return NameMoscowTime
}

func (t *MoscowTimeTool) GetDescription() string {
	return "Report the current time in Moscow (UTC+3)"
}

func (t *MoscowTimeTool) Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	start := time.Now()

	formatted := t.now().In(t.loc).Format(moscowTimeFormat)

	return ToolResult{
		Success:       true,
		Content:       formatted,
		Output:        formatted,
		ToolName:      NameMoscowTime,
		ExecutionTime: time.Since(start),
	}, nil
}
