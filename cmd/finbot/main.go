// Command finbot is a console agent for financial news retrieval.
//
// Usage:
//
//	finbot ingest --config config.yaml
//	finbot chat --config config.yaml
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"

	"github.com/finbot-ai/finbot/pkg/agent"
	"github.com/finbot-ai/finbot/pkg/config"
	"github.com/finbot-ai/finbot/pkg/embedders"
	"github.com/finbot-ai/finbot/pkg/guard"
	"github.com/finbot-ai/finbot/pkg/llms"
	"github.com/finbot-ai/finbot/pkg/retriever"
	"github.com/finbot-ai/finbot/pkg/router"
	"github.com/finbot-ai/finbot/pkg/store"
	"github.com/finbot-ai/finbot/pkg/tools"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Chat    ChatCmd    `cmd:"" help:"Start an interactive chat session."`
	Ingest  IngestCmd  `cmd:"" help:"Ingest the news corpus into the vector store."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)."`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple or verbose)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("finbot version %s\n", version)
	return nil
}

// buildAgent wires the full turn pipeline from configuration. Everything
// here is constructed once and immutable for the process lifetime.
func buildAgent(cfg *config.Config) (*agent.Agent, func(), error) {
	llm, err := llms.NewOllamaProvider(&cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	embedder, err := embedders.NewFromConfig(&cfg.Embedder)
	if err != nil {
		llm.Close()
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	st, err := store.Open(cfg.Store, embedder)
	if err != nil {
		llm.Close()
		embedder.Close()
		return nil, nil, fmt.Errorf("failed to open document store: %w", err)
	}

	rtv := retriever.New(st, embedder)

	registry := tools.NewRegistry()
	for _, tool := range []tools.Tool{
		tools.NewSystemStatsTool(),
		tools.NewMoscowTimeTool(),
		tools.NewSearchNewsTool(rtv, cfg.Retrieval.TopK),
	} {
		if err := registry.Register(tool); err != nil {
			st.Close()
			llm.Close()
			embedder.Close()
			return nil, nil, err
		}
	}

	g, err := guard.New(cfg.Guard, []string{agent.SystemPrompt})
	if err != nil {
		st.Close()
		llm.Close()
		embedder.Close()
		return nil, nil, fmt.Errorf("failed to compile guard policy: %w", err)
	}

	decider := router.NewLLMDecider(llm, agent.RoutePrompt)
	rt := router.New(decider, registry, cfg.Retrieval.TopK)

	cleanup := func() {
		st.Close()
		embedder.Close()
		llm.Close()
	}
	return agent.New(llm, rt, g, registry), cleanup, nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("finbot"),
		kong.Description("Console agent for financial news retrieval."),
		kong.UsageOnError(),
	)

	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	ctx.FatalIfErrorf(ctx.Run(cli))
}
