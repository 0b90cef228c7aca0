package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/finbot-ai/finbot/pkg/config"
)

// ChatCmd starts an interactive console session. One line in, one reply
// out; no cross-turn memory.
type ChatCmd struct{}

func (c *ChatCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	ag, cleanup, err := buildAgent(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Println("💬 finbot is ready. I can check system load, tell the Moscow time, and search financial news.")
	fmt.Println("Type your message, or /exit to quit.")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("You: ")

		input, err := reader.ReadString('\n')
		if err != nil {
			// EOF or closed stdin ends the session.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		switch input {
		case "/exit", "/quit", "exit", "quit":
			fmt.Println("👋 Bye!")
			return nil
		}

		turn, err := ag.HandleTurn(ctx, input)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println("\n👋 Bye!")
				return nil
			}
			return err
		}

		fmt.Printf("\nfinbot: %s\n\n", turn.FinalReply)
	}
}
