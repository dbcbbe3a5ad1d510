package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/dyike/FinSightGo/config"
	"github.com/dyike/FinSightGo/internal/agent"
	"github.com/dyike/FinSightGo/internal/display"
)

type chatTurn struct {
	Role    string
	Content string
}

// ChatSession is the interactive chat loop. It keeps the visible
// conversation history itself; each question still runs in a fresh
// agent-side thread.
type ChatSession struct {
	mu      sync.Mutex
	cfg     config.Config
	pending *config.Config

	analyst *agent.Analyst
	history []chatTurn
}

func runChat(ctx context.Context, mgr *config.Manager) error {
	session := &ChatSession{cfg: mgr.Get()}
	defer session.shutdown()

	// Config file edits apply to the next question.
	if err := mgr.Watch(ctx, func(cfg config.Config) {
		session.scheduleReload(cfg)
		fmt.Println()
		fmt.Println(display.Hint("configuration changed; applies to your next question"))
	}); err != nil {
		return err
	}

	return session.Start(ctx)
}

// Start begins the interactive session
func (s *ChatSession) Start(ctx context.Context) error {
	fmt.Println(display.Banner())
	fmt.Println(display.Hint("Commands: history, help, exit"))
	fmt.Println()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		var input string
		prompt := &survey.Input{Message: "You:"}
		if err := survey.AskOne(prompt, &input); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				fmt.Println(display.Hint("Goodbye!"))
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			fmt.Println(display.Hint("Goodbye!"))
			return nil
		case "help", "h", "?":
			s.showHelp()
		case "history", "hist":
			s.showHistory()
		default:
			s.ask(ctx, input)
		}
	}
}

func (s *ChatSession) ask(ctx context.Context, question string) {
	analyst, err := s.currentAnalyst()
	if err != nil {
		fmt.Println(display.ErrorNotice("configuration error: " + err.Error()))
		return
	}

	spinner := display.NewSpinner("Analyzing financial data")
	spinner.Start()
	answer, err := analyst.Ask(ctx, question)
	spinner.Stop()

	if err != nil {
		fmt.Println(display.ErrorNotice("I could not answer that: " + err.Error()))
		fmt.Println()
		return
	}

	s.history = append(s.history,
		chatTurn{Role: "user", Content: question},
		chatTurn{Role: "assistant", Content: answer},
	)

	fmt.Println(display.AssistantTurn(answer))
	fmt.Println()
}

// currentAnalyst returns the active orchestration loop, rebuilding it when
// a config reload is pending.
func (s *ChatSession) currentAnalyst() (*agent.Analyst, error) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if s.analyst != nil && pending == nil {
		return s.analyst, nil
	}

	if pending != nil {
		s.cfg = *pending
		if s.analyst != nil {
			_ = s.analyst.Close(context.Background())
			s.analyst = nil
		}
	}

	analyst, err := buildAnalyst(&s.cfg)
	if err != nil {
		return nil, err
	}
	s.analyst = analyst
	return s.analyst, nil
}

func (s *ChatSession) scheduleReload(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cfg
	s.pending = &c
}

func (s *ChatSession) shutdown() {
	if s.analyst != nil {
		_ = s.analyst.Close(context.Background())
	}
}

func (s *ChatSession) showHistory() {
	if len(s.history) == 0 {
		fmt.Println(display.Hint("no conversation yet"))
		fmt.Println()
		return
	}
	for _, turn := range s.history {
		if turn.Role == "user" {
			fmt.Println(display.UserTurn(turn.Content))
		} else {
			fmt.Println(display.AssistantTurn(turn.Content))
		}
	}
	fmt.Println()
}

func (s *ChatSession) showHelp() {
	fmt.Println(display.Hint("Ask any financial question, e.g.:"))
	fmt.Println(display.Hint(`  What is Apple's revenue growth over the last 4 quarters?`))
	fmt.Println(display.Hint(`  Compare Microsoft's and Google's operating margins.`))
	fmt.Println(display.Hint("Commands: history (show transcript), exit (quit)"))
	fmt.Println()
}
