// Package display renders the chat transcript and progress feedback.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7C3AED")).
		Padding(0, 2)

	userLabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))

	assistantLabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10B981"))

	assistantTextStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#D1D5DB")).
		PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#EF4444"))

	hintStyle = lipgloss.NewStyle().
		Faint(true).
		Foreground(lipgloss.Color("#6B7280"))
)

// Banner returns the styled welcome header for the chat session.
func Banner() string {
	lines := []string{
		"FinSightGo — Financial Analyst Assistant",
		"Ask me anything about company financials.",
	}
	return bannerStyle.Render(strings.Join(lines, "\n"))
}

func UserTurn(text string) string {
	return userLabelStyle.Render("You: ") + text
}

func AssistantTurn(text string) string {
	return assistantLabelStyle.Render("AI:") + "\n" + assistantTextStyle.Render(text)
}

func ErrorNotice(text string) string {
	return errorStyle.Render("✗ " + text)
}

func Hint(text string) string {
	return hintStyle.Render(text)
}

// Spinner shows progress on stderr-free terminals while the orchestration
// loop polls. Start and Stop must be paired.
type Spinner struct {
	message string
	done    chan struct{}
	stopped chan struct{}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		frame := 0
		for {
			select {
			case <-s.done:
				// Clear the spinner line.
				fmt.Printf("\r%s\r", strings.Repeat(" ", len(s.message)+4))
				return
			case <-ticker.C:
				fmt.Printf("\r%s %s", spinnerFrames[frame%len(spinnerFrames)], hintStyle.Render(s.message))
				frame++
			}
		}
	}()
}

func (s *Spinner) Stop() {
	close(s.done)
	<-s.stopped
}
