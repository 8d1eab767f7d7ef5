package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/RaoAkif/BotFusion/internal/backend"
	"github.com/RaoAkif/BotFusion/internal/chat"
	"github.com/RaoAkif/BotFusion/internal/config"
	"github.com/RaoAkif/BotFusion/internal/history"
	"github.com/RaoAkif/BotFusion/internal/scroll"
	"github.com/RaoAkif/BotFusion/internal/store"
)

// viewportHeight is the number of transcript lines shown at once in the
// terminal client.
const viewportHeight = 20

// runChat handles the "botfusion chat" subcommand: an interactive
// session against a running server. The transcript scrolls inside a
// fixed-height viewport with the same auto-follow rule as the web UI:
// growth only follows when the viewport was already at the bottom.
func runChat(ctx context.Context, stdin io.Reader, stdout io.Writer, configPath, model string) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Only warnings and errors; anything chattier corrupts the chat
	// surface.
	logger, err := config.NewLogger(stdout, "warn", "text")
	if err != nil {
		return err
	}

	if model == "" {
		model = cfg.Models.Default
	}

	host := cfg.Listen.Address
	if host == "" {
		host = "localhost"
	}
	endpoint := fmt.Sprintf("http://%s:%d/api/chat", host, cfg.Listen.Port)

	sessions, err := store.NewSQLiteStore(cfg.SessionDBPath())
	if err != nil {
		return fmt.Errorf("open session database: %w", err)
	}
	defer sessions.Close()

	conversation := chat.NewConversation(backend.NewClient(endpoint), sessions, model, logger)
	tracker := scroll.NewTracker()
	offset := 0

	fmt.Fprintf(stdout, "BotFusion chat (model %s, server %s)\n", model, endpoint)
	fmt.Fprintln(stdout, "Commands: /history, /load <timestamp>, /new, /up, /down, /quit")
	fmt.Fprintln(stdout, "---")

	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "You: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit" || line == "/exit":
			return scanner.Err()

		case line == "/history":
			printHistory(stdout, sessions)
			continue

		case strings.HasPrefix(line, "/load "):
			timestamp := strings.TrimSpace(strings.TrimPrefix(line, "/load "))
			if err := conversation.LoadFromStorage(timestamp); err != nil {
				fmt.Fprintf(stdout, "load failed: %v\n", err)
				continue
			}
			offset = jumpToBottom(tracker, conversation)

		case line == "/new":
			if err := conversation.Reset(); err != nil {
				fmt.Fprintf(stdout, "reset failed: %v\n", err)
				continue
			}
			offset = jumpToBottom(tracker, conversation)
			continue

		case line == "/up":
			offset -= viewportHeight / 2
			if offset < 0 {
				offset = 0
			}
			tracker.SetMetrics(metricsFor(conversation, offset))

		case line == "/down":
			m := metricsFor(conversation, offset+viewportHeight/2)
			if m.Offset > m.BottomOffset() {
				m.Offset = m.BottomOffset()
			}
			offset = m.Offset
			tracker.SetMetrics(m)

		case line == "":
			continue

		default:
			conversation.SendMessage(ctx, line)

			// Auto-follow only when the viewport was at the bottom
			// before the transcript grew.
			m := metricsFor(conversation, offset)
			if tracker.ContentChanged(m) {
				offset = m.BottomOffset()
				tracker.SetMetrics(metricsFor(conversation, offset))
			}
		}

		renderViewport(stdout, conversation, tracker, offset)
	}

	return scanner.Err()
}

// transcriptLines flattens the transcript for terminal display.
func transcriptLines(messages []chat.Message) []string {
	var lines []string
	for _, m := range messages {
		label := "You"
		if m.Role == chat.RoleAI {
			label = "AI"
		}
		content := m.Content
		if m.Pending {
			content = "..."
		}
		for i, part := range strings.Split(content, "\n") {
			if i == 0 {
				lines = append(lines, label+": "+part)
			} else {
				lines = append(lines, "     "+part)
			}
		}
	}
	return lines
}

// metricsFor builds viewport metrics for the current transcript at the
// given scroll offset.
func metricsFor(conversation *chat.Conversation, offset int) scroll.Metrics {
	return scroll.Metrics{
		ContentHeight:  len(transcriptLines(conversation.Messages())),
		ViewportHeight: viewportHeight,
		Offset:         offset,
	}
}

// jumpToBottom pins the viewport to the transcript end and returns the
// new offset.
func jumpToBottom(tracker *scroll.Tracker, conversation *chat.Conversation) int {
	m := metricsFor(conversation, 0)
	m.Offset = m.BottomOffset()
	tracker.SetMetrics(m)
	return m.Offset
}

// renderViewport prints the visible transcript slice plus the
// jump-to-bottom hint when the user has scrolled away.
func renderViewport(w io.Writer, conversation *chat.Conversation, tracker *scroll.Tracker, offset int) {
	lines := transcriptLines(conversation.Messages())

	end := offset + viewportHeight
	if end > len(lines) {
		end = len(lines)
	}
	if offset > end {
		offset = end
	}

	fmt.Fprintln(w, "---")
	for _, line := range lines[offset:end] {
		fmt.Fprintln(w, line)
	}

	state := tracker.State()
	if state.IsScrollable && !state.IsAtBottom {
		fmt.Fprintln(w, "-- more below: /down to scroll --")
	}
	fmt.Fprintln(w, "---")
}

// printHistory lists stored sessions grouped into recency buckets.
func printHistory(w io.Writer, sessions store.Store) {
	records, err := sessions.LoadAll()
	if err != nil {
		fmt.Fprintf(w, "history load failed: %v\n", err)
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "no saved chats")
		return
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	buckets := history.Categorize(records, time.Now())
	for _, bucket := range buckets.Named() {
		if len(bucket.Summaries) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", bucket.Label)
		for _, summary := range bucket.Summaries {
			fmt.Fprintf(w, "  %s\n", summary.Timestamp)
		}
	}
}
