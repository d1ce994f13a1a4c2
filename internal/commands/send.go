package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/text2tana/internal/logger"
	"github.com/gerunddev/text2tana/internal/outbox"
	"github.com/gerunddev/text2tana/internal/payload"
	"github.com/gerunddev/text2tana/internal/styles"
	"github.com/gerunddev/text2tana/internal/tana"
	"github.com/gerunddev/text2tana/internal/tui"
)

// Delivery statuses
const (
	StatusSent   = "sent"
	StatusQueued = "queued"
)

// submitter is what deliver needs from the API client
type submitter interface {
	Submit(ctx context.Context, p payload.Payload) (any, error)
	Endpoint() string
}

// deliver submits p. When submission fails and queueing is enabled, p is
// stored in the outbox file and the status is StatusQueued. An
// unauthorized response is never queued, since retrying cannot fix it.
func deliver(ctx context.Context, c submitter, log *logger.Logger, outboxPath, text string, p payload.Payload, queue bool) (string, error) {
	start := time.Now()
	_, err := c.Submit(ctx, p)
	if err == nil {
		log.Submitted(c.Endpoint(), p.Nodes[0].Name, time.Since(start))
		return StatusSent, nil
	}
	log.SubmitFailed(c.Endpoint(), err)

	if !queue || errors.Is(err, tana.ErrUnauthorized) {
		return "", err
	}

	ob, loadErr := outbox.Load(outboxPath)
	if loadErr != nil {
		log.OutboxError("load", loadErr)
		return "", fmt.Errorf("%w (and the outbox could not be read: %v)", err, loadErr)
	}
	e, addErr := ob.Add(text, p, err)
	if errors.Is(addErr, outbox.ErrDuplicate) {
		return StatusQueued, nil
	}
	if addErr != nil {
		return "", addErr
	}
	if saveErr := ob.Save(outboxPath); saveErr != nil {
		log.OutboxError("save", saveErr)
		return "", fmt.Errorf("%w (and the outbox could not be saved: %v)", err, saveErr)
	}

	log.Queued(e.ID, p.Nodes[0].Name)
	return StatusQueued, nil
}

func newClient(s *session) *tana.Client {
	token, err := s.cfg.Token()
	if err != nil {
		fail("Cannot submit", err)
	}
	return tana.NewClient(s.cfg.Endpoint, token)
}

// Send converts each input line and submits it to Tana
func Send(args []string) {
	f, words, err := parseArgs(args)
	if err != nil {
		fail("Invalid arguments", err)
	}
	lines, err := inputLines(words, os.Stdin)
	if err != nil {
		fail("Error reading input", err)
	}

	s := openSession()
	defer s.cleanup()
	client := newClient(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed := 0
	for _, line := range lines {
		p, err := build(s, line, f.Strict)
		if err != nil {
			fmt.Println(styles.ErrorStyle.Render("✗ " + line + ": " + err.Error()))
			failed++
			continue
		}

		status, err := deliver(ctx, client, s.log, s.cfg.OutboxFile, line, p, !f.NoQueue)
		switch {
		case err != nil:
			fmt.Println(styles.ErrorStyle.Render("✗ " + line + ": " + err.Error()))
			failed++
		case status == StatusQueued:
			fmt.Println(styles.WarningStyle.Render("⚠ Queued (Tana unreachable): " + line))
			fmt.Println(styles.DimStyle.Render("  Run 'text2tana flush' to retry"))
		default:
			fmt.Println(styles.SuccessStyle.Render("✓ Sent: " + line))
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// Flush resends every payload waiting in the outbox
func Flush() {
	s := openSession()
	defer s.cleanup()

	ob, err := outbox.Load(s.cfg.OutboxFile)
	if err != nil {
		fail("Error loading outbox", err)
	}
	if ob.Len() == 0 {
		fmt.Println(styles.DimStyle.Render("Outbox is empty"))
		return
	}

	client := newClient(s)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, flushErr := ob.Flush(ctx, func(ctx context.Context, p payload.Payload) error {
		_, err := client.Submit(ctx, p)
		return err
	})
	s.log.FlushCompleted(len(result.Sent), len(result.Failed), time.Since(start))

	if err := ob.Save(s.cfg.OutboxFile); err != nil {
		fail("Error saving outbox", err)
	}

	if len(result.Sent) > 0 {
		fmt.Println(styles.SuccessStyle.Render(fmt.Sprintf("✓ Sent %d queued payload(s)", len(result.Sent))))
	}
	for _, e := range ob.Entries {
		if err, ok := result.Failed[e.ID]; ok {
			fmt.Println(styles.ErrorStyle.Render("✗ " + e.Text + ": " + err.Error()))
		}
	}
	if flushErr != nil {
		fail("Flush interrupted", flushErr)
	}
	if len(result.Failed) > 0 {
		os.Exit(1)
	}
}

// Capture runs the interactive capture prompt
func Capture(args []string) {
	f, _, err := parseArgs(args)
	if err != nil {
		fail("Invalid arguments", err)
	}

	s := openSession()
	defer s.cleanup()
	client := newClient(s)

	submit := func(ctx context.Context, text string, p payload.Payload) (string, error) {
		if f.Strict {
			if err := s.conv.Check(s.conv.Parse(text)); err != nil {
				return "", err
			}
		}
		return deliver(ctx, client, s.log, s.cfg.OutboxFile, text, p, !f.NoQueue)
	}

	p := tea.NewProgram(tui.NewCaptureModel(s.conv, submit), tea.WithInput(os.Stdin))
	final, err := p.Run()
	if err != nil {
		fail("Error", err)
	}

	if m, ok := final.(tui.CaptureModel); ok && m.Sent() > 0 {
		fmt.Println(styles.DimStyle.Render(fmt.Sprintf("%d line(s) captured", m.Sent())))
	}
}
