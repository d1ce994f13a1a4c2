package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gerunddev/text2tana/internal/config"
	"github.com/gerunddev/text2tana/internal/logger"
	"github.com/gerunddev/text2tana/internal/payload"
	"github.com/gerunddev/text2tana/internal/styles"
)

// session bundles what every command needs
type session struct {
	cfg     *config.Config
	conv    *payload.Converter
	log     *logger.Logger
	cleanup func()
}

// openSession loads the configuration and sets up logging. It exits the
// process on a configuration error.
func openSession() *session {
	cfg, err := config.Load()
	if err != nil {
		fail("Error loading config", err)
	}

	log := logger.Discard()
	cleanup := func() {}
	if cfg.LogFile != "" {
		if l, c, err := logger.NewFileLogger(cfg.LogFile); err == nil {
			log, cleanup = l, c
		}
	}

	s := cfg.Schema()
	log.ConfigLoaded(config.ConfigPath(), len(s.Nodes), len(s.Supertags), len(s.Fields))

	return &session{
		cfg:     cfg,
		conv:    payload.NewConverter(s, cfg.Settings()),
		log:     log,
		cleanup: cleanup,
	}
}

// fail prints a styled error and exits
func fail(msg string, err error) {
	if err != nil {
		msg += ": " + err.Error()
	}
	fmt.Println(styles.ErrorStyle.Render("✗ " + msg))
	os.Exit(1)
}

// flags holds the options shared by the commands
type flags struct {
	JSON    bool
	Strict  bool
	NoQueue bool
	Raw     bool
	Addr    string
}

// parseArgs separates --options from the words of the text
func parseArgs(args []string) (flags, []string, error) {
	var f flags
	var words []string

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--json":
			f.JSON = true
		case "--strict":
			f.Strict = true
		case "--no-queue":
			f.NoQueue = true
		case "--raw":
			f.Raw = true
		case "--addr":
			if i+1 >= len(args) {
				return f, nil, fmt.Errorf("--addr requires a value")
			}
			i++
			f.Addr = args[i]
		case "--":
			words = append(words, args[i+1:]...)
			return f, words, nil
		default:
			if strings.HasPrefix(arg, "--") {
				return f, nil, fmt.Errorf("unknown option %s", arg)
			}
			words = append(words, arg)
		}
	}

	return f, words, nil
}

// inputLines returns the text to convert: the words joined into one line,
// or, with no words, every non-empty line of r.
func inputLines(words []string, r io.Reader) ([]string, error) {
	if len(words) > 0 {
		return []string{strings.Join(words, " ")}, nil
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

// ParseLogFile reads the last N lines from the log file and finds the most
// recent submission
func ParseLogFile(logPath string, maxLines int) ([]string, time.Time, int) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}, time.Time{}, 0
	}

	lines := strings.Split(string(content), "\n")

	// Get last N lines
	startIdx := 0
	if len(lines) > maxLines {
		startIdx = len(lines) - maxLines
	}
	recentLines := lines[startIdx:]

	var lastSubmit time.Time
	submitted := 0

	for i := len(recentLines) - 1; i >= 0; i-- {
		line := recentLines[i]
		if !strings.Contains(line, "payload submitted") {
			continue
		}
		submitted++
		// Format: 2025-11-27 14:11:57 INFO payload submitted
		if lastSubmit.IsZero() && len(line) > 19 {
			if t, err := time.Parse(time.DateTime, line[:19]); err == nil {
				lastSubmit = t
			}
		}
	}

	return recentLines, lastSubmit, submitted
}
