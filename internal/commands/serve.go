package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gerunddev/text2tana/internal/api"
	"github.com/gerunddev/text2tana/internal/config"
	"github.com/gerunddev/text2tana/internal/diff"
	"github.com/gerunddev/text2tana/internal/outbox"
	"github.com/gerunddev/text2tana/internal/styles"
)

// Serve runs the HTTP API in the foreground until interrupted
func Serve(args []string) {
	f, _, err := parseArgs(args)
	if err != nil {
		fail("Invalid arguments", err)
	}

	s := openSession()
	defer s.cleanup()

	addr := s.cfg.ListenAddr
	if f.Addr != "" {
		addr = f.Addr
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      api.NewServer(s.conv, s.log, s.cfg.ServerToken),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		s.log.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			s.log.Error("shutdown failed", "error", err)
		}
	}()

	fmt.Println(styles.SuccessStyle.Render("✓ Listening on http://" + addr))
	if s.cfg.ServerToken == "" {
		fmt.Println(styles.WarningStyle.Render("⚠ No server_token set, /api is unauthenticated"))
	}
	s.log.Info("server started", "addr", addr)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fail("Server error", err)
	}
}

// Status displays configuration and outbox state
func Status() {
	s := openSession()
	defer s.cleanup()

	titleStyle := styles.TitleStyle
	dimStyle := styles.DimStyle
	label := styles.LabelStyle

	fmt.Println(titleStyle.Render("text2tana status"))
	fmt.Println()

	schema := s.conv.Schema()
	st := s.conv.Settings()

	fmt.Println(label.Render("config") + config.ConfigPath())
	fmt.Println(label.Render("endpoint") + s.cfg.Endpoint)
	if _, err := s.cfg.Token(); err != nil {
		fmt.Println(label.Render("token") + styles.WarningStyle.Render("not set"))
	} else {
		fmt.Println(label.Render("token") + styles.SuccessStyle.Render("set"))
	}
	fmt.Println(label.Render("target") + st.Symbols.Node + st.Default.Target)
	fmt.Println(label.Render("schema") + fmt.Sprintf("%d nodes, %d supertags, %d fields",
		len(schema.Nodes), len(schema.Supertags), len(schema.Fields)))

	ob, err := outbox.Load(s.cfg.OutboxFile)
	if err != nil {
		fmt.Println(label.Render("outbox") + styles.ErrorStyle.Render(err.Error()))
	} else if ob.Len() > 0 {
		fmt.Println(label.Render("outbox") + styles.WarningStyle.Render(fmt.Sprintf("%d queued", ob.Len())) +
			dimStyle.Render(" (run 'text2tana flush')"))
	} else {
		fmt.Println(label.Render("outbox") + "empty")
	}

	if s.cfg.LogFile != "" {
		_, lastSubmit, count := ParseLogFile(s.cfg.LogFile, 500)
		if !lastSubmit.IsZero() {
			fmt.Println(label.Render("last sent") + lastSubmit.Format(time.DateTime) +
				dimStyle.Render(fmt.Sprintf(" (%d in recent log)", count)))
		}
	}
}

// Config manages the configuration file: "path", "show", "diff" or "init"
func Config(args []string) {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "path":
		fmt.Println(config.ConfigPath())
	case "init":
		if _, err := os.Stat(config.ConfigPath()); err == nil {
			fail("Config already exists at "+config.ConfigPath(), nil)
		}
		if err := config.DefaultConfig().Save(); err != nil {
			fail("Error writing config", err)
		}
		fmt.Println(styles.SuccessStyle.Render("✓ Wrote " + config.ConfigPath()))
	case "show":
		s := openSession()
		defer s.cleanup()

		cfg := *s.cfg
		if cfg.APIToken != "" {
			cfg.APIToken = "********"
		}
		if cfg.ServerToken != "" {
			cfg.ServerToken = "********"
		}
		cfg.Overrides = s.conv.Schema()
		cfg.SettingsOverrides = s.conv.Settings()
		if err := writeYAML(os.Stdout, &cfg); err != nil {
			fail("Error writing output", err)
		}
	case "diff":
		s := openSession()
		defer s.cleanup()

		md, err := diff.Effective(s.conv.Schema(), s.conv.Settings())
		if err != nil {
			fail("Error computing diff", err)
		}
		if md == "" {
			fmt.Println(styles.SuccessStyle.Render("✓ Using the built-in schema and settings"))
			return
		}
		fmt.Print(styles.RenderMarkdown(md))
	default:
		fail("Unknown config command: "+sub, nil)
	}
}
