package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/text2tana/internal/commands"
	"github.com/gerunddev/text2tana/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "parse":
		commands.Parse(os.Args[2:])
	case "payload":
		commands.Payload(os.Args[2:])
	case "send":
		commands.Send(os.Args[2:])
	case "flush":
		commands.Flush()
	case "capture", "c":
		commands.Capture(os.Args[2:])
	case "serve":
		commands.Serve(os.Args[2:])
	case "status":
		commands.Status()
	case "config":
		commands.Config(os.Args[2:])
	case "syntax":
		commands.Syntax(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("text2tana v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`text2tana - Turn one line of shorthand into a Tana node

Usage:
  text2tana <command> [options] [text...]

Commands:
  parse       Show what is extracted from the text (--json for JSON)
  payload     Print the Tana Input API payload as JSON (--strict)
  send        Submit the text to Tana (--strict, --no-queue)
  flush       Resend payloads queued while Tana was unreachable
  capture     Interactive capture with live preview
  serve       Run the HTTP API (--addr host:port)
  status      Show configuration and outbox state
  config      Manage the config file (path, show, diff, init)
  syntax      Show the shorthand and configured keys (--raw for markdown)
  version     Show version information
  help        Show this help message

Without text arguments, each non-empty line of stdin is converted.

Syntax:
  @node         target node, only at the very start
  #supertag     supertag, anywhere
  field:node    field pointing at a node
  http(s)://... url child

Examples:
  text2tana parse "@inbox #task call Alice due:library"
  text2tana payload "Read later https://go.dev/blog"
  text2tana send "@myproject #task write release notes"
  pbpaste | text2tana send
  text2tana capture
  text2tana serve --addr 127.0.0.1:8091

Configuration:
  Config file: %s
  Outbox file: %s
  API token:   api_token in the config file or $%s

For more information, visit: https://github.com/gerunddev/text2tana
`, config.ConfigPath(), config.OutboxFilePath(), config.TokenEnv)
	fmt.Print(usage)
}
