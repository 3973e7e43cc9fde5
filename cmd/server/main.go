package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/tender-barbarian/go-symlens/internal/session"
	"github.com/tender-barbarian/go-symlens/internal/tools"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	symbols := flag.String("symbols", "", "Symbol table file (.toml, .yaml) to serve")
	root := flag.String("root", "", "Root directory of a Go codebase to index instead of a symbol table")
	configPath := flag.String("config", "", "Optional engine config file (.toml, .yaml)")
	verbose := flag.Bool("verbose", false, "Write resolver diagnostics to stderr")
	flag.Parse()

	opts := session.Options{
		SymbolsPath: *symbols,
		Root:        *root,
		ConfigPath:  *configPath,
		Logger:      log.New(os.Stderr, "", 0),
	}
	if *verbose {
		opts.Diagnostics = os.Stderr
	}

	sess, err := session.Open(opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Serving %s (%d sources).\n", sess.Module.Name, len(sess.Module.Sources))

	s := server.NewMCPServer("go-symlens", "0.1.0")
	tools.Register(s, sess)

	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("serving MCP: %w", err)
	}
	return nil
}
