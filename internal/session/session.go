// Package session opens a module from a symbol-table file or a Go source
// tree and prepares the engine configured for it.
package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/tender-barbarian/go-symlens/internal/config"
	"github.com/tender-barbarian/go-symlens/internal/decoder"
	"github.com/tender-barbarian/go-symlens/internal/finder"
	"github.com/tender-barbarian/go-symlens/internal/indexer"
	"github.com/tender-barbarian/go-symlens/internal/loader"
	"github.com/tender-barbarian/go-symlens/internal/render"
	"github.com/tender-barbarian/go-symlens/internal/resolver"
	"github.com/tender-barbarian/go-symlens/internal/symtab"
)

// ErrNoSource is returned when neither or both of SymbolsPath and Root are set.
var ErrNoSource = errors.New("exactly one of a symbols file or a source root is required")

// Options selects where the module comes from.
type Options struct {
	SymbolsPath string // TOML or YAML symbol table
	Root        string // Go source tree
	ConfigPath  string // optional engine config
	Logger      *log.Logger
	Diagnostics io.Writer // resolver diagnostics; nil discards them
}

// Session is a loaded module with its engine.
type Session struct {
	Module   *symtab.Module
	Config   config.Config
	Finder   *finder.Finder
	Renderer *render.Renderer
	Decoder  *decoder.Decoder
}

// Open loads the module named by opts and applies the config file over
// the defaults of the module's machine.
func Open(opts Options) (*Session, error) {
	if (opts.SymbolsPath == "") == (opts.Root == "") {
		return nil, ErrNoSource
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	var (
		mod *symtab.Module
		cfg config.Config
		err error
	)
	if opts.SymbolsPath != "" {
		mod, err = loader.Load(opts.SymbolsPath, loader.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("loading symbols: %w", err)
		}
		cfg, err = loadConfig(opts.ConfigPath, config.ForMachine(mod.Machine))
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = loadConfig(opts.ConfigPath, config.ForMachine(symtab.MachineX64))
		if err != nil {
			return nil, err
		}
		mod, err = indexRoot(opts.Root, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	res := resolver.New(
		resolver.WithPointerSize(cfg.PointerSize),
		resolver.WithEnumSize(cfg.EnumSize),
		resolver.WithDiagnostics(opts.Diagnostics),
	)
	return &Session{
		Module:   mod,
		Config:   cfg,
		Finder:   finder.New(mod),
		Renderer: render.New(res),
		Decoder:  decoder.New(res, decoder.WithByteOrder(cfg.Order())),
	}, nil
}

func loadConfig(path string, base config.Config) (config.Config, error) {
	if path == "" {
		return base, nil
	}
	cfg, err := config.Load(path, base)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func indexRoot(root string, cfg config.Config, logger *log.Logger) (*symtab.Module, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", root)
	}

	idx, err := indexer.New(root, indexer.WithPointerSize(cfg.PointerSize), indexer.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("creating indexer: %w", err)
	}
	logger.Println("Indexing codebase...")
	if err := idx.Index(); err != nil {
		return nil, fmt.Errorf("indexing codebase: %w", err)
	}
	logger.Println("Index ready.")
	return idx.Module(), nil
}

// LookupType finds a type by exact name, optionally within one source file.
// Without a source file it falls back to the first wildcard match.
func (s *Session) LookupType(name, source string) (*symtab.Type, error) {
	if t, ok := s.Finder.FindTypeByName(name, source); ok {
		return t, nil
	}
	if source == "" {
		if c, ok := s.Finder.FindType(name, finder.Cursor{}); ok {
			return c.Type, nil
		}
	}
	return nil, fmt.Errorf("type %q: %w", name, finder.ErrNotFound)
}

// Detail summarises the entity c holds: a type's kind, a data symbol's
// type and location, or a function's prototype.
func (s *Session) Detail(c finder.Cursor) string {
	switch c.Kind {
	case finder.ResultType:
		return c.Type.Kind().String()
	case finder.ResultData:
		typeName := render.UnknownType
		if t, err := s.Renderer.Resolver().Lookup(c.Data.Type); err == nil {
			typeName = s.Renderer.TypeNameString(t)
		}
		return typeName + " " + render.Location(c.Data.Location, s.Module.Machine)
	case finder.ResultFunction:
		var b strings.Builder
		_ = s.Renderer.FunctionPrototype(&b, c.Function, s.Module.Name, c.Function.Start)
		return b.String()
	}
	return ""
}
