package main

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tender-barbarian/go-symlens/internal/finder"
	"github.com/tender-barbarian/go-symlens/internal/loader"
	"github.com/tender-barbarian/go-symlens/internal/session"
)

// app carries the global flags and the session opened from them.
type app struct {
	opts session.Options
	sess *session.Session
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "symcli",
		Short: "Query debug symbol tables and decode memory with them",

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.opts.Logger = log.New(cmd.ErrOrStderr(), "", 0)
			sess, err := session.Open(a.opts)
			if err != nil {
				return err
			}
			a.sess = sess
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.SymbolsPath, "symbols", "", "symbol table file (.toml, .yaml)")
	flags.StringVar(&a.opts.Root, "root", "", "Go source tree to index instead of a symbol table")
	flags.StringVar(&a.opts.ConfigPath, "config", "", "engine config file (.toml, .yaml)")

	root.AddCommand(
		a.searchCmd(),
		a.addrCmd(),
		a.lineCmd(),
		a.describeCmd(),
		a.decodeCmd(),
		a.fieldCmd(),
		a.protoCmd(),
		a.sourcesCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *app) searchCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find types, data and functions by wildcard name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.sess.Finder
			var hits []finder.Cursor
			if all {
				hits = f.SearchAllByName(args[0])
			} else if c, ok := f.SearchByName(args[0], finder.Cursor{}); ok {
				hits = append(hits, c)
			}
			return a.printHits(cmd.OutOrStdout(), args[0], hits)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every match instead of the first")
	return cmd
}

func (a *app) addrCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "addr ADDRESS",
		Short: "Find the data at, or the function containing, an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := session.ParseAddress(args[0])
			if err != nil {
				return err
			}
			f := a.sess.Finder
			var hits []finder.Cursor
			if all {
				hits = f.SearchAllByAddress(addr)
			} else if c, ok := f.SearchByAddress(addr, finder.Cursor{}); ok {
				hits = append(hits, c)
			}
			return a.printHits(cmd.OutOrStdout(), args[0], hits)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every match instead of the first")
	return cmd
}

func (a *app) printHits(w io.Writer, query string, hits []finder.Cursor) error {
	if len(hits) == 0 {
		return fmt.Errorf("%s: %w", query, finder.ErrNotFound)
	}
	table := defaultTable(w)
	table.SetHeader([]string{"Kind", "Source", "Name", "Detail"})
	for _, c := range hits {
		source := ""
		if sf := c.Source(); sf != nil {
			source = sf.Path
		}
		table.Append([]string{string(c.Kind), source, c.Name(), a.sess.Detail(c)})
	}
	table.Render()
	return nil
}

func (a *app) lineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "line ADDRESS",
		Short: "Print the source line covering an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := session.ParseAddress(args[0])
			if err != nil {
				return err
			}
			line, ok := a.sess.Finder.LookupSourceLine(addr)
			if !ok {
				return fmt.Errorf("no source line contains 0x%x: %w", addr, finder.ErrNotFound)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s:%d\n", line.Source.Path, line.Line)
			return err
		},
	}
}

func (a *app) describeCmd() *cobra.Command {
	var (
		depth  int
		source string
	)
	cmd := &cobra.Command{
		Use:   "describe TYPE",
		Short: "Print the definition of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.sess.LookupType(args[0], source)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("depth") {
				depth = a.sess.Config.DescribeDepth
			}
			out := cmd.OutOrStdout()
			if err := a.sess.Renderer.Describe(out, t, 0, depth); err != nil {
				return err
			}
			_, err = fmt.Fprintln(out)
			return err
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "levels of nested structures to expand (default from config)")
	cmd.Flags().StringVar(&source, "source", "", "restrict the lookup to one source file")
	return cmd
}

func (a *app) decodeCmd() *cobra.Command {
	var (
		depth  int
		source string
	)
	cmd := &cobra.Command{
		Use:   "decode TYPE HEX",
		Short: "Decode a hex encoded buffer as a type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := session.ParseHex(args[1])
			if err != nil {
				return err
			}
			t, err := a.sess.LookupType(args[0], source)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("depth") {
				depth = a.sess.Config.DecodeDepth
			}
			out := cmd.OutOrStdout()
			size, err := a.sess.Decoder.Decode(out, buf, t, 0, depth)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "\n(%d bytes)\n", size)
			return err
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "levels of structures and arrays to expand (default from config)")
	cmd.Flags().StringVar(&source, "source", "", "restrict the lookup to one source file")
	return cmd
}

func (a *app) fieldCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "field TYPE FIELD",
		Short: "Print the bit offset and size of a structure member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.sess.LookupType(args[0], source)
			if err != nil {
				return err
			}
			offset, size, err := a.sess.Decoder.FieldInfo(t, args[1], len(args[1]))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s.%s: bit offset %d, bit size %d\n", t.Name, args[1], offset, size)
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "restrict the lookup to one source file")
	return cmd
}

func (a *app) protoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "proto FUNCTION",
		Short: "Print the prototype of the first function matching a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := a.sess.Finder.FindFunctionByName(args[0], finder.Cursor{})
			if !ok {
				return fmt.Errorf("function %q: %w", args[0], finder.ErrNotFound)
			}
			out := cmd.OutOrStdout()
			if err := a.sess.Renderer.FunctionPrototype(out, c.Function, a.sess.Module.Name, c.Function.Start); err != nil {
				return err
			}
			_, err := fmt.Fprintln(out)
			return err
		},
	}
}

func (a *app) sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the source files of the module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := defaultTable(cmd.OutOrStdout())
			table.SetHeader([]string{"Path", "Types", "Data", "Functions", "Lines"})
			for _, sf := range a.sess.Finder.GetSources() {
				table.Append([]string{
					sf.Path,
					strconv.Itoa(len(sf.Types)),
					strconv.Itoa(len(sf.Data)),
					strconv.Itoa(len(sf.Functions)),
					strconv.Itoa(len(sf.Lines)),
				})
			}
			table.Render()
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the loaded module as a symbol table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return loader.Encode(cmd.OutOrStdout(), loader.Format(format), a.sess.Module)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(loader.FormatTOML), "output format: toml or yaml")
	return cmd
}

func defaultTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetCenterSeparator(" ")
	table.SetRowSeparator("-")
	table.SetAutoWrapText(false)
	return table
}
