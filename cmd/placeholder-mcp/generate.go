package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/placeholder-mcp/internal/loading"
	"github.com/ironsheep/placeholder-mcp/internal/placeholder"
)

func newGenerateCmd() *cobra.Command {
	var opts placeholder.Options

	cmd := &cobra.Command{
		Use:   "generate <src>...",
		Short: "Print placeholders for images",
		Long: `Print the placeholder data URI of each source.

A source is an http(s) URL, a data URI, a file:// URL, a path, or "-" for
image bytes on stdin. One source prints the bare data URI; several print a
JSON object with "placeholders" and "failures".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			sources, err := readSources(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if len(sources) == 1 {
				return generateOne(cmd, a.svc, sources[0], opts)
			}
			return generateMany(cmd, a.svc, sources, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Width, "width", 0, "placeholder width (default from config)")
	flags.IntVar(&opts.Height, "height", 0, "placeholder height (default from config)")
	flags.Float64Var(&opts.Quality, "quality", 0, "JPEG quality in (0,1] (default from config)")
	return cmd
}

func readSources(stdin io.Reader, args []string) ([]placeholder.Source, error) {
	sources := make([]placeholder.Source, 0, len(args))
	usedStdin := false
	for _, arg := range args {
		if arg != "-" {
			sources = append(sources, placeholder.FromLocation(arg))
			continue
		}
		if usedStdin {
			return nil, errors.New(`"-" may be given only once`)
		}
		usedStdin = true
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		sources = append(sources, placeholder.Source{Data: data, Name: "stdin"})
	}
	return sources, nil
}

// generateOne prints a single data URI. A debounced indicator on stderr
// reports slow loads.
func generateOne(cmd *cobra.Command, svc *placeholder.Service, src placeholder.Source, opts placeholder.Options) error {
	stderr := cmd.ErrOrStderr()
	gate := loading.NewGate(loading.WithOnChange(func(visible bool) {
		if visible {
			fmt.Fprintf(stderr, "generating placeholder for %s...\n", src)
		}
	}))
	b := placeholder.NewBinding(svc, gate)
	defer b.Close()

	st, _ := b.Load(cmd.Context(), src, opts)
	if st.Err != nil {
		return st.Err
	}
	fmt.Fprintln(cmd.OutOrStdout(), st.Placeholder)
	return nil
}

func generateMany(cmd *cobra.Command, svc *placeholder.Service, sources []placeholder.Source, opts placeholder.Options) error {
	if err := svc.CheckOptions(opts); err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	gate := loading.NewGate(loading.WithOnChange(func(visible bool) {
		if visible {
			fmt.Fprintf(stderr, "generating %d placeholders...\n", len(sources))
		}
	}))
	defer gate.Stop()

	gate.SetLoading(true)
	res := svc.Batch(cmd.Context(), sources, opts)
	gate.SetLoading(false)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if len(res.Placeholders) == 0 {
		return fmt.Errorf("all %d sources failed", len(sources))
	}
	return nil
}
