package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nconklindev/sway/internal/chart"
	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/pipeline"
	"github.com/nconklindev/sway/internal/types"
	"github.com/nconklindev/sway/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	mode       string
	configPath string
	exportDir  string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "sway [file.xlsx | -]",
		Short:         "Chart stakeholder analyses and change impact assessments from Excel workbooks",
		Args:          cobra.MaximumNArgs(1),
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd, opts, path)
		},
	}
	cmd.SetVersionTemplate("sway {{.Version}}\n")

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Analysis: auto, impact or stakeholder (default: ask)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML file overriding the built-in rules and vocabularies")
	cmd.Flags().StringVarP(&opts.exportDir, "export", "e", "", "Export directory; with a workbook argument, export without starting the UI")

	return cmd
}

func run(cmd *cobra.Command, opts options, path string) error {
	mode := types.Mode(opts.mode)
	switch mode {
	case "", pipeline.ModeAuto, types.ModeChangeImpact, types.ModeStakeholder:
	default:
		return fmt.Errorf("invalid --mode %q: want auto, impact or stakeholder", opts.mode)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	// With both a workbook and a directory there is nothing to ask.
	if opts.exportDir != "" && path != "" {
		return export(cmd.OutOrStdout(), cmd.InOrStdin(), cfg, path, mode, opts.exportDir)
	}
	if path == stdinPath {
		return errors.New("reading a workbook from stdin needs --export")
	}

	if os.Getenv("SWAY_DEBUG") != "" {
		f, err := tea.LogToFile("sway-debug.log", "sway")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	p := tea.NewProgram(ui.InitialModel(cfg, ui.Options{
		Path:      path,
		Mode:      mode,
		ExportDir: opts.exportDir,
	}), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

// stdinPath reads the workbook from standard input.
const stdinPath = "-"

// export runs one workbook without the UI and lists the files written.
func export(w io.Writer, in io.Reader, cfg *config.Config, path string, mode types.Mode, dir string) error {
	if os.Getenv("SWAY_DEBUG") == "" {
		log.SetOutput(io.Discard)
	}
	if mode == "" {
		mode = pipeline.ModeAuto
	}

	var report *pipeline.Report
	var err error
	if path == stdinPath {
		report, err = pipeline.RunReader(cfg, in, "stdin", mode)
	} else {
		report, err = pipeline.RunFile(cfg, path, mode)
	}
	if err != nil {
		return errors.New(pipeline.UserMessage(err))
	}

	for _, insight := range report.Insights {
		fmt.Fprintln(w, insight)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintln(w, "Warning:", warning)
	}

	files, err := chart.Export(dir, report, cfg.Vocabulary)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(w, f)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
