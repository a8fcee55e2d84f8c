// Command isoplot renders the chart blocks of a fixed-width plot header file
// and its companion curve-data file as images with a ratio panel.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/user/isoplot_go/internal/convert"
	"github.com/user/isoplot_go/internal/report"
)

// reportedError marks an error that was already logged by the command.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := convert.DefaultOptions()
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "isoplot [header.P92] [curves.CUR]",
		Short: "Render fixed-width plot files as charts",
		Long: `isoplot reads a fixed-width plot header file and its curve-data file
and writes one chart per block, with the curves on top and their ratios
against the first curve below.

The curve file defaults to the header path with its extension replaced by
.CUR; charts are written to a directory named after the curve file.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			log.SetLevel(level)

			headerPath, curvePath := resolvePaths(args)
			err = NewApp(log, opts).HandleConvert(headerPath, curvePath)
			if err != nil {
				reportFailure(log, err)
				return reportedError{err}
			}
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.Format, "format", "f", opts.Format, "Chart image format: "+strings.Join(report.SupportedFormats, ", "))
	flags.IntVar(&opts.WidthPx, "width", opts.WidthPx, "Chart width in pixels")
	flags.IntVar(&opts.HeightPx, "height", opts.HeightPx, "Chart height in pixels")
	flags.BoolVar(&opts.DeclaredBounds, "declared-bounds", false, "Use each block's declared page dimensions as axis bounds instead of autoscaling")
	flags.StringVar(&opts.ReportPath, "report", "", "Also write a PDF booklet of all charts to this file")
	flags.StringVar(&opts.WorkbookPath, "workbook", "", "Also export block data to this xlsx file")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	return rootCmd
}

func newLogger(cmd *cobra.Command) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

// reportFailure prints a console message for err, with usage hints when an
// input file could not be opened.
func reportFailure(log *logrus.Logger, err error) {
	var openErr *convert.OpenError
	if errors.As(err, &openErr) && openErr.Role == "header" {
		log.Errorf("No file selected: %v", err)
		log.Error("Usage: isoplot <header file> [curve file]")
		return
	}
	log.Error(err)
}
