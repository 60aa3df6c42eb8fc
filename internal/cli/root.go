// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package cli implements the command line interface of the pdfcmp tool.
package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/CuteXiaoKe/pdf/internal/profile"
	"github.com/CuteXiaoKe/pdf/logging"
)

// Exit codes of the pdfcmp tool.
const (
	// ExitSuccess indicates that no differences were found.
	ExitSuccess = 0

	// ExitDifferences indicates that the documents differ.
	ExitDifferences = 1

	// ExitError indicates that the comparison could not be carried out.
	ExitError = 2
)

// ErrDifferencesFound is returned by commands which found differences.
// It only determines the exit code and is not reported as an error.
var ErrDifferencesFound = errors.New("differences found")

// app holds the state shared by all commands.
type app struct {
	debug      bool
	color      string
	cpuprofile string
	memprofile string

	logger      *log.Logger
	stopProfile func() error
}

// NewRootCommand creates the root pdfcmp command with all subcommands.
func NewRootCommand() *cobra.Command {
	a := &app{}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pdfcmp",
		Short: "Compare the object structure of PDF files",
		Long: `pdfcmp compares two PDF files object by object.

The first file is the document to check, the second file is the expected
document.  Differences are reported together with the path from the nearest
pair of indirect objects to the differing values.  The tool can also compare
document information, link annotations, and the mark positioning of
OpenType fonts.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.setupLogging(cmd.ErrOrStderr())
			stop, err := profile.Start(a.cpuprofile, a.memprofile)
			if err != nil {
				return err
			}
			a.stopProfile = stop
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.StringVar(&a.color, "color", "auto", "colorize output: auto, always, never")
	flags.StringVar(&a.cpuprofile, "cpuprofile", "", "write CPU profile to `file`")
	flags.StringVar(&a.memprofile, "memprofile", "", "write memory profile to `file`")

	rootCmd.AddCommand(a.newCompareCommand())
	rootCmd.AddCommand(a.newInfoCommand())
	rootCmd.AddCommand(a.newLinksCommand())
	rootCmd.AddCommand(a.newMarkposCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// setupLogging installs a charm logger, both for the command line tool and
// as the handler for the library log output.
func (a *app) setupLogging(w io.Writer) {
	a.logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	if a.debug {
		a.logger.SetLevel(log.DebugLevel)
	} else {
		a.logger.SetLevel(log.InfoLevel)
	}
	logging.SetLogger(slog.New(a.logger))
}

// Run executes the pdfcmp command line with the given arguments and
// returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	rootCmd := a.rootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()

	if a.stopProfile != nil {
		if perr := a.stopProfile(); perr != nil && err == nil {
			err = perr
		}
	}
	defer logging.SetLogger(nil)

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrDifferencesFound):
		return ExitDifferences
	default:
		logger := a.logger
		if logger == nil {
			// the error happened before the logger was set up
			logger = log.New(stderr)
		}
		logger.Error("command failed", FieldError, err)
		return ExitError
	}
}
