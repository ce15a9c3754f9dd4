package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/meridian-vc/scout-cli/internal/model"
	"github.com/meridian-vc/scout-cli/internal/report"
)

var (
	runThesis  string
	runAttrs   []string
	runMax     int
	runOutHTML string
	runOutXLSX string
	runOutCSV  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover and enrich companies for an investment thesis",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initScout()
		if err != nil {
			return err
		}

		var results []model.EnrichedCompany
		err = env.Pipeline.Run(ctx, model.ScoutRequest{
			Thesis:        runThesis,
			Attributes:    runAttrs,
			MaxCandidates: runMax,
		}, func(e model.ProgressEvent) {
			switch e.Kind {
			case model.EventStatus:
				fmt.Fprintln(cmd.ErrOrStderr(), e.Message)
			case model.EventComplete:
				results = e.Results
			case model.EventError:
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", e.Message)
			}
		})
		if err != nil {
			return err
		}

		rep := report.Report{
			Thesis:      runThesis,
			GeneratedAt: time.Now(),
			Companies:   results,
		}
		if runOutHTML != "" {
			if err := writeHTMLReport(runOutHTML, rep); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "wrote", runOutHTML)
		}
		if runOutXLSX != "" {
			if err := report.WriteXLSX(runOutXLSX, rep); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "wrote", runOutXLSX)
		}
		if runOutCSV != "" {
			if err := writeCSVReport(runOutCSV, rep); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "wrote", runOutCSV)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func writeHTMLReport(path string, rep report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create html report")
	}
	defer f.Close()
	return report.RenderHTML(f, rep)
}

func writeCSVReport(path string, rep report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create csv report")
	}
	defer f.Close()
	return report.WriteCSV(f, rep)
}

func init() {
	runCmd.Flags().StringVar(&runThesis, "thesis", "", "investment thesis to scout (required)")
	runCmd.Flags().StringSliceVar(&runAttrs, "attributes", nil, "attributes to research (default: full schema)")
	runCmd.Flags().IntVar(&runMax, "max", 0, "max candidates to discover (default from config)")
	runCmd.Flags().StringVar(&runOutHTML, "out-html", "", "write an HTML report to this path")
	runCmd.Flags().StringVar(&runOutXLSX, "out-xlsx", "", "write an XLSX workbook to this path")
	runCmd.Flags().StringVar(&runOutCSV, "out-csv", "", "write a CSV table to this path")
	_ = runCmd.MarkFlagRequired("thesis")
	rootCmd.AddCommand(runCmd)
}
