package launcher

import (
	"fmt"

	result "leaderboard-launcher/internal/result"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var inspectResultFn = result.Inspect

type statusReport struct {
	RouteID  string          `json:"route_id"`
	Seed     int             `json:"seed"`
	Result   string          `json:"result_file"`
	Exists   bool            `json:"exists"`
	Progress [2]int          `json:"progress"`
	Records  int             `json:"records"`
	Failed   []result.Record `json:"failed,omitempty"`
	Complete bool            `json:"complete"`
	Reason   string          `json:"reason,omitempty"`
}

func newStatusCommand(opts *cliOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:           "status [route-file]",
		Short:         "Report whether the route's result file shows a completed run",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := runWithLoggerAndCleanup("status", false, func() int {
				cfg, ev, err := resolveFromCommand(cmd, opts, args)
				if err != nil {
					logError(err.Error())
					return 1
				}
				plan, err := buildPlan(cfg, ev)
				if err != nil {
					logError(err.Error())
					return 1
				}
				return runStatus(plan, asJSON)
			})
			return exitErrorOrNil(code)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")
	return cmd
}

// runStatus exits 0 only when the result file shows a complete route.
func runStatus(plan *launchPlan, asJSON bool) int {
	summary, err := inspectResultFn(plan.Paths.ResultFile)
	if err != nil {
		logError(err.Error())
		return 1
	}
	report := statusReport{
		RouteID:  plan.Paths.RouteID,
		Seed:     plan.Config.Seed,
		Result:   summary.Path,
		Exists:   summary.Exists,
		Progress: [2]int{summary.Done, summary.Total},
		Records:  summary.Records,
		Failed:   summary.Failed,
		Complete: summary.Complete,
		Reason:   summary.Reason,
	}

	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			logError(fmt.Sprintf("failed to encode status: %v", err))
			return 1
		}
		fmt.Fprintln(consoleOut, string(data))
	} else {
		fmt.Fprintf(consoleOut, "Route %s seed %d: %s\n", report.RouteID, report.Seed, statusMark(consoleOut, report.Complete))
		fmt.Fprintf(consoleOut, "  Result:   %s\n", report.Result)
		if report.Exists {
			fmt.Fprintf(consoleOut, "  Progress: %d/%d\n", report.Progress[0], report.Progress[1])
			fmt.Fprintf(consoleOut, "  Records:  %d\n", report.Records)
		}
		for _, rec := range report.Failed {
			fmt.Fprintf(consoleOut, "  Failed:   %s: %s\n", recordLabel(rec), rec.Status)
		}
		if report.Reason != "" {
			fmt.Fprintf(consoleOut, "  Reason:   %s\n", report.Reason)
		}
	}

	if report.Complete {
		return 0
	}
	return 1
}

func recordLabel(rec result.Record) string {
	if rec.RouteID != "" {
		return rec.RouteID
	}
	return fmt.Sprintf("record %d", rec.Index)
}
