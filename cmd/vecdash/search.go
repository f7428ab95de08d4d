package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vecdash/internal/domain/report"
	"github.com/kailas-cloud/vecdash/internal/domain/search/request"
)

// maxDescriptionWidth caps the description column of the terminal table.
const maxDescriptionWidth = 60

// NewSearchCmd runs one query and prints the dashboard tables to stdout.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <prompt>",
		Short: "Run a vector search from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")
			numCandidates, _ := cmd.Flags().GetInt("num-candidates")

			a, err := newApp(cmd.Context(), envFlag(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			req, err := request.NewWithLimits(args[0], numCandidates, limit, a.limits())
			if err != nil {
				return err
			}

			rep, err := a.searchSvc.Search(cmd.Context(), req)
			if err != nil {
				return err
			}

			if asJSON {
				return writeReportJSON(cmd.OutOrStdout(), rep)
			}
			return writeReportTables(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().IntP("limit", "n", 0, "Maximum hits (0 uses the configured limit)")
	cmd.Flags().Int("num-candidates", 0, "Candidate pool size (0 uses the configured value)")
	return cmd
}

func writeReportJSON(w io.Writer, rep report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeReportTables(w io.Writer, rep report.Report) error {
	if rep.IsEmpty() {
		_, err := fmt.Fprintln(w, "No matching companies.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCompany Name\tScore\tCompany Description\tInvestor Names")
	for _, row := range rep.Companies {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			row.Index, row.Name, strconv.FormatFloat(row.Score, 'f', 4, 64),
			truncate(row.Description, maxDescriptionWidth), row.InvestorNames())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tInvestor Name\tCount")
	for _, inv := range rep.Investors {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", inv.Index, inv.Name, inv.Count)
	}
	return tw.Flush()
}

// truncate shortens s to at most width runes on one line, marking the cut with "...".
func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
