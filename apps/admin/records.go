package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/score"
	"github.com/impact7/scoredesk/core/sheet"
)

type trendListing struct {
	Name       string           `json:"name" yaml:"name"`
	Sheet      string           `json:"sheet" yaml:"sheet"`
	Labels     sheet.Labels     `json:"labels" yaml:"labels"`
	Aggregates sheet.Aggregates `json:"aggregates" yaml:"aggregates"`
}

func (cli *commandLine) recordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List and clear the student records of a sheet",
	}

	var (
		search string
		status string
		page   int
	)
	list := &cobra.Command{
		Use:   "list SHEET",
		Short: "List the records of a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := cli.records.ListRecords(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			filter := sheet.Filter{Search: search, Status: sheet.ParseStatus(status)}
			p := sheet.Paginate(filter.Apply(records), page)
			return cli.print(p, func(w io.Writer) {
				fmt.Fprintln(w, "ROW\tNAME\tGRADE\tDEPT\tSUM\tCOMPLETE")
				for _, r := range p.Records {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\n",
						r.ID, r.Name, r.Grade, r.DeptType, r.Scores[score.SumHeader], r.Complete())
				}
				fmt.Fprintf(w, "page %d/%d (%d records)\n", p.Page, p.TotalPages, p.Total)
			})
		},
	}
	list.Flags().StringVarP(&search, "search", "s", "", "match name, school, grade, dept, type or date")
	list.Flags().StringVar(&status, "status", string(sheet.StatusAll), "all|completed|incomplete")
	list.Flags().IntVarP(&page, "page", "p", 1, "page to show")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear SHEET ROW",
		Short: "Blank a record row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid row %q", args[1])
			}
			if err := cli.confirm(fmt.Sprintf("Clear row %d of %q?", row, args[0])); err != nil {
				return err
			}
			if err := cli.records.ClearRecord(cmd.Context(), args[0], row); err != nil {
				return err
			}
			return cli.printResult(core.Success(fmt.Sprintf("row %d of %q cleared", row, args[0])))
		},
	})

	return cmd
}

func (cli *commandLine) labelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Read or write the reference sheets of a sheet",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get SHEET",
		Short: "Show the reference sheets, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labels, err := cli.labels.ReadLabels(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cli.print(labels, func(w io.Writer) {
				fmt.Fprintln(w, "AGO\tSHEET")
				for i, l := range labels {
					fmt.Fprintf(w, "%d\t%s\n", i+1, l)
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set SHEET [LABEL1 [LABEL2 [LABEL3]]]",
		Short: "Overwrite the reference sheets; missing labels are cleared",
		Args:  cobra.RangeArgs(1, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var labels sheet.Labels
			for i, l := range args[1:] {
				labels[i] = strings.TrimSpace(l)
			}
			if err := cli.labels.WriteLabels(cmd.Context(), args[0], labels); err != nil {
				return err
			}
			return cli.printResult(core.Success(fmt.Sprintf("reference labels of %q saved", args[0])))
		},
	})

	return cmd
}

func (cli *commandLine) trendCommand() *cobra.Command {
	var sheetTitle string
	cmd := &cobra.Command{
		Use:   "trend NAME",
		Short: "Show a student's totals over the reference sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			labels, err := cli.labels.ReadLabels(ctx, sheetTitle)
			if err != nil {
				return err
			}
			aggs, err := cli.trend.PastAggregates(ctx, args[0], labels, sheetTitle)
			if err != nil {
				return err
			}
			res := trendListing{Name: args[0], Sheet: sheetTitle, Labels: labels, Aggregates: aggs}
			return cli.print(res, func(w io.Writer) {
				fmt.Fprintln(w, "SHEET\tSUM")
				for i := len(labels) - 1; i >= 0; i-- {
					if labels[i] != "" {
						fmt.Fprintf(w, "%s\t%s\n", labels[i], aggs[len(labels)-1-i])
					}
				}
				fmt.Fprintf(w, "%s\t%s\n", sheetTitle, aggs[len(aggs)-1])
			})
		},
	}
	cmd.Flags().StringVar(&sheetTitle, "sheet", "", "current sheet")
	_ = cmd.MarkFlagRequired("sheet")
	return cmd
}
