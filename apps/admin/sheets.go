package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/sheet"
)

type sheetListing struct {
	Sheets    []string `json:"sheets" yaml:"sheets"`
	Templates []string `json:"templates" yaml:"templates"`
}

func (cli *commandLine) sheetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "List, create, rename and delete exam sheets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List exam sheets and templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			active, err := cli.lifecycle.ListActiveSheets(ctx)
			if err != nil {
				return err
			}
			templates, err := cli.lifecycle.ListTemplates(ctx)
			if err != nil {
				return err
			}
			return cli.print(sheetListing{Sheets: active, Templates: templates}, func(w io.Writer) {
				fmt.Fprintln(w, "TITLE\tKIND")
				for _, s := range active {
					fmt.Fprintf(w, "%s\tsheet\n", s)
				}
				for _, s := range templates {
					fmt.Fprintf(w, "%s\ttemplate\n", s)
				}
			})
		},
	})

	var (
		template string
		labels   []string
	)
	create := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create an exam sheet from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(labels) > len(sheet.Labels{}) {
				return fmt.Errorf("at most %d reference labels", len(sheet.Labels{}))
			}
			var refs sheet.Labels
			copy(refs[:], labels)

			info, err := cli.lifecycle.CreateFromTemplate(cmd.Context(), template, args[0], refs)
			if err != nil && (info.Title == "" || !core.IsWarning(err)) {
				return err
			}
			res := core.Success(fmt.Sprintf("sheet %q created", info.Title))
			if err != nil {
				res = core.Result{Status: core.StatusWarning, Message: res.Message + ": " + err.Error()}
			}
			return cli.printResult(res)
		},
	}
	create.Flags().StringVarP(&template, "template", "t", "", "template to copy (default: the first template)")
	create.Flags().StringSliceVarP(&labels, "labels", "l", nil, "reference sheets, most recent first")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "rename TITLE NEW_TITLE",
		Short: "Rename an exam sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.lifecycle.Rename(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return cli.printResult(core.Success(fmt.Sprintf("sheet %q renamed to %q", args[0], args[1])))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete TITLE",
		Short: "Delete an exam sheet and all its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cli.lifecycle.Resolve(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := cli.confirm(fmt.Sprintf("Delete sheet %q and all its records?", args[0])); err != nil {
				return err
			}
			if err := cli.lifecycle.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return cli.printResult(core.Success(fmt.Sprintf("sheet %q deleted", args[0])))
		},
	})

	return cmd
}

func (cli *commandLine) printResult(res core.Result) error {
	return cli.print(res, func(w io.Writer) {
		fmt.Fprintf(w, "%s\t%s\n", res.Status, res.Message)
	})
}
