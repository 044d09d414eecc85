package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/impact7/scoredesk/core/sheet"
)

// Output formats
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errAborted         = errors.New("aborted")
	errConfirmRequired = errors.New("refusing to delete without --yes: stdin is not a terminal")
)

type commandLine struct {
	records   *sheet.RecordAdapter
	labels    *sheet.LabelStore
	lifecycle *sheet.LifecycleManager
	trend     *sheet.TrendService

	in  io.Reader
	out io.Writer

	// global flags
	output string
	yes    bool
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCommand()
	root.SetArgs(args[1:])
	root.SetIn(cli.in)
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	return root.ExecuteContext(context.Background())
}

func (cli *commandLine) rootCommand() *cobra.Command {
	cli.output, cli.yes = outputTable, false

	cmd := &cobra.Command{
		Use:           "scoredesk-admin",
		Short:         "Manage the exam sheets of the score desk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cli.output {
			case outputTable, outputJSON, outputYAML:
				return nil
			}
			return fmt.Errorf("invalid output %q: must be one of table, json, yaml", cli.output)
		},
	}
	cmd.PersistentFlags().StringVarP(&cli.output, "output", "o", outputTable, "output format (table|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&cli.yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(cli.sheetsCommand())
	cmd.AddCommand(cli.recordsCommand())
	cmd.AddCommand(cli.labelsCommand())
	cmd.AddCommand(cli.trendCommand())
	return cmd
}

// print writes v in the selected output format; table renders the table format.
func (cli *commandLine) print(v interface{}, table func(w io.Writer)) error {
	switch cli.output {
	case outputJSON:
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(cli.out)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

// confirm asks before an irreversible action. Without --yes it requires an interactive stdin.
func (cli *commandLine) confirm(prompt string) error {
	if cli.yes {
		return nil
	}
	if f, ok := cli.in.(*os.File); !ok || !isTerminalFunc(int(f.Fd())) {
		return errConfirmRequired
	}
	fmt.Fprintf(cli.out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(cli.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return errAborted
}
