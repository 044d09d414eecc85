package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/sheet"
	logsvc "github.com/impact7/scoredesk/services/logger"
	"github.com/impact7/scoredesk/storage/sheets"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up the spreadsheet
	backend, err := sheets.Open(context.Background(), conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening spreadsheet: %v", err), err)
	}
	id := conf.Sheets.SpreadsheetID
	records := sheet.NewRecordAdapter(backend, id, logger)
	labels := sheet.NewLabelStore(backend, id, logger)

	// start CLI
	cli := commandLine{
		records:   records,
		labels:    labels,
		lifecycle: sheet.NewLifecycleManager(backend, id, conf.Sheets.TemplatePrefix, labels, logger),
		trend:     sheet.NewTrendService(records),
		in:        os.Stdin,
		out:       os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
