package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/impact7/scoredesk/apps/api/echo"
	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/auth"
	"github.com/impact7/scoredesk/core/report"
	"github.com/impact7/scoredesk/core/sheet"
	"github.com/impact7/scoredesk/services/identity"
	logsvc "github.com/impact7/scoredesk/services/logger"
	"github.com/impact7/scoredesk/storage/sheets"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	sheetsLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "SHEETS : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	sheetsLogger.Enable(!conf.Debug)

	// set up the spreadsheet
	backend, err := sheets.Open(context.Background(), conf, sheetsLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening spreadsheet: %v", err), err)
	}
	spreadsheetID := conf.Sheets.SpreadsheetID

	// set up services
	records := sheet.NewRecordAdapter(backend, spreadsheetID, sheetsLogger)
	labels := sheet.NewLabelStore(backend, spreadsheetID, sheetsLogger)
	lifecycle := sheet.NewLifecycleManager(backend, spreadsheetID, conf.Sheets.TemplatePrefix, labels, sheetsLogger)
	authenticator := auth.NewAuthenticator(identity.GoogleResolver{}, conf.Auth.AllowedDomains, logger)
	commentary := report.NewCache(report.Fallback{Secondary: report.Local{}})

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("sheets").Set(conf.Sheets.Backend)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Authenticator: authenticator,
			Records:       records,
			Labels:        labels,
			Lifecycle:     lifecycle,
			Trend:         sheet.NewTrendService(records),
			Commentary:    commentary,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
