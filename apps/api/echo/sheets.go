package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/report"
	"github.com/impact7/scoredesk/core/score"
	"github.com/impact7/scoredesk/core/sheet"
)

type sheetApi struct {
	ServerDeps
}

func registerSheetAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := sheetApi{deps}

	ag := g.Group("", jwt)
	ag.GET("/departments", api.departments)
	ag.GET("/sheets", api.query)
	ag.POST("/sheets", api.create)

	// detail endpoints
	dg := ag.Group("/sheets/:sheet", sheetMiddleware(deps.Lifecycle))
	dg.GET("", api.retrieve)
	dg.PUT("", api.rename)
	dg.DELETE("", api.destroy)
	dg.GET("/labels", api.labels)
	dg.PUT("/labels", api.setLabels)
	dg.GET("/trend", api.trend)
	dg.GET("/records", api.queryRecords)
	dg.POST("/records", api.createRecord)
	dg.PUT("/records/:row", api.updateRecord)
	dg.DELETE("/records/:row", api.clearRecord)
	dg.GET("/records/:row/commentary", api.commentary)
}

// Handlers

func (api *sheetApi) departments(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, score.AllSpecs())
}

func (api *sheetApi) query(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	sheets, err := api.Lifecycle.ListActiveSheets(rctx)
	if err != nil {
		return errors.Wrap(err, "listing sheets")
	}
	templates, err := api.Lifecycle.ListTemplates(rctx)
	if err != nil {
		return errors.Wrap(err, "listing templates")
	}
	return ctx.JSON(http.StatusOK, SheetsResponse{Sheets: sheets, Templates: templates})
}

func (api *sheetApi) create(ctx echo.Context) error {
	var data CreateSheetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CreateSheetRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	info, err := api.Lifecycle.CreateFromTemplate(ctx.Request().Context(), data.Template, data.Title, data.Labels)
	if err != nil && (info.Title == "" || !core.IsWarning(err)) {
		return errors.Wrap(err, "creating sheet")
	}
	msg := fmt.Sprintf("sheet %q created", info.Title)
	api.Logger.Info(msg, getContextIdentity(ctx))

	if err != nil { // created, but the reference labels could not be saved
		return ctx.JSON(http.StatusCreated, core.Result{Status: core.StatusWarning, Message: msg + ": " + err.Error()})
	}
	return ctx.JSON(http.StatusCreated, core.Success(msg))
}

func (api *sheetApi) retrieve(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	view, err := api.view(ctx, info.Title)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *sheetApi) rename(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	var data RenameSheetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RenameSheetRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	if err := api.Lifecycle.Rename(ctx.Request().Context(), info.Title, data.Title); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}
	return ctx.JSON(http.StatusOK, core.Success(fmt.Sprintf("sheet %q renamed to %q", info.Title, data.Title)))
}

func (api *sheetApi) destroy(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	if err := api.Lifecycle.Delete(ctx.Request().Context(), info.Title); err != nil {
		return errors.Wrap(err, "deleting sheet")
	}
	api.Logger.Info(fmt.Sprintf("sheet %q deleted", info.Title), getContextIdentity(ctx))
	return ctx.JSON(http.StatusOK, core.Success(fmt.Sprintf("sheet %q deleted", info.Title)))
}

func (api *sheetApi) labels(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	labels, err := api.Labels.ReadLabels(ctx.Request().Context(), info.Title)
	if err != nil {
		return errors.Wrap(err, "reading labels")
	}
	return ctx.JSON(http.StatusOK, LabelsRequest{Labels: labels})
}

func (api *sheetApi) setLabels(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	var data LabelsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LabelsRequest")
	}
	data.Validate()

	if err := api.Labels.WriteLabels(ctx.Request().Context(), info.Title, data.Labels); err != nil {
		return errors.Wrap(err, "writing labels")
	}
	return ctx.JSON(http.StatusOK, core.Success("reference labels saved"))
}

func (api *sheetApi) trend(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	name := core.CleanString(ctx.QueryParam("name"))
	rctx := ctx.Request().Context()

	labels, err := api.Labels.ReadLabels(rctx, info.Title)
	if err != nil {
		return errors.Wrap(err, "reading labels")
	}
	aggs, err := api.Trend.PastAggregates(rctx, name, labels, info.Title)
	if err != nil {
		return errors.Wrap(err, "looking up trend")
	}
	return ctx.JSON(http.StatusOK, TrendResponse{Name: name, Labels: labels, Aggregates: aggs, Trend: aggs.Trend()})
}

func (api *sheetApi) queryRecords(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	records, err := api.Records.ListRecords(ctx.Request().Context(), info.Title)
	if err != nil {
		return errors.Wrap(err, "listing records")
	}

	filter := sheet.Filter{Search: ctx.QueryParam("search"), Status: sheet.ParseStatus(ctx.QueryParam("status"))}
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	return ctx.JSON(http.StatusOK, sheet.Paginate(filter.Apply(records), page))
}

func (api *sheetApi) createRecord(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	var data RecordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	row, err := api.Records.AppendRecord(ctx.Request().Context(), info.Title, data.Record())
	if err != nil {
		return errors.Wrap(err, "appending record")
	}
	api.Commentary.Invalidate(api.Conf.Sheets.SpreadsheetID, data.Name)
	return api.mutated(ctx, http.StatusCreated, info.Title, row, fmt.Sprintf("%s saved", data.Name))
}

func (api *sheetApi) updateRecord(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	row, err := rowParam(ctx)
	if err != nil {
		return err
	}
	var data RecordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	if err := api.Records.UpdateRecord(ctx.Request().Context(), info.Title, row, data.Record()); err != nil {
		return errors.Wrap(err, "updating record")
	}
	api.Commentary.Invalidate(api.Conf.Sheets.SpreadsheetID, data.Name)
	return api.mutated(ctx, http.StatusOK, info.Title, row, fmt.Sprintf("%s updated", data.Name))
}

func (api *sheetApi) clearRecord(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	row, err := rowParam(ctx)
	if err != nil {
		return err
	}
	if err := api.Records.ClearRecord(ctx.Request().Context(), info.Title, row); err != nil {
		return errors.Wrap(err, "clearing record")
	}
	api.Logger.Info(fmt.Sprintf("record %d of %q cleared", row, info.Title), getContextIdentity(ctx))
	return api.mutated(ctx, http.StatusOK, info.Title, row, "record cleared")
}

func (api *sheetApi) commentary(ctx echo.Context) error {
	info, err := getContextSheet(ctx)
	if err != nil {
		return err
	}
	row, err := rowParam(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()
	records, err := api.Records.ListRecords(rctx, info.Title)
	if err != nil {
		return errors.Wrap(err, "listing records")
	}
	for _, rec := range records {
		if rec.ID != row {
			continue
		}
		if refresh, _ := strconv.ParseBool(ctx.QueryParam("refresh")); refresh {
			api.Commentary.Invalidate(api.Conf.Sheets.SpreadsheetID, rec.Name)
		}
		c, err := api.Commentary.Get(rctx, api.Conf.Sheets.SpreadsheetID, report.Request{
			Department: rec.DeptType,
			Student:    rec.Name,
			Scores:     rec.Scores,
		})
		if err != nil {
			return errors.Wrap(err, "generating commentary")
		}
		return ctx.JSON(http.StatusOK, c)
	}
	return core.NewNotFoundError(fmt.Sprintf("no record on row %d", row))
}

// view re-reads a sheet with its labels and stats.
func (api *sheetApi) view(ctx echo.Context, title string) (*SheetView, error) {
	rctx := ctx.Request().Context()
	snap, err := api.Records.Sheet(rctx, title)
	if err != nil {
		return nil, errors.Wrap(err, "reading sheet")
	}
	labels, err := api.Labels.ReadLabels(rctx, title)
	if err != nil {
		return nil, errors.Wrap(err, "reading labels")
	}
	return &SheetView{Snapshot: snap, Labels: labels, Stats: score.Summarize(snap.Records)}, nil
}

func (api *sheetApi) mutated(ctx echo.Context, code int, title string, row int, msg string) error {
	view, err := api.view(ctx, title)
	if err != nil {
		return err
	}
	return ctx.JSON(code, MutationResponse{Result: core.Success(msg), Row: row, Sheet: view})
}

func rowParam(ctx echo.Context) (int, error) {
	row, err := strconv.Atoi(ctx.Param("row"))
	if err != nil || row < 2 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "row", Error: "a record row is a number from 2"})
	}
	return row, nil
}
