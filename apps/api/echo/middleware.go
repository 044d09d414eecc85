package echoapi

import (
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/sheet"
)

const contextSheetKey = "sheet"

// sheetMiddleware resolves the :sheet path parameter to an existing sheet of the spreadsheet,
// answering 404 with the closest title otherwise.
func sheetMiddleware(lifecycle *sheet.LifecycleManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			title := ctx.Param("sheet")
			if unescaped, err := url.PathUnescape(title); err == nil {
				title = unescaped
			}
			info, err := lifecycle.Resolve(ctx.Request().Context(), title)
			if err != nil {
				return errors.Wrap(err, "resolving sheet")
			}
			ctx.Set(contextSheetKey, info)
			return next(ctx)
		}
	}
}

func getContextSheet(ctx echo.Context) (sheet.SheetInfo, error) {
	if info, ok := ctx.Get(contextSheetKey).(sheet.SheetInfo); ok {
		return info, nil
	}
	return sheet.SheetInfo{}, errHttpNotFound
}

// getContextIdentity returns the signed-in staff member, for log entries.
func getContextIdentity(ctx echo.Context) core.Identity {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return core.Identity{}
	}
	return core.Identity{Email: claims.Email}
}
