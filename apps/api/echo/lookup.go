package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
	"github.com/impact7/scoredesk/core/sheet"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type (
	// lookupQuery is sent by the score form on every keystroke of the name field.
	lookupQuery struct {
		Name string `json:"name"`
	}

	// lookupMessage answers the latest query only.
	lookupMessage struct {
		sheet.LookupResult
		Error string `json:"error,omitempty"`
	}
)

type lookupApi struct {
	ServerDeps
}

func registerLookupAPI(g *echo.Group, deps ServerDeps) {
	api := lookupApi{deps}
	jwt := middleware.JWTWithConfig(newJWTConfig(deps.Conf, "query:token"))
	g.GET("/ws/lookup", api.lookup, jwt)
}

// lookup streams the past aggregates of the student whose name is being typed. Queries are
// debounced, and a newer query cancels the one in flight.
func (api *lookupApi) lookup(ctx echo.Context) error {
	title := core.CleanString(ctx.QueryParam("sheet"))
	rctx := ctx.Request().Context()

	info, err := api.Lifecycle.Resolve(rctx, title)
	if err != nil {
		return errors.Wrap(err, "resolving sheet")
	}

	ws, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// the upgrader has already answered the client
		return nil
	}
	defer ws.Close()

	// the request context ends with the upgrade handler on some servers
	lctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lookup := sheet.NewLookup(lctx, api.Conf.Lookup.Debounce, func(ctx context.Context, name string) (sheet.Aggregates, error) {
		// labels may change while the connection is open
		labels, err := api.Labels.ReadLabels(ctx, info.Title)
		if err != nil {
			return sheet.Aggregates{}, err
		}
		return api.Trend.PastAggregates(ctx, name, labels, info.Title)
	})

	go api.readQueries(ws, lookup)
	api.writeResults(ws, lookup, getContextIdentity(ctx))
	return nil
}

// readQueries feeds queries to lookup until the connection drops, then closes it.
func (api *lookupApi) readQueries(ws *websocket.Conn, lookup *sheet.Lookup) {
	defer lookup.Close()

	ws.SetReadLimit(512)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var q lookupQuery
		if err := ws.ReadJSON(&q); err != nil {
			return
		}
		lookup.Submit(core.CleanString(q.Name))
	}
}

func (api *lookupApi) writeResults(ws *websocket.Conn, lookup *sheet.Lookup, id core.Identity) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case res, ok := <-lookup.Results():
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			msg := lookupMessage{LookupResult: res}
			if res.Err != nil {
				api.Logger.Warn("trend lookup failed", errors.Wrap(res.Err, "looking up "+res.Name), id)
				msg.Error = http.StatusText(http.StatusInternalServerError)
			}
			if err := ws.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
