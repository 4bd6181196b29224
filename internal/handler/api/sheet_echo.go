package api

import (
	"net/http"
	"time"

	models "ETFSheet/internal/domain/models"
	domrepo "ETFSheet/internal/domain/repository"
	"ETFSheet/internal/service/export"
	"ETFSheet/internal/usecase"
	xhttp "ETFSheet/pkg/http"
	xlogger "ETFSheet/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SheetEchoHandler exposes the computed sheet over HTTP.
type SheetEchoHandler struct {
	logger    *xlogger.Logger
	refresher *usecase.SheetRefresher
	store     domrepo.SnapshotStore // optional, nil without the clickhouse backend
}

func NewSheetEchoHandler(logger *xlogger.Logger, refresher *usecase.SheetRefresher, store domrepo.SnapshotStore) *SheetEchoHandler {
	return &SheetEchoHandler{logger: logger, refresher: refresher, store: store}
}

func (h *SheetEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/sheet", h.Sheet)
	g.GET("/sheet/:ticker", h.Record)
	g.POST("/sheet/refresh", h.Refresh)
	g.GET("/history", h.History)
}

// Sheet returns the latest sheet, as JSON or rendered CSV.
func (h *SheetEchoHandler) Sheet(c echo.Context) error {
	req := &models.SheetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sheet, err := h.refresher.Latest(c.Request().Context())
	if err != nil {
		h.logger.Error("sheet usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if req.Group != "" {
		filtered := make([]models.ReturnRecord, 0, len(sheet.Records))
		for _, r := range sheet.Records {
			if r.Group == req.Group {
				filtered = append(filtered, r)
			}
		}
		sheet = &models.Sheet{GeneratedAt: sheet.GeneratedAt, Records: filtered}
	}

	if req.Format == "csv" {
		content, err := export.SheetCSV(sheet)
		if err != nil {
			h.logger.Error("csv render error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="etf_data_with_returns.csv"`)
		return c.Blob(http.StatusOK, "text/csv", content)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, sheet)
}

// Record returns one instrument's record from the latest sheet.
func (h *SheetEchoHandler) Record(c echo.Context) error {
	req := &models.RecordRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sheet, err := h.refresher.Latest(c.Request().Context())
	if err != nil {
		h.logger.Error("sheet usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	rec, ok := sheet.Record(req.Ticker)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("ticker %s not in universe", req.Ticker))
	}
	return xhttp.SuccessResponse(c, rec)
}

// Refresh forces a full refresh cycle and returns the new sheet.
func (h *SheetEchoHandler) Refresh(c echo.Context) error {
	sheet, err := h.refresher.Refresh(c.Request().Context())
	if err != nil {
		h.logger.Error("refresh usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sheet)
}

// History returns stored records as of a date. Requires the
// clickhouse backend.
func (h *SheetEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.store == nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("history requires the clickhouse backend"))
	}

	asOf := time.Now()
	if req.AsOf != "" {
		if t, err := time.Parse(models.DateFormat, req.AsOf); err == nil {
			asOf = t.AddDate(0, 0, 1) // inclusive of the named day
		} else if t, ok := xhttp.ParseTime(req.AsOf); ok {
			asOf = t
		} else {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid as_of date %q", req.AsOf))
		}
	}

	records, err := h.store.LatestRecords(c.Request().Context(), asOf, req.Limit)
	if err != nil {
		h.logger.Error("history query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, records, int64(len(records)))
}
