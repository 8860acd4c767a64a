package finance

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/hims/hims/internal/platform/db"
	"github.com/hims/hims/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/finance/reconcile", h.Reconcile)
	api.GET("/finance/daily", h.Daily)
	api.POST("/finance/hmo-payments", h.AddHMOPayment)
	api.DELETE("/finance/records/:id", h.DeleteRecord)
	api.GET("/finance/records", h.ListRecords)
	api.GET("/finance/history", h.History)
}

func (h *Handler) Reconcile(c echo.Context) error {
	var body struct {
		Date string `json:"date"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	day := time.Now()
	if body.Date != "" {
		parsed, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		day = parsed
	}

	ctx := c.Request().Context()
	txCtx, tx, err := db.WithTx(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	rec, err := h.svc.Reconcile(txCtx, day)
	if err != nil {
		_ = tx.Rollback(ctx)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := tx.Commit(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Daily(c echo.Context) error {
	ctx := c.Request().Context()
	txCtx, tx, err := db.WithTx(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	view, err := h.svc.Daily(txCtx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := tx.Commit(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) AddHMOPayment(c echo.Context) error {
	var body struct {
		HMOName string          `json:"hmo_name"`
		Amount  decimal.Decimal `json:"amount"`
		Notes   *string         `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	txCtx, tx, err := db.WithTx(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	payment, err := h.svc.AddHMOPayment(txCtx, body.HMOName, body.Amount, body.Notes)
	if err != nil {
		_ = tx.Rollback(ctx)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := tx.Commit(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	txCtx, tx, err := db.WithTx(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	if err := h.svc.DeleteRecord(txCtx, id); err != nil {
		_ = tx.Rollback(ctx)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err := tx.Commit(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRecords(c echo.Context) error {
	pg := pagination.FromContext(c)

	end := time.Now().AddDate(0, 0, 1)
	start := end.AddDate(0, -1, 0)
	if from := c.QueryParam("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		start = parsed
	}
	if to := c.QueryParam("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		end = parsed.AddDate(0, 0, 1)
	}

	items, total, err := h.svc.Records(c.Request().Context(), start, end, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) History(c echo.Context) error {
	pg := pagination.FromContext(c)

	var f LogFilter
	if date := c.QueryParam("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		f.Date = &parsed
	}
	f.Year, _ = strconv.Atoi(c.QueryParam("year"))
	f.Month, _ = strconv.Atoi(c.QueryParam("month"))
	if f.Month != 0 && f.Year == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "month filter requires year")
	}

	items, total, err := h.svc.History(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
