package pharmacy

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	api.POST("/drugs", h.CreateDrug)
	api.GET("/drugs", h.ListDrugs)
	api.GET("/drugs/eligible", h.ListEligibleDrugs)
	api.GET("/drugs/:id", h.GetDrug)
	api.PUT("/drugs/:id", h.UpdateDrug)
	api.POST("/drugs/:id/restock", h.RestockDrug)
	api.DELETE("/drugs/:id", h.RetireDrug)

	api.POST("/dispense", h.Dispense)
	api.GET("/dispense/summary/:period", h.DispenseSummary)
	api.GET("/dispense/records/:period", h.DispenseRecords)
	api.GET("/dispense/months", h.AvailableMonths)
}

// -- Drug Handlers --

func (h *Handler) CreateDrug(c echo.Context) error {
	var d Drug
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDrug(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDrug(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDrug(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "drug not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDrugs(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDrugs(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListEligibleDrugs(c echo.Context) error {
	items, err := h.svc.EligibleDrugs(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateDrug(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d Drug
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.ID = id
	if err := h.svc.UpdateDrug(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) RestockDrug(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		AddedQuantity int `json:"added_quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Restock(c.Request().Context(), id, body.AddedQuantity)
	if err != nil {
		if err == ErrUnknownDrug {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) RetireDrug(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RetireDrug(c.Request().Context(), id); err != nil {
		if err == ErrUnknownDrug {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Dispense Handlers --

func (h *Handler) Dispense(c echo.Context) error {
	var req DispenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	txCtx, tx, err := db.WithTx(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	result, err := h.svc.Dispense(txCtx, &req)
	if err != nil {
		_ = tx.Rollback(ctx)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := tx.Commit(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) DispenseSummary(c echo.Context) error {
	year, _ := strconv.Atoi(c.QueryParam("year"))
	month, _ := strconv.Atoi(c.QueryParam("month"))
	summary, err := h.svc.Summary(c.Request().Context(), c.Param("period"), year, month)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) DispenseRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	year, _ := strconv.Atoi(c.QueryParam("year"))
	month, _ := strconv.Atoi(c.QueryParam("month"))
	items, total, err := h.svc.Records(c.Request().Context(), c.Param("period"), year, month, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AvailableMonths(c echo.Context) error {
	months, err := h.svc.AvailableMonths(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, months)
}
