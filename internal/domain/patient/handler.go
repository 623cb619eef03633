package patient

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/vitals/internal/domain/vitals"
	"github.com/ehr/vitals/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
	api.GET("/patients/:id/history", h.GetHistory)
	api.POST("/patients/:id/weight", h.RecordWeight)
	api.POST("/patients/:id/temperature", h.RecordTemperature)
}

type createResponse struct {
	Patient     *Patient                   `json:"patient"`
	Weight      *vitals.WeightReading      `json:"weight,omitempty"`
	Temperature *vitals.TemperatureReading `json:"temperature,omitempty"`
	Warnings    []string                   `json:"warnings,omitempty"`
}

type weightRequest struct {
	Weight     *float64   `json:"weight"`
	Height     *float64   `json:"height"`
	RecordedAt *time.Time `json:"recorded_at"`
}

type temperatureRequest struct {
	Temperature *float64   `json:"temperature"`
	RecordedAt  *time.Time `json:"recorded_at"`
}

// -- Patient Handlers --

func (h *Handler) ListPatients(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items})
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.FindByIDHydrated(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var in CreateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}

	resp := createResponse{Patient: res.Patient, Weight: res.Weight, Temperature: res.Temperature}
	if res.ReadingErr != nil {
		if in.InitialWeight != nil && res.Weight == nil {
			resp.Warnings = append(resp.Warnings, "initial weight was not recorded")
		}
		if in.InitialTemperature != nil && res.Temperature == nil {
			resp.Warnings = append(resp.Warnings, "initial temperature was not recorded")
		}
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var d Demographics
	if err := bind(c, &d); err != nil {
		return err
	}
	p, err := h.svc.Update(c.Request().Context(), id, d)
	if err != nil {
		if apperr.IsValidation(err) && p != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":   apperr.From(err),
				"patient": p,
			})
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	deleted, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !deleted {
		return respondError(c, apperr.NotFound("patient", strconv.FormatInt(id, 10)))
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) GetHistory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	hist, err := h.svc.History(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, hist)
}

// -- Reading Handlers --

func (h *Handler) RecordWeight(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req weightRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	r, p, err := h.svc.RecordWeight(c.Request().Context(), id, req.Weight, req.Height, req.RecordedAt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"patient": p, "reading": r})
}

func (h *Handler) RecordTemperature(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req temperatureRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	r, p, err := h.svc.RecordTemperature(c.Request().Context(), id, req.Temperature, req.RecordedAt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"patient":       p,
		"reading":       r,
		"temperature_f": vitals.CelsiusToFahrenheit(r.TemperatureC),
	})
}

// bind decodes the request body. HTTP errors raised while reading it, such as
// the body limit's 413, are returned as is; decode failures become a 400.
func bind(c echo.Context, dst interface{}) error {
	err := c.Bind(dst)
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code != http.StatusBadRequest {
		return he
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// respondError writes client errors as an AppError body. Anything else goes
// back to echo with the cause attached so the request logger records it.
func respondError(c echo.Context, err error) error {
	ae := apperr.From(err)
	if ae.HTTPStatus >= http.StatusInternalServerError {
		return echo.NewHTTPError(ae.HTTPStatus, ae.Message).SetInternal(err)
	}
	return c.JSON(ae.HTTPStatus, ae)
}
