package api

import (
	"net/http"

	"FilingLens/internal/domain/models"
	"FilingLens/internal/usecase"
	xhttp "FilingLens/pkg/http"
	xlogger "FilingLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardHandler exposes one dashboard session over HTTP.
type DashboardHandler struct {
	logger *xlogger.Logger
	dash   *usecase.Dashboard
}

func NewDashboardHandler(logger *xlogger.Logger, dash *usecase.Dashboard) *DashboardHandler {
	return &DashboardHandler{logger: logger.Component("api"), dash: dash}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/dashboard", h.Dashboard)
	g.POST("/reload", h.Reload)

	g.GET("/filters", h.Filters)
	g.PATCH("/filters", h.SetFilter)
	g.POST("/filters/apply", h.ApplyFilters)
	g.PUT("/filters/sentiment", h.SetSentiment)

	g.POST("/selection", h.Select)
	g.DELETE("/selection", h.ClearSelection)

	g.GET("/prediction", h.Prediction)
	g.GET("/prediction/ranges", h.FeatureRanges)
	g.PATCH("/prediction/draft", h.SetFeature)
	g.DELETE("/prediction/draft", h.ResetDraft)
	g.POST("/prediction/run", h.RunPrediction)
	g.GET("/prediction/importance", h.FeatureImportance)

	e.GET("/ws/view", h.StreamView)
}

func (h *DashboardHandler) Dashboard(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dash.Snapshot())
}

// Reload retries the bootstrap load with fresh engine data.
func (h *DashboardHandler) Reload(c echo.Context) error {
	if err := h.dash.Reload(c.Request().Context()); err != nil {
		h.logger.Warn("reload failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, h.dash.Snapshot())
}

func (h *DashboardHandler) Filters(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dash.Filters().State())
}

func (h *DashboardHandler) SetFilter(c echo.Context) error {
	req := &models.SetFilterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.dash.SetFilter(models.FilterField(req.Field), req.Value); err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, h.dash.Filters().State())
}

// ApplyFilters runs a full query and answers with the resulting view.
func (h *DashboardHandler) ApplyFilters(c echo.Context) error {
	if err := h.dash.ApplyFilters(c.Request().Context()); err != nil {
		if !usecase.IsStale(err) {
			h.logger.Warn("apply filters failed", xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, h.dash.View().Snapshot())
}

// SetSentiment answers 202: the heatmap refresh, if any, completes in the background.
func (h *DashboardHandler) SetSentiment(c echo.Context) error {
	req := &models.SetSentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.dash.SetSentiment(models.SentimentDimension(req.Dimension)); err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.AcceptedResponse(c, h.dash.Filters().State())
}

func (h *DashboardHandler) Select(c echo.Context) error {
	req := &models.SelectPointRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rec, err := h.dash.Selection().Select(req.PointRef())
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, rec)
}

func (h *DashboardHandler) ClearSelection(c echo.Context) error {
	h.dash.Selection().Clear()
	return xhttp.NoContentResponse(c)
}

func (h *DashboardHandler) Prediction(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dash.Prediction().Snapshot())
}

func (h *DashboardHandler) FeatureRanges(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.FeatureRanges)
}

func (h *DashboardHandler) SetFeature(c echo.Context) error {
	req := &models.SetFeatureRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	draft, err := h.dash.Prediction().SetFeature(models.FeatureField(req.Feature), *req.Value)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, draft)
}

func (h *DashboardHandler) ResetDraft(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dash.Prediction().ResetDraft())
}

func (h *DashboardHandler) RunPrediction(c echo.Context) error {
	req := &models.RunPredictionRequest{}
	if c.Request().ContentLength > 0 {
		if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}
	}

	ws := h.dash.Prediction()
	var (
		res models.PredictionResult
		err error
	)
	if req.Input != nil {
		res, err = ws.Predict(c.Request().Context(), *req.Input)
	} else {
		res, err = ws.Run(c.Request().Context())
	}
	if err != nil {
		if !usecase.IsStale(err) {
			h.logger.Warn("prediction failed", xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) FeatureImportance(c echo.Context) error {
	fi, err := h.dash.Prediction().FeatureImportance(c.Request().Context())
	if err != nil {
		h.logger.Warn("feature importance failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.DataResponse(c, http.StatusOK, fi)
}
