package api

import (
	"fmt"
	"net/http"

	models "DerivPulse/internal/domain/models"
	domrepo "DerivPulse/internal/domain/repository"
	svccache "DerivPulse/internal/service/cache"
	"DerivPulse/internal/usecase"
	xhttp "DerivPulse/pkg/http"
	xlogger "DerivPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketsEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type MarketsEchoHandler struct {
	logger  *xlogger.Logger
	markets *usecase.MarketService
	metrics domrepo.Metrics
}

func NewMarketsEchoHandler(logger *xlogger.Logger, markets *usecase.MarketService, metrics domrepo.Metrics) *MarketsEchoHandler {
	return &MarketsEchoHandler{logger: logger, markets: markets, metrics: metrics}
}

func (h *MarketsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/funding", h.Funding)
	g.GET("/open-interest", h.OpenInterest)
	g.GET("/tickers", h.Tickers)
	g.GET("/health", h.Health)
}

func (h *MarketsEchoHandler) Funding(c echo.Context) error {
	return h.serve(c, models.KindFunding, "funding")
}

func (h *MarketsEchoHandler) OpenInterest(c echo.Context) error {
	return h.serve(c, models.KindOpenInterest, "open-interest")
}

func (h *MarketsEchoHandler) Tickers(c echo.Context) error {
	return h.serve(c, models.KindTickers, "tickers")
}

// Health exposes the health array of the last completed cycle.
func (h *MarketsEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"health": h.markets.Health()})
}

// serve handles one markets endpoint. Degraded cycles still return 200
// with an empty data slice; only request validation can produce a 4xx.
func (h *MarketsEchoHandler) serve(c echo.Context, kind models.Kind, endpoint string) error {
	req := &models.MarketsQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, status, err := h.markets.GetMarkets(c.Request().Context(), kind, req)
	if h.metrics != nil {
		h.metrics.RecordCacheResult(endpoint, string(status))
	}
	if err != nil {
		h.logger.Error("markets usecase error",
			xlogger.String("endpoint", endpoint),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	maxAge := int(h.markets.TTLFor(kind).Seconds())
	c.Response().Header().Set(echo.HeaderCacheControl,
		fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d", maxAge, 2*maxAge))
	c.Response().Header().Set("X-Cache", string(status))
	if status == svccache.StatusStale {
		h.logger.Warn("serving stale cycle", xlogger.String("endpoint", endpoint))
	}
	return c.JSON(http.StatusOK, res)
}
