package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/markusressel/nvfancontrol/internal/controller"
	"github.com/markusressel/nvfancontrol/internal/status"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	urlParamId      = "id"
	indentationChar = "  "
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// Service serves the state of the running controllers over HTTP
type Service struct {
	store       *status.Store
	controllers cmap.ConcurrentMap[string, controller.GpuController]
	clients     cmap.ConcurrentMap[string, *wsClient]
	upgrader    websocket.Upgrader

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// NewService creates the API of the given controllers. Request metrics are registered
// with registerer, the metrics endpoint exposes everything known to gatherer.
func NewService(
	store *status.Store,
	controllers []controller.GpuController,
	registerer prometheus.Registerer,
	gatherer prometheus.Gatherer,
) *Service {
	s := &Service{
		store:       store,
		registerer:  registerer,
		gatherer:    gatherer,
		controllers: cmap.New[controller.GpuController](),
		clients:     cmap.New[*wsClient](),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, c := range controllers {
		s.controllers.Set(strconv.Itoa(c.GetGpu()), c)
	}
	return s
}

func (s *Service) CreateRestService() *echo.Echo {
	echoRest := CreateWebserver()
	echoRest.Use(middleware.Logger())
	echoRest.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "nvfancontrol",
		Subsystem:  "api",
		Registerer: s.registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics/"
		},
	}))

	echoRest.GET("/alive/", isAlive)
	echoRest.GET("/metrics/", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: s.gatherer,
	}))

	s.registerStatusEndpoints(echoRest)
	s.registerCurveEndpoints(echoRest)
	s.registerWebsocketEndpoint(echoRest)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// return a "not found" message
func returnNotFound(c echo.Context, id string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: "No item with id '" + id + "' found",
	}, indentationChar)
}

// return the error message of an error
func returnError(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusInternalServerError, &Result{
		Name:    "Unknown Error",
		Message: e.Error(),
	}, indentationChar)
}
