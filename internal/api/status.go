package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Service) registerStatusEndpoints(rest *echo.Echo) {
	group := rest.Group("/status")

	group.GET("/", s.getStatus)
}

// returns the latest status snapshot, 204 if there is none yet
func (s *Service) getStatus(c echo.Context) error {
	snapshot, ok := s.store.Get()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSONPretty(http.StatusOK, snapshot, indentationChar)
}
