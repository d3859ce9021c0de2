package api

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/nvfancontrol/internal/controller"
	"github.com/markusressel/nvfancontrol/internal/curves"
)

// CurveInfo describes the curve of a single GPU
type CurveInfo struct {
	Gpu    int            `json:"gpu"`
	Points []curves.Point `json:"points"`
	// Values holds the requested speed for every temperature within the curve
	Values []curves.Point `json:"values"`
}

func newCurveInfo(c controller.GpuController) CurveInfo {
	curve := c.GetCurve()
	var values []curves.Point
	for temp := curve.MinTemp(); temp <= curve.MaxTemp(); temp++ {
		speed, _ := curve.SpeedY(temp)
		values = append(values, curves.Point{Temp: uint16(temp), Speed: uint16(speed)})
	}
	return CurveInfo{
		Gpu:    c.GetGpu(),
		Points: curve.Points(),
		Values: values,
	}
}

func (s *Service) registerCurveEndpoints(rest *echo.Echo) {
	group := rest.Group("/curve")

	group.GET("/", s.getCurves)
	group.GET("/:"+urlParamId+"/", s.getCurve)
}

func (s *Service) getCurves(c echo.Context) error {
	result := make([]CurveInfo, 0, s.controllers.Count())
	for _, contr := range s.controllers.Items() {
		result = append(result, newCurveInfo(contr))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Gpu < result[j].Gpu
	})
	return c.JSONPretty(http.StatusOK, result, indentationChar)
}

func (s *Service) getCurve(c echo.Context) error {
	id := c.Param(urlParamId)
	contr, exists := s.controllers.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, newCurveInfo(contr), indentationChar)
}
