package configuration

import (
	"errors"
	"strconv"
	"strings"

	"github.com/markusressel/nvfancontrol/internal/curves"
)

var ErrLegacyTooFewPoints = errors.New("at least two points are required for the curve")

// MightBeLegacy reports whether content could be a legacy plain text configuration,
// i.e. it contains neither a [gpu] table nor a points key outside of comments.
func MightBeLegacy(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.Contains(trimmed, "[gpu]") || strings.HasPrefix(trimmed, "points") {
			return false
		}
	}
	return true
}

// ParseLegacy parses the legacy format: one "TEMP SPEED" pair per line,
// lines starting with # are comments. Lines with less than two fields or
// values that are not numbers are ignored. The result always describes GPU 0.
func ParseLegacy(content string) ([]GpuConfig, error) {
	var points CurvePoints
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}
		temp, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			continue
		}
		speed, err := strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			continue
		}
		points = append(points, curves.Point{Temp: uint16(temp), Speed: uint16(speed)})
	}

	if len(points) < 2 {
		return nil, ErrLegacyTooFewPoints
	}

	return []GpuConfig{
		{
			ID:     0,
			Points: points,
		},
	}, nil
}
