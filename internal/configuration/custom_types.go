package configuration

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/markusressel/nvfancontrol/internal/curves"
	"github.com/mitchellh/mapstructure"
)

// Optional is a generic container for optional configuration values.
type Optional[T any] struct {
	// Value holds the actual as unmarshalled.
	Value T
	// Present indicates if the value was present in the configuration.
	Present bool
	// RuntimeOverride indicates if the value was overridden at runtime.
	RuntimeOverride bool
}

func (o *Optional[T]) Get() T {
	return o.Value
}

// SetOverride sets the value and marks it as overridden at runtime.
func (o *Optional[T]) SetOverride(value T) {
	o.RuntimeOverride = true
	o.Value = value
}

// DefaultTrueBool is a boolean type that defaults to true if not present and not overridden.
type DefaultTrueBool struct {
	Optional[bool]
}

// Get returns the boolean value, defaulting to true if not present and not overridden.
func (b *DefaultTrueBool) Get() bool {
	if !b.Present && !b.RuntimeOverride {
		return true
	}
	return b.Value
}

func (b DefaultTrueBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Get())
}

func (b DefaultTrueBool) MarshalYAML() (interface{}, error) {
	return b.Get(), nil
}

// DefaultTrueBoolHookFunc returns a mapstructure decode hook function for DefaultTrueBool.
func DefaultTrueBoolHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{}) (interface{}, error) {

		// Only target our specific named type
		if t != reflect.TypeOf(DefaultTrueBool{}) {
			return data, nil
		}

		var val bool
		switch v := data.(type) {
		case bool:
			val = v
		case string:
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return data, nil
			}
			val = parsed
		default:
			return data, nil
		}

		return DefaultTrueBool{
			Optional: Optional[bool]{
				Value:   val,
				Present: true,
			},
		}, nil
	}
}

// CurvePointsHookFunc returns a mapstructure decode hook that accepts curve points as
//  1. a list of [temp, speed] pairs: [[41, 20], [49, 30]]
//  2. a list of tables: [{temp = 41, speed = 20}]
//  3. a map from temperature to speed: {41: 20, 49: 30}, sorted by temperature
func CurvePointsHookFunc() mapstructure.DecodeHookFuncType {
	pointsType := reflect.TypeOf(CurvePoints{})

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != pointsType {
			return data, nil
		}

		switch v := data.(type) {
		case []interface{}:
			result := make(CurvePoints, 0, len(v))
			for i, entry := range v {
				point, err := parsePoint(entry)
				if err != nil {
					return nil, fmt.Errorf("points[%d]: %w", i, err)
				}
				result = append(result, point)
			}
			return result, nil
		case map[string]interface{}, map[interface{}]interface{}:
			pts, err := parseIntMap(v)
			if err != nil {
				return nil, fmt.Errorf("points: %w", err)
			}
			temps := make([]int, 0, len(pts))
			for temp := range pts {
				temps = append(temps, temp)
			}
			sort.Ints(temps)
			result := make(CurvePoints, 0, len(pts))
			for _, temp := range temps {
				point, err := newPoint(temp, pts[temp])
				if err != nil {
					return nil, fmt.Errorf("points: %w", err)
				}
				result = append(result, point)
			}
			return result, nil
		}

		return data, nil
	}
}

func parsePoint(data interface{}) (curves.Point, error) {
	switch v := data.(type) {
	case []interface{}:
		if len(v) != 2 {
			return curves.Point{}, fmt.Errorf("expected [temp, speed], got %v", v)
		}
		temp, err := anyToInt(v[0])
		if err != nil {
			return curves.Point{}, fmt.Errorf("invalid temperature: %w", err)
		}
		speed, err := anyToInt(v[1])
		if err != nil {
			return curves.Point{}, fmt.Errorf("invalid speed: %w", err)
		}
		return newPoint(temp, speed)
	case map[string]interface{}:
		var point curves.Point
		if err := mapstructure.WeakDecode(v, &point); err != nil {
			return curves.Point{}, err
		}
		return point, nil
	case curves.Point:
		return v, nil
	}
	return curves.Point{}, fmt.Errorf("unsupported point type %T", data)
}

func newPoint(temp, speed int) (curves.Point, error) {
	if temp < 0 || temp > 0xFFFF {
		return curves.Point{}, fmt.Errorf("temperature %d out of range", temp)
	}
	if speed < 0 || speed > 0xFFFF {
		return curves.Point{}, fmt.Errorf("speed %d out of range", speed)
	}
	return curves.Point{Temp: uint16(temp), Speed: uint16(speed)}, nil
}

// parseIntMap converts various map types (from YAML decoding) into map[int]int.
func parseIntMap(data interface{}) (map[int]int, error) {
	result := make(map[int]int)
	switch v := data.(type) {
	case map[interface{}]interface{}:
		for k, val := range v {
			key, err := anyToInt(k)
			if err != nil {
				return nil, fmt.Errorf("invalid key %v: %w", k, err)
			}
			value, err := anyToInt(val)
			if err != nil {
				return nil, fmt.Errorf("invalid value %v: %w", val, err)
			}
			result[key] = value
		}
	case map[string]interface{}:
		for k, val := range v {
			key, err := anyToInt(k)
			if err != nil {
				return nil, fmt.Errorf("invalid key %q: %w", k, err)
			}
			value, err := anyToInt(val)
			if err != nil {
				return nil, fmt.Errorf("invalid value %v: %w", val, err)
			}
			result[key] = value
		}
	default:
		return nil, fmt.Errorf("unsupported point map type %T", data)
	}
	return result, nil
}

// anyToInt converts numeric and string values to int.
func anyToInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("%v is not an integer", val)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as int: %w", val, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}
