package curves

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper function to create points from (temp, speed) pairs
func createPoints(pairs ...[2]uint16) []Point {
	points := make([]Point, 0, len(pairs))
	for _, pair := range pairs {
		points = append(points, Point{Temp: pair[0], Speed: pair[1]})
	}
	return points
}

func assertSpeed(t *testing.T, curve *FanspeedCurve, temp int, expected int) {
	t.Helper()
	speed, ok := curve.SpeedY(temp)
	assert.True(t, ok, "expected a speed for temp %d", temp)
	assert.Equal(t, expected, speed, "speed for temp %d", temp)
}

func assertNoSpeed(t *testing.T, curve *FanspeedCurve, temp int) {
	t.Helper()
	_, ok := curve.SpeedY(temp)
	assert.False(t, ok, "expected no speed for temp %d", temp)
}

func assertTemp(t *testing.T, curve *FanspeedCurve, speed int, expected int) {
	t.Helper()
	temp, ok := curve.TempX(speed)
	assert.True(t, ok, "expected a temp for speed %d", speed)
	assert.Equal(t, expected, temp, "temp for speed %d", speed)
}

func assertNoTemp(t *testing.T, curve *FanspeedCurve, speed int) {
	t.Helper()
	_, ok := curve.TempX(speed)
	assert.False(t, ok, "expected no temp for speed %d", speed)
}

func TestRemoveRedundantPoints(t *testing.T) {
	// GIVEN
	points := createPoints(
		[2]uint16{1, 1},
		[2]uint16{2, 2}, [2]uint16{2, 5}, [2]uint16{2, 5},
		[2]uint16{3, 8}, [2]uint16{3, 9}, [2]uint16{3, 10},
		[2]uint16{4, 10},
		[2]uint16{5, 11}, [2]uint16{6, 11}, [2]uint16{7, 11},
		[2]uint16{8, 12},
	)

	// WHEN
	result := RemoveRedundantPoints(points)

	// THEN
	expected := createPoints(
		[2]uint16{1, 1}, [2]uint16{2, 2}, [2]uint16{2, 5}, [2]uint16{3, 8}, [2]uint16{3, 10},
		[2]uint16{4, 10}, [2]uint16{5, 11}, [2]uint16{7, 11}, [2]uint16{8, 12},
	)
	assert.Equal(t, expected, result)

	_, err := NewFanspeedCurve(result)
	assert.NoError(t, err)
}

func TestRemoveRedundantPoints_IsIdempotent(t *testing.T) {
	// GIVEN
	points := createPoints(
		[2]uint16{10, 1}, [2]uint16{10, 5}, [2]uint16{10, 10}, [2]uint16{20, 10},
		[2]uint16{20, 20}, [2]uint16{30, 20}, [2]uint16{30, 30}, [2]uint16{30, 40},
	)

	// WHEN
	once := RemoveRedundantPoints(points)
	twice := RemoveRedundantPoints(once)

	// THEN
	assert.Equal(t, once, twice)
}

func TestRemoveRedundantPoints_KeepsShape(t *testing.T) {
	// GIVEN
	points := createPoints(
		[2]uint16{20, 10}, [2]uint16{30, 20}, [2]uint16{30, 25}, [2]uint16{30, 30},
		[2]uint16{40, 40}, [2]uint16{50, 40}, [2]uint16{60, 40}, [2]uint16{80, 90},
	)
	reduced, err := NewFanspeedCurve(points)
	require.NoError(t, err)
	full := &FanspeedCurve{points: points}

	// THEN
	for temp := 0; temp <= 100; temp++ {
		s1, ok1 := full.SpeedY(temp)
		s2, ok2 := reduced.SpeedY(temp)
		assert.Equal(t, ok1, ok2, "temp %d", temp)
		assert.Equal(t, s1, s2, "temp %d", temp)
	}
	for speed := 0; speed <= 100; speed++ {
		t1, ok1 := full.TempX(speed)
		t2, ok2 := reduced.TempX(speed)
		assert.Equal(t, ok1, ok2, "speed %d", speed)
		assert.Equal(t, t1, t2, "speed %d", speed)
	}
}

func TestNewFanspeedCurve_Empty(t *testing.T) {
	_, err := NewFanspeedCurve(nil)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestNewFanspeedCurve_SinglePoint(t *testing.T) {
	_, err := NewFanspeedCurve(createPoints([2]uint16{4, 6}))
	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestNewFanspeedCurve_Decreasing(t *testing.T) {
	_, err := NewFanspeedCurve(createPoints([2]uint16{0, 10}, [2]uint16{2, 5}, [2]uint16{3, 1}))
	assert.ErrorIs(t, err, ErrNotMonotonic)
}

func TestNewFanspeedCurve_NonMonotonic(t *testing.T) {
	_, err := NewFanspeedCurve(createPoints([2]uint16{0, 0}, [2]uint16{50, 20}, [2]uint16{100, 10}))
	assert.ErrorIs(t, err, ErrNotMonotonic)

	_, err = NewFanspeedCurve(createPoints([2]uint16{50, 0}, [2]uint16{40, 20}))
	assert.ErrorIs(t, err, ErrNotMonotonic)
}

func TestFanspeedCurve_SingleSlope(t *testing.T) {
	// GIVEN
	curve, err := NewFanspeedCurve(createPoints([2]uint16{5, 0}, [2]uint16{105, 20}))
	require.NoError(t, err)

	// THEN
	assertNoSpeed(t, curve, 0)
	assertNoSpeed(t, curve, 3)
	assertSpeed(t, curve, 5, 0)
	assertSpeed(t, curve, 30, 5)
	assertSpeed(t, curve, 55, 10)
	assertSpeed(t, curve, 80, 15)
	assertSpeed(t, curve, 105, 20)
	assertSpeed(t, curve, 106, 20)
	assertSpeed(t, curve, 1000, 20)
	assertSpeed(t, curve, 10101, 20)

	assertTemp(t, curve, 0, 5)
	assertTemp(t, curve, 5, 30)
	assertTemp(t, curve, 10, 55)
	assertTemp(t, curve, 15, 80)
	assertTemp(t, curve, 20, 105)
	assertNoTemp(t, curve, 21)

	assert.Equal(t, 0, curve.MinSpeed())
}

func TestFanspeedCurve_MultipleValues(t *testing.T) {
	// GIVEN
	curve, err := NewFanspeedCurve(createPoints([2]uint16{0, 1}, [2]uint16{5, 10}, [2]uint16{10, 60}))
	require.NoError(t, err)

	// THEN
	assertSpeed(t, curve, 0, 1)
	assertSpeed(t, curve, 5, 10)
	assertSpeed(t, curve, 10, 60)
	assertSpeed(t, curve, 11, 60)
	assertSpeed(t, curve, 101, 60)

	assertNoTemp(t, curve, 0)
	assertTemp(t, curve, 1, 0)
	assertTemp(t, curve, 10, 5)
	assertTemp(t, curve, 20, 6)
	assertTemp(t, curve, 50, 9)
	assertTemp(t, curve, 60, 10)
	assertNoTemp(t, curve, 61)

	assert.Equal(t, 1, curve.MinSpeed())
	assert.Equal(t, 60, curve.MaxSpeed())
	assert.Equal(t, 0, curve.MinTemp())
	assert.Equal(t, 10, curve.MaxTemp())
}

func TestFanspeedCurve_Horizontal(t *testing.T) {
	// GIVEN
	curve, err := NewFanspeedCurve(createPoints(
		[2]uint16{20, 35}, [2]uint16{22, 35}, [2]uint16{25, 35}, [2]uint16{60, 35},
	))
	require.NoError(t, err)

	// THEN
	assertNoSpeed(t, curve, 19)
	assertSpeed(t, curve, 20, 35)
	assertSpeed(t, curve, 21, 35)
	assertSpeed(t, curve, 59, 35)
	assertSpeed(t, curve, 60, 35)
	assertSpeed(t, curve, 61, 35)

	assertNoTemp(t, curve, 34)
	assertTemp(t, curve, 35, 60)
	assertNoTemp(t, curve, 36)
}

func TestFanspeedCurve_Vertical(t *testing.T) {
	// GIVEN
	curve, err := NewFanspeedCurve(createPoints(
		[2]uint16{20, 5}, [2]uint16{20, 10}, [2]uint16{20, 50}, [2]uint16{20, 55},
	))
	require.NoError(t, err)

	// THEN
	assertNoSpeed(t, curve, 19)
	assertSpeed(t, curve, 20, 55)
	assertSpeed(t, curve, 21, 55)

	assertNoTemp(t, curve, 4)
	assertTemp(t, curve, 5, 20)
	assertTemp(t, curve, 6, 20)
	assertTemp(t, curve, 54, 20)
	assertTemp(t, curve, 55, 20)
	assertNoTemp(t, curve, 56)
}

func TestFanspeedCurve_Plateau(t *testing.T) {
	// GIVEN
	curve, err := NewFanspeedCurve(createPoints(
		[2]uint16{0, 0}, [2]uint16{10, 50}, [2]uint16{20, 50}, [2]uint16{30, 100},
	))
	require.NoError(t, err)

	// THEN
	assertSpeed(t, curve, 10, 50)
	assertSpeed(t, curve, 15, 50)
	assertSpeed(t, curve, 20, 50)

	assertTemp(t, curve, 50, 20)
}

func TestFanspeedCurve_Cliff(t *testing.T) {
	// GIVEN
	curve, err := NewFanspeedCurve(createPoints(
		[2]uint16{5, 5}, [2]uint16{10, 20}, [2]uint16{10, 40}, [2]uint16{10, 50}, [2]uint16{30, 90},
	))
	require.NoError(t, err)

	// THEN
	assertNoSpeed(t, curve, 4)
	assertSpeed(t, curve, 10, 50)
	assertSpeed(t, curve, 30, 90)
	assertSpeed(t, curve, 31, 90)

	assertTemp(t, curve, 20, 10)
	assertTemp(t, curve, 43, 10)
	assertTemp(t, curve, 50, 10)
	assertTemp(t, curve, 90, 30)
}

func TestFanspeedCurve_Stairs(t *testing.T) {
	// GIVEN
	curve, err := NewFanspeedCurve(createPoints(
		[2]uint16{10, 1}, [2]uint16{10, 5}, [2]uint16{10, 10}, [2]uint16{20, 10},
		[2]uint16{20, 20}, [2]uint16{30, 20}, [2]uint16{30, 30}, [2]uint16{30, 40},
	))
	require.NoError(t, err)

	// THEN
	assertSpeed(t, curve, 30, 40)

	assertNoSpeed(t, curve, 9)
	assertSpeed(t, curve, 10, 10)
	assertSpeed(t, curve, 11, 10)
	assertSpeed(t, curve, 19, 10)
	assertSpeed(t, curve, 20, 20)
	assertSpeed(t, curve, 21, 20)
	assertSpeed(t, curve, 29, 20)
	assertSpeed(t, curve, 31, 40)
	assertSpeed(t, curve, 60, 40)
}

func TestFanspeedCurve_SpeedIsMonotonic(t *testing.T) {
	// GIVEN
	curve, err := NewFanspeedCurve(createPoints(
		[2]uint16{41, 20}, [2]uint16{49, 30}, [2]uint16{57, 45}, [2]uint16{57, 50},
		[2]uint16{66, 55}, [2]uint16{75, 63}, [2]uint16{78, 72}, [2]uint16{80, 80},
	))
	require.NoError(t, err)

	// THEN
	previous := -1
	for temp := curve.MinTemp(); temp <= 120; temp++ {
		speed, ok := curve.SpeedY(temp)
		require.True(t, ok)
		assert.GreaterOrEqual(t, speed, previous, "temp %d", temp)
		previous = speed
	}
}

func TestFanspeedCurve_PointsIsACopy(t *testing.T) {
	// GIVEN
	curve, err := NewFanspeedCurve(createPoints([2]uint16{5, 0}, [2]uint16{105, 20}))
	require.NoError(t, err)

	// WHEN
	points := curve.Points()
	points[0].Speed = 99

	// THEN
	assert.Equal(t, 0, curve.MinSpeed())
}
