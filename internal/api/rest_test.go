package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/markusressel/nvfancontrol/internal/controller"
	"github.com/markusressel/nvfancontrol/internal/curves"
	"github.com/markusressel/nvfancontrol/internal/status"
	"github.com/markusressel/nvfancontrol/internal/testingutils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSnapshot() status.Snapshot {
	return status.Snapshot{
		Timestamp:      1700000000,
		Gpu:            0,
		Temperature:    57,
		TemperatureAvg: 56.5,
		Speed:          []int{45},
		Rpm:            []int{1350},
		Load:           30,
		Mode:           "Manual",
	}
}

func createService(t *testing.T, store *status.Store) (*Service, *echo.Echo) {
	curve, err := curves.NewFanspeedCurve([]curves.Point{{Temp: 40, Speed: 30}, {Temp: 45, Speed: 40}})
	require.NoError(t, err)
	contr, err := controller.NewGpuController(testingutils.NewMockControl(50, 1), curve, nil, nil, controller.Params{
		Gpu:         0,
		PollingRate: time.Second,
	})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	service := NewService(store, []controller.GpuController{contr}, registry, registry)
	return service, service.CreateRestService()
}

func doGet(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAlive(t *testing.T) {
	// GIVEN
	_, e := createService(t, status.NewStore())

	// WHEN
	rec := doGet(e, "/alive")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatus_NoSnapshot(t *testing.T) {
	// GIVEN
	_, e := createService(t, status.NewStore())

	// WHEN
	rec := doGet(e, "/status/")

	// THEN
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStatus(t *testing.T) {
	// GIVEN
	store := status.NewStore()
	store.Set(createSnapshot())
	_, e := createService(t, store)

	// WHEN
	rec := doGet(e, "/status/")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
	var result status.Snapshot
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, createSnapshot(), result)
}

func TestCurves(t *testing.T) {
	// GIVEN
	_, e := createService(t, status.NewStore())

	// WHEN
	rec := doGet(e, "/curve/")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
	var result []CurveInfo
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Equal(t, 0, result[0].Gpu)
	assert.Equal(t, []curves.Point{{Temp: 40, Speed: 30}, {Temp: 45, Speed: 40}}, result[0].Points)
	assert.Equal(t, []curves.Point{
		{Temp: 40, Speed: 30},
		{Temp: 41, Speed: 32},
		{Temp: 42, Speed: 34},
		{Temp: 43, Speed: 36},
		{Temp: 44, Speed: 38},
		{Temp: 45, Speed: 40},
	}, result[0].Values)
}

func TestCurve(t *testing.T) {
	// GIVEN
	_, e := createService(t, status.NewStore())

	// WHEN
	found := doGet(e, "/curve/0/")
	missing := doGet(e, "/curve/3/")

	// THEN
	assert.Equal(t, http.StatusOK, found.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Contains(t, missing.Body.String(), "No item with id '3' found")
}

func TestMetrics(t *testing.T) {
	// GIVEN
	_, e := createService(t, status.NewStore())
	doGet(e, "/alive/")

	// WHEN
	rec := doGet(e, "/metrics/")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nvfancontrol_api_requests_total")
}

func TestWebsocket(t *testing.T) {
	// GIVEN
	store := status.NewStore()
	store.Set(createSnapshot())
	service, e := createService(t, store)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// WHEN
	var first status.Snapshot
	require.NoError(t, conn.ReadJSON(&first))

	next := createSnapshot()
	next.Temperature = 60
	store.Set(next)

	var second status.Snapshot
	require.NoError(t, conn.ReadJSON(&second))

	// THEN
	assert.Equal(t, 57, first.Temperature)
	assert.Equal(t, 60, second.Temperature)
	assert.Equal(t, 1, service.ClientCount())

	service.CloseClients()
	assert.Eventually(t, func() bool { return service.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestWebsocket_CloseClientsWhileStreaming(t *testing.T) {
	// GIVEN
	store := status.NewStore()
	store.Set(createSnapshot())
	service, e := createService(t, store)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first status.Snapshot
	require.NoError(t, conn.ReadJSON(&first))

	stop := make(chan struct{})
	publisherDone := make(chan struct{})
	go func() {
		defer close(publisherDone)
		next := createSnapshot()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			next.Temperature = 40 + i%40
			store.Set(next)
		}
	}()
	defer func() {
		close(stop)
		<-publisherDone
	}()

	// WHEN
	service.CloseClients()

	// THEN
	var closeErr error
	for closeErr == nil {
		var snapshot status.Snapshot
		closeErr = conn.ReadJSON(&snapshot)
	}
	assert.True(t, websocket.IsCloseError(closeErr, websocket.CloseGoingAway), "unexpected error: %v", closeErr)
	assert.Eventually(t, func() bool { return service.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}
