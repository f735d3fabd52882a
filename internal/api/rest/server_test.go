package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KevinKickass/OpenSitePlanner/internal/api/websocket"
	"github.com/KevinKickass/OpenSitePlanner/internal/config"
	"github.com/KevinKickass/OpenSitePlanner/internal/design"
	"github.com/KevinKickass/OpenSitePlanner/internal/devices"
	"github.com/KevinKickass/OpenSitePlanner/internal/interfaces"
	"github.com/KevinKickass/OpenSitePlanner/internal/layout"
	"github.com/KevinKickass/OpenSitePlanner/internal/storage"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testLifecycle struct {
	cfg       *config.Config
	store     *storage.MemoryStore
	catalog   *devices.Catalog
	design    *design.Service
	reloadErr error
}

func (l *testLifecycle) Config() *config.Config         { return l.cfg }
func (l *testLifecycle) Store() storage.Store           { return l.store }
func (l *testLifecycle) Catalog() *devices.Catalog      { return l.catalog }
func (l *testLifecycle) Design() *design.Service        { return l.design }
func (l *testLifecycle) Shutdown(context.Context) error { return nil }

func (l *testLifecycle) ReloadCatalog(ctx context.Context) error {
	if l.reloadErr != nil {
		return l.reloadErr
	}
	return l.catalog.Reload(ctx)
}

func (l *testLifecycle) GetCurrentStatus() interfaces.SystemStatus {
	return interfaces.SystemStatus{State: "RUNNING", Database: "memory", CatalogSize: len(l.catalog.List())}
}

func newTestServer(t *testing.T) (*Server, *testLifecycle) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}

	store := storage.NewMemoryStore()
	catalog, err := devices.NewCatalog(nil, store, logger)
	require.NoError(t, err)

	// not running: broadcasts only fill the buffered channel
	hub := websocket.NewHub(logger)
	svc := design.NewService(store, catalog, layout.NewEngine(cfg.Layout), hub, cfg.Costs, logger)

	lm := &testLifecycle{cfg: cfg, store: store, catalog: catalog, design: svc}
	return NewServer(cfg, lm, logger, hub), lm
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createSite(t *testing.T, s *Server) types.Site {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/v1/sites", map[string]interface{}{
		"name": "Mojave", "path": "mojave", "address": "Desert Rd 1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[types.Site](t, rec)
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/devices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Devices []types.Device `json:"devices"`
		Count   int            `json:"count"`
	}](t, rec)
	assert.Equal(t, 5, list.Count)

	rec = do(t, s, http.MethodGet, "/api/v1/devices/Megapack", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2000.0, decode[types.Device](t, rec).CapacityKWh)

	rec = do(t, s, http.MethodGet, "/api/v1/devices/Nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, types.CodeDeviceNotFound, decode[types.ErrorResponse](t, rec).Error.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/costs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[struct {
		Count int `json:"count"`
	}](t, rec).Count)

	rec = do(t, s, http.MethodGet, "/api/v1/stages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct {
		Stages []types.Stage `json:"stages"`
	}](t, rec).Stages, 7)
}

func TestSiteCRUD(t *testing.T) {
	s, _ := newTestServer(t)

	site := createSite(t, s)
	assert.NotEmpty(t, site.ID)
	assert.Equal(t, types.StageDesign, site.Stage)
	assert.NotZero(t, site.CreatedDate)

	rec := do(t, s, http.MethodGet, "/api/v1/sites/"+site.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mojave", decode[types.Site](t, rec).Name)

	rec = do(t, s, http.MethodPut, "/api/v1/sites/"+site.ID, map[string]interface{}{"stage": "approval", "market": "CAISO"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[types.Site](t, rec)
	assert.Equal(t, "approval", updated.Stage)
	assert.Equal(t, "CAISO", updated.Market)
	assert.Equal(t, "Mojave", updated.Name)

	rec = do(t, s, http.MethodGet, "/api/v1/sites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[struct {
		Count int `json:"count"`
	}](t, rec).Count)
}

func TestSiteValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/sites", map[string]interface{}{"name": "No path"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, types.CodeBadRequest, decode[types.ErrorResponse](t, rec).Error.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/sites", map[string]interface{}{"name": "x", "path": "x", "stage": "dreaming"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/sites/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, types.CodeSiteNotFound, decode[types.ErrorResponse](t, rec).Error.Code)

	rec = do(t, s, http.MethodPut, "/api/v1/sites/missing", map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	site := createSite(t, s)
	badLayout := map[string]interface{}{
		"layout": [][]map[string]interface{}{{{"name": "x", "category": "storage", "length": -1, "width": 1, "cost": 0, "capacity_kwh": 0}}},
	}
	rec = do(t, s, http.MethodPut, "/api/v1/sites/"+site.ID, badLayout)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, types.CodeInvalidLayout, decode[types.ErrorResponse](t, rec).Error.Code)
}

func TestDesignEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	site := createSite(t, s)
	base := "/api/v1/sites/" + site.ID

	rec := do(t, s, http.MethodPost, base+"/devices", map[string]string{"name": "Megapack"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[struct {
		Device types.Device  `json:"device"`
		Design design.Design `json:"design"`
	}](t, rec)
	assert.Equal(t, 2, added.Design.Summary.DeviceCount)
	assert.NotEmpty(t, added.Device.InstanceID)

	rec = do(t, s, http.MethodGet, base+"/design", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[design.Design](t, rec)
	require.Len(t, current.Layout, 1)
	assert.Equal(t, 5, current.MaxRows)
	assert.InDelta(t, 82950.0, current.Estimate.TotalCost, 1e-6)

	rec = do(t, s, http.MethodPost, base+"/devices", map[string]string{"name": "Flux Capacitor"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, base+"/devices", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, base+"/devices/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, types.CodeDeviceNotFound, decode[types.ErrorResponse](t, rec).Error.Code)

	rec = do(t, s, http.MethodDelete, base+"/devices/"+added.Device.InstanceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	removed := decode[struct {
		Design design.Design `json:"design"`
	}](t, rec)
	assert.Equal(t, 0, removed.Design.Summary.DeviceCount)
}

func TestPreviewLayout(t *testing.T) {
	s, _ := newTestServer(t)

	devicesBody := map[string]interface{}{
		"devices": []map[string]interface{}{
			{"name": "Transformer", "category": "transformer", "length": 10, "width": 10, "cost": 10000, "capacity_kwh": -500},
			{"name": "PowerPack", "category": "storage", "length": 10, "width": 10, "cost": 10000, "capacity_kwh": 2000},
		},
	}
	rec := do(t, s, http.MethodPost, "/api/v1/layouts/preview", devicesBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	preview := decode[design.Design](t, rec)
	require.Len(t, preview.Layout, 1)
	assert.Equal(t, 1500.0, preview.Summary.TotalCapacity)
	assert.Empty(t, preview.SiteID)

	rec = do(t, s, http.MethodPost, "/api/v1/layouts/preview", map[string]interface{}{
		"devices": []map[string]interface{}{{"name": "Bad", "category": "storage", "length": 10, "width": 0}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSiteReport(t *testing.T) {
	s, _ := newTestServer(t)
	site := createSite(t, s)
	base := "/api/v1/sites/" + site.ID

	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, base+"/devices", map[string]string{"name": "PowerPack"}).Code)

	rec := do(t, s, http.MethodGet, base+"/report?format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "mojave-report.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = do(t, s, http.MethodGet, base+"/report?format=pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = do(t, s, http.MethodGet, base+"/report?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/sites/missing/report", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSystemEndpoints(t *testing.T) {
	s, lm := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RUNNING", decode[interfaces.SystemStatus](t, rec).State)

	rec = do(t, s, http.MethodPost, "/api/v1/system/reload-catalog", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	lm.reloadErr = interfaces.ErrNotRunning
	rec = do(t, s, http.MethodPost, "/api/v1/system/reload-catalog", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	lm.reloadErr = errors.New("disk gone")
	rec = do(t, s, http.MethodPost, "/api/v1/system/reload-catalog", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/ws/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected_clients":0}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sites", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sites", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
