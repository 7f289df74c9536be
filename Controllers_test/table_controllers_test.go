package Controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/store"
)

type tableView struct {
	models.Table
	AllowedStatuses []models.TableStatus `json:"allowed_statuses"`
}

func TestListTablesFiltersAlertsByRole(t *testing.T) {
	env := setupFloor(t, 30)

	w, res := env.do(t, http.MethodGet, "/api/tables", nil, asRole(models.RoleServer))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "List of tables", res.Message)

	var tables []tableView
	decodeData(t, res, &tables)
	require.Len(t, tables, 2)
	assert.Equal(t, "t1", tables[0].ID)
	assert.Equal(t, []models.TableStatus{models.TableReserved, models.TableSeated}, tables[0].AllowedStatuses)
	require.Len(t, tables[1].Alerts, 1)
	assert.Equal(t, "Mains delayed", tables[1].Alerts[0].Message)

	// the store keeps every alert
	stored, _ := env.store.Get("t2")
	assert.Len(t, stored.Alerts, 3)
}

func TestListTablesAlertFilterAndQueryRole(t *testing.T) {
	env := setupFloor(t, 30)

	w, res := env.do(t, http.MethodGet, "/api/tables?filter=alert&role=manager", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tables []tableView
	decodeData(t, res, &tables)
	require.Len(t, tables, 1)
	assert.Equal(t, "t2", tables[0].ID)
	assert.Len(t, tables[0].Alerts, 3)
}

func TestListTablesRejectsMissingOrUnknownRole(t *testing.T) {
	env := setupFloor(t, 30)

	w, res := env.do(t, http.MethodGet, "/api/tables", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, res.Status)

	w, _ = env.do(t, http.MethodGet, "/api/tables", nil, asRole("chef"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTablesUnknownFilter(t *testing.T) {
	env := setupFloor(t, 30)
	w, _ := env.do(t, http.MethodGet, "/api/tables?filter=late", nil, asRole(models.RoleHost))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTable(t *testing.T) {
	env := setupFloor(t, 30)

	w, res := env.do(t, http.MethodGet, "/api/tables/t2", nil, asRole(models.RoleHost))
	require.Equal(t, http.StatusOK, w.Code)
	var table tableView
	decodeData(t, res, &table)
	require.Len(t, table.Alerts, 1)
	assert.Equal(t, "VIP seated", table.Alerts[0].Message)
	assert.Equal(t, []models.TableStatus{models.TableDirty}, table.AllowedStatuses)

	w, _ = env.do(t, http.MethodGet, "/api/tables/ghost", nil, asRole(models.RoleHost))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpsertTable(t *testing.T) {
	env := setupFloor(t, 30)

	w, _ := env.do(t, http.MethodPut, "/api/tables/t3", map[string]interface{}{
		"label":  "103",
		"status": "free",
	}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	got, ok := env.store.Get("t3")
	require.True(t, ok)
	assert.Equal(t, "103", got.Label)
	assert.NotNil(t, got.Alerts)

	// whole-record replace
	w, _ = env.do(t, http.MethodPut, "/api/tables/t2", map[string]interface{}{
		"id":     "t2",
		"label":  "102",
		"status": "dirty",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	got, _ = env.store.Get("t2")
	assert.Equal(t, models.TableDirty, got.Status)
	assert.Empty(t, got.Alerts)
	assert.False(t, got.IsVIP)
}

func TestUpsertTableAnswersWithRoleView(t *testing.T) {
	env := setupFloor(t, 30)

	w, res := env.do(t, http.MethodPut, "/api/tables/t4", map[string]interface{}{
		"status":           "reserved",
		"reservation_time": "2026-05-01T20:00:00Z",
		"seated_duration":  "1h30m0s",
		"alerts": []map[string]interface{}{
			{"type": "high_spend", "severity": "low", "message": "Big spender", "visible_to": []string{"manager"}},
		},
	}, asRole(models.RoleServer))
	require.Equal(t, http.StatusCreated, w.Code)

	var table models.Table
	decodeData(t, res, &table)
	assert.Empty(t, table.Alerts)
	assert.Nil(t, table.SeatedDuration)
	assert.NotNil(t, table.ReservationTime)

	got, _ := env.store.Get("t4")
	assert.Len(t, got.Alerts, 1)
	assert.Nil(t, got.SeatedDuration)

	w, _ = env.do(t, http.MethodPut, "/api/tables/t4", map[string]interface{}{"status": "free"}, asRole("chef"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTableStatusAnswersWithRoleView(t *testing.T) {
	env := setupFloor(t, 30)

	w, res := env.do(t, http.MethodPatch, "/api/tables/t2/status", map[string]interface{}{"status": "dirty"}, asRole(models.RoleHost))
	require.Equal(t, http.StatusOK, w.Code)
	var table models.Table
	decodeData(t, res, &table)
	require.Len(t, table.Alerts, 1)
	assert.Equal(t, "VIP seated", table.Alerts[0].Message)
}

func TestUpsertTableRejectsBadRecords(t *testing.T) {
	env := setupFloor(t, 30)

	w, _ := env.do(t, http.MethodPut, "/api/tables/t1", map[string]interface{}{"id": "t9", "status": "free"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPut, "/api/tables/t1", map[string]interface{}{"status": "occupied"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, _ := env.store.Get("t1")
	assert.Equal(t, models.TableFree, got.Status)
}

func TestUpdateTableStatus(t *testing.T) {
	env := setupFloor(t, 30)

	w, _ := env.do(t, http.MethodPatch, "/api/tables/t1/status", map[string]interface{}{"status": "dirty"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = env.do(t, http.MethodPatch, "/api/tables/t1/status", map[string]interface{}{"status": "reserved"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	at := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	w, res := env.do(t, http.MethodPatch, "/api/tables/t1/status", map[string]interface{}{
		"status":           "reserved",
		"reservation_time": at,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var table models.Table
	decodeData(t, res, &table)
	assert.Equal(t, models.TableReserved, table.Status)
	require.NotNil(t, table.ReservationTime)
	assert.True(t, at.Equal(*table.ReservationTime))

	w, _ = env.do(t, http.MethodPatch, "/api/tables/ghost/status", map[string]interface{}{"status": "seated"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, http.MethodPatch, "/api/tables/t1/status", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStats(t *testing.T) {
	env := setupFloor(t, 30)

	w, res := env.do(t, http.MethodGet, "/api/stats", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats store.Stats
	decodeData(t, res, &stats)
	assert.Equal(t, store.Stats{SeatedCount: 1, TotalAlertCount: 3, VIPSeatedCount: 1}, stats)
}
