package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dinecommand/feed"
	"github.com/yeremiapane/dinecommand/middlewares"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/services"
	"github.com/yeremiapane/dinecommand/store"
	"github.com/yeremiapane/dinecommand/utils"
)

type TableController struct {
	Store *store.TableStore
	Guard *services.StatusGuard
}

func NewTableController(s *store.TableStore, guard *services.StatusGuard) *TableController {
	return &TableController{Store: s, Guard: guard}
}

// TableView adds the statuses reachable from the current one, for the status menu.
type TableView struct {
	models.Table
	AllowedStatuses []models.TableStatus `json:"allowed_statuses"`
}

func newTableView(t models.Table, role models.Role) TableView {
	return TableView{
		Table:           services.WithRoleView(t, role),
		AllowedStatuses: services.AllowedTargets(t.Status),
	}
}

// ListTables -> daftar meja dengan filter all|alert|vip, alert difilter per role
func (tc *TableController) ListTables(c *gin.Context) {
	pred, err := store.ParseFilter(c.DefaultQuery("filter", "all"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	role := middlewares.RoleFrom(c)
	tables := tc.Store.ListFiltered(pred)
	views := make([]TableView, 0, len(tables))
	for _, t := range tables {
		views = append(views, newTableView(t, role))
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", views)
}

// GetTable -> detail satu meja
func (tc *TableController) GetTable(c *gin.Context) {
	tableID := c.Param("table_id")
	table, ok := tc.Store.Get(tableID)
	if !ok {
		respondFloorError(c, fmt.Errorf("table %s: %w", tableID, models.ErrTableNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", newTableView(table, middlewares.RoleFrom(c)))
}

// UpsertTable is the HTTP ingress for feed deltas: the body replaces the whole record.
func (tc *TableController) UpsertTable(c *gin.Context) {
	var table models.Table
	if err := c.ShouldBindJSON(&table); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	d, err := feed.Delta{TableID: c.Param("table_id"), Table: table}.Normalize()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	created := tc.Store.Save(d.Table)
	utils.InfoLogger.Printf("Table upserted: %s (status=%s)", d.TableID, d.Table.Status)

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	utils.RespondJSON(c, code, "Table saved", services.WithRoleView(d.Table, middlewares.RoleFrom(c)))
}

// UpdateTableStatus -> ubah status meja lewat status guard
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	var req services.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Guard.Transition(c.Param("table_id"), req)
	if err != nil {
		respondFloorError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status updated", services.WithRoleView(table, middlewares.RoleFrom(c)))
}

// GetStats -> statistik lantai untuk header dashboard
func (tc *TableController) GetStats(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Floor stats", tc.Store.AggregateStats())
}
