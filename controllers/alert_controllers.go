package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dinecommand/middlewares"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/services"
	"github.com/yeremiapane/dinecommand/store"
	"github.com/yeremiapane/dinecommand/utils"
)

type AlertController struct {
	Store    *store.TableStore
	Pipeline *services.AlertPipeline
}

func NewAlertController(s *store.TableStore, pipeline *services.AlertPipeline) *AlertController {
	return &AlertController{Store: s, Pipeline: pipeline}
}

type attachAlertRequest struct {
	Type           models.AlertKind `json:"type" binding:"required"`
	Severity       models.Severity  `json:"severity" binding:"required"`
	Message        string           `json:"message" binding:"required"`
	ActionRequired bool             `json:"action_required"`
	VisibleTo      []models.Role    `json:"visible_to" binding:"required,min=1"`
}

// AttachAlert -> tambahkan alert ke meja
func (ac *AlertController) AttachAlert(c *gin.Context) {
	var req attachAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := ac.Pipeline.Attach(c.Param("table_id"), models.Alert{
		Kind:           req.Type,
		Severity:       req.Severity,
		Message:        req.Message,
		ActionRequired: req.ActionRequired,
		VisibleTo:      req.VisibleTo,
	})
	if err != nil {
		respondFloorError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Alert attached", services.WithRoleView(table, middlewares.RoleFrom(c)))
}

// DismissAlert -> hapus alert pada index tertentu (index dicek ulang terhadap data terbaru)
func (ac *AlertController) DismissAlert(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid alert index %q", c.Param("index")))
		return
	}

	table, err := ac.Pipeline.DismissActionable(c.Param("table_id"), index)
	if err != nil {
		respondFloorError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Alert dismissed", services.WithRoleView(table, middlewares.RoleFrom(c)))
}

// GroupedAlerts returns the table's alerts visible to the role, bucketed by severity.
func (ac *AlertController) GroupedAlerts(c *gin.Context) {
	tableID := c.Param("table_id")
	table, ok := ac.Store.Get(tableID)
	if !ok {
		respondFloorError(c, fmt.Errorf("table %s: %w", tableID, models.ErrTableNotFound))
		return
	}
	visible := services.VisibleForRole(table, middlewares.RoleFrom(c))
	utils.RespondJSON(c, http.StatusOK, "Alerts by severity", services.GroupBySeverity(visible))
}
