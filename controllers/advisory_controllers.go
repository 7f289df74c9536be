package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/services"
	"github.com/yeremiapane/dinecommand/store"
	"github.com/yeremiapane/dinecommand/utils"
)

const (
	ConsoleHeader  = "X-Console-ID"
	defaultConsole = "default"
)

type AdvisoryController struct {
	Store    *store.TableStore
	Registry *services.ConsoleRegistry
}

func NewAdvisoryController(s *store.TableStore, registry *services.ConsoleRegistry) *AdvisoryController {
	return &AdvisoryController{Store: s, Registry: registry}
}

func consoleID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(ConsoleHeader))
	if id == "" {
		return defaultConsole
	}
	return id
}

func (ac *AdvisoryController) console(c *gin.Context) *services.Console {
	return ac.Registry.Console(consoleID(c))
}

type selectRequest struct {
	TableID string `json:"table_id" binding:"required"`
}

// SelectTable -> pindahkan fokus console ke meja lain
func (ac *AdvisoryController) SelectTable(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if _, ok := ac.Store.Get(req.TableID); !ok {
		respondFloorError(c, fmt.Errorf("table %s: %w", req.TableID, models.ErrTableNotFound))
		return
	}

	console := ac.console(c)
	console.Select(req.TableID)
	utils.RespondJSON(c, http.StatusOK, "Table selected", console.State())
}

// ConsoleState -> fokus, status pending, dan hasil analisis untuk meja terpilih
func (ac *AdvisoryController) ConsoleState(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Console state", ac.console(c).State())
}

// CloseConsole -> akhiri sesi console; fokus dan cache hasil analisis dibuang
func (ac *AdvisoryController) CloseConsole(c *gin.Context) {
	ac.Registry.Close(consoleID(c))
	utils.RespondJSON(c, http.StatusOK, "Console closed", nil)
}

// RequestAnalysis blocks until the advisory resolves. Advisory failures come
// back as the fallback result with status 200.
func (ac *AdvisoryController) RequestAnalysis(c *gin.Context) {
	result, err := ac.console(c).RequestAnalysis(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		if c.Request.Context().Err() != nil {
			// client went away
			return
		}
		respondFloorError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table analysis", result)
}
