package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/dinecommand/kds"
	"github.com/yeremiapane/dinecommand/middlewares"
	"github.com/yeremiapane/dinecommand/store"
	"github.com/yeremiapane/dinecommand/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type FloorSocketController struct {
	Hub   *kds.FloorHub
	Store *store.TableStore
}

func NewFloorSocketController(hub *kds.FloorHub, s *store.TableStore) *FloorSocketController {
	return &FloorSocketController{Hub: hub, Store: s}
}

// FloorSocket -> endpoint WebSocket untuk floor view; role diambil dari StaffRole middleware
func (fc *FloorSocketController) FloorSocket(c *gin.Context) {
	role := middlewares.RoleFrom(c)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	// register dulu supaya tidak ada update yang hilang antara snapshot dan broadcast
	fc.Hub.RegisterClient(ws, role)
	if err := fc.Hub.SendSnapshot(ws, role, fc.Store.ListFiltered(store.FilterAll), fc.Store.AggregateStats()); err != nil {
		utils.ErrorLogger.Printf("sending floor snapshot failed: %v", err)
		fc.Hub.UnregisterClient(ws)
		return
	}

	// Baca pesan sampai client disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	fc.Hub.UnregisterClient(ws)
}
