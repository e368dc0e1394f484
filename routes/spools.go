package routes

import (
	"errors"
	"net/http"

	"spoolman/spoolman/broker"
	"spoolman/spoolman/database"
	"spoolman/spoolman/models"
	"spoolman/spoolman/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type spoolQuery struct {
	FilamentID *int `form:"filament_id"`
}

func RegisterSpoolRoutes(group *gin.RouterGroup, db *database.Database, spoolService services.SpoolServiceInterface, wsService services.WebSocketServiceInterface) {
	UseRequestFieldNames()

	group.GET("/spool", func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			wsService.HandleConnection(c, broker.CollectionTopic(models.SpoolResource))
			return
		}
		GetSpools(c, db, spoolService)
	})
	group.POST("/spool", func(c *gin.Context) { CreateSpool(c, db, spoolService) })
	group.GET("/spool/:id", func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			if id, ok := parseID(c); ok {
				wsService.HandleConnection(c, broker.EntityTopic(models.SpoolResource, id))
			}
			return
		}
		GetSpoolById(c, db, spoolService)
	})
	group.DELETE("/spool/:id", func(c *gin.Context) { DeleteSpool(c, db, spoolService) })
}

func GetSpools(c *gin.Context, db *database.Database, spoolService services.SpoolServiceInterface) {
	var query spoolQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondInvalid(c, err)
		return
	}

	spools, err := spoolService.GetSpools(db, query.FilamentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if spools == nil {
		spools = []models.Spool{}
	}
	c.JSON(http.StatusOK, spools)
}

func CreateSpool(c *gin.Context, db *database.Database, spoolService services.SpoolServiceInterface) {
	var params models.SpoolParameters
	if err := c.ShouldBindJSON(&params); err != nil {
		respondInvalid(c, err)
		return
	}

	spool, err := spoolService.CreateSpool(db, params)
	if err != nil {
		if errors.Is(err, services.ErrFilamentNotFound) {
			respondMissingReference(c, "filament_id", "Filament not found")
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spool)
}

func GetSpoolById(c *gin.Context, db *database.Database, spoolService services.SpoolServiceInterface) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	spool, err := spoolService.GetSpoolById(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spool)
}

func DeleteSpool(c *gin.Context, db *database.Database, spoolService services.SpoolServiceInterface) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := spoolService.DeleteSpool(db, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: "Success!"})
}
