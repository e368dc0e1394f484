package routes

import (
	"errors"
	"net/http"
	"strconv"

	"spoolman/spoolman/broker"
	"spoolman/spoolman/database"
	"spoolman/spoolman/models"
	"spoolman/spoolman/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const totalCountHeader = "x-total-count"

type printJobQuery struct {
	SpoolID *int    `form:"spool_id"`
	Name    *string `form:"name"`
	Limit   *int    `form:"limit" binding:"omitempty,gte=0"`
	Offset  int     `form:"offset" binding:"gte=0"`
}

// RegisterPrintJobRoutes mounts the print job endpoints. A GET carrying a
// websocket upgrade subscribes to the matching change feed instead.
func RegisterPrintJobRoutes(group *gin.RouterGroup, db *database.Database, printJobService services.PrintJobServiceInterface, wsService services.WebSocketServiceInterface) {
	UseRequestFieldNames()

	group.GET("/print-job", func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			wsService.HandleConnection(c, broker.CollectionTopic(models.PrintJobResource))
			return
		}
		FindPrintJobs(c, db, printJobService)
	})
	group.POST("/print-job", func(c *gin.Context) { CreatePrintJob(c, db, printJobService) })
	group.GET("/print-job/:id", func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			PrintJobFeed(c, wsService)
			return
		}
		GetPrintJobById(c, db, printJobService)
	})
	group.PATCH("/print-job/:id", func(c *gin.Context) { UpdatePrintJob(c, db, printJobService) })
	group.DELETE("/print-job/:id", func(c *gin.Context) { DeletePrintJob(c, db, printJobService) })
}

func FindPrintJobs(c *gin.Context, db *database.Database, printJobService services.PrintJobServiceInterface) {
	var query printJobQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondInvalid(c, err)
		return
	}

	jobs, total, err := printJobService.FindPrintJobs(db, models.PrintJobFilter{
		SpoolID: query.SpoolID,
		Name:    query.Name,
		Limit:   query.Limit,
		Offset:  query.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if jobs == nil {
		jobs = []models.PrintJob{}
	}

	c.Header(totalCountHeader, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, jobs)
}

func CreatePrintJob(c *gin.Context, db *database.Database, printJobService services.PrintJobServiceInterface) {
	var params models.PrintJobParameters
	if err := c.ShouldBindJSON(&params); err != nil {
		respondInvalid(c, err)
		return
	}

	job, err := printJobService.CreatePrintJob(db, params)
	if err != nil {
		if errors.Is(err, services.ErrSpoolNotFound) {
			respondMissingReference(c, "spool_id", "Spool not found")
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func GetPrintJobById(c *gin.Context, db *database.Database, printJobService services.PrintJobServiceInterface) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	job, err := printJobService.GetPrintJobById(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func UpdatePrintJob(c *gin.Context, db *database.Database, printJobService services.PrintJobServiceInterface) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch models.PrintJobUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondInvalid(c, err)
		return
	}
	if err := patch.Validate(); err != nil {
		respondInvalid(c, err)
		return
	}

	job, err := printJobService.UpdatePrintJob(db, id, patch)
	if err != nil {
		if errors.Is(err, services.ErrSpoolNotFound) {
			respondMissingReference(c, "spool_id", "Spool not found")
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func DeletePrintJob(c *gin.Context, db *database.Database, printJobService services.PrintJobServiceInterface) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := printJobService.DeletePrintJob(db, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: "Success!"})
}

// PrintJobFeed subscribes the connection to changes of a single print job.
// The job does not need to exist yet.
func PrintJobFeed(c *gin.Context, wsService services.WebSocketServiceInterface) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	wsService.HandleConnection(c, broker.EntityTopic(models.PrintJobResource, id))
}
