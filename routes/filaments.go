package routes

import (
	"net/http"

	"spoolman/spoolman/database"
	"spoolman/spoolman/models"
	"spoolman/spoolman/services"

	"github.com/gin-gonic/gin"
)

func RegisterFilamentRoutes(group *gin.RouterGroup, db *database.Database, filamentService services.FilamentServiceInterface) {
	UseRequestFieldNames()

	group.GET("/filament", func(c *gin.Context) { GetFilaments(c, db, filamentService) })
	group.POST("/filament", func(c *gin.Context) { CreateFilament(c, db, filamentService) })
	group.GET("/filament/:id", func(c *gin.Context) { GetFilamentById(c, db, filamentService) })
}

func GetFilaments(c *gin.Context, db *database.Database, filamentService services.FilamentServiceInterface) {
	filaments, err := filamentService.GetFilaments(db)
	if err != nil {
		respondError(c, err)
		return
	}
	if filaments == nil {
		filaments = []models.Filament{}
	}
	c.JSON(http.StatusOK, filaments)
}

func CreateFilament(c *gin.Context, db *database.Database, filamentService services.FilamentServiceInterface) {
	var params models.FilamentParameters
	if err := c.ShouldBindJSON(&params); err != nil {
		respondInvalid(c, err)
		return
	}

	filament, err := filamentService.CreateFilament(db, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filament)
}

func GetFilamentById(c *gin.Context, db *database.Database, filamentService services.FilamentServiceInterface) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	filament, err := filamentService.GetFilamentById(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filament)
}
