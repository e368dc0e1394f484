package services

import (
	"time"

	"spoolman/spoolman/database"
	"spoolman/spoolman/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type FilamentServiceInterface interface {
	CreateFilament(db *database.Database, params models.FilamentParameters) (models.Filament, error)
	GetFilamentById(db *database.Database, id int) (models.Filament, error)
	GetFilaments(db *database.Database) ([]models.Filament, error)
}

type FilamentService struct{}

func NewFilamentService() *FilamentService {
	return &FilamentService{}
}

func findFilament(tx *gorm.DB, id int) (models.Filament, error) {
	var filament models.Filament
	if err := tx.First(&filament, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Filament{}, ErrFilamentNotFound
		}
		return models.Filament{}, errors.Wrapf(err, "loading filament %d", id)
	}
	return filament, nil
}

func (s *FilamentService) CreateFilament(db *database.Database, params models.FilamentParameters) (models.Filament, error) {
	filament := models.Filament{
		Registered: time.Now().UTC().Truncate(time.Second),
		Name:       params.Name,
		Material:   params.Material,
		Price:      params.Price,
		Weight:     params.Weight,
		Density:    params.Density,
		Diameter:   params.Diameter,
		Comment:    params.Comment,
	}
	if err := db.DB.Create(&filament).Error; err != nil {
		return models.Filament{}, errors.Wrap(err, "creating filament")
	}
	return filament, nil
}

func (s *FilamentService) GetFilamentById(db *database.Database, id int) (models.Filament, error) {
	return findFilament(db.DB, id)
}

func (s *FilamentService) GetFilaments(db *database.Database) ([]models.Filament, error) {
	filaments := []models.Filament{}
	if err := db.DB.Order("id ASC").Find(&filaments).Error; err != nil {
		return nil, errors.Wrap(err, "listing filaments")
	}
	return filaments, nil
}
