package services

import (
	"time"

	"spoolman/spoolman/broker"
	"spoolman/spoolman/database"
	"spoolman/spoolman/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SpoolServiceInterface interface {
	CreateSpool(db *database.Database, params models.SpoolParameters) (models.Spool, error)
	GetSpoolById(db *database.Database, id int) (models.Spool, error)
	GetSpools(db *database.Database, filamentID *int) ([]models.Spool, error)
	DeleteSpool(db *database.Database, id int) error
}

type SpoolService struct {
	notifier broker.Publisher
}

func NewSpoolService(notifier broker.Publisher) *SpoolService {
	return &SpoolService{notifier: notifier}
}

// findSpool loads a spool together with its filament.
func findSpool(tx *gorm.DB, id int) (models.Spool, error) {
	var spool models.Spool
	if err := tx.Preload("Filament").First(&spool, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Spool{}, ErrSpoolNotFound
		}
		return models.Spool{}, errors.Wrapf(err, "loading spool %d", id)
	}
	return spool, nil
}

func (s *SpoolService) CreateSpool(db *database.Database, params models.SpoolParameters) (models.Spool, error) {
	filament, err := findFilament(db.DB, params.FilamentID)
	if err != nil {
		return models.Spool{}, err
	}

	spool := models.Spool{
		Registered:    time.Now().UTC().Truncate(time.Second),
		FilamentID:    filament.ID,
		Price:         params.Price,
		InitialWeight: params.InitialWeight,
		UsedWeight:    params.UsedWeight,
		Location:      params.Location,
		Comment:       params.Comment,
		Archived:      params.Archived,
	}
	if err := db.DB.Omit(clause.Associations).Create(&spool).Error; err != nil {
		return models.Spool{}, errors.Wrap(err, "creating spool")
	}
	spool.Filament = &filament

	s.spoolChanged(spool, models.EventAdded)
	return spool, nil
}

func (s *SpoolService) GetSpoolById(db *database.Database, id int) (models.Spool, error) {
	return findSpool(db.DB, id)
}

func (s *SpoolService) GetSpools(db *database.Database, filamentID *int) ([]models.Spool, error) {
	query := db.DB.Preload("Filament")
	if filamentID != nil {
		query = query.Where("filament_id = ?", *filamentID)
	}

	spools := []models.Spool{}
	if err := query.Order("registered DESC").Order("id DESC").Find(&spools).Error; err != nil {
		return nil, errors.Wrap(err, "listing spools")
	}
	return spools, nil
}

// DeleteSpool removes a spool. Its print jobs are removed by the database
// through the print_job.spool_id cascade.
func (s *SpoolService) DeleteSpool(db *database.Database, id int) error {
	spool, err := findSpool(db.DB, id)
	if err != nil {
		return err
	}

	if err := db.DB.Delete(&models.Spool{}, id).Error; err != nil {
		return errors.Wrapf(err, "deleting spool %d", id)
	}

	s.spoolChanged(spool, models.EventDeleted)
	return nil
}

func (s *SpoolService) spoolChanged(spool models.Spool, typ models.EventType) {
	if s.notifier == nil {
		return
	}
	event := models.NewChangeEvent(typ, models.SpoolResource, spool)
	s.notifier.Publish(broker.EntityTopic(models.SpoolResource, spool.ID), event)
}
