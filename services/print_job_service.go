package services

import (
	"strings"
	"time"

	"spoolman/spoolman/broker"
	"spoolman/spoolman/database"
	"spoolman/spoolman/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PrintJobServiceInterface interface {
	CreatePrintJob(db *database.Database, params models.PrintJobParameters) (models.PrintJob, error)
	GetPrintJobById(db *database.Database, id int) (models.PrintJob, error)
	FindPrintJobs(db *database.Database, filter models.PrintJobFilter) ([]models.PrintJob, int64, error)
	UpdatePrintJob(db *database.Database, id int, patch models.PrintJobUpdate) (models.PrintJob, error)
	DeletePrintJob(db *database.Database, id int) error
}

type PrintJobService struct {
	notifier broker.Publisher
	// notifyCollection also publishes every change on the collection topic.
	notifyCollection bool
}

func NewPrintJobService(notifier broker.Publisher, notifyCollection bool) *PrintJobService {
	return &PrintJobService{
		notifier:         notifier,
		notifyCollection: notifyCollection,
	}
}

func (s *PrintJobService) CreatePrintJob(db *database.Database, params models.PrintJobParameters) (models.PrintJob, error) {
	spool, err := findSpool(db.DB, params.SpoolID)
	if err != nil {
		return models.PrintJob{}, err
	}

	job := models.PrintJob{
		Registered:        time.Now().UTC().Truncate(time.Second),
		SpoolID:           spool.ID,
		StartedAt:         models.UTC(params.StartedAt.TimePtr()),
		CompletedAt:       models.UTC(params.CompletedAt.TimePtr()),
		Cost:              params.Cost,
		Revenue:           params.Revenue,
		Notes:             params.Notes,
		ExternalReference: params.ExternalReference,
	}
	if params.Name != nil {
		job.Name = *params.Name
	}
	if params.WeightUsed != nil {
		job.WeightUsed = *params.WeightUsed
	}

	if job.Cost == nil && job.WeightUsed > 0 {
		job.Cost = deriveCost(job.WeightUsed, &spool)
	}

	if err := db.DB.Omit(clause.Associations).Create(&job).Error; err != nil {
		return models.PrintJob{}, errors.Wrap(err, "creating print job")
	}
	job.Spool = &spool

	s.printJobChanged(job, models.EventAdded)
	return job, nil
}

// deriveCost prices the used filament from the spool, falling back to the
// filament. It returns nil when neither carries a usable price.
func deriveCost(weightUsed float64, spool *models.Spool) *float64 {
	perGram, ok := spool.PricePerGram()
	if !ok {
		return nil
	}
	cost := weightUsed * perGram
	return &cost
}

func (s *PrintJobService) GetPrintJobById(db *database.Database, id int) (models.PrintJob, error) {
	var job models.PrintJob
	if err := db.DB.Preload("Spool.Filament").First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PrintJob{}, ErrPrintJobNotFound
		}
		return models.PrintJob{}, errors.Wrapf(err, "loading print job %d", id)
	}
	return job, nil
}

// FindPrintJobs returns matching jobs, newest first, together with the total
// number of matches. The total is only counted separately when a limit is set.
func (s *PrintJobService) FindPrintJobs(db *database.Database, filter models.PrintJobFilter) ([]models.PrintJob, int64, error) {
	filters := func(tx *gorm.DB) *gorm.DB {
		if filter.SpoolID != nil {
			tx = tx.Where("spool_id = ?", *filter.SpoolID)
		}
		if filter.Name != nil {
			tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(*filter.Name)+"%")
		}
		return tx
	}

	query := db.DB.Model(&models.PrintJob{}).Scopes(filters)

	var total int64
	if filter.Limit != nil {
		if err := db.DB.Model(&models.PrintJob{}).Scopes(filters).Count(&total).Error; err != nil {
			return nil, 0, errors.Wrap(err, "counting print jobs")
		}
		query = query.Offset(filter.Offset).Limit(*filter.Limit)
	}

	jobs := []models.PrintJob{}
	err := query.
		Preload("Spool.Filament").
		Order("registered DESC").
		Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "finding print jobs")
	}

	if filter.Limit == nil {
		total = int64(len(jobs))
	}
	return jobs, total, nil
}

func (s *PrintJobService) UpdatePrintJob(db *database.Database, id int, patch models.PrintJobUpdate) (models.PrintJob, error) {
	job, err := s.GetPrintJobById(db, id)
	if err != nil {
		return models.PrintJob{}, err
	}

	var newSpool *models.Spool
	if patch.SpoolID.Set && patch.SpoolID.Value != job.SpoolID {
		spool, err := findSpool(db.DB, patch.SpoolID.Value)
		if err != nil {
			return models.PrintJob{}, err
		}
		newSpool = &spool
	}

	patch.ApplyTo(&job)

	if err := db.DB.Omit(clause.Associations).Save(&job).Error; err != nil {
		return models.PrintJob{}, errors.Wrapf(err, "updating print job %d", id)
	}
	if newSpool != nil {
		job.Spool = newSpool
	}

	s.printJobChanged(job, models.EventUpdated)
	return job, nil
}

func (s *PrintJobService) DeletePrintJob(db *database.Database, id int) error {
	job, err := s.GetPrintJobById(db, id)
	if err != nil {
		return err
	}

	if err := db.DB.Delete(&models.PrintJob{}, id).Error; err != nil {
		return errors.Wrapf(err, "deleting print job %d", id)
	}

	s.printJobChanged(job, models.EventDeleted)
	return nil
}

// printJobChanged notifies subscribers of job. It never fails the caller.
func (s *PrintJobService) printJobChanged(job models.PrintJob, typ models.EventType) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int("print_job", job.ID).Msg("Failed to send websocket message")
		}
	}()

	event := models.NewChangeEvent(typ, models.PrintJobResource, job)
	s.notifier.Publish(broker.EntityTopic(models.PrintJobResource, job.ID), event)
	if s.notifyCollection {
		s.notifier.Publish(broker.CollectionTopic(models.PrintJobResource), event)
	}
}
