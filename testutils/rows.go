package testutils

import (
	"database/sql/driver"
	"time"

	"spoolman/spoolman/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

var (
	PrintJobColumns = []string{
		"id", "registered", "spool_id", "name", "weight_used",
		"started_at", "completed_at", "cost", "revenue",
		"notes", "external_reference",
	}
	SpoolColumns = []string{
		"id", "registered", "filament_id", "price", "initial_weight",
		"used_weight", "location", "comment", "archived",
	}
	FilamentColumns = []string{
		"id", "registered", "name", "material", "price", "weight",
		"density", "diameter", "comment",
	}
)

// nullable turns an optional field into the driver value a real database
// would return.
func nullable[T any](v *T) driver.Value {
	if v == nil {
		return nil
	}
	return *v
}

// MockPrintJobRows creates mock SQL rows for print job queries
func MockPrintJobRows(jobs ...models.PrintJob) *sqlmock.Rows {
	rows := sqlmock.NewRows(PrintJobColumns)
	for _, job := range jobs {
		if job.Registered.IsZero() {
			job.Registered = time.Now().UTC()
		}
		rows.AddRow(
			job.ID, job.Registered, job.SpoolID, job.Name, job.WeightUsed,
			nullable(job.StartedAt), nullable(job.CompletedAt), nullable(job.Cost), nullable(job.Revenue),
			nullable(job.Notes), nullable(job.ExternalReference),
		)
	}
	return rows
}

func MockSpoolRows(spools ...models.Spool) *sqlmock.Rows {
	rows := sqlmock.NewRows(SpoolColumns)
	for _, spool := range spools {
		if spool.Registered.IsZero() {
			spool.Registered = time.Now().UTC()
		}
		rows.AddRow(
			spool.ID, spool.Registered, spool.FilamentID, nullable(spool.Price), nullable(spool.InitialWeight),
			spool.UsedWeight, nullable(spool.Location), nullable(spool.Comment), spool.Archived,
		)
	}
	return rows
}

func MockFilamentRows(filaments ...models.Filament) *sqlmock.Rows {
	rows := sqlmock.NewRows(FilamentColumns)
	for _, filament := range filaments {
		if filament.Registered.IsZero() {
			filament.Registered = time.Now().UTC()
		}
		rows.AddRow(
			filament.ID, filament.Registered, nullable(filament.Name), nullable(filament.Material), nullable(filament.Price),
			nullable(filament.Weight), filament.Density, filament.Diameter, nullable(filament.Comment),
		)
	}
	return rows
}
