package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

type PrintJob struct {
	ID                int        `gorm:"primaryKey;index:ix_print_job_id" json:"id"`
	Registered        time.Time  `gorm:"not null" json:"registered"`
	SpoolID           int        `gorm:"not null;index:ix_print_job_spool_id" json:"spool_id"`
	Spool             *Spool     `gorm:"foreignKey:SpoolID;constraint:OnDelete:CASCADE;" json:"spool,omitempty"`
	Name              string     `gorm:"size:128;not null" json:"name"`
	WeightUsed        float64    `gorm:"not null" json:"weight_used"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	Cost              *float64   `json:"cost,omitempty"`
	Revenue           *float64   `json:"revenue,omitempty"`
	Notes             *string    `gorm:"size:1024" json:"notes,omitempty"`
	ExternalReference *string    `gorm:"size:256" json:"external_reference,omitempty"`
}

func (PrintJob) TableName() string {
	return "print_job"
}

const (
	MaxPrintJobNameLength              = 128
	MaxPrintJobNotesLength             = 1024
	MaxPrintJobExternalReferenceLength = 256
)

// PrintJobParameters is the body of a create request.
type PrintJobParameters struct {
	SpoolID           int        `json:"spool_id" binding:"required"`
	Name              *string    `json:"name" binding:"required,max=128"`
	WeightUsed        *float64   `json:"weight_used" binding:"required,gte=0"`
	StartedAt         *Timestamp `json:"started_at"`
	CompletedAt       *Timestamp `json:"completed_at"`
	Cost              *float64   `json:"cost" binding:"omitempty,gte=0"`
	Revenue           *float64   `json:"revenue" binding:"omitempty,gte=0"`
	Notes             *string    `json:"notes" binding:"omitempty,max=1024"`
	ExternalReference *string    `json:"external_reference" binding:"omitempty,max=256"`
}

// PrintJobUpdate is the body of a partial update. Only keys present in the
// request are applied.
type PrintJobUpdate struct {
	SpoolID           Optional[int]       `json:"spool_id"`
	Name              Optional[string]    `json:"name"`
	WeightUsed        Optional[float64]   `json:"weight_used"`
	StartedAt         Optional[Timestamp] `json:"started_at"`
	CompletedAt       Optional[Timestamp] `json:"completed_at"`
	Cost              Optional[float64]   `json:"cost"`
	Revenue           Optional[float64]   `json:"revenue"`
	Notes             Optional[string]    `json:"notes"`
	ExternalReference Optional[string]    `json:"external_reference"`
}

type PrintJobFilter struct {
	SpoolID *int
	Name    *string
	Limit   *int
	Offset  int
}

func (u PrintJobUpdate) Validate() error {
	var errs FieldErrors

	requireValue := func(field string, set, valid bool) bool {
		if set && !valid {
			errs = append(errs, FieldError{Field: field, Message: "may not be null"})
			return false
		}
		return set
	}
	maxLength := func(field string, value string, limit int) {
		if utf8.RuneCountInString(value) > limit {
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("must be at most %d characters", limit)})
		}
	}
	nonNegative := func(field string, value float64) {
		if value < 0 {
			errs = append(errs, FieldError{Field: field, Message: "must be greater than or equal to 0"})
		}
	}

	requireValue("spool_id", u.SpoolID.Set, u.SpoolID.Valid)
	if requireValue("name", u.Name.Set, u.Name.Valid) {
		maxLength("name", u.Name.Value, MaxPrintJobNameLength)
	}
	if requireValue("weight_used", u.WeightUsed.Set, u.WeightUsed.Valid) {
		nonNegative("weight_used", u.WeightUsed.Value)
	}
	if u.Cost.Valid {
		nonNegative("cost", u.Cost.Value)
	}
	if u.Revenue.Valid {
		nonNegative("revenue", u.Revenue.Value)
	}
	if u.Notes.Valid {
		maxLength("notes", u.Notes.Value, MaxPrintJobNotesLength)
	}
	if u.ExternalReference.Valid {
		maxLength("external_reference", u.ExternalReference.Value, MaxPrintJobExternalReferenceLength)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ApplyTo merges every present field into job. Timestamps are stored in UTC.
func (u PrintJobUpdate) ApplyTo(job *PrintJob) {
	if u.SpoolID.Set {
		job.SpoolID = u.SpoolID.Value
		if job.Spool != nil && job.Spool.ID != job.SpoolID {
			job.Spool = nil
		}
	}
	if u.Name.Set {
		job.Name = u.Name.Value
	}
	if u.WeightUsed.Set {
		job.WeightUsed = u.WeightUsed.Value
	}
	if u.StartedAt.Set {
		job.StartedAt = UTC(u.StartedAt.Ptr().TimePtr())
	}
	if u.CompletedAt.Set {
		job.CompletedAt = UTC(u.CompletedAt.Ptr().TimePtr())
	}
	if u.Cost.Set {
		job.Cost = u.Cost.Ptr()
	}
	if u.Revenue.Set {
		job.Revenue = u.Revenue.Ptr()
	}
	if u.Notes.Set {
		job.Notes = u.Notes.Ptr()
	}
	if u.ExternalReference.Set {
		job.ExternalReference = u.ExternalReference.Ptr()
	}
}

// UTC converts t to UTC, keeping nil as nil.
func UTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
