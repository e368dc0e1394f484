package models

import (
	"time"
)

type Spool struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	Registered time.Time `gorm:"not null" json:"registered"`
	FilamentID int       `gorm:"not null;index:ix_spool_filament_id" json:"filament_id"`
	Filament   *Filament `gorm:"foreignKey:FilamentID" json:"filament,omitempty"`
	// Price paid for this spool, overriding the filament price.
	Price         *float64 `json:"price,omitempty"`
	InitialWeight *float64 `json:"initial_weight,omitempty"`
	UsedWeight    float64  `gorm:"not null;default:0" json:"used_weight"`
	Location      *string  `gorm:"size:64" json:"location,omitempty"`
	Comment       *string  `gorm:"size:1024" json:"comment,omitempty"`
	Archived      bool     `gorm:"not null;default:false" json:"archived"`
}

func (Spool) TableName() string {
	return "spool"
}

type SpoolParameters struct {
	FilamentID    int      `json:"filament_id" binding:"required"`
	Price         *float64 `json:"price" binding:"omitempty,gte=0"`
	InitialWeight *float64 `json:"initial_weight" binding:"omitempty,gte=0"`
	UsedWeight    float64  `json:"used_weight" binding:"gte=0"`
	Location      *string  `json:"location" binding:"omitempty,max=64"`
	Comment       *string  `json:"comment" binding:"omitempty,max=1024"`
	Archived      bool     `json:"archived"`
}

// PricePerGram prefers the spool's own price and initial weight and falls
// back to the filament's price and net weight.
func (s *Spool) PricePerGram() (float64, bool) {
	if s.Price != nil && s.InitialWeight != nil && *s.InitialWeight > 0 {
		return *s.Price / *s.InitialWeight, true
	}
	if s.Filament != nil && s.Filament.Price != nil && s.Filament.Weight != nil && *s.Filament.Weight > 0 {
		return *s.Filament.Price / *s.Filament.Weight, true
	}
	return 0, false
}
