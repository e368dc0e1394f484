package models

import (
	"time"
)

type Filament struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	Registered time.Time `gorm:"not null" json:"registered"`
	Name       *string   `gorm:"size:64" json:"name,omitempty"`
	Material   *string   `gorm:"size:64" json:"material,omitempty"`
	// Price of a full spool of this filament.
	Price *float64 `json:"price,omitempty"`
	// Weight is the net filament weight of a full spool, in grams.
	Weight   *float64 `json:"weight,omitempty"`
	Density  float64  `gorm:"not null" json:"density"`
	Diameter float64  `gorm:"not null" json:"diameter"`
	Comment  *string  `gorm:"size:1024" json:"comment,omitempty"`
}

func (Filament) TableName() string {
	return "filament"
}

type FilamentParameters struct {
	Name     *string  `json:"name" binding:"omitempty,max=64"`
	Material *string  `json:"material" binding:"omitempty,max=64"`
	Price    *float64 `json:"price" binding:"omitempty,gte=0"`
	Weight   *float64 `json:"weight" binding:"omitempty,gt=0"`
	Density  float64  `json:"density" binding:"required,gt=0"`
	Diameter float64  `json:"diameter" binding:"required,gt=0"`
	Comment  *string  `json:"comment" binding:"omitempty,max=1024"`
}
