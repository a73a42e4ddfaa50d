package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxRate stores the VAT rates of one country for one validity window.
// Rows are append-only; the only mutation allowed is closing an open window by setting EndDate.
type TaxRate struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CountryCode     string           `gorm:"type:varchar(2);not null;uniqueIndex:idx_tax_rate_country_effective" json:"country_code"`
	CountryName     string           `gorm:"type:varchar(100);not null" json:"country_name"`
	StandardVatRate decimal.Decimal  `gorm:"type:decimal(5,2);not null" json:"standard_vat_rate"` // percentage, 19.00 = 19%
	ReducedVatRate  *decimal.Decimal `gorm:"type:decimal(5,2)" json:"reduced_vat_rate"`
	EffectiveDate   time.Time        `gorm:"not null;uniqueIndex:idx_tax_rate_country_effective;index" json:"effective_date"`
	EndDate         *time.Time       `gorm:"index" json:"end_date"` // nullable = open ended
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (r *TaxRate) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ActiveAt reports whether the window contains the calendar day of t (both bounds inclusive).
func (r TaxRate) ActiveAt(t time.Time) bool {
	day := Day(t)
	if Day(r.EffectiveDate).After(day) {
		return false
	}
	return r.EndDate == nil || !Day(*r.EndDate).Before(day)
}

// Overlaps reports whether two windows share at least one day.
func (r TaxRate) Overlaps(from time.Time, to *time.Time) bool {
	if to != nil && Day(r.EffectiveDate).After(Day(*to)) {
		return false
	}
	return r.EndDate == nil || !Day(*r.EndDate).Before(Day(from))
}

// Day truncates t to midnight UTC. Tax windows are day-granular.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
