package repository

import (
	"context"
	"time"

	"pricing/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaxRateRepository interface {
	Create(ctx context.Context, rate *model.TaxRate) error
	CreateBatch(ctx context.Context, rates []model.TaxRate) error
	CloseWindow(ctx context.Context, id uuid.UUID, endDate time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRate, error)
	List(ctx context.Context, countryCode string, page, limit int) ([]model.TaxRate, int64, error)
	Count(ctx context.Context) (int64, error)
	FindActiveByCountry(ctx context.Context, countryCode string, at time.Time) (*model.TaxRate, error)
	FindOpenByCountry(ctx context.Context, countryCode string) (*model.TaxRate, error)
	CountOverlapping(ctx context.Context, countryCode string, from time.Time, to *time.Time) (int64, error)
}

type taxRateRepository struct {
	db *gorm.DB
}

func NewTaxRateRepository(db *gorm.DB) TaxRateRepository {
	return &taxRateRepository{db: db}
}

func (r *taxRateRepository) Create(ctx context.Context, rate *model.TaxRate) error {
	return GetDB(ctx, r.db).Create(rate).Error
}

func (r *taxRateRepository) CreateBatch(ctx context.Context, rates []model.TaxRate) error {
	if len(rates) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).CreateInBatches(rates, 100).Error
}

// CloseWindow sets the end date of a rate. It is the only update the table allows.
func (r *taxRateRepository) CloseWindow(ctx context.Context, id uuid.UUID, endDate time.Time) error {
	res := GetDB(ctx, r.db).Model(&model.TaxRate{}).
		Where("id = ? AND end_date IS NULL", id).
		Update("end_date", model.Day(endDate))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *taxRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRate, error) {
	var rate model.TaxRate
	if err := GetDB(ctx, r.db).First(&rate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *taxRateRepository) List(ctx context.Context, countryCode string, page, limit int) ([]model.TaxRate, int64, error) {
	var rates []model.TaxRate
	var total int64

	byCountry := func(db *gorm.DB) *gorm.DB {
		if countryCode != "" {
			return db.Where("country_code = ?", countryCode)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.TaxRate{}).Scopes(byCountry).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Scopes(byCountry).
		Order("country_code asc").Order("effective_date desc").
		Offset(offset).Limit(limit).Find(&rates).Error; err != nil {
		return nil, 0, err
	}

	return rates, total, nil
}

func (r *taxRateRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.TaxRate{}).Count(&total).Error
	return total, err
}

// FindActiveByCountry picks the latest window containing the day of at.
func (r *taxRateRepository) FindActiveByCountry(ctx context.Context, countryCode string, at time.Time) (*model.TaxRate, error) {
	day := model.Day(at)

	var rate model.TaxRate
	if err := GetDB(ctx, r.db).
		Where("country_code = ? AND effective_date <= ? AND (end_date IS NULL OR end_date >= ?)", countryCode, day, day).
		Order("effective_date DESC").
		First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

// FindOpenByCountry returns the window without an end date, if any.
func (r *taxRateRepository) FindOpenByCountry(ctx context.Context, countryCode string) (*model.TaxRate, error) {
	var rate model.TaxRate
	if err := GetDB(ctx, r.db).
		Where("country_code = ? AND end_date IS NULL", countryCode).
		Order("effective_date DESC").
		First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *taxRateRepository) CountOverlapping(ctx context.Context, countryCode string, from time.Time, to *time.Time) (int64, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.TaxRate{}).Where("country_code = ?", countryCode)

	if to != nil {
		// existing.from <= new.to AND (existing.to IS NULL OR existing.to >= new.from)
		query = query.Where("effective_date <= ? AND (end_date IS NULL OR end_date >= ?)", model.Day(*to), model.Day(from))
	} else {
		query = query.Where("(end_date IS NULL OR end_date >= ?)", model.Day(from))
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
