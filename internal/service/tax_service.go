package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pricing/internal/cache"
	"pricing/internal/model"
	"pricing/internal/repository"
	"pricing/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Events pushed to connected dashboards.
const (
	EventTaxRateCreated    = "tax_rate.created"
	EventTaxRateSuperseded = "tax_rate.superseded"
)

// EventPublisher fans out change notifications. Publishing must not block.
type EventPublisher interface {
	Publish(event string, data interface{})
}

// --- DTOs ---

type CreateTaxRateRequest struct {
	CountryCode     string `json:"country_code" binding:"required,len=2,alpha"`
	CountryName     string `json:"country_name" binding:"required"`
	StandardVatRate string `json:"standard_vat_rate" binding:"required"` // percentage, e.g. "19.00"
	ReducedVatRate  string `json:"reduced_vat_rate"`                     // optional
	EffectiveDate   string `json:"effective_date" binding:"required"`    // YYYY-MM-DD
	EndDate         string `json:"end_date"`                             // YYYY-MM-DD, empty = open ended
}

type TaxRateResponse struct {
	ID              string  `json:"id"`
	CountryCode     string  `json:"country_code"`
	CountryName     string  `json:"country_name"`
	StandardVatRate string  `json:"standard_vat_rate"`
	ReducedVatRate  *string `json:"reduced_vat_rate"`
	EffectiveDate   string  `json:"effective_date"`
	EndDate         *string `json:"end_date"`
	CreatedAt       string  `json:"created_at"`
}

// --- Interface ---

type TaxService interface {
	ListTaxRates(ctx context.Context, countryCode string, page, limit int) ([]TaxRateResponse, int64, error)
	GetActiveTaxRate(ctx context.Context, countryCode string, at time.Time) (*model.TaxRate, error)
	CreateTaxRate(ctx context.Context, req CreateTaxRateRequest, userID string) (TaxRateResponse, error)
	SupersedeTaxRate(ctx context.Context, req CreateTaxRateRequest, userID string) (TaxRateResponse, error)
}

type taxService struct {
	taxRateRepo repository.TaxRateRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	cache       cache.TaxRateCache
	events      EventPublisher
	log         *zap.Logger
}

func NewTaxService(
	taxRateRepo repository.TaxRateRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	rateCache cache.TaxRateCache,
	events EventPublisher,
	log *zap.Logger,
) TaxService {
	if rateCache == nil {
		rateCache = cache.NoopTaxRateCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &taxService{
		taxRateRepo: taxRateRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		cache:       rateCache,
		events:      events,
		log:         log.Named("tax"),
	}
}

// --- Implementation ---

func (s *taxService) ListTaxRates(ctx context.Context, countryCode string, page, limit int) ([]TaxRateResponse, int64, error) {
	p := pagination.New(page, limit)

	rates, total, err := s.taxRateRepo.List(ctx, model.NormalizeCountry(countryCode), p.Page, p.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tax rates: %w", err)
	}

	res := make([]TaxRateResponse, 0, len(rates))
	for _, r := range rates {
		res = append(res, ToTaxRateResponse(r))
	}
	return res, total, nil
}

// GetActiveTaxRate returns the rate in force for the country on the day of at.
// When windows were stored overlapping, the latest effective date wins.
func (s *taxService) GetActiveTaxRate(ctx context.Context, countryCode string, at time.Time) (*model.TaxRate, error) {
	country := model.NormalizeCountry(countryCode)
	if country == "" {
		return nil, ErrCountryRequired
	}

	if rate, ok := s.cache.Get(ctx, country, at); ok {
		return rate, nil
	}

	rate, err := s.taxRateRepo.FindActiveByCountry(ctx, country, at)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w for %s on %s", ErrTaxRateNotFound, country, model.Day(at).Format(dateLayout))
		}
		return nil, fmt.Errorf("failed to query tax rate: %w", err)
	}

	s.cache.Set(ctx, country, at, rate)
	return rate, nil
}

// CreateTaxRate appends a validity window. Windows may not overlap existing ones.
func (s *taxService) CreateTaxRate(ctx context.Context, req CreateTaxRateRequest, userID string) (TaxRateResponse, error) {
	rate, err := parseTaxRateRequest(req)
	if err != nil {
		return TaxRateResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkOverlap(txCtx, rate.CountryCode, rate.EffectiveDate, rate.EndDate); err != nil {
			return err
		}
		if err := s.taxRateRepo.Create(txCtx, rate); err != nil {
			return fmt.Errorf("failed to create tax rate: %w", err)
		}
		return s.writeAuditLog(txCtx, userID, model.ActionCreateTaxRate, rate, req)
	})
	if err != nil {
		return TaxRateResponse{}, err
	}

	resp := ToTaxRateResponse(*rate)
	s.afterWrite(ctx, EventTaxRateCreated, resp)
	return resp, nil
}

// SupersedeTaxRate closes the country's open window the day before the new rate
// takes effect and appends the new window, atomically.
func (s *taxService) SupersedeTaxRate(ctx context.Context, req CreateTaxRateRequest, userID string) (TaxRateResponse, error) {
	rate, err := parseTaxRateRequest(req)
	if err != nil {
		return TaxRateResponse{}, err
	}

	var closedID *uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		open, err := s.taxRateRepo.FindOpenByCountry(txCtx, rate.CountryCode)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first window for this country
		case err != nil:
			return fmt.Errorf("failed to fetch open tax rate: %w", err)
		default:
			if !open.EffectiveDate.Before(rate.EffectiveDate) {
				return fmt.Errorf("%w: new rate must start after %s", ErrTaxRateOverlap, open.EffectiveDate.Format(dateLayout))
			}
			if err := s.taxRateRepo.CloseWindow(txCtx, open.ID, rate.EffectiveDate.AddDate(0, 0, -1)); err != nil {
				return fmt.Errorf("failed to close tax rate %s: %w", open.ID, err)
			}
			closedID = &open.ID
		}

		if err := s.checkOverlap(txCtx, rate.CountryCode, rate.EffectiveDate, rate.EndDate); err != nil {
			return err
		}
		if err := s.taxRateRepo.Create(txCtx, rate); err != nil {
			return fmt.Errorf("failed to create tax rate: %w", err)
		}

		details := map[string]interface{}{"request": req}
		if closedID != nil {
			details["closed_id"] = closedID.String()
		}
		return s.writeAuditLog(txCtx, userID, model.ActionSupersedeTaxRate, rate, details)
	})
	if err != nil {
		return TaxRateResponse{}, err
	}

	resp := ToTaxRateResponse(*rate)
	s.afterWrite(ctx, EventTaxRateSuperseded, resp)
	return resp, nil
}

// --- Helpers ---

func (s *taxService) checkOverlap(ctx context.Context, country string, from time.Time, to *time.Time) error {
	count, err := s.taxRateRepo.CountOverlapping(ctx, country, from, to)
	if err != nil {
		return fmt.Errorf("failed to check overlap: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w for %s starting %s", ErrTaxRateOverlap, country, from.Format(dateLayout))
	}
	return nil
}

func (s *taxService) afterWrite(ctx context.Context, event string, resp TaxRateResponse) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Error("failed to invalidate tax rate cache", zap.Error(err))
	}
	if s.events != nil {
		s.events.Publish(event, resp)
	}
	s.log.Info("tax rate stored",
		zap.String("event", event),
		zap.String("country", resp.CountryCode),
		zap.String("standard_vat_rate", resp.StandardVatRate),
		zap.String("effective_date", resp.EffectiveDate))
}

func (s *taxService) writeAuditLog(ctx context.Context, userID, action string, rate *model.TaxRate, details interface{}) error {
	detailsJSON, _ := json.Marshal(details)

	entry := &model.AuditLog{
		Action:     action,
		EntityID:   rate.ID.String(),
		EntityName: rate.CountryCode + " " + rate.StandardVatRate.StringFixed(2),
		Details:    string(detailsJSON),
	}
	if parsed, err := uuid.Parse(userID); err == nil {
		entry.UserID = &parsed
	}

	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func parseTaxRateRequest(req CreateTaxRateRequest) (*model.TaxRate, error) {
	country := model.NormalizeCountry(req.CountryCode)
	if len(country) != 2 {
		return nil, fmt.Errorf("%w: country code must have two letters", ErrInvalidTaxRate)
	}

	standard, err := parsePercentage(req.StandardVatRate)
	if err != nil {
		return nil, fmt.Errorf("%w: standard_vat_rate: %v", ErrInvalidTaxRate, err)
	}

	var reduced *decimal.Decimal
	if req.ReducedVatRate != "" {
		r, err := parsePercentage(req.ReducedVatRate)
		if err != nil {
			return nil, fmt.Errorf("%w: reduced_vat_rate: %v", ErrInvalidTaxRate, err)
		}
		reduced = &r
	}

	from, err := time.Parse(dateLayout, req.EffectiveDate)
	if err != nil {
		return nil, fmt.Errorf("%w: effective_date must be YYYY-MM-DD", ErrInvalidTaxRate)
	}

	var to *time.Time
	if req.EndDate != "" {
		t, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidTaxRate)
		}
		if t.Before(from) {
			return nil, fmt.Errorf("%w: end_date before effective_date", ErrInvalidTaxRate)
		}
		to = &t
	}

	return &model.TaxRate{
		CountryCode:     country,
		CountryName:     req.CountryName,
		StandardVatRate: standard,
		ReducedVatRate:  reduced,
		EffectiveDate:   model.Day(from),
		EndDate:         to,
	}, nil
}

var hundred = decimal.NewFromInt(100)

func parsePercentage(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() || d.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%s is outside 0-100", s)
	}
	return d.Round(2), nil
}

// ToTaxRateResponse maps a stored rate to its API shape.
func ToTaxRateResponse(r model.TaxRate) TaxRateResponse {
	resp := TaxRateResponse{
		ID:              r.ID.String(),
		CountryCode:     r.CountryCode,
		CountryName:     r.CountryName,
		StandardVatRate: r.StandardVatRate.StringFixed(2),
		EffectiveDate:   r.EffectiveDate.Format(dateLayout),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.ReducedVatRate != nil {
		s := r.ReducedVatRate.StringFixed(2)
		resp.ReducedVatRate = &s
	}
	if r.EndDate != nil {
		s := r.EndDate.Format(dateLayout)
		resp.EndDate = &s
	}
	return resp
}
