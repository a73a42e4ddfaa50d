package service

import (
	"context"
	"time"

	"pricing/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CalculatePriceRequest struct {
	BasePrice          string  `json:"base_price" binding:"required"` // net price
	CountryCode        string  `json:"country_code" binding:"required"`
	DiscountPercentage *string `json:"discount_percentage"`
	UseReducedRate     bool    `json:"use_reduced_rate"`
}

// PriceBreakdown shows the VAT portion of a gross price, as required for B2C price display.
type PriceBreakdown struct {
	ProductPrice       decimal.Decimal  `json:"product_price"`
	VatRate            decimal.Decimal  `json:"vat_rate"`
	VatAmount          decimal.Decimal  `json:"vat_amount"`
	PriceIncludingVat  decimal.Decimal  `json:"price_including_vat"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount,omitempty"`
	FinalPrice         decimal.Decimal  `json:"final_price"`
	OriginalPrice      *decimal.Decimal `json:"original_price,omitempty"`
	CurrencyCode       string           `json:"currency_code"`
	DestinationCountry string           `json:"destination_country"`
}

type PriceService interface {
	CalculatePrice(ctx context.Context, basePrice decimal.Decimal, countryCode string, discountPercentage *decimal.Decimal, reduced bool) (PriceBreakdown, error)
	GetVatRate(ctx context.Context, countryCode string, reduced bool) (decimal.Decimal, error)
}

type priceService struct {
	taxService TaxService
	log        *zap.Logger
	now        func() time.Time
}

func NewPriceService(taxService TaxService, log *zap.Logger) PriceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &priceService{taxService: taxService, log: log.Named("price"), now: time.Now}
}

func (s *priceService) CalculatePrice(
	ctx context.Context,
	basePrice decimal.Decimal,
	countryCode string,
	discountPercentage *decimal.Decimal,
	reduced bool,
) (PriceBreakdown, error) {
	if basePrice.IsNegative() {
		return PriceBreakdown{}, ErrNegativePrice
	}
	country := model.NormalizeCountry(countryCode)
	if country == "" {
		return PriceBreakdown{}, ErrCountryRequired
	}
	if discountPercentage != nil && (discountPercentage.IsNegative() || discountPercentage.GreaterThan(hundred)) {
		return PriceBreakdown{}, ErrInvalidDiscount
	}

	vatRate, err := s.GetVatRate(ctx, country, reduced)
	if err != nil {
		return PriceBreakdown{}, err
	}

	vatAmount := basePrice.Mul(vatRate).Div(hundred).Round(moneyPlaces)
	gross := basePrice.Add(vatAmount).Round(moneyPlaces)

	breakdown := PriceBreakdown{
		ProductPrice:       basePrice,
		VatRate:            vatRate,
		VatAmount:          vatAmount,
		PriceIncludingVat:  gross,
		FinalPrice:         gross,
		CurrencyCode:       model.DefaultCurrency,
		DestinationCountry: country,
	}

	if discountPercentage != nil && discountPercentage.IsPositive() {
		discount := gross.Mul(*discountPercentage).Div(hundred).Round(moneyPlaces)
		original := gross
		breakdown.DiscountAmount = &discount
		breakdown.OriginalPrice = &original
		breakdown.FinalPrice = gross.Sub(discount).Round(moneyPlaces)
	}

	s.log.Debug("price calculated",
		zap.String("country", country),
		zap.String("vat_rate", vatRate.String()),
		zap.String("final_price", breakdown.FinalPrice.String()))

	return breakdown, nil
}

// GetVatRate returns the standard (or reduced) percentage in force today.
// A country without a reduced rate falls back to its standard rate.
func (s *priceService) GetVatRate(ctx context.Context, countryCode string, reduced bool) (decimal.Decimal, error) {
	rate, err := s.taxService.GetActiveTaxRate(ctx, countryCode, s.now())
	if err != nil {
		return decimal.Zero, err
	}
	if reduced && rate.ReducedVatRate != nil {
		return *rate.ReducedVatRate, nil
	}
	return rate.StandardVatRate, nil
}
