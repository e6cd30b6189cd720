package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CSVRow is one line of a market price import file.
type CSVRow struct {
	Product  string `csv:"product"`
	Category string `csv:"category"`
	Market   string `csv:"market"`
	Location string `csv:"location"`
	Price    string `csv:"price"`
	Unit     string `csv:"unit"`
	Date     string `csv:"date"`
	Notes    string `csv:"notes"`
}

// ImportRecord is a validated, parsed import row ready to persist.
type ImportRecord struct {
	Product  string
	Category string
	Market   string
	Location string
	Price    decimal.Decimal
	Unit     string
	Date     time.Time
	Notes    string
}

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ParseCSV validates raw CSV content into import records. Bad rows are
// reported per-line and do not abort the rest of the file. Date columns
// accept any layout dateparse recognizes; a missing date means "now".
func ParseCSV(data string, now time.Time) ([]ImportRecord, []string) {
	var rows []CSVRow
	if err := gocsv.UnmarshalString(data, &rows); err != nil {
		return nil, []string{fmt.Sprintf("parse csv: %v", err)}
	}

	var records []ImportRecord
	var problems []string
	for i, row := range rows {
		line := i + 2 // header is line 1
		product := strings.TrimSpace(row.Product)
		marketName := strings.TrimSpace(row.Market)
		if product == "" || marketName == "" {
			problems = append(problems, fmt.Sprintf("line %d: product and market are required", line))
			continue
		}

		price, err := decimal.NewFromString(strings.TrimSpace(row.Price))
		if err != nil || price.Sign() < 0 {
			problems = append(problems, fmt.Sprintf("line %d: invalid price %q", line, row.Price))
			continue
		}

		unit := strings.TrimSpace(row.Unit)
		if unit == "" {
			unit = domain.MarketUnitKg
		}

		date := now
		if d := strings.TrimSpace(row.Date); d != "" {
			date, err = dateparse.ParseAny(d)
			if err != nil {
				problems = append(problems, fmt.Sprintf("line %d: invalid date %q", line, row.Date))
				continue
			}
		}

		records = append(records, ImportRecord{
			Product:  product,
			Category: strings.TrimSpace(row.Category),
			Market:   marketName,
			Location: strings.TrimSpace(row.Location),
			Price:    price,
			Unit:     unit,
			Date:     date,
			Notes:    strings.TrimSpace(row.Notes),
		})
	}
	return records, problems
}

// ImportCSV parses and persists a market price CSV. Rows that collide
// with an existing (product, market, date) observation are skipped.
func (s *Service) ImportCSV(ctx context.Context, data string) (*ImportResult, error) {
	records, problems := ParseCSV(data, time.Now())
	result := &ImportResult{Errors: problems, Skipped: len(problems)}

	for _, rec := range records {
		product, err := s.repo.FindOrCreateProduct(ctx, rec.Product, rec.Category)
		if err != nil {
			return nil, err
		}
		market, err := s.repo.FindOrCreateMarket(ctx, rec.Market, rec.Location)
		if err != nil {
			return nil, err
		}

		price := &domain.MarketPrice{
			ProductID:    product.ID,
			MarketID:     market.ID,
			Price:        rec.Price,
			Unit:         rec.Unit,
			DateRecorded: rec.Date,
			Notes:        rec.Notes,
		}
		if err := s.repo.CreatePrice(ctx, price); err != nil {
			// only a unique (product, market, date) collision is skippable
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, err
			}
			zap.L().Debug("skipping duplicate market price",
				zap.String("product", rec.Product),
				zap.String("market", rec.Market),
				zap.Time("date", rec.Date))
			result.Skipped++
			continue
		}
		result.Imported++
	}
	return result, nil
}
