package services

import (
	"context"
	"sort"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/config"
	"github.com/voyagehub/travel-backend/internal/models"
)

const maxTopTours = 100

// ReportService folds grouped store rows into summaries. It never writes.
type ReportService struct {
	reports ReportStore
	config  config.ReportsConfig
}

// NewReportService creates a new report service
func NewReportService(reports ReportStore, cfg config.ReportsConfig) *ReportService {
	return &ReportService{reports: reports, config: cfg}
}

// BookingSummary counts and values bookings by status, and by month when asked
func (s *ReportService) BookingSummary(ctx context.Context, f models.ReportFilter) (*models.BookingSummary, error) {
	if err := checkRange(f.From, f.To); err != nil {
		return nil, err
	}
	rows, err := s.reports.BookingAggregates(ctx, f)
	if err != nil {
		return nil, err
	}

	summary := &models.BookingSummary{ByStatus: map[models.BookingStatus]models.CountValue{}}
	months := map[string]*models.MonthlyBookingSummary{}

	for _, row := range rows {
		summary.TotalBookings += row.Count
		summary.TotalValue += row.Value
		summary.ByStatus[row.Status] = addCountValue(summary.ByStatus[row.Status], row.Count, row.Value)

		if !f.GroupByMonth {
			continue
		}
		m, ok := months[row.Month]
		if !ok {
			m = &models.MonthlyBookingSummary{Month: row.Month, ByStatus: map[models.BookingStatus]models.CountValue{}}
			months[row.Month] = m
		}
		m.Count += row.Count
		m.Value += row.Value
		m.ByStatus[row.Status] = addCountValue(m.ByStatus[row.Status], row.Count, row.Value)
	}

	summary.TotalValue = roundMoney(summary.TotalValue)
	if summary.TotalBookings > 0 {
		summary.AverageValue = roundMoney(summary.TotalValue / float64(summary.TotalBookings))
	}

	if f.GroupByMonth {
		summary.Monthly = make([]models.MonthlyBookingSummary, 0, len(months))
		for _, m := range months {
			m.Value = roundMoney(m.Value)
			summary.Monthly = append(summary.Monthly, *m)
		}
		sort.Slice(summary.Monthly, func(i, j int) bool {
			return summary.Monthly[i].Month < summary.Monthly[j].Month
		})
	}
	return summary, nil
}

// PaymentSummary reports revenue (COMPLETED), pending, refunded and failed
// amounts with breakdowns by method and status
func (s *ReportService) PaymentSummary(ctx context.Context, f models.ReportFilter) (*models.PaymentSummary, error) {
	if err := checkRange(f.From, f.To); err != nil {
		return nil, err
	}
	rows, err := s.reports.PaymentAggregates(ctx, f)
	if err != nil {
		return nil, err
	}

	summary := &models.PaymentSummary{
		Currency: s.config.Currency,
		ByMethod: map[models.PaymentMethod]models.CountValue{},
		ByStatus: map[models.PaymentStatus]models.CountValue{},
	}
	for _, row := range rows {
		summary.TotalPayments += row.Count
		summary.ByMethod[row.Method] = addCountValue(summary.ByMethod[row.Method], row.Count, row.Amount)
		summary.ByStatus[row.Status] = addCountValue(summary.ByStatus[row.Status], row.Count, row.Amount)

		switch row.Status {
		case models.PaymentStatusCompleted:
			summary.TotalRevenue += row.Amount
		case models.PaymentStatusPending:
			summary.PendingAmount += row.Amount
		case models.PaymentStatusRefunded:
			summary.RefundedAmount += row.Amount
		case models.PaymentStatusFailed:
			summary.FailedAmount += row.Amount
		}
	}

	summary.TotalRevenue = roundMoney(summary.TotalRevenue)
	summary.PendingAmount = roundMoney(summary.PendingAmount)
	summary.RefundedAmount = roundMoney(summary.RefundedAmount)
	summary.FailedAmount = roundMoney(summary.FailedAmount)
	return summary, nil
}

// TopTours ranks tours by booking count or revenue
func (s *ReportService) TopTours(ctx context.Context, f models.TopToursFilter) ([]models.TopTour, error) {
	if err := checkRange(f.From, f.To); err != nil {
		return nil, err
	}
	switch f.RankBy {
	case "":
		f.RankBy = "bookings"
	case "bookings", "revenue":
	default:
		return nil, apperr.Validation(map[string]string{"rank_by": "rank_by must be one of: bookings, revenue"})
	}
	if f.MinBookings < 0 {
		return nil, apperr.Validation(map[string]string{"min_bookings": "min_bookings must be 0 or more"})
	}
	if f.Limit <= 0 {
		f.Limit = s.config.TopToursDefault
	}
	if f.Limit > maxTopTours {
		f.Limit = maxTopTours
	}

	tours, err := s.reports.TopTours(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range tours {
		tours[i].Revenue = roundMoney(tours[i].Revenue)
	}
	return tours, nil
}

func addCountValue(cv models.CountValue, count int, value float64) models.CountValue {
	return models.CountValue{Count: cv.Count + count, Value: roundMoney(cv.Value + value)}
}
