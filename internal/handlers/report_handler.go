package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/services"
)

// ReportHandler serves the booking and payment aggregation reports
type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// MonthlyBookingSummary handles GET /api/v1/reports/bookings/monthly-summary
func (h *ReportHandler) MonthlyBookingSummary(c *gin.Context) {
	var f models.ReportFilter
	if !bindQuery(c, &f) {
		return
	}
	f.GroupByMonth = true
	summary, err := h.reports.BookingSummary(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Booking summary", summary)
}

// PaymentSummary handles GET /api/v1/reports/payments/summary
func (h *ReportHandler) PaymentSummary(c *gin.Context) {
	var f models.ReportFilter
	if !bindQuery(c, &f) {
		return
	}
	summary, err := h.reports.PaymentSummary(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment summary", summary)
}

// TopTours handles GET /api/v1/reports/tours/top-by-bookings
func (h *ReportHandler) TopTours(c *gin.Context) {
	var f models.TopToursFilter
	if !bindQuery(c, &f) {
		return
	}
	tours, err := h.reports.TopTours(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Top tours", tours)
}
