package services

import (
	"time"

	"github.com/voyagehub/travel-backend/internal/apperr"
)

// checkRange rejects inverted date filters
func checkRange(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return apperr.Validation(map[string]string{"to": "to must be on or after from"})
	}
	return nil
}
