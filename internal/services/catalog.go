package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/storage"
	"github.com/voyagehub/travel-backend/internal/validation"
)

// referenceExists turns a NotFound from lookup into a field message on field
func referenceExists(field, label string, lookup func(ctx context.Context) error) validation.Check {
	return validation.Check{Field: field, Fn: func(ctx context.Context) (string, error) {
		err := lookup(ctx)
		if err == nil {
			return "", nil
		}
		if apperr.IsKind(err, apperr.KindNotFound) {
			return label + " does not exist", nil
		}
		return "", err
	}}
}

// invariants converts a field error map into a validation error
func invariants(fields map[string]string) error {
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// photoSlot stores and discards the photo of one catalog entity
type photoSlot struct {
	photos storage.PhotoStore
	folder string
	logger *logrus.Logger
}

func (p photoSlot) discard(url *string) {
	if url == nil || *url == "" || p.photos == nil {
		return
	}
	if err := p.photos.Delete(*url); err != nil {
		p.logger.WithError(err).WithField("photo", *url).Warn("Failed to delete photo")
	}
}
