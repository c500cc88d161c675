package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/services"
)

// AdminAudit records privileged mutations made through the API
type AdminAudit struct {
	audit *services.AuditService
}

func NewAdminAudit(audit *services.AuditService) *AdminAudit {
	return &AdminAudit{audit: audit}
}

// deleted records a single delete
func (a *AdminAudit) deleted(c *gin.Context, entityType string, id uuid.UUID) {
	if a == nil || a.audit == nil {
		return
	}
	a.audit.LogAdminAction(c.Request.Context(), actorFrom(c), entityType+"_deleted", entityType, &id, nil, metaFrom(c))
}

// bulkDeleted records a delete-all with the filter query and the row count
func (a *AdminAudit) bulkDeleted(c *gin.Context, entityType string, count int64) {
	if a == nil || a.audit == nil {
		return
	}
	a.audit.LogAdminAction(c.Request.Context(), actorFrom(c), entityType+"_bulk_deleted", entityType, nil, map[string]interface{}{
		"filter":  c.Request.URL.RawQuery,
		"deleted": count,
	}, metaFrom(c))
}

// changed records a status override or refund
func (a *AdminAudit) changed(c *gin.Context, action, entityType string, id uuid.UUID, details map[string]interface{}) {
	if a == nil || a.audit == nil {
		return
	}
	a.audit.LogAdminAction(c.Request.Context(), actorFrom(c), action, entityType, &id, details, metaFrom(c))
}
