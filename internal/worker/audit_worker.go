package worker

import (
	"github.com/fieldops/attendance-service/internal/service"
)

// StartAuditWorker registers the audit log subscribers.
func StartAuditWorker(audit *service.AuditService) {
	if audit == nil {
		return
	}
	audit.RegisterHandlers()
}
