// Package audit records security-relevant events (logins, account changes,
// catalog mutations) for later review. Recording happens after the fact and
// never blocks the request path.
package audit

import (
	"log"
	"time"

	auditdb "github.com/tiendatech/storefront/internal/database/audit"
	"github.com/tiendatech/storefront/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *auditdb.Repository
}

// NewService creates a new audit service.
func NewService(repo *auditdb.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogAuth records an authentication event (login, logout, register,
// password_change). A failed login carries user id 0.
func (s *Service) LogAuth(userID uint, action, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogAccount records an account management event (admin_create,
// profile_update).
func (s *Service) LogAccount(userID uint, action, description string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAccount,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  "user",
		Status:      entities.AuditStatusSuccess,
	})
}

// LogProduct records a catalog mutation.
func (s *Service) LogProduct(userID uint, action string, productID uint, name string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventProduct,
		Action:      action,
		Description: truncate("Product: "+name, 500),
		EntityType:  "product",
		EntityID:    &productID,
		Status:      entities.AuditStatusSuccess,
	})
}

// DeleteOldEvents removes events older than the retention period.
// Returns the number of deleted events.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(time.Now().Add(-retention))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
