package services

import (
	"context"
	"fmt"

	"singil/internal/core"
	"singil/internal/portal"
)

// ApprovalService wraps the admin mutation endpoints with the portal's
// fetch-after-write consistency model: every decision call mutates server
// state and then refetches the affected list, so callers always render
// what the backend now holds rather than an optimistic guess. Concurrent
// decisions by another admin surface as a 4xx StatusError from the write.
type ApprovalService struct {
	writer        portal.ApprovalWriter
	renewals      portal.RenewalReader
	renewalWriter portal.RenewalWriter
	notifications portal.NotificationReader
}

func NewApprovalService(
	writer portal.ApprovalWriter,
	renewals portal.RenewalReader,
	renewalWriter portal.RenewalWriter,
	notifications portal.NotificationReader,
) *ApprovalService {
	return &ApprovalService{
		writer:        writer,
		renewals:      renewals,
		renewalWriter: renewalWriter,
		notifications: notifications,
	}
}

// ValidateVendorProfile approves or rejects a vendor application and
// returns the refreshed notification list.
func (s *ApprovalService) ValidateVendorProfile(ctx context.Context, id int64, approve bool, reason string) ([]core.Notification, error) {
	if err := s.writer.ValidateVendorProfile(ctx, id, approve, reason); err != nil {
		return nil, fmt.Errorf("validate vendor profile %d: %w", id, err)
	}
	return s.refetchNotifications(ctx)
}

// SetInchargeStatus updates an in-charge collector assignment.
func (s *ApprovalService) SetInchargeStatus(ctx context.Context, id int64, status string) ([]core.Notification, error) {
	if err := s.writer.SetInchargeStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("set incharge status %d: %w", id, err)
	}
	return s.refetchNotifications(ctx)
}

// SetStallChangeStatus resolves a stall-change request.
func (s *ApprovalService) SetStallChangeStatus(ctx context.Context, id int64, status string) ([]core.Notification, error) {
	if err := s.writer.SetStallChangeStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("set stall change status %d: %w", id, err)
	}
	return s.refetchNotifications(ctx)
}

// ResolveStallRemoval approves or rejects a stall-removal request.
func (s *ApprovalService) ResolveStallRemoval(ctx context.Context, id int64, approve bool, reason string) ([]core.Notification, error) {
	if err := s.writer.ResolveStallRemoval(ctx, id, approve, reason); err != nil {
		return nil, fmt.Errorf("resolve stall removal %d: %w", id, err)
	}
	return s.refetchNotifications(ctx)
}

// ApproveRemittance accepts a collector's remittance.
func (s *ApprovalService) ApproveRemittance(ctx context.Context, id int64) ([]core.Notification, error) {
	if err := s.writer.ApproveRemittance(ctx, id); err != nil {
		return nil, fmt.Errorf("approve remittance %d: %w", id, err)
	}
	return s.refetchNotifications(ctx)
}

// Renewals lists pending market-registration renewals.
func (s *ApprovalService) Renewals(ctx context.Context) ([]core.Renewal, error) {
	renewals, err := s.renewals.Renewals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list renewals: %w", err)
	}
	return renewals, nil
}

// ResolveRenewal decides a renewal application and returns the refreshed
// pending list.
func (s *ApprovalService) ResolveRenewal(ctx context.Context, id int64, approve bool, reason string) ([]core.Renewal, error) {
	if err := s.renewalWriter.ResolveRenewal(ctx, id, approve, reason); err != nil {
		return nil, fmt.Errorf("resolve renewal %d: %w", id, err)
	}
	renewals, err := s.renewals.Renewals(ctx)
	if err != nil {
		return nil, fmt.Errorf("refetch renewals: %w", err)
	}
	return renewals, nil
}

func (s *ApprovalService) refetchNotifications(ctx context.Context) ([]core.Notification, error) {
	if s.notifications == nil {
		return nil, nil
	}
	notifications, err := s.notifications.Notifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("refetch notifications: %w", err)
	}
	return notifications, nil
}
