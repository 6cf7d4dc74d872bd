package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
)

type approvalRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
}

// ApprovalService drives the Scheduled -> PendingApproval -> Approved/Rejected
// workflow. Every operation reports a missing activity as applied=false
// rather than an error.
type ApprovalService struct {
	repo    approvalRepository
	logger  *zap.Logger
	metrics *MetricsService
	now     func() time.Time
}

// NewApprovalService instantiates ApprovalService.
func NewApprovalService(repo approvalRepository, logger *zap.Logger, metrics *MetricsService) *ApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{repo: repo, logger: logger, metrics: metrics, now: time.Now}
}

// SubmitForApproval moves an activity into the pending state.
func (s *ApprovalService) SubmitForApproval(ctx context.Context, id int64) (bool, error) {
	activity, found, err := s.load(ctx, id)
	if err != nil || !found {
		return false, err
	}

	activity.Status = models.StatusPendingApproval
	if err := s.repo.Update(ctx, activity); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit activity for approval")
	}
	return true, nil
}

// Approve records the approval decision.
func (s *ApprovalService) Approve(ctx context.Context, id int64, approvedBy string) (bool, error) {
	activity, found, err := s.load(ctx, id)
	if err != nil || !found {
		return false, err
	}

	now := s.now().UTC()
	activity.Status = models.StatusApproved
	activity.ApprovedBy = approvedBy
	activity.ApprovalDate = &now
	if err := s.repo.Update(ctx, activity); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve activity")
	}
	if s.metrics != nil {
		s.metrics.RecordApprovalDecision(true)
	}
	s.logger.Info("activity approved", zap.Int64("activity_id", id), zap.String("approved_by", approvedBy))
	return true, nil
}

// Reject records the rejection decision. The decision maker lands in the
// approved_by column and the reason is appended to the activity notes.
func (s *ApprovalService) Reject(ctx context.Context, id int64, rejectedBy, reason string) (bool, error) {
	activity, found, err := s.load(ctx, id)
	if err != nil || !found {
		return false, err
	}

	now := s.now().UTC()
	activity.Status = models.StatusRejected
	activity.ApprovedBy = rejectedBy
	activity.ApprovalDate = &now
	if strings.TrimSpace(reason) != "" {
		if activity.Notes != "" {
			activity.Notes += "\n"
		}
		activity.Notes += "Rejected: " + reason
	}
	if err := s.repo.Update(ctx, activity); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject activity")
	}
	if s.metrics != nil {
		s.metrics.RecordApprovalDecision(false)
	}
	s.logger.Info("activity rejected", zap.Int64("activity_id", id), zap.String("rejected_by", rejectedBy))
	return true, nil
}

func (s *ApprovalService) load(ctx context.Context, id int64) (*models.Activity, bool, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return activity, true, nil
}
