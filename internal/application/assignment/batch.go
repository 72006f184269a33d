package assignment

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/CaseBridge/internal/domain/rule"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
)

func (s *service) ExecuteBatchAssignment(ctx context.Context, req *BatchAssignmentRequest) (*BatchAssignmentResponse, error) {
	if req == nil {
		return nil, apperrors.NewValidation("batch assignment request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	concurrency := s.config.BatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]BatchItemResult, len(req.Items))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, item := range req.Items {
		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.executeBatchItem(ctx, req, item)
		}(i, item)
	}
	wg.Wait()

	resp := &BatchAssignmentResponse{
		Results:     results,
		Total:       len(results),
		CompletedAt: time.Now().UTC(),
	}
	for _, r := range results {
		if r.Success {
			resp.SuccessCount++
		} else {
			resp.FailedCount++
		}
	}

	s.logger.Info("batch assignment completed",
		logging.String("strategy", string(req.Strategy)),
		logging.Int("total", resp.Total),
		logging.Int("succeeded", resp.SuccessCount),
		logging.Int("failed", resp.FailedCount))
	return resp, nil
}

// executeBatchItem runs one item in isolation. Failures never abort the batch;
// they become typed per-item outcomes.
func (s *service) executeBatchItem(ctx context.Context, req *BatchAssignmentRequest, item BatchItem) BatchItemResult {
	var (
		result *AssignmentResult
		err    error
	)
	switch req.Strategy {
	case rule.StrategyManual:
		result, err = s.ExecuteManualAssignment(ctx, item.CasePackageID, *item.OrgID, req.RuleID, req.Operator)
	case rule.StrategySemiAuto:
		return s.recommendBatchItem(ctx, req, item)
	default:
		result, err = s.ExecuteAutoAssignment(ctx, item.CasePackageID, req.RuleID)
	}
	if err != nil {
		return batchItemFailure(item, err)
	}
	score := result.Score
	return BatchItemResult{
		CasePackageID: item.CasePackageID,
		Success:       true,
		OrgID:         &result.OrgID,
		Score:         &score,
	}
}

// recommendBatchItem produces the ranked recommendation list for one
// SEMI_AUTO item. Nothing is committed; an operator confirms each pick later
// through ExecuteManualAssignment. An empty list is a successful outcome.
func (s *service) recommendBatchItem(ctx context.Context, req *BatchAssignmentRequest, item BatchItem) BatchItemResult {
	pkg, err := s.packages.Get(ctx, item.CasePackageID)
	if err != nil {
		return batchItemFailure(item, err)
	}

	var pinned *rule.AssignmentRule
	if req.RuleID != nil {
		pinned, err = s.rules.GetByID(ctx, *req.RuleID)
		if err != nil {
			return batchItemFailure(item, err)
		}
		if !pinned.Enabled {
			return batchItemFailure(item,
				apperrors.Newf(apperrors.ErrCodeRuleDisabled, "rule %s is disabled", *req.RuleID))
		}
	}

	ranked, err := s.recommendForPackage(ctx, pkg, pinned, s.config.DefaultRecommendationLimit)
	if err != nil {
		return batchItemFailure(item, err)
	}
	if ranked == nil {
		ranked = []*MatchingAssessment{}
	}
	return BatchItemResult{
		CasePackageID:   item.CasePackageID,
		Success:         true,
		Recommendations: ranked,
	}
}

func batchItemFailure(item BatchItem, err error) BatchItemResult {
	return BatchItemResult{
		CasePackageID: item.CasePackageID,
		ErrorCode:     string(apperrors.GetCode(err)),
		Reason:        err.Error(),
	}
}
