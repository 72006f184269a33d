package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseBridge/internal/application/assignment"
	"github.com/turtacn/CaseBridge/internal/application/lifecycle"
	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/domain/rule"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAssignmentService answers each Service method from a canned field and
// records the last call's arguments.
type stubAssignmentService struct {
	assessments []*assignment.MatchingAssessment
	result      *assignment.AssignmentResult
	batch       *assignment.BatchAssignmentResponse
	testResult  *assignment.RuleTestResult
	stats       *assignment.AssignmentStatistics
	rules       []*rule.AssignmentRule
	err         error

	lastPackageID common.ID
	lastOrgID     common.ID
	lastRuleID    *common.ID
	lastLimit     int
	lastBatchReq  *assignment.BatchAssignmentRequest
	lastStatsReq  *assignment.StatisticsRequest
	createdRule   *rule.AssignmentRule
	updatedRule   *rule.AssignmentRule
	deletedRuleID common.ID
}

func (s *stubAssignmentService) GetRecommendations(_ context.Context, id common.ID, limit int) ([]*assignment.MatchingAssessment, error) {
	s.lastPackageID, s.lastLimit = id, limit
	return s.assessments, s.err
}

func (s *stubAssignmentService) AssessMatching(_ context.Context, orgID, pkgID common.ID) (*assignment.MatchingAssessment, error) {
	s.lastOrgID, s.lastPackageID = orgID, pkgID
	if s.err != nil {
		return nil, s.err
	}
	if len(s.assessments) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNoEligibleOrganization, "no rule passes")
	}
	return s.assessments[0], nil
}

func (s *stubAssignmentService) ExecuteAutoAssignment(_ context.Context, pkgID common.ID, ruleID *common.ID) (*assignment.AssignmentResult, error) {
	s.lastPackageID, s.lastRuleID = pkgID, ruleID
	return s.result, s.err
}

func (s *stubAssignmentService) ExecuteManualAssignment(_ context.Context, pkgID, orgID common.ID, ruleID *common.ID, _ *assignment.Operator) (*assignment.AssignmentResult, error) {
	s.lastPackageID, s.lastOrgID, s.lastRuleID = pkgID, orgID, ruleID
	return s.result, s.err
}

func (s *stubAssignmentService) ExecuteBatchAssignment(_ context.Context, req *assignment.BatchAssignmentRequest) (*assignment.BatchAssignmentResponse, error) {
	s.lastBatchReq = req
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.batch, s.err
}

func (s *stubAssignmentService) TestRule(_ context.Context, ruleID, pkgID common.ID) (*assignment.RuleTestResult, error) {
	s.lastRuleID, s.lastPackageID = &ruleID, pkgID
	return s.testResult, s.err
}

func (s *stubAssignmentService) CreateRule(_ context.Context, r *rule.AssignmentRule) error {
	s.createdRule = r
	return s.err
}

func (s *stubAssignmentService) UpdateRule(_ context.Context, r *rule.AssignmentRule) error {
	s.updatedRule = r
	return s.err
}

func (s *stubAssignmentService) DeleteRule(_ context.Context, id common.ID) error {
	s.deletedRuleID = id
	return s.err
}

func (s *stubAssignmentService) GetRule(_ context.Context, id common.ID) (*rule.AssignmentRule, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, r := range s.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.Newf(apperrors.ErrCodeRuleNotFound, "rule %s not found", id)
}

func (s *stubAssignmentService) ListRules(_ context.Context, _ rule.ListFilter) ([]*rule.AssignmentRule, int64, error) {
	return s.rules, int64(len(s.rules)), s.err
}

func (s *stubAssignmentService) GetAssignmentStatistics(_ context.Context, req *assignment.StatisticsRequest) (*assignment.AssignmentStatistics, error) {
	s.lastStatsReq = req
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.stats, s.err
}

// stubLifecycleService mirrors the same pattern for the lifecycle surface.
type stubLifecycleService struct {
	pkg     *casepackage.CasePackage
	pkgs    []*casepackage.CasePackage
	records []*casepackage.FlowRecord
	err     error

	lastID       common.ID
	lastVersion  int64
	lastOperator *lifecycle.Operator
	lastEvent    string
	lastFilter   casepackage.ListFilter
	lastFlow     casepackage.FlowFilter
	createdReq   *lifecycle.CreatePackageRequest
}

func (s *stubLifecycleService) CreatePackage(_ context.Context, req *lifecycle.CreatePackageRequest) (*casepackage.CasePackage, error) {
	s.createdReq = req
	return s.pkg, s.err
}

func (s *stubLifecycleService) GetPackage(_ context.Context, id common.ID) (*casepackage.CasePackage, error) {
	s.lastID = id
	return s.pkg, s.err
}

func (s *stubLifecycleService) ListPackages(_ context.Context, filter casepackage.ListFilter) ([]*casepackage.CasePackage, int64, error) {
	s.lastFilter = filter
	return s.pkgs, int64(len(s.pkgs)), s.err
}

func (s *stubLifecycleService) transition(event string, id common.ID, version int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
	s.lastEvent, s.lastID, s.lastVersion, s.lastOperator = event, id, version, op
	return s.pkg, s.err
}

func (s *stubLifecycleService) Publish(_ context.Context, id common.ID, v int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
	return s.transition("publish", id, v, op)
}

func (s *stubLifecycleService) Withdraw(_ context.Context, id common.ID, v int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
	return s.transition("withdraw", id, v, op)
}

func (s *stubLifecycleService) Start(_ context.Context, id common.ID, v int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
	return s.transition("start", id, v, op)
}

func (s *stubLifecycleService) Complete(_ context.Context, id common.ID, v int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
	return s.transition("complete", id, v, op)
}

func (s *stubLifecycleService) Cancel(_ context.Context, id common.ID, v int64, op *lifecycle.Operator) (*casepackage.CasePackage, error) {
	return s.transition("cancel", id, v, op)
}

func (s *stubLifecycleService) FlowHistory(_ context.Context, id common.ID, filter casepackage.FlowFilter) ([]*casepackage.FlowRecord, int64, error) {
	s.lastID, s.lastFlow = id, filter
	return s.records, int64(len(s.records)), s.err
}

// doRequest runs one request through the engine and decodes the envelope.
func doRequest(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, common.APIResponse[json.RawMessage]) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var envelope common.APIResponse[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func samplePackage(t *testing.T) *casepackage.CasePackage {
	t.Helper()
	pkg, err := casepackage.NewCasePackage("east-batch-01", "src-org", "east", "credit_card", 120_000)
	require.NoError(t, err)
	return pkg
}

func sampleRule(t *testing.T) *rule.AssignmentRule {
	t.Helper()
	r, err := rule.NewAssignmentRule("east region auto", rule.StrategyAuto, 10,
		rule.Conditions{Regions: []string{"east"}},
		rule.ScoringWeights{Region: 30, Performance: 30, Load: 20, Specialty: 20})
	require.NoError(t, err)
	return r
}
