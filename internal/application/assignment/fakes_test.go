package assignment

import (
	"context"
	"sort"
	"sync"

	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/internal/domain/organization"
	"github.com/turtacn/CaseBridge/internal/domain/rule"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

type fakeRuleRepo struct {
	mu       sync.Mutex
	rules    map[common.ID]*rule.AssignmentRule
	assigned map[string]int64
}

func newFakeRuleRepo(rules ...*rule.AssignmentRule) *fakeRuleRepo {
	repo := &fakeRuleRepo{
		rules:    make(map[common.ID]*rule.AssignmentRule),
		assigned: make(map[string]int64),
	}
	for _, r := range rules {
		repo.rules[r.ID] = r
	}
	return repo
}

func (f *fakeRuleRepo) Create(_ context.Context, r *rule.AssignmentRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[r.ID] = r
	return nil
}

func (f *fakeRuleRepo) Update(_ context.Context, r *rule.AssignmentRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rules[r.ID]; !ok {
		return apperrors.Newf(apperrors.ErrCodeRuleNotFound, "rule %s not found", r.ID)
	}
	f.rules[r.ID] = r
	return nil
}

func (f *fakeRuleRepo) Delete(_ context.Context, id common.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rules[id]; !ok {
		return apperrors.Newf(apperrors.ErrCodeRuleNotFound, "rule %s not found", id)
	}
	delete(f.rules, id)
	return nil
}

func (f *fakeRuleRepo) GetByID(_ context.Context, id common.ID) (*rule.AssignmentRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rules[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodeRuleNotFound, "rule %s not found", id)
	}
	return r, nil
}

func (f *fakeRuleRepo) List(_ context.Context, filter rule.ListFilter) ([]*rule.AssignmentRule, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*rule.AssignmentRule
	for _, r := range f.rules {
		if filter.EnabledOnly && !r.Enabled {
			continue
		}
		if filter.RuleType != nil && r.RuleType != *filter.RuleType {
			continue
		}
		out = append(out, r)
	}
	sortRules(out)
	return out, int64(len(out)), nil
}

func (f *fakeRuleRepo) ListEnabled(_ context.Context, ruleType *rule.Strategy) ([]*rule.AssignmentRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*rule.AssignmentRule
	for _, r := range f.rules {
		if !r.Enabled {
			continue
		}
		if ruleType != nil && r.RuleType != *ruleType {
			continue
		}
		out = append(out, r)
	}
	sortRules(out)
	return out, nil
}

func sortRules(list []*rule.AssignmentRule) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority < list[j].Priority
		}
		return list[i].ID < list[j].ID
	})
}

func (f *fakeRuleRepo) IncrementUsage(_ context.Context, id common.ID, success bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rules[id]
	if !ok {
		return apperrors.Newf(apperrors.ErrCodeRuleNotFound, "rule %s not found", id)
	}
	r.UsageCount++
	if success {
		r.SuccessCount++
	}
	return nil
}

func (f *fakeRuleRepo) AssignmentCount(_ context.Context, ruleID, orgID common.ID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assigned[string(ruleID)+"|"+string(orgID)], nil
}

func (f *fakeRuleRepo) RecordAssignment(_ context.Context, ruleID, orgID common.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigned[string(ruleID)+"|"+string(orgID)]++
	return nil
}

type fakePackageStore struct {
	mu       sync.Mutex
	packages map[common.ID]*casepackage.CasePackage
	flows    []*casepackage.FlowRecord
	// commitErr, when set, fails the next CommitAssignment with it.
	commitErr error
}

func newFakePackageStore(pkgs ...*casepackage.CasePackage) *fakePackageStore {
	s := &fakePackageStore{packages: make(map[common.ID]*casepackage.CasePackage)}
	for _, p := range pkgs {
		s.packages[p.ID] = p
	}
	return s
}

func (f *fakePackageStore) Create(_ context.Context, p *casepackage.CasePackage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.packages[p.ID] = p
	return nil
}

func (f *fakePackageStore) Get(_ context.Context, id common.ID) (*casepackage.CasePackage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.packages[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodePackageNotFound, "package %s not found", id)
	}
	clone := *p
	return &clone, nil
}

func (f *fakePackageStore) List(_ context.Context, _ casepackage.ListFilter) ([]*casepackage.CasePackage, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*casepackage.CasePackage, 0, len(f.packages))
	for _, p := range f.packages {
		clone := *p
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (f *fakePackageStore) CommitAssignment(_ context.Context, id common.ID, expectedVersion int64, orgID common.ID, rec *casepackage.FlowRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		err := f.commitErr
		f.commitErr = nil
		return err
	}
	p, ok := f.packages[id]
	if !ok {
		return apperrors.Newf(apperrors.ErrCodePackageNotFound, "package %s not found", id)
	}
	if p.Version != expectedVersion {
		return apperrors.Newf(apperrors.ErrCodeConcurrentModification,
			"package %s version %d does not match expected %d", id, p.Version, expectedVersion)
	}
	p.Status = casepackage.StatusAssigned
	p.DisposalOrgID = &orgID
	p.Version++
	f.flows = append(f.flows, rec)
	return nil
}

func (f *fakePackageStore) UpdateStatus(_ context.Context, id common.ID, expectedVersion int64, newStatus casepackage.Status, rec *casepackage.FlowRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.packages[id]
	if !ok {
		return apperrors.Newf(apperrors.ErrCodePackageNotFound, "package %s not found", id)
	}
	if p.Version != expectedVersion {
		return apperrors.Newf(apperrors.ErrCodeConcurrentModification,
			"package %s version %d does not match expected %d", id, p.Version, expectedVersion)
	}
	p.Status = newStatus
	if newStatus == casepackage.StatusWithdrawn || newStatus == casepackage.StatusPublished {
		p.DisposalOrgID = nil
	}
	p.Version++
	f.flows = append(f.flows, rec)
	return nil
}

func (f *fakePackageStore) flowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.flows)
}

func (f *fakePackageStore) lastFlow() *casepackage.FlowRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.flows) == 0 {
		return nil
	}
	return f.flows[len(f.flows)-1]
}

type fakeFlowStore struct {
	mu      sync.Mutex
	records []*casepackage.FlowRecord
}

func (f *fakeFlowStore) Append(_ context.Context, rec *casepackage.FlowRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeFlowStore) ListByPackage(_ context.Context, pkgID common.ID, _ casepackage.FlowFilter) ([]*casepackage.FlowRecord, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*casepackage.FlowRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].CasePackageID == pkgID {
			out = append(out, f.records[i])
		}
	}
	return out, int64(len(out)), nil
}

type fakeProfileProvider struct {
	mu       sync.Mutex
	profiles map[common.ID]*organization.CapabilityProfile
}

func newFakeProfileProvider(profiles ...*organization.CapabilityProfile) *fakeProfileProvider {
	p := &fakeProfileProvider{profiles: make(map[common.ID]*organization.CapabilityProfile)}
	for _, prof := range profiles {
		p.profiles[prof.OrgID] = prof
	}
	return p
}

func (f *fakeProfileProvider) GetProfile(_ context.Context, orgID common.ID) (*organization.CapabilityProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[orgID]
	if !ok || p == nil {
		return nil, apperrors.Newf(apperrors.ErrCodeOrganizationNotFound, "organization %s not found", orgID)
	}
	return p, nil
}

func (f *fakeProfileProvider) ListCandidateOrgIDs(_ context.Context, _ organization.CandidateQuery) ([]common.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]common.ID, 0, len(f.profiles))
	for id := range f.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type captureSink struct {
	mu    sync.Mutex
	calls []common.ID
	done  chan struct{}
}

func newCaptureSink() *captureSink {
	return &captureSink{done: make(chan struct{}, 16)}
}

func (c *captureSink) NotifyMatch(_ context.Context, _ *rule.AssignmentRule, a *MatchingAssessment) error {
	c.mu.Lock()
	c.calls = append(c.calls, a.OrgID)
	c.mu.Unlock()
	c.done <- struct{}{}
	return nil
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type capturePublisher struct {
	mu      sync.Mutex
	flows   []*casepackage.FlowRecord
	matches []common.ID
}

func (c *capturePublisher) PublishFlowRecord(_ context.Context, rec *casepackage.FlowRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flows = append(c.flows, rec)
	return nil
}

func (c *capturePublisher) PublishMatch(_ context.Context, _, orgID, _ common.ID, _ float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matches = append(c.matches, orgID)
	return nil
}
