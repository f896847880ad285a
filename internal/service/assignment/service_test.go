package assignment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
)

// --- in-memory collaborators ---

type mockLeadStore struct {
	mu    sync.Mutex
	leads map[string]*domain.Lead
}

func newMockLeadStore(leads ...*domain.Lead) *mockLeadStore {
	m := &mockLeadStore{leads: make(map[string]*domain.Lead)}
	for _, l := range leads {
		m.leads[l.ID] = l
	}
	return m
}

func (m *mockLeadStore) Get(_ context.Context, leadID string) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockLeadStore) MarkAssigned(_ context.Context, leadID, orgID, userID, ruleID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return ErrLeadNotFound
	}
	if l.Routed() {
		return ErrAlreadyRouted
	}
	l.Status = domain.LeadStatusAssigned
	l.OrgID = orgID
	l.AssignedUserID = userID
	l.RuleID = ruleID
	l.AssignedAt = &at
	return nil
}

func (m *mockLeadStore) MarkUnassigned(_ context.Context, leadID string, _ domain.UnassignedReason, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return ErrLeadNotFound
	}
	if l.Routed() {
		return ErrAlreadyRouted
	}
	l.Status = domain.LeadStatusUnassigned
	return nil
}

type mockRuleSource struct {
	rules []domain.AssignmentRule
	err   error
}

func (m *mockRuleSource) ActiveRules(_ context.Context, funnelID string) ([]domain.AssignmentRule, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.AssignmentRule
	for _, r := range m.rules {
		if r.Active && r.FunnelID == funnelID {
			out = append(out, r)
		}
	}
	return out, nil
}

// mockCapStore reproduces the store's conditional increment-if-below-cap
// semantics under a mutex, so interleavings behave like the real
// conditional write.
type mockCapStore struct {
	mu     sync.Mutex
	counts map[string]int
	// failures maps counter keys to transient errors.
	failures map[string]error
}

func newMockCapStore() *mockCapStore {
	return &mockCapStore{counts: make(map[string]int), failures: make(map[string]error)}
}

func capKey(ruleID string, period domain.CapPeriod, periodKey string) string {
	return fmt.Sprintf("%s#%s#%s", ruleID, period, periodKey)
}

func (m *mockCapStore) Reserve(_ context.Context, ruleID string, period domain.CapPeriod, periodKey string, cap int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := capKey(ruleID, period, periodKey)
	if err, ok := m.failures[k]; ok {
		return err
	}
	if m.counts[k] >= cap {
		return ErrCapExhausted
	}
	m.counts[k]++
	return nil
}

func (m *mockCapStore) Release(_ context.Context, ruleID string, period domain.CapPeriod, periodKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := capKey(ruleID, period, periodKey)
	if m.counts[k] > 0 {
		m.counts[k]--
	}
	return nil
}

func (m *mockCapStore) count(ruleID string, period domain.CapPeriod, periodKey string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[capKey(ruleID, period, periodKey)]
}

type mockUnassignedStore struct {
	mu   sync.Mutex
	recs []domain.UnassignedLeadRecord
	err  error
}

func (m *mockUnassignedStore) Put(_ context.Context, rec *domain.UnassignedLeadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *mockUnassignedStore) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type mockMembers struct {
	members map[string]bool // "orgID:userID"
}

func (m *mockMembers) IsMember(_ context.Context, orgID, userID string) (bool, error) {
	if m.members == nil {
		return true, nil
	}
	return m.members[orgID+":"+userID], nil
}

type mockEvents struct {
	mu         sync.Mutex
	assigned   []domain.LeadAssignedEventDetail
	unassigned []domain.LeadUnassignedEventDetail
}

func (m *mockEvents) PublishAssigned(_ context.Context, d domain.LeadAssignedEventDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assigned = append(m.assigned, d)
	return nil
}

func (m *mockEvents) PublishUnassigned(_ context.Context, d domain.LeadUnassignedEventDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unassigned = append(m.unassigned, d)
	return nil
}

// --- fixtures ---

const testFunnel = "funnel-01"

func allFlags() domain.FeatureFlags {
	return domain.FeatureFlags{
		EnableAssignmentService:   true,
		EnableNotificationService: true,
		EnableEmailNotifications:  true,
		EnableSMSNotifications:    true,
		EnableSNSSMS:              true,
	}
}

func testLead(id, zip string) *domain.Lead {
	return &domain.Lead{
		ID:        id,
		FunnelID:  testFunnel,
		Email:     "lead@example.com",
		ZipCode:   zip,
		Status:    domain.LeadStatusNew,
		CreatedAt: time.Now().UTC(),
	}
}

func orgRule(id string, priority int, patterns []string) domain.AssignmentRule {
	return domain.AssignmentRule{
		ID:          id,
		FunnelID:    testFunnel,
		OrgID:       "org-1",
		TargetType:  domain.TargetOrg,
		TargetID:    "org-1",
		ZipPatterns: patterns,
		Priority:    priority,
		Active:      true,
	}
}

type fixture struct {
	engine     *Engine
	leads      *mockLeadStore
	caps       *mockCapStore
	unassigned *mockUnassignedStore
	events     *mockEvents
}

func newFixture(lead *domain.Lead, rules []domain.AssignmentRule, members *mockMembers) *fixture {
	f := &fixture{
		leads:      newMockLeadStore(lead),
		caps:       newMockCapStore(),
		unassigned: &mockUnassignedStore{},
		events:     &mockEvents{},
	}
	if members == nil {
		members = &mockMembers{}
	}
	f.engine = NewEngine(f.leads, &mockRuleSource{rules: rules}, NewCapLedger(f.caps), f.unassigned, members, f.events)
	return f
}

// --- tests ---

func TestRoute_AssignsByPriority(t *testing.T) {
	rules := []domain.AssignmentRule{
		orgRule("rule-b", 2, nil),
		orgRule("rule-a", 1, nil),
	}
	f := newFixture(testLead("lead-1", "90210"), rules, nil)

	out, err := f.engine.Route(context.Background(), allFlags(), "lead-1")
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if out.Status != domain.LeadStatusAssigned {
		t.Fatalf("expected assigned, got %s (reason %s)", out.Status, out.Reason)
	}
	if out.RuleID != "rule-a" {
		t.Fatalf("expected priority-1 rule to win, got %s", out.RuleID)
	}
	if len(f.events.assigned) != 1 {
		t.Fatalf("expected 1 assigned event, got %d", len(f.events.assigned))
	}
}

func TestRoute_TieBreakByRuleID(t *testing.T) {
	rules := []domain.AssignmentRule{
		orgRule("rule-z", 1, nil),
		orgRule("rule-a", 1, nil),
	}

	// Same inputs must route identically on every run.
	for run := 0; run < 10; run++ {
		f := newFixture(testLead("lead-1", "90210"), rules, nil)
		out, err := f.engine.Route(context.Background(), allFlags(), "lead-1")
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if out.RuleID != "rule-a" {
			t.Fatalf("run %d: expected lexically smaller rule to win, got %s", run, out.RuleID)
		}
	}
}

func TestRoute_ZiplessLeadOnlyMatchesEmptyPatternRule(t *testing.T) {
	scoped := orgRule("rule-scoped", 1, []string{"900*"})
	openRule := orgRule("rule-open", 2, nil)
	f := newFixture(testLead("lead-1", ""), []domain.AssignmentRule{scoped, openRule}, nil)

	out, err := f.engine.Route(context.Background(), allFlags(), "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.RuleID != "rule-open" {
		t.Fatalf("zip-less lead must route to the pattern-free rule, got %s", out.RuleID)
	}
}

func TestRoute_UserTargetResolvesUser(t *testing.T) {
	rule := domain.AssignmentRule{
		ID: "rule-u", FunnelID: testFunnel, OrgID: "org-1",
		TargetType: domain.TargetUser, TargetID: "user-7",
		Priority: 1, Active: true,
	}
	members := &mockMembers{members: map[string]bool{"org-1:user-7": true}}
	f := newFixture(testLead("lead-1", "90210"), []domain.AssignmentRule{rule}, members)

	out, err := f.engine.Route(context.Background(), allFlags(), "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.UserID != "user-7" || out.OrgID != "org-1" {
		t.Fatalf("expected user-7/org-1, got %s/%s", out.UserID, out.OrgID)
	}
}

func TestRoute_NonMemberUserRuleSkipped(t *testing.T) {
	bad := domain.AssignmentRule{
		ID: "rule-bad", FunnelID: testFunnel, OrgID: "org-1",
		TargetType: domain.TargetUser, TargetID: "outsider",
		Priority: 1, Active: true, DailyCap: 5,
	}
	fallback := orgRule("rule-ok", 2, nil)
	members := &mockMembers{members: map[string]bool{}}
	f := newFixture(testLead("lead-1", "90210"), []domain.AssignmentRule{bad, fallback}, members)

	out, err := f.engine.Route(context.Background(), allFlags(), "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.RuleID != "rule-ok" {
		t.Fatalf("invalid-target rule must be skipped, got %s", out.RuleID)
	}
	// The skipped rule's reservation must have been released.
	if got := f.caps.count("rule-bad", domain.PeriodDaily, DayKey(time.Now())); got != 0 {
		t.Fatalf("expected released daily slot for skipped rule, count=%d", got)
	}
}

func TestRoute_NoMatchingRule(t *testing.T) {
	f := newFixture(testLead("lead-1", "10001"), nil, nil)

	out, err := f.engine.Route(context.Background(), allFlags(), "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != domain.LeadStatusUnassigned || out.Reason != domain.ReasonNoMatchingRule {
		t.Fatalf("expected unassigned/no_matching_rule, got %s/%s", out.Status, out.Reason)
	}
	if len(f.unassigned.recs) != 1 {
		t.Fatalf("expected 1 unassigned record, got %d", len(f.unassigned.recs))
	}
	if len(f.events.unassigned) != 1 {
		t.Fatalf("expected 1 unassigned event, got %d", len(f.events.unassigned))
	}
}

func TestRoute_AllRulesCapped(t *testing.T) {
	rule := orgRule("rule-1", 1, nil)
	rule.DailyCap = 1
	f := newFixture(testLead("lead-1", "90210"), []domain.AssignmentRule{rule}, nil)

	// Exhaust the daily cap.
	f.caps.counts[capKey("rule-1", domain.PeriodDaily, DayKey(time.Now()))] = 1

	out, err := f.engine.Route(context.Background(), allFlags(), "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.Reason != domain.ReasonAllRulesCapped {
		t.Fatalf("expected all_rules_capped, got %s", out.Reason)
	}
}

func TestRoute_AssignmentDisabled(t *testing.T) {
	f := newFixture(testLead("lead-1", "90210"), []domain.AssignmentRule{orgRule("rule-1", 1, nil)}, nil)

	fl := allFlags()
	fl.EnableAssignmentService = false

	out, err := f.engine.Route(context.Background(), fl, "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.Reason != domain.ReasonAssignmentDisabled {
		t.Fatalf("expected assignment_disabled, got %s", out.Reason)
	}
}

func TestRoute_IdempotentOnRedelivery(t *testing.T) {
	f := newFixture(testLead("lead-1", "90210"), []domain.AssignmentRule{orgRule("rule-1", 1, nil)}, nil)
	ctx := context.Background()

	first, err := f.engine.Route(ctx, allFlags(), "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if first.Duplicate {
		t.Fatal("first invocation must not be a duplicate")
	}

	second, err := f.engine.Route(ctx, allFlags(), "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if !second.Duplicate {
		t.Fatal("redelivery must be detected as a duplicate")
	}
	if len(f.events.assigned) != 1 {
		t.Fatalf("redelivery must not re-emit events, got %d", len(f.events.assigned))
	}
}

func TestRoute_UnassignedRecordSurvivesTransientStoreFailure(t *testing.T) {
	f := newFixture(testLead("lead-1", "10001"), nil, nil)
	ctx := context.Background()

	// The queue write fails on the first delivery.
	f.unassigned.setErr(errors.New("throughput exceeded"))

	if _, err := f.engine.Route(ctx, allFlags(), "lead-1"); err == nil {
		t.Fatal("expected error when the unassigned record cannot be written")
	}

	// Nothing may have been committed: the lead must still be routable.
	lead, err := f.leads.Get(ctx, "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if lead.Routed() {
		t.Fatalf("lead must stay unrouted after a failed commit, got %s", lead.Status)
	}
	if len(f.events.unassigned) != 0 {
		t.Fatalf("no event may be emitted for an uncommitted decision, got %d", len(f.events.unassigned))
	}

	// Redelivery against a healthy store completes the full commit.
	f.unassigned.setErr(nil)
	out, err := f.engine.Route(ctx, allFlags(), "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.Duplicate {
		t.Fatal("redelivery of an uncommitted decision must not be a duplicate")
	}
	if out.Reason != domain.ReasonNoMatchingRule {
		t.Fatalf("expected no_matching_rule, got %s", out.Reason)
	}
	if len(f.unassigned.recs) != 1 {
		t.Fatalf("expected 1 unassigned record after redelivery, got %d", len(f.unassigned.recs))
	}
	if len(f.events.unassigned) != 1 {
		t.Fatalf("expected 1 unassigned event after redelivery, got %d", len(f.events.unassigned))
	}
}

func TestRoute_InvalidTargetOnlyYieldsNoMatchingRule(t *testing.T) {
	bad := domain.AssignmentRule{
		ID: "rule-bad", FunnelID: testFunnel, OrgID: "org-1",
		TargetType: domain.TargetUser, TargetID: "outsider",
		Priority: 1, Active: true,
	}
	members := &mockMembers{members: map[string]bool{}}
	f := newFixture(testLead("lead-1", "90210"), []domain.AssignmentRule{bad}, members)

	out, err := f.engine.Route(context.Background(), allFlags(), "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	// No rule ever hit a cap, so the reason must not claim one did.
	if out.Reason != domain.ReasonNoMatchingRule {
		t.Fatalf("expected no_matching_rule, got %s", out.Reason)
	}
}

func TestRoute_TransientReservationFailureFallsThrough(t *testing.T) {
	flaky := orgRule("rule-flaky", 1, nil)
	flaky.DailyCap = 10
	healthy := orgRule("rule-healthy", 2, nil)

	f := newFixture(testLead("lead-1", "90210"), []domain.AssignmentRule{flaky, healthy}, nil)
	f.caps.failures[capKey("rule-flaky", domain.PeriodDaily, DayKey(time.Now()))] = errors.New("store unavailable")

	out, err := f.engine.Route(context.Background(), allFlags(), "lead-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.RuleID != "rule-healthy" {
		t.Fatalf("transient reservation failure should fall through to next rule, got %s", out.RuleID)
	}
}

func TestRoute_ConcurrentCapEnforcement(t *testing.T) {
	// N concurrent attempts against dailyCap=k: exactly min(N, k) assigned.
	const n, k = 20, 5

	rule := orgRule("rule-1", 1, nil)
	rule.DailyCap = k

	leads := make([]*domain.Lead, n)
	for i := range leads {
		leads[i] = testLead(fmt.Sprintf("lead-%02d", i), "90210")
	}

	store := newMockLeadStore(leads...)
	caps := newMockCapStore()
	events := &mockEvents{}
	unassigned := &mockUnassignedStore{}
	engine := NewEngine(store, &mockRuleSource{rules: []domain.AssignmentRule{rule}}, NewCapLedger(caps), unassigned, &mockMembers{}, events)

	var wg sync.WaitGroup
	outcomes := make([]*Outcome, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := engine.Route(context.Background(), allFlags(), fmt.Sprintf("lead-%02d", i))
			if err != nil {
				t.Errorf("route %d: %v", i, err)
				return
			}
			outcomes[i] = out
		}(i)
	}
	wg.Wait()

	assigned, capped := 0, 0
	for _, out := range outcomes {
		if out == nil {
			continue
		}
		switch {
		case out.Status == domain.LeadStatusAssigned:
			assigned++
		case out.Reason == domain.ReasonAllRulesCapped:
			capped++
		}
	}
	if assigned != k {
		t.Fatalf("expected exactly %d assignments, got %d", k, assigned)
	}
	if capped != n-k {
		t.Fatalf("expected %d capped leads, got %d", n-k, capped)
	}
	if got := caps.count("rule-1", domain.PeriodDaily, DayKey(time.Now())); got != k {
		t.Fatalf("counter should equal cap, got %d", got)
	}
}
