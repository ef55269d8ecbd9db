package careplan

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
	"github.com/carehub/carehub/internal/platform/blobstore"
)

type mockRepo struct {
	plans map[uuid.UUID]*CarePlan
	goals map[uuid.UUID]*Goal
}

func newMockRepo() *mockRepo {
	return &mockRepo{plans: make(map[uuid.UUID]*CarePlan), goals: make(map[uuid.UUID]*Goal)}
}

func (m *mockRepo) Create(_ context.Context, cp *CarePlan) error {
	cp.ID = uuid.New()
	if cp.Status == "" {
		cp.Status = StatusDraft
	}
	c := *cp
	m.plans[cp.ID] = &c
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*CarePlan, error) {
	cp, ok := m.plans[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	c := *cp
	return &c, nil
}

func (m *mockRepo) Update(_ context.Context, cp *CarePlan) error {
	if _, ok := m.plans[cp.ID]; !ok {
		return apperror.New(apperror.KindNotFound, "no rows")
	}
	c := *cp
	m.plans[cp.ID] = &c
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.plans, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]CarePlan, int, error) {
	out := []CarePlan{}
	for _, cp := range m.plans {
		out = append(out, *cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByClients(_ context.Context, clientIDs []uuid.UUID, limit, offset int) ([]CarePlan, int, error) {
	out := []CarePlan{}
	for _, cp := range m.plans {
		for _, id := range clientIDs {
			if cp.ClientID == id {
				out = append(out, *cp)
			}
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) InsertGoal(_ context.Context, g *Goal) error {
	g.ID = uuid.New()
	if g.Status == "" {
		g.Status = GoalOpen
	}
	c := *g
	m.goals[g.ID] = &c
	return nil
}

func (m *mockRepo) GetGoal(_ context.Context, id uuid.UUID) (*Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	c := *g
	return &c, nil
}

func (m *mockRepo) UpdateGoal(_ context.Context, g *Goal) error {
	if _, ok := m.goals[g.ID]; !ok {
		return apperror.New(apperror.KindNotFound, "no rows")
	}
	c := *g
	m.goals[g.ID] = &c
	return nil
}

func (m *mockRepo) DeleteGoal(_ context.Context, id uuid.UUID) error {
	delete(m.goals, id)
	return nil
}

func (m *mockRepo) ListGoals(_ context.Context, carePlanID uuid.UUID) ([]Goal, error) {
	out := []Goal{}
	for _, g := range m.goals {
		if g.CarePlanID == carePlanID {
			out = append(out, *g)
		}
	}
	return out, nil
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mockRepo, *audit.MemoryRepo) {
	repo := newMockRepo()
	trail := audit.NewMemoryRepo()
	svc := NewService(repo, audit.NewService(trail, zerolog.Nop()), blobstore.NewInMemoryBlobStore())
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, trail
}

func staffActor() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), FullName: "Jo Staff", Email: "jo@example.com", Role: auth.RoleStaff}
}

func clientActor(name string, clientIDs ...uuid.UUID) *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), FullName: name, Email: "client@example.com", Role: auth.RoleClient, ClientIDs: clientIDs}
}

func seedPlan(t *testing.T, svc *Service) *CarePlan {
	t.Helper()
	cp := &CarePlan{ClientID: uuid.New(), Title: "Daily living support"}
	if err := svc.Create(context.Background(), staffActor(), cp); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return cp
}

func TestCreate_MissingTitle(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Create(context.Background(), staffActor(), &CarePlan{ClientID: uuid.New()})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGet_ScopedToOwnPlan(t *testing.T) {
	svc, _, _ := newTestService()
	cp := seedPlan(t, svc)

	if _, err := svc.Get(context.Background(), clientActor("Ada", cp.ClientID), cp.ID); err != nil {
		t.Fatalf("expected own plan visible, got %v", err)
	}
	_, err := svc.Get(context.Background(), clientActor("Ben", uuid.New()), cp.ID)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for unattached client, got %v", err)
	}
}

func TestUpdate_ClientCannotEditContent(t *testing.T) {
	svc, _, _ := newTestService()
	cp := seedPlan(t, svc)

	_, err := svc.Update(context.Background(), clientActor("Ada", cp.ClientID), cp.ID, &CarePlan{Title: "Rewritten"})
	if apperror.KindOf(err) != apperror.KindAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestAcknowledge_AcceptSetsNameAndTime(t *testing.T) {
	svc, _, trail := newTestService()
	cp := seedPlan(t, svc)

	sig := "A. Osei"
	got, err := svc.Acknowledge(context.Background(), clientActor("Ada Osei", cp.ClientID), cp.ID,
		AcknowledgeRequest{Accept: true, Signature: &sig})
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if got.Decision != DecisionAccepted {
		t.Fatalf("expected accepted decision, got %q", got.Decision)
	}
	if got.Signature == nil || *got.Signature != sig {
		t.Fatalf("expected signature recorded, got %+v", got.Signature)
	}
	if got.AcknowledgedBy == nil || *got.AcknowledgedBy != "Ada Osei" {
		t.Fatalf("expected acknowledger name recorded, got %+v", got.AcknowledgedBy)
	}
	if got.AcknowledgedAt == nil || !got.AcknowledgedAt.Equal(fixedNow) {
		t.Fatalf("expected acknowledgement time, got %+v", got.AcknowledgedAt)
	}
	last := trail.Entries[len(trail.Entries)-1]
	if last.Action != audit.ActionUpdate || last.ClientID == nil || *last.ClientID != cp.ClientID {
		t.Fatalf("expected acknowledgement audit entry, got %+v", last)
	}
}

func TestAcknowledge_DeclineRequiresReason(t *testing.T) {
	svc, _, _ := newTestService()
	cp := seedPlan(t, svc)
	actor := clientActor("Ada Osei", cp.ClientID)

	_, err := svc.Acknowledge(context.Background(), actor, cp.ID, AcknowledgeRequest{Accept: false})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	reason := "Prefers the previous routine"
	got, err := svc.Acknowledge(context.Background(), actor, cp.ID,
		AcknowledgeRequest{Accept: false, DeclineReason: &reason})
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if got.Decision != DecisionDeclined {
		t.Fatalf("expected declined decision, got %q", got.Decision)
	}
	if got.DeclineReason == nil || *got.DeclineReason != reason {
		t.Fatalf("expected decline reason recorded, got %+v", got.DeclineReason)
	}
}

func TestAcknowledge_UnattachedClient(t *testing.T) {
	svc, _, _ := newTestService()
	cp := seedPlan(t, svc)

	_, err := svc.Acknowledge(context.Background(), clientActor("Ben", uuid.New()), cp.ID,
		AcknowledgeRequest{Accept: true})
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestList_EmptyScopeIsEmpty(t *testing.T) {
	svc, _, _ := newTestService()
	seedPlan(t, svc)

	items, total, err := svc.List(context.Background(), clientActor("Ada"), 20, 0)
	if err != nil {
		t.Fatalf("expected empty result, got error %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty collection, got %+v", items)
	}
}

func TestAddGoal_DefaultsOpen(t *testing.T) {
	svc, _, _ := newTestService()
	cp := seedPlan(t, svc)

	g := &Goal{CarePlanID: cp.ID, Title: "Prepare own breakfast"}
	if err := svc.AddGoal(context.Background(), staffActor(), g); err != nil {
		t.Fatalf("add goal: %v", err)
	}
	if g.Status != GoalOpen {
		t.Fatalf("expected open goal, got %q", g.Status)
	}
}

func TestUpdateGoal_UnknownStatus(t *testing.T) {
	svc, _, _ := newTestService()
	cp := seedPlan(t, svc)
	g := &Goal{CarePlanID: cp.ID, Title: "Prepare own breakfast"}
	if err := svc.AddGoal(context.Background(), staffActor(), g); err != nil {
		t.Fatalf("add goal: %v", err)
	}

	_, err := svc.UpdateGoal(context.Background(), staffActor(), g.ID, &Goal{Status: "paused"})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListGoals_ScopedThroughPlan(t *testing.T) {
	svc, _, _ := newTestService()
	cp := seedPlan(t, svc)
	g := &Goal{CarePlanID: cp.ID, Title: "Prepare own breakfast"}
	if err := svc.AddGoal(context.Background(), staffActor(), g); err != nil {
		t.Fatalf("add goal: %v", err)
	}

	_, err := svc.ListGoals(context.Background(), clientActor("Ben", uuid.New()), cp.ID)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for unattached client, got %v", err)
	}

	goals, err := svc.ListGoals(context.Background(), clientActor("Ada", cp.ClientID), cp.ID)
	if err != nil || len(goals) != 1 {
		t.Fatalf("expected one goal visible, got %d err=%v", len(goals), err)
	}
}

func TestAddAttachment_StaffOnly(t *testing.T) {
	svc, _, _ := newTestService()
	cp := seedPlan(t, svc)

	_, err := svc.AddAttachment(context.Background(), clientActor("Ada", cp.ClientID), cp.ID,
		"plan.pdf", "application/pdf", strings.NewReader("pdf bytes"))
	if apperror.KindOf(err) != apperror.KindAuthorization {
		t.Fatalf("expected authorization error for client caller, got %v", err)
	}

	got, err := svc.AddAttachment(context.Background(), staffActor(), cp.ID,
		"plan.pdf", "application/pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("expected one linked attachment, got %v", got.Attachments)
	}
}

func TestRemoveAttachment_UnknownBlob(t *testing.T) {
	svc, _, _ := newTestService()
	cp := seedPlan(t, svc)

	_, err := svc.RemoveAttachment(context.Background(), staffActor(), cp.ID, "missing")
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for unknown attachment, got %v", err)
	}
}
