package risk

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
)

type mockRepo struct {
	assessments map[uuid.UUID]*Assessment
	plans       map[uuid.UUID]*PBSPlan
}

func newMockRepo() *mockRepo {
	return &mockRepo{assessments: make(map[uuid.UUID]*Assessment), plans: make(map[uuid.UUID]*PBSPlan)}
}

func (m *mockRepo) CreateAssessment(_ context.Context, a *Assessment) error {
	a.ID = uuid.New()
	cp := *a
	m.assessments[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetAssessment(_ context.Context, id uuid.UUID) (*Assessment, error) {
	a, ok := m.assessments[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) UpdateAssessment(_ context.Context, a *Assessment) error {
	if _, ok := m.assessments[a.ID]; !ok {
		return apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *a
	m.assessments[a.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteAssessment(_ context.Context, id uuid.UUID) error {
	delete(m.assessments, id)
	return nil
}

func (m *mockRepo) ListAssessments(_ context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]Assessment, int, error) {
	out := []Assessment{}
	for _, a := range m.assessments {
		if all {
			out = append(out, *a)
			continue
		}
		for _, id := range clientIDs {
			if a.ClientID == id {
				out = append(out, *a)
			}
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) CreatePlan(_ context.Context, p *PBSPlan) error {
	p.ID = uuid.New()
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetPlan(_ context.Context, id uuid.UUID) (*PBSPlan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) UpdatePlan(_ context.Context, p *PBSPlan) error {
	if _, ok := m.plans[p.ID]; !ok {
		return apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *mockRepo) DeletePlan(_ context.Context, id uuid.UUID) error {
	delete(m.plans, id)
	return nil
}

func (m *mockRepo) ListPlans(_ context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]PBSPlan, int, error) {
	out := []PBSPlan{}
	for _, p := range m.plans {
		if all {
			out = append(out, *p)
			continue
		}
		for _, id := range clientIDs {
			if p.ClientID == id {
				out = append(out, *p)
			}
		}
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockRepo, *audit.MemoryRepo) {
	repo := newMockRepo()
	trail := audit.NewMemoryRepo()
	return NewService(repo, audit.NewService(trail, zerolog.Nop())), repo, trail
}

func staffActor() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), FullName: "Jo Staff", Role: auth.RoleStaff}
}

func TestDeriveLevel(t *testing.T) {
	cases := []struct {
		likelihood, impact int
		want               string
	}{
		{1, 1, LevelLow},
		{1, 5, LevelLow},
		{2, 3, LevelMedium},
		{3, 4, LevelMedium},
		{3, 5, LevelHigh},
		{5, 5, LevelHigh},
	}
	for _, tc := range cases {
		if got := DeriveLevel(tc.likelihood, tc.impact); got != tc.want {
			t.Errorf("DeriveLevel(%d, %d) = %q, want %q", tc.likelihood, tc.impact, got, tc.want)
		}
	}
}

func TestCreateAssessment_DerivesLevel(t *testing.T) {
	svc, _, trail := newTestService()
	a := &Assessment{ClientID: uuid.New(), Hazard: "Unsteady on stairs", Likelihood: 4, Impact: 4}
	if err := svc.CreateAssessment(context.Background(), staffActor(), a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Level != LevelHigh {
		t.Fatalf("expected high, got %q", a.Level)
	}
	if len(trail.Entries) != 1 || trail.Entries[0].TargetType != "RiskAssessment" {
		t.Fatalf("expected audit entry, got %+v", trail.Entries)
	}
}

func TestCreateAssessment_ScoreOutOfRange(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.CreateAssessment(context.Background(), staffActor(), &Assessment{
		ClientID: uuid.New(), Hazard: "x", Likelihood: 6, Impact: 2,
	})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateAssessment_RederivesLevel(t *testing.T) {
	svc, _, _ := newTestService()
	a := &Assessment{ClientID: uuid.New(), Hazard: "Unsteady on stairs", Likelihood: 4, Impact: 4}
	if err := svc.CreateAssessment(context.Background(), staffActor(), a); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.UpdateAssessment(context.Background(), staffActor(), a.ID, &Assessment{Likelihood: 1, Impact: 2})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Level != LevelLow {
		t.Fatalf("expected level rederived to low, got %q", got.Level)
	}
}

func TestGetAssessment_Scoped(t *testing.T) {
	svc, _, _ := newTestService()
	a := &Assessment{ClientID: uuid.New(), Hazard: "Unsteady on stairs", Likelihood: 2, Impact: 2}
	if err := svc.CreateAssessment(context.Background(), staffActor(), a); err != nil {
		t.Fatalf("create: %v", err)
	}

	family := &auth.Identity{UserID: uuid.New(), Role: auth.RoleFamily, ClientIDs: []uuid.UUID{uuid.New()}}
	if _, err := svc.GetAssessment(context.Background(), family, a.ID); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for unattached caller, got %v", err)
	}
}

func TestCreatePlan_Success(t *testing.T) {
	svc, _, _ := newTestService()
	p := &PBSPlan{ClientID: uuid.New(), Behaviour: "Shouting when routines change"}
	if err := svc.CreatePlan(context.Background(), staffActor(), p); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatal("expected plan id assigned")
	}
}

func TestListPlans_EmptyScopeIsEmpty(t *testing.T) {
	svc, _, _ := newTestService()
	p := &PBSPlan{ClientID: uuid.New(), Behaviour: "x"}
	if err := svc.CreatePlan(context.Background(), staffActor(), p); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	family := &auth.Identity{UserID: uuid.New(), Role: auth.RoleFamily}
	items, total, err := svc.ListPlans(context.Background(), family, 20, 0)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("expected empty collection, got total=%d err=%v", total, err)
	}
}
