package activity

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
	logs       map[uuid.UUID]*DailyLog
	handovers  map[uuid.UUID]*Handover
	activities map[uuid.UUID]*SocialActivity
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		logs:       make(map[uuid.UUID]*DailyLog),
		handovers:  make(map[uuid.UUID]*Handover),
		activities: make(map[uuid.UUID]*SocialActivity),
	}
}

func (m *mockRepo) CreateLog(_ context.Context, l *DailyLog) error {
	l.ID = uuid.New()
	cp := *l
	m.logs[l.ID] = &cp
	return nil
}

func (m *mockRepo) GetLog(_ context.Context, id uuid.UUID) (*DailyLog, error) {
	l, ok := m.logs[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *l
	return &cp, nil
}

func (m *mockRepo) UpdateLog(_ context.Context, l *DailyLog) error {
	cp := *l
	m.logs[l.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteLog(_ context.Context, id uuid.UUID) error {
	delete(m.logs, id)
	return nil
}

func (m *mockRepo) ListLogs(_ context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]DailyLog, int, error) {
	out := []DailyLog{}
	for _, l := range m.logs {
		if all || containsID(clientIDs, l.ClientID) {
			out = append(out, *l)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) CreateHandover(_ context.Context, h *Handover) error {
	h.ID = uuid.New()
	cp := *h
	m.handovers[h.ID] = &cp
	return nil
}

func (m *mockRepo) GetHandover(_ context.Context, id uuid.UUID) (*Handover, error) {
	h, ok := m.handovers[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *h
	return &cp, nil
}

func (m *mockRepo) UpdateHandover(_ context.Context, h *Handover) error {
	cp := *h
	m.handovers[h.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteHandover(_ context.Context, id uuid.UUID) error {
	delete(m.handovers, id)
	return nil
}

func (m *mockRepo) ListHandovers(_ context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]Handover, int, error) {
	out := []Handover{}
	for _, h := range m.handovers {
		if all || containsID(clientIDs, h.ClientID) {
			out = append(out, *h)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) CreateActivity(_ context.Context, a *SocialActivity) error {
	a.ID = uuid.New()
	cp := *a
	m.activities[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetActivity(_ context.Context, id uuid.UUID) (*SocialActivity, error) {
	a, ok := m.activities[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "no rows")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) UpdateActivity(_ context.Context, a *SocialActivity) error {
	cp := *a
	m.activities[a.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteActivity(_ context.Context, id uuid.UUID) error {
	delete(m.activities, id)
	return nil
}

func (m *mockRepo) ListActivities(_ context.Context, clientIDs []uuid.UUID, all bool, limit, offset int) ([]SocialActivity, int, error) {
	out := []SocialActivity{}
	for _, a := range m.activities {
		if all || containsID(clientIDs, a.ClientID) {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func newTestService() (*Service, *mockRepo, *blobstore.InMemoryBlobStore) {
	repo := newMockRepo()
	blobs := blobstore.NewInMemoryBlobStore()
	svc := NewService(repo, audit.NewService(audit.NewMemoryRepo(), zerolog.Nop()), blobs)
	return svc, repo, blobs
}

func staffActor() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), FullName: "Jo Staff", Role: auth.RoleStaff}
}

func TestCreateLog_DefaultsTimestampAndStaffName(t *testing.T) {
	svc, _, _ := newTestService()
	l := &DailyLog{ClientID: uuid.New()}
	if err := svc.CreateLog(context.Background(), staffActor(), l); err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.LoggedAt.IsZero() {
		t.Fatal("expected logged_at defaulted")
	}
	if l.StaffName != "Jo Staff" {
		t.Fatalf("expected staff name from actor, got %q", l.StaffName)
	}
	if l.Status != StatusActive {
		t.Fatalf("expected active status, got %q", l.Status)
	}
}

func TestListLogs_FamilySeesAttachedOnly(t *testing.T) {
	svc, _, _ := newTestService()
	theirs := uuid.New()
	for _, cid := range []uuid.UUID{theirs, uuid.New()} {
		l := &DailyLog{ClientID: cid, StaffName: "x", LoggedAt: time.Now()}
		if err := svc.CreateLog(context.Background(), staffActor(), l); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	family := &auth.Identity{UserID: uuid.New(), Role: auth.RoleFamily, ClientIDs: []uuid.UUID{theirs}}
	items, total, err := svc.ListLogs(context.Background(), family, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ClientID != theirs {
		t.Fatalf("expected only attached client's logs, got %d", total)
	}
}

func TestCreateHandover_RequiresDateAndTime(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.CreateHandover(context.Background(), staffActor(), &Handover{ClientID: uuid.New()})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateHandover_DefaultsHandingOverToActor(t *testing.T) {
	svc, _, _ := newTestService()
	h := &Handover{ClientID: uuid.New(), Date: time.Now(), TimeOfDay: "20:00"}
	if err := svc.CreateHandover(context.Background(), staffActor(), h); err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.HandingOver == nil || *h.HandingOver != "Jo Staff" {
		t.Fatalf("expected handing_over defaulted to actor, got %v", h.HandingOver)
	}
}

func TestCreateActivity_UnknownType(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.CreateActivity(context.Background(), staffActor(), &SocialActivity{
		ClientID: uuid.New(), ActivityType: "karaoke",
	})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddAttachment_StoresBlobAndLinks(t *testing.T) {
	svc, repo, blobs := newTestService()
	a := &SocialActivity{ClientID: uuid.New(), ActivityType: ActivityGame}
	if err := svc.CreateActivity(context.Background(), staffActor(), a); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.AddAttachment(context.Background(), staffActor(), a.ID,
		"bingo.jpg", "image/jpeg", strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("expected one attachment, got %d", len(got.Attachments))
	}
	meta, err := blobs.GetMetadata(context.Background(), got.Attachments[0])
	if err != nil {
		t.Fatalf("blob metadata: %v", err)
	}
	if meta.FileName != "bingo.jpg" || meta.OwnerID != a.ClientID.String() {
		t.Fatalf("unexpected blob metadata %+v", meta)
	}
	if len(repo.activities[a.ID].Attachments) != 1 {
		t.Fatal("expected attachment persisted on the activity")
	}
}

func TestRemoveAttachment_DeletesBlob(t *testing.T) {
	svc, _, blobs := newTestService()
	a := &SocialActivity{ClientID: uuid.New(), ActivityType: ActivityHobby}
	if err := svc.CreateActivity(context.Background(), staffActor(), a); err != nil {
		t.Fatalf("create: %v", err)
	}
	withAtt, err := svc.AddAttachment(context.Background(), staffActor(), a.ID,
		"knitting.jpg", "image/jpeg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}

	blobID := withAtt.Attachments[0]
	got, err := svc.RemoveAttachment(context.Background(), staffActor(), a.ID, blobID)
	if err != nil {
		t.Fatalf("remove attachment: %v", err)
	}
	if len(got.Attachments) != 0 {
		t.Fatalf("expected attachment removed, got %v", got.Attachments)
	}
	if _, err := blobs.GetMetadata(context.Background(), blobID); err == nil {
		t.Fatal("expected blob deleted")
	}
}

func TestGetActivity_ScopedCallerUnattached(t *testing.T) {
	svc, _, _ := newTestService()
	a := &SocialActivity{ClientID: uuid.New(), ActivityType: ActivityFamilyVisit}
	if err := svc.CreateActivity(context.Background(), staffActor(), a); err != nil {
		t.Fatalf("create: %v", err)
	}

	client := &auth.Identity{UserID: uuid.New(), Role: auth.RoleClient, ClientIDs: []uuid.UUID{uuid.New()}}
	if _, err := svc.GetActivity(context.Background(), client, a.ID); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for unattached caller, got %v", err)
	}
}
