package medication

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
	"github.com/carehub/carehub/internal/platform/blobstore"
	"github.com/carehub/carehub/internal/platform/db"
)

// UpdateRequest carries the mutable medication fields. Stock quantity set
// here is a manual restock, distinct from the ledger movements driven by
// administration events.
type UpdateRequest struct {
	Name           *string `json:"name,omitempty"`
	Dosage         *string `json:"dosage,omitempty"`
	Route          *string `json:"route,omitempty"`
	Frequency      *string `json:"frequency,omitempty"`
	TimeOfDay      *string `json:"time_of_day,omitempty"`
	StockQuantity  *int    `json:"stock_quantity,omitempty"`
	StockThreshold *int    `json:"stock_threshold,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

type Service struct {
	repo  Repository
	audit *audit.Service
	blobs blobstore.BlobStore
	tx    func(ctx context.Context, fn func(context.Context) error) error
}

// NewService wires the medication service. With a nil pool the ledger flows
// run without transaction boundaries, which is only acceptable in tests.
func NewService(repo Repository, auditSvc *audit.Service, blobs blobstore.BlobStore, pool *pgxpool.Pool) *Service {
	s := &Service{repo: repo, audit: auditSvc, blobs: blobs}
	if pool != nil {
		s.tx = func(ctx context.Context, fn func(context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		}
	} else {
		s.tx = func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}
	}
	return s
}

func (s *Service) Create(ctx context.Context, actor *auth.Identity, m *Medication) error {
	if m.ClientID == uuid.Nil {
		return apperror.New(apperror.KindValidation, "client_id is required")
	}
	if m.Name == "" {
		return apperror.New(apperror.KindValidation, "name is required")
	}
	if m.StockQuantity < 0 {
		return apperror.New(apperror.KindValidation, "stock_quantity must not be negative")
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return apperror.Wrap(apperror.KindDependency, "create medication", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "Medication", &m.ID, nil, &m.ClientID)
	return nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "medication not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(m.ClientID) {
		return nil, apperror.New(apperror.KindNotFound, "medication not found")
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, actor *auth.Identity, limit, offset int) ([]Medication, int, error) {
	scope := auth.ClientScope(actor)
	if scope.All {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.ListByClients(ctx, scope.ClientIDs, limit, offset)
}

func (s *Service) ListByClient(ctx context.Context, actor *auth.Identity, clientID uuid.UUID, limit, offset int) ([]Medication, int, error) {
	if !auth.ClientScope(actor).CanSeeClient(clientID) {
		return []Medication{}, 0, nil
	}
	return s.repo.ListByClients(ctx, []uuid.UUID{clientID}, limit, offset)
}

// LowStock lists medications whose quantity has fallen below their
// threshold, scoped to the caller's attached clients. The signal is
// recomputed on every call.
func (s *Service) LowStock(ctx context.Context, actor *auth.Identity, limit, offset int) ([]Medication, int, error) {
	scope := auth.ClientScope(actor)
	return s.repo.ListLowStock(ctx, scope.ClientIDs, scope.All, limit, offset)
}

// Stale lists medications with no given dose in the last six months,
// scoped to the caller's attached clients.
func (s *Service) Stale(ctx context.Context, actor *auth.Identity, limit, offset int) ([]Medication, int, error) {
	scope := auth.ClientScope(actor)
	return s.repo.ListStale(ctx, scope.ClientIDs, scope.All, limit, offset)
}

// AuditTrail lists the audit entries recorded against medication records.
func (s *Service) AuditTrail(ctx context.Context, actor *auth.Identity, limit, offset int) ([]*audit.Entry, int, error) {
	return s.audit.List(ctx, actor, audit.Filter{TargetType: "Medication"}, limit, offset)
}

func (s *Service) Update(ctx context.Context, actor *auth.Identity, id uuid.UUID, req *UpdateRequest) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "medication not found")
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Dosage != nil {
		m.Dosage = req.Dosage
	}
	if req.Route != nil {
		m.Route = req.Route
	}
	if req.Frequency != nil {
		m.Frequency = req.Frequency
	}
	if req.TimeOfDay != nil {
		m.TimeOfDay = req.TimeOfDay
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, apperror.New(apperror.KindValidation, "stock_quantity must not be negative")
		}
		m.StockQuantity = *req.StockQuantity
	}
	if req.StockThreshold != nil {
		m.StockThreshold = *req.StockThreshold
	}
	if req.Notes != nil {
		m.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update medication", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Medication", &m.ID, nil, &m.ClientID)
	return m, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "medication not found")
	}
	for _, blobID := range m.Attachments {
		if err := s.blobs.Delete(ctx, blobID); err != nil {
			return apperror.Wrap(apperror.KindDependency, "delete medication attachment", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete medication", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "Medication", &id, nil, &m.ClientID)
	return nil
}

// AddAttachment stores a prescription or MAR sheet scan in the blob store
// and links it to the medication.
func (s *Service) AddAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, fileName, contentType string, content io.Reader) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "medication not found")
	}

	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
		OwnerType:   blobstore.OwnerClient,
		OwnerID:     m.ClientID.String(),
		Category:    "care-document",
		CreatedBy:   actor.UserID.String(),
	}, content)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "store attachment", err)
	}

	m.Attachments = append(m.Attachments, meta.ID)
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "link medication attachment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Medication", &m.ID, nil, &m.ClientID)
	return m, nil
}

// RemoveAttachment unlinks a stored scan and deletes it from the blob store.
func (s *Service) RemoveAttachment(ctx context.Context, actor *auth.Identity, id uuid.UUID, blobID string) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "medication not found")
	}

	kept := m.Attachments[:0]
	found := false
	for _, att := range m.Attachments {
		if att == blobID {
			found = true
			continue
		}
		kept = append(kept, att)
	}
	if !found {
		return nil, apperror.New(apperror.KindNotFound, "attachment not found")
	}
	if err := s.blobs.Delete(ctx, blobID); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "delete medication attachment", err)
	}

	m.Attachments = kept
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "unlink medication attachment", err)
	}
	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "Medication", &m.ID, nil, &m.ClientID)
	return m, nil
}

// Administer appends an administration event and applies its stock effect
// in one transaction. A given dose moves stock down by one, clamped at
// zero, and marks the medication Completed. A not-given event leaves stock
// alone and returns the medication to Pending.
func (s *Service) Administer(ctx context.Context, actor *auth.Identity, medicationID uuid.UUID, ev *AdministrationEvent) error {
	m, err := s.repo.GetByID(ctx, medicationID)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "medication not found")
	}

	ev.MedicationID = medicationID
	if ev.Date.IsZero() {
		ev.Date = time.Now()
	}
	if ev.Caregiver == "" && actor != nil {
		ev.Caregiver = actor.FullName
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.InsertEvent(ctx, ev); err != nil {
			return err
		}
		if ev.Given {
			if err := s.repo.AdjustStock(ctx, medicationID, -1); err != nil {
				return err
			}
			return s.repo.SetStatus(ctx, medicationID, StatusCompleted)
		}
		return s.repo.SetStatus(ctx, medicationID, StatusPending)
	})
	if err != nil {
		return apperror.Wrap(apperror.KindDependency, "record administration", err)
	}

	s.audit.RecordDetail(ctx, actor, audit.ActionCreate, "AdministrationEvent", &ev.ID, nil, &m.ClientID)
	return nil
}

// Amend updates an administration event. Flipping the given flag moves
// exactly one unit of stock: true to false restores a dose, false to true
// consumes one. Fields other than given never touch stock.
func (s *Service) Amend(ctx context.Context, actor *auth.Identity, eventID uuid.UUID, req *AmendRequest) (*AdministrationEvent, error) {
	ev, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "administration record not found")
	}
	m, err := s.repo.GetByID(ctx, ev.MedicationID)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "medication not found")
	}

	delta := 0
	if req.Given != nil && *req.Given != ev.Given {
		if *req.Given {
			delta = -1
		} else {
			delta = 1
		}
		ev.Given = *req.Given
	}
	if req.Date != nil {
		ev.Date = *req.Date
	}
	if req.TimeOfDay != nil {
		ev.TimeOfDay = req.TimeOfDay
	}
	if req.Caregiver != nil {
		ev.Caregiver = *req.Caregiver
	}
	if req.Notes != nil {
		ev.Notes = req.Notes
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateEvent(ctx, ev); err != nil {
			return err
		}
		if delta != 0 {
			if err := s.repo.AdjustStock(ctx, ev.MedicationID, delta); err != nil {
				return err
			}
			return s.refreshStatus(ctx, ev.MedicationID)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "amend administration", err)
	}

	s.audit.RecordDetail(ctx, actor, audit.ActionUpdate, "AdministrationEvent", &ev.ID, nil, &m.ClientID)
	return ev, nil
}

// Reverse deletes an administration event. If the event was a given dose
// the stock it consumed is restored.
func (s *Service) Reverse(ctx context.Context, actor *auth.Identity, eventID uuid.UUID) error {
	ev, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "administration record not found")
	}
	m, err := s.repo.GetByID(ctx, ev.MedicationID)
	if err != nil {
		return apperror.New(apperror.KindNotFound, "medication not found")
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteEvent(ctx, eventID); err != nil {
			return err
		}
		if ev.Given {
			if err := s.repo.AdjustStock(ctx, ev.MedicationID, 1); err != nil {
				return err
			}
		}
		return s.refreshStatus(ctx, ev.MedicationID)
	})
	if err != nil {
		return apperror.Wrap(apperror.KindDependency, "reverse administration", err)
	}

	s.audit.RecordDetail(ctx, actor, audit.ActionDelete, "AdministrationEvent", &eventID, nil, &m.ClientID)
	return nil
}

func (s *Service) History(ctx context.Context, actor *auth.Identity, medicationID uuid.UUID, limit, offset int) ([]AdministrationEvent, int, error) {
	m, err := s.repo.GetByID(ctx, medicationID)
	if err != nil {
		return nil, 0, apperror.New(apperror.KindNotFound, "medication not found")
	}
	if !auth.ClientScope(actor).CanSeeClient(m.ClientID) {
		return nil, 0, apperror.New(apperror.KindNotFound, "medication not found")
	}
	return s.repo.ListEvents(ctx, medicationID, limit, offset)
}

// refreshStatus realigns status with the surviving history: Completed while
// any given dose remains, otherwise Pending.
func (s *Service) refreshStatus(ctx context.Context, medicationID uuid.UUID) error {
	n, err := s.repo.CountGiven(ctx, medicationID)
	if err != nil {
		return err
	}
	if n > 0 {
		return s.repo.SetStatus(ctx, medicationID, StatusCompleted)
	}
	return s.repo.SetStatus(ctx, medicationID, StatusPending)
}
