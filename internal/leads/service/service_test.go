package service

import (
	"context"
	"testing"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/events"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/domain"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/transport"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/apperr"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	leads      map[uuid.UUID]repository.Lead
	activities map[uuid.UUID][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:      make(map[uuid.UUID]repository.Lead),
		activities: make(map[uuid.UUID][]string),
	}
}

func (f *fakeStore) Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	lead := repository.Lead{
		ID:            uuid.New(),
		OwnerName:     params.OwnerName,
		OwnerPhone:    params.OwnerPhone,
		StreetAddress: params.StreetAddress,
		City:          params.City,
		State:         params.State,
		ZipCode:       params.ZipCode,
		Stage:         params.Stage,
		PriorityScore: params.PriorityScore,
		Source:        params.Source,
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) List(ctx context.Context, params repository.ListLeadsParams) ([]repository.Lead, error) {
	leads := make([]repository.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		if params.Stage != nil && lead.Stage != *params.Stage {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

func (f *fakeStore) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.Stage = stage
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) AddActivity(ctx context.Context, leadID uuid.UUID, activityType string, metadata any) error {
	f.activities[leadID] = append(f.activities[leadID], activityType)
	return nil
}

func newTestService(store *fakeStore) *Service {
	log := logger.New("development")
	return New(store, events.NewInMemoryBus(log), log)
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizesPhone(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	lead, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		OwnerPhone:    strPtr("(608) 555-0134"),
		StreetAddress: "1 Elm St",
		City:          "Madison",
		State:         "WI",
		ZipCode:       "53703",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if lead.OwnerPhone == nil || *lead.OwnerPhone != "+16085550134" {
		t.Errorf("phone = %v, want +16085550134", lead.OwnerPhone)
	}
	if lead.Stage != domain.StageNew {
		t.Errorf("stage = %s, want new", lead.Stage)
	}
	if lead.Source != SourceManual {
		t.Errorf("source = %s, want manual", lead.Source)
	}
}

func TestCreatePhoneAffectsPriority(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	withPhone, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		OwnerPhone:    strPtr("608-555-0134"),
		StreetAddress: "1 Elm St", City: "Madison", State: "WI", ZipCode: "53703",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	withoutPhone, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		StreetAddress: "2 Elm St", City: "Madison", State: "WI", ZipCode: "53703",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if diff := withPhone.PriorityScore - withoutPhone.PriorityScore; diff != 15 {
		t.Errorf("contactability bonus = %d, want 15", diff)
	}
}

func TestUpdateStage(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	lead, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		StreetAddress: "1 Elm St", City: "Madison", State: "WI", ZipCode: "53703",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.UpdateStage(context.Background(), lead.ID, domain.StageContacted)
	if err != nil {
		t.Fatalf("UpdateStage: %v", err)
	}
	if updated.Stage != domain.StageContacted {
		t.Errorf("stage = %s, want contacted", updated.Stage)
	}

	got := store.activities[lead.ID]
	if len(got) != 2 || got[1] != activityStageChanged {
		t.Errorf("activities = %v, want stage_changed appended", got)
	}
}

func TestUpdateStageRejectsIllegalTransition(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	lead, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		StreetAddress: "1 Elm St", City: "Madison", State: "WI", ZipCode: "53703",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStage(context.Background(), lead.ID, domain.StageWon); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("new -> won: err = %v, want conflict", err)
	}
	if _, err := svc.UpdateStage(context.Background(), lead.ID, domain.Stage("archived")); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown stage: err = %v, want validation", err)
	}
}

func TestUpdateStageSameStageIsNoOp(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	lead, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		StreetAddress: "1 Elm St", City: "Madison", State: "WI", ZipCode: "53703",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.UpdateStage(context.Background(), lead.ID, domain.StageNew)
	if err != nil {
		t.Fatalf("UpdateStage: %v", err)
	}
	if got.Stage != domain.StageNew {
		t.Errorf("stage = %s", got.Stage)
	}
	if activities := store.activities[lead.ID]; len(activities) != 1 {
		t.Errorf("no-op must not log a stage change: %v", activities)
	}
}

func TestUpdateStageNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())

	if _, err := svc.UpdateStage(context.Background(), uuid.New(), domain.StageContacted); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}
