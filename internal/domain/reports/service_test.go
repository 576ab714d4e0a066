package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
	"github.com/daxreyes/bushfire-beacon/internal/notify"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

type fakeReportStore struct {
	reports map[uuid.UUID]model.Report
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: make(map[uuid.UUID]model.Report)}
}

func (s *fakeReportStore) Get(ctx context.Context, id uuid.UUID) (model.Report, error) {
	report, ok := s.reports[id]
	if !ok {
		return model.Report{}, storage.ErrNotFound
	}
	return report, nil
}

func (s *fakeReportStore) Select(ctx context.Context, q storage.Query) ([]model.Report, error) {
	out := make([]model.Report, 0, len(s.reports))
	for _, report := range s.reports {
		out = append(out, report)
	}
	return out, nil
}

func (s *fakeReportStore) Insert(ctx context.Context, report model.Report) (model.Report, error) {
	report.ID = uuid.New()
	report.CreatedAt = time.Now().UTC()
	report.UpdatedAt = report.CreatedAt
	s.reports[report.ID] = report
	return report, nil
}

func (s *fakeReportStore) Save(ctx context.Context, report model.Report) (model.Report, error) {
	if _, ok := s.reports[report.ID]; !ok {
		return model.Report{}, storage.ErrNotFound
	}
	report.UpdatedAt = time.Now().UTC()
	s.reports[report.ID] = report
	return report, nil
}

func (s *fakeReportStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.reports[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

// facilityLookup serves only the existence check reports make before
// persisting.
type facilityLookup struct {
	facilities map[uuid.UUID]model.Facility
}

func (s *facilityLookup) Get(ctx context.Context, id uuid.UUID) (model.Facility, error) {
	facility, ok := s.facilities[id]
	if !ok {
		return model.Facility{}, storage.ErrNotFound
	}
	return facility, nil
}

func (s *facilityLookup) GetByCode(ctx context.Context, code string) (model.Facility, error) {
	return model.Facility{}, storage.ErrNotFound
}

func (s *facilityLookup) GetByName(ctx context.Context, name string) (model.Facility, error) {
	return model.Facility{}, storage.ErrNotFound
}

func (s *facilityLookup) Select(ctx context.Context, q storage.Query) ([]model.Facility, error) {
	return nil, nil
}

func (s *facilityLookup) Insert(ctx context.Context, facility model.Facility) (model.Facility, error) {
	return facility, nil
}

func (s *facilityLookup) Save(ctx context.Context, facility model.Facility) (model.Facility, error) {
	return facility, nil
}

func (s *facilityLookup) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func newTestService(t *testing.T) (*Service, *notify.Notifier, model.Facility) {
	t.Helper()

	facility := model.Facility{ID: uuid.New(), Code: "F100", Name: "Test Facility"}
	lookup := &facilityLookup{facilities: map[uuid.UUID]model.Facility{facility.ID: facility}}
	notifier := notify.New(notify.DefaultBuffer, zerolog.Nop())
	svc := NewService(newFakeReportStore(), lookup, notifier, zerolog.Nop())
	return svc, notifier, facility
}

func TestCreatePublishesEvent(t *testing.T) {
	svc, notifier, facility := newTestService(t)
	sub := notifier.Subscribe()
	defer notifier.Unsubscribe(sub)

	actor := uuid.New()
	created, err := svc.Create(context.Background(), CreateParams{
		FacilityID: facility.ID,
		ICUVacant:  3,
		WardVacant: 12,
		Source:     model.SourceVolunteer,
	}, &actor)
	require.NoError(t, err)

	assert.Equal(t, facility.ID, created.FacilityID)
	assert.False(t, created.ReportDate.IsZero(), "zero report date defaults to now")
	require.NotNil(t, created.CreatedByID)
	assert.Equal(t, actor, *created.CreatedByID)

	select {
	case event := <-sub.Events():
		assert.Equal(t, "create:report", event.Name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for create:report")
	}
}

func TestCreateRejectsUnknownFacility(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateParams{
		FacilityID: uuid.New(),
		Source:     model.SourceCrowd,
	}, nil)
	assert.ErrorIs(t, err, ErrUnknownFacility)
}

func TestCreateRejectsBadSource(t *testing.T) {
	svc, _, facility := newTestService(t)

	_, err := svc.Create(context.Background(), CreateParams{
		FacilityID: facility.ID,
		Source:     model.ReportSource("psychic"),
	}, nil)
	assert.ErrorIs(t, err, ErrBadSource)
}

func TestUpdateMergesCounts(t *testing.T) {
	svc, notifier, facility := newTestService(t)

	created, err := svc.Create(context.Background(), CreateParams{
		FacilityID: facility.ID,
		ICUVacant:  3,
		WardVacant: 12,
		Source:     model.SourceFacility,
	}, nil)
	require.NoError(t, err)

	sub := notifier.Subscribe()
	defer notifier.Unsubscribe(sub)

	icuVacant := 1
	updated, err := svc.Update(context.Background(), created.ID, UpdateParams{ICUVacant: &icuVacant}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.ICUVacant)
	assert.Equal(t, 12, updated.WardVacant, "untouched counts keep their values")
	assert.Equal(t, model.SourceFacility, updated.Source)

	select {
	case event := <-sub.Events():
		assert.Equal(t, "update:report", event.Name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update:report")
	}
}

func TestDeletePublishesEvent(t *testing.T) {
	svc, notifier, facility := newTestService(t)

	created, err := svc.Create(context.Background(), CreateParams{
		FacilityID: facility.ID,
		Source:     model.SourceAgency,
	}, nil)
	require.NoError(t, err)

	sub := notifier.Subscribe()
	defer notifier.Unsubscribe(sub)

	deleted, err := svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	select {
	case event := <-sub.Events():
		assert.Equal(t, "delete:report", event.Name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delete:report")
	}
}
