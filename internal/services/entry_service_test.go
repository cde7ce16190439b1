package services

import (
	"context"
	"errors"
	"testing"

	"tempo/internal/core"
)

type fakeStore struct {
	createID  int64
	createErr error
	version   int64
	updateErr error
	deleteErr error
}

func (f *fakeStore) CreateEntry(ctx context.Context, e core.Entry) (int64, error) {
	return f.createID, f.createErr
}

func (f *fakeStore) UpdateEntry(ctx context.Context, e core.Entry) (int64, error) {
	return f.version, f.updateErr
}

func (f *fakeStore) DeleteEntry(ctx context.Context, userID, id int64) error {
	return f.deleteErr
}

func (f *fakeStore) Close() error { return nil }

type fakePublisher struct {
	err       error
	syncs     []int64
	deletes   []int64
	versions  []int64
	published int
}

func (f *fakePublisher) PublishEntrySync(ctx context.Context, id, version int64) error {
	f.published++
	if f.err != nil {
		return f.err
	}
	f.syncs = append(f.syncs, id)
	f.versions = append(f.versions, version)
	return nil
}

func (f *fakePublisher) PublishEntryDelete(ctx context.Context, id int64) error {
	f.published++
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func validEntry() core.Entry {
	return core.Entry{
		ID:        1,
		UserID:    1,
		ProjectID: 2,
		TaskID:    3,
		Hours:     8,
		Date:      core.NewDate(2026, 1, 7),
	}
}

func TestCreateEntryPublishesSync(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewEntryService(&fakeStore{createID: 42}, pub)

	id, err := svc.CreateEntry(context.Background(), validEntry())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 42 {
		t.Fatalf("id: got %d, want 42", id)
	}
	if len(pub.syncs) != 1 || pub.syncs[0] != 42 || pub.versions[0] != 1 {
		t.Fatalf("sync publish: %+v", pub)
	}
}

func TestCreateEntrySurvivesBrokerOutage(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewEntryService(&fakeStore{createID: 7}, pub)

	id, err := svc.CreateEntry(context.Background(), validEntry())
	if err != nil {
		t.Fatalf("broker failure must not fail the mutation: %v", err)
	}
	if id != 7 {
		t.Fatalf("id: got %d, want 7", id)
	}
}

func TestCreateEntryRejectsInvalid(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewEntryService(&fakeStore{createID: 1}, pub)

	e := validEntry()
	e.Hours = -1
	if _, err := svc.CreateEntry(context.Background(), e); !errors.Is(err, core.ErrInvalidHours) {
		t.Fatalf("invalid entry accepted: %v", err)
	}
	if pub.published != 0 {
		t.Fatalf("nothing should publish for a rejected entry")
	}
}

func TestCreateEntryStorageFailure(t *testing.T) {
	cause := errors.New("disk full")
	pub := &fakePublisher{}
	svc := NewEntryService(&fakeStore{createErr: cause}, pub)

	if _, err := svc.CreateEntry(context.Background(), validEntry()); !errors.Is(err, cause) {
		t.Fatalf("storage failure not propagated: %v", err)
	}
	if pub.published != 0 {
		t.Fatalf("failed save must not publish")
	}
}

func TestUpdateEntryPublishesNewVersion(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewEntryService(&fakeStore{version: 3}, pub)

	if err := svc.UpdateEntry(context.Background(), validEntry()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(pub.versions) != 1 || pub.versions[0] != 3 {
		t.Fatalf("expected version 3 published, got %+v", pub.versions)
	}
}

func TestDeleteEntryPublishesDelete(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewEntryService(&fakeStore{}, pub)

	if err := svc.DeleteEntry(context.Background(), 1, 9); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.deletes) != 1 || pub.deletes[0] != 9 {
		t.Fatalf("delete publish: %+v", pub.deletes)
	}
}

func TestNilPublisherIsFine(t *testing.T) {
	svc := NewEntryService(&fakeStore{createID: 5}, nil)

	if _, err := svc.CreateEntry(context.Background(), validEntry()); err != nil {
		t.Fatalf("create without publisher: %v", err)
	}
	if err := svc.DeleteEntry(context.Background(), 1, 5); err != nil {
		t.Fatalf("delete without publisher: %v", err)
	}
}
