package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
)

func TestNew_SeedsOwnerProfile(t *testing.T) {
	store := New()

	profiles, err := store.ListProfiles(context.Background())
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	if profiles[0].Type != "owner" || profiles[0].OwnerUserID != "default" {
		t.Fatalf("unexpected seeded profile: %+v", profiles[0])
	}
}

func TestSessions_SnapshotResetsRun(t *testing.T) {
	ctx := context.Background()
	store := New()
	profileID := uuid.New()
	now := time.Now().UTC()

	if s, err := store.GetSession(ctx, profileID); err != nil || s != nil {
		t.Fatalf("expected no session, got %+v, %v", s, err)
	}

	if err := store.SaveRun(ctx, profileID, []byte(`{}`), []byte(`{}`), now); !errors.Is(err, storage.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound without snapshot, got %v", err)
	}

	if err := store.SaveSnapshot(ctx, profileID, []byte(`{"weight":180}`), now); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if err := store.SaveRun(ctx, profileID, []byte(`{"goal_weight":170}`), []byte(`{"scenarios":[]}`), now.Add(time.Minute)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	session, err := store.GetSession(ctx, profileID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.Result == nil || session.GeneratedAt == nil {
		t.Fatalf("expected stored run, got %+v", session)
	}

	// Повторный расчёт метрик делает старый результат недействительным
	if err := store.SaveSnapshot(ctx, profileID, []byte(`{"weight":178}`), now.Add(2*time.Minute)); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	session, _ = store.GetSession(ctx, profileID)
	if session.Goal != nil || session.Result != nil || session.GeneratedAt != nil {
		t.Fatalf("expected run to be cleared, got %+v", session)
	}
	if string(session.Snapshot) != `{"weight":178}` {
		t.Fatalf("unexpected snapshot %s", session.Snapshot)
	}
}

func TestSessions_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := New()
	profileID := uuid.New()

	payload := []byte(`{"weight":180}`)
	_ = store.SaveSnapshot(ctx, profileID, payload, time.Now())
	payload[0] = 'X'

	session, _ := store.GetSession(ctx, profileID)
	if session.Snapshot[0] != '{' {
		t.Fatal("stored snapshot must not alias caller buffer")
	}
	session.Snapshot[0] = 'Y'

	again, _ := store.GetSession(ctx, profileID)
	if again.Snapshot[0] != '{' {
		t.Fatal("returned snapshot must not alias stored buffer")
	}
}

func TestReports_ListCountDelete(t *testing.T) {
	ctx := context.Background()
	store := New()
	profileID := uuid.New()

	for i := 0; i < 3; i++ {
		r := &storage.ReportMeta{ProfileID: profileID, Format: "csv", Status: "ready"}
		if err := store.CreateReport(ctx, r); err != nil {
			t.Fatalf("CreateReport: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
	_ = store.CreateReport(ctx, &storage.ReportMeta{ProfileID: uuid.New(), Format: "pdf", Status: "ready"})

	count, _ := store.CountReports(ctx, profileID)
	if count != 3 {
		t.Fatalf("expected 3 reports, got %d", count)
	}

	page, _ := store.ListReports(ctx, profileID, 2, 0)
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	if page[0].CreatedAt.Before(page[1].CreatedAt) {
		t.Fatal("expected newest first")
	}

	rest, _ := store.ListReports(ctx, profileID, 2, 5)
	if len(rest) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(rest))
	}

	if err := store.DeleteReport(ctx, page[0].ID); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if _, err := store.GetReport(ctx, page[0].ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteProfile_Cascades(t *testing.T) {
	ctx := context.Background()
	store := New()

	guest := &storage.Profile{OwnerUserID: "default", Type: "guest", Name: "Guest"}
	_ = store.CreateProfile(ctx, guest)
	_ = store.SaveSnapshot(ctx, guest.ID, []byte(`{}`), time.Now())
	_ = store.CreateReport(ctx, &storage.ReportMeta{ProfileID: guest.ID, Format: "pdf", Status: "ready"})

	if err := store.DeleteProfile(ctx, guest.ID); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}

	if s, _ := store.GetSession(ctx, guest.ID); s != nil {
		t.Fatal("expected session to be removed with profile")
	}
	if n, _ := store.CountReports(ctx, guest.ID); n != 0 {
		t.Fatalf("expected reports to be removed with profile, got %d", n)
	}
	if err := store.DeleteProfile(ctx, guest.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
