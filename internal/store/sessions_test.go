package store

import (
	"errors"
	"testing"
	"time"

	"github.com/ayusman/airrunner/internal/gesture"
)

func TestSessions_CreateGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	rec := NewSessionRecord("hand", gesture.Report{Jump: 4, Duck: 2, Left: 1, Right: 3, TotalTime: 94})
	if err := repo.Create(rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("Create() did not assign ID/timestamp: %+v", rec)
	}

	got, err := repo.GetByID(rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Mode != "hand" || got.Duration != 94 || got.Jump != 4 || got.Duck != 2 ||
		got.Left != 1 || got.Right != 3 || got.Total != 10 {
		t.Errorf("GetByID() = %+v", got)
	}
}

func TestSessions_GetNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Sessions().GetByID("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSessions_Recent(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		rec := &SessionRecord{
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Mode:      "body",
			Duration:  60,
			Jump:      i,
			Total:     i,
		}
		if err := repo.Create(rec); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		limit     int
		wantLen   int
		wantFirst int
	}{
		{limit: 3, wantLen: 3, wantFirst: 9},
		{limit: 0, wantLen: DefaultRecent, wantFirst: 9},
		{limit: 50, wantLen: 10, wantFirst: 9},
	}
	for _, tt := range tests {
		got, err := repo.Recent(tt.limit)
		if err != nil {
			t.Fatalf("Recent(%d) error = %v", tt.limit, err)
		}
		if len(got) != tt.wantLen {
			t.Fatalf("Recent(%d) returned %d, want %d", tt.limit, len(got), tt.wantLen)
		}
		if got[0].Jump != tt.wantFirst {
			t.Errorf("Recent(%d)[0].Jump = %d, want newest %d", tt.limit, got[0].Jump, tt.wantFirst)
		}
		for i := 1; i < len(got); i++ {
			if got[i].CreatedAt.After(got[i-1].CreatedAt) {
				t.Errorf("Recent(%d) not newest first at %d", tt.limit, i)
			}
		}
	}
}

func TestSessions_RecentEmpty(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Sessions().Recent(7)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Recent() = %v, want empty slice", got)
	}
}
