package service

import (
	"context"
	"testing"

	"shelfpulse/internal/inference/inferencetest"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestSupersedeKeepsOneLatest(t *testing.T) {
	ctx := context.Background()
	db := newMemDB(product("A-1"), product("B-2"))
	cache := NewCacheService(&fakePredictionStore{}, zap.NewNop())
	res, err := inferencetest.Gateway(t).Predict(inferencetest.Record())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	for i := 0; i < 3; i++ {
		runID := uuid.New()
		tx, _ := db.Begin(ctx)
		if _, err := cache.Supersede(ctx, tx, 1, res, &runID); err != nil {
			t.Fatalf("supersede %d: %v", i, err)
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	latest := db.latest(1)
	if len(latest) != 1 {
		t.Fatalf("latest rows = %d, want 1", len(latest))
	}
	if latest[0].ID != 3 {
		t.Errorf("latest id = %d, want the newest (3)", latest[0].ID)
	}
	if got := len(db.committed.predictions); got != 3 {
		t.Errorf("history rows = %d, want 3", got)
	}
	if len(db.latest(2)) != 0 {
		t.Error("other product gained a prediction")
	}
}

func TestSupersedeRolledBackLeavesPreviousLatest(t *testing.T) {
	ctx := context.Background()
	db := newMemDB(product("A-1"))
	store := &fakePredictionStore{}
	cache := NewCacheService(store, zap.NewNop())
	res, _ := inferencetest.Gateway(t).Predict(inferencetest.Record())

	tx, _ := db.Begin(ctx)
	if _, err := cache.Supersede(ctx, tx, 1, res, nil); err != nil {
		t.Fatal(err)
	}
	_ = tx.Commit(ctx)

	store.failInsert = map[int64]bool{1: true}
	tx, _ = db.Begin(ctx)
	_, err := cache.Supersede(ctx, tx, 1, res, nil)
	if _, ok := err.(*StorageError); !ok {
		t.Fatalf("err = %T %v, want *StorageError", err, err)
	}
	_ = tx.Rollback(ctx)

	latest := db.latest(1)
	if len(latest) != 1 || latest[0].ID != 1 {
		t.Fatalf("latest = %+v, want the first prediction", latest)
	}
}
