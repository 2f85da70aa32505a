package memory

import (
	"testing"
	"time"

	"github.com/omarshaarawi/courtside/internal/pipeline"
)

func TestRepository(t *testing.T) {
	repo := NewRepository()
	if res, updated := repo.GetResults(); res != nil || !updated.IsZero() {
		t.Fatalf("expected empty repository, got %v at %v", res, updated)
	}

	before := time.Now()
	want := &pipeline.Results{AsOf: before}
	repo.SaveResults(want)

	res, updated := repo.GetResults()
	if res != want {
		t.Errorf("results = %v, want %v", res, want)
	}
	if updated.Before(before) {
		t.Errorf("updated %v before save at %v", updated, before)
	}
}
