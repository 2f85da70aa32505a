package memory

import (
	"sync"
	"time"

	"github.com/omarshaarawi/courtside/internal/pipeline"
)

type Repository struct {
	results     *pipeline.Results
	lastUpdated time.Time
	mu          sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) SaveResults(results *pipeline.Results) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = results
	r.lastUpdated = time.Now()
}

// GetResults returns the latest results and when they were saved.
func (r *Repository) GetResults() (*pipeline.Results, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.results, r.lastUpdated
}
