package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/imagefidelity/internal/report"
	"github.com/google/uuid"
)

// JobState represents the current state of a comparison job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// JobConfig describes one batch comparison: a reference image checked
// against one or more candidates.
type JobConfig struct {
	RefPath    string   `json:"refPath"`
	Candidates []string `json:"candidates"`

	// Norm is the pooling exponent for the perceptual distance (default 3).
	Norm float64 `json:"norm,omitempty"`
	// Colorspace overrides the assumed source encoding of all inputs, as a
	// compact description like "RGB_D65_SRG_Rel_SRG". Empty means sRGB.
	Colorspace string `json:"colorspace,omitempty"`
	// IntensityTarget overrides the assumed peak luminance in nits.
	IntensityTarget float64 `json:"intensityTarget,omitempty"`
	// Workers bounds row-parallel conversion/transform work (0 = all CPUs).
	Workers int `json:"workers,omitempty"`
}

// Job tracks a comparison run through its lifecycle.
type Job struct {
	ID        string          `json:"id"`
	State     JobState        `json:"state"`
	Config    JobConfig       `json:"config"`
	Records   []report.Record `json:"records,omitempty"`
	StartTime time.Time       `json:"startTime"`
	EndTime   *time.Time      `json:"endTime,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// JobManager manages the lifecycle of jobs.
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager creates an empty JobManager.
func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*Job)}
}

// CreateJob registers a new pending job with the given configuration.
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}
	jm.jobs[job.ID] = job

	snapshot := *job
	return &snapshot
}

// GetJob retrieves a snapshot of a job by ID. Mutations must go through
// UpdateJob so concurrent readers never observe partial updates.
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// ListJobs returns snapshots of all jobs.
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		snapshot := *job
		jobs = append(jobs, &snapshot)
	}
	return jobs
}

// UpdateJob atomically updates a job using the provided function.
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	updateFn(job)
	return nil
}
