package server

import (
	"sync"
	"testing"
)

func TestJobManager_CreateAndGet(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(JobConfig{RefPath: "ref.png", Candidates: []string{"a.png"}})
	if job.ID == "" {
		t.Fatal("created job has no ID")
	}
	if job.State != StatePending {
		t.Errorf("state = %v, want %v", job.State, StatePending)
	}

	got, exists := jm.GetJob(job.ID)
	if !exists {
		t.Fatal("job not retrievable by ID")
	}
	if got.Config.RefPath != "ref.png" {
		t.Errorf("config = %+v", got.Config)
	}

	if _, exists := jm.GetJob("nope"); exists {
		t.Error("unknown ID must not resolve")
	}
}

func TestJobManager_List(t *testing.T) {
	jm := NewJobManager()
	if got := jm.ListJobs(); len(got) != 0 {
		t.Fatalf("fresh manager lists %d jobs", len(got))
	}

	jm.CreateJob(JobConfig{RefPath: "a"})
	jm.CreateJob(JobConfig{RefPath: "b"})
	if got := jm.ListJobs(); len(got) != 2 {
		t.Errorf("listed %d jobs, want 2", len(got))
	}
}

func TestJobManager_Update(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{RefPath: "ref.png"})

	if err := jm.UpdateJob(job.ID, func(j *Job) { j.State = StateRunning }); err != nil {
		t.Fatalf("UpdateJob failed: %v", err)
	}
	got, _ := jm.GetJob(job.ID)
	if got.State != StateRunning {
		t.Errorf("state = %v, want %v", got.State, StateRunning)
	}

	if err := jm.UpdateJob("missing", func(j *Job) {}); err == nil {
		t.Error("expected error for unknown job ID")
	}
}

func TestJobManager_ConcurrentAccess(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{RefPath: "ref.png"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			jm.UpdateJob(job.ID, func(j *Job) { j.State = StateRunning })
		}()
		go func() {
			defer wg.Done()
			jm.GetJob(job.ID)
			jm.ListJobs()
		}()
	}
	wg.Wait()
}
