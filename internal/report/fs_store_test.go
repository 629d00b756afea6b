package report

import (
	"errors"
	"testing"
	"time"
)

func sampleReport(jobID string) *Report {
	return &Report{
		JobID:     jobID,
		Reference: "ref.png",
		Created:   time.Now().UTC().Truncate(time.Second),
		Records: []Record{
			{Reference: "ref.png", Candidate: "a.png", Distance: 1.25, Norm3: 1.25, PSNR: 38.2},
			{Reference: "ref.png", Candidate: "b.png", Distance: 2.5, Norm3: 2.5, PSNR: 31.7, Error: "decode failed"},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	want := sampleReport("job-1")
	if err := store.Save("job-1", want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load("job-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.JobID != want.JobID || got.Reference != want.Reference {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
	if len(got.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(got.Records))
	}
	if got.Records[0].Distance != 1.25 || got.Records[1].Error != "decode failed" {
		t.Errorf("records did not round trip: %+v", got.Records)
	}
}

func TestLoad_NotFound(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	if _, err := store.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	infos, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("empty store listed %d reports", len(infos))
	}

	store.Save("job-1", sampleReport("job-1"))
	store.Save("job-2", sampleReport("job-2"))

	infos, err = store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("listed %d reports, want 2", len(infos))
	}
	for _, info := range infos {
		if info.Count != 2 {
			t.Errorf("info %s count = %d, want 2", info.JobID, info.Count)
		}
	}
}

func TestDelete(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	store.Save("job-1", sampleReport("job-1"))
	if err := store.Delete("job-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load("job-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted report still loads: %v", err)
	}
	if err := store.Delete("job-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestSave_Validation(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	if err := store.Save("", sampleReport("x")); err == nil {
		t.Error("expected error for empty jobID")
	}
	if err := store.Save("job-1", nil); err == nil {
		t.Error("expected error for nil report")
	}
}
