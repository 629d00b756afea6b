package report

import "time"

// Record is the outcome of comparing one candidate against the reference.
// Failed comparisons keep their sentinel scores and carry the diagnostic in
// Error, so a batch run never loses a row.
type Record struct {
	Reference string  `json:"reference"`
	Candidate string  `json:"candidate"`
	Distance  float64 `json:"distance"`
	Norm3     float64 `json:"norm3"`
	PSNR      float64 `json:"psnr"`
	ElapsedMS float64 `json:"elapsedMs"`
	Error     string  `json:"error,omitempty"`
}

// Report bundles the records of one comparison run.
type Report struct {
	JobID     string    `json:"jobId"`
	Reference string    `json:"reference"`
	Created   time.Time `json:"created"`
	Records   []Record  `json:"records"`
}

// Info is the listing metadata of a stored report.
type Info struct {
	JobID     string    `json:"jobId"`
	Reference string    `json:"reference"`
	Created   time.Time `json:"created"`
	Count     int       `json:"count"`
}

// ToInfo extracts listing metadata from a report.
func (r *Report) ToInfo() Info {
	return Info{
		JobID:     r.JobID,
		Reference: r.Reference,
		Created:   r.Created,
		Count:     len(r.Records),
	}
}
