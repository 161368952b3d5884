package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"office-stats/internal/table"
)

// === Job System ===

type JobStatus string

const (
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusError   JobStatus = "error"
)

type JobResult struct {
	Offices     int    `json:"offices"`
	Skipped     []int  `json:"skipped_rows,omitempty"`
	MethodLabel string `json:"method_label"`
	Sheet       string `json:"sheet"`
	Workbook    string `json:"workbook"` // Just filename for download
	CSV         string `json:"csv"`

	Table *table.Table `json:"-"`
}

type Job struct {
	ID        string
	Status    JobStatus
	Logs      []string
	Progress  int // 0-100
	Result    *JobResult
	Error     string
	Mutex     sync.RWMutex
	CreatedAt time.Time
}

func NewJob() *Job {
	return &Job{
		ID:        uuid.New().String(),
		Status:    StatusRunning,
		Logs:      []string{},
		CreatedAt: time.Now(),
	}
}

func (j *Job) Log(msg string) {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	j.appendLog(msg)
}

func (j *Job) appendLog(msg string) {
	ts := time.Now().Format("15:04:05")
	j.Logs = append(j.Logs, fmt.Sprintf("[%s] %s", ts, msg))
}

func (j *Job) SetProgress(current, total int, msg string) {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	if total > 0 {
		j.Progress = int(float64(current) / float64(total) * 100)
	}
	if msg != "" {
		j.appendLog(msg)
	}
}

func (j *Job) Fail(msg string) {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	j.Status = StatusError
	j.Error = msg
	j.Logs = append(j.Logs, "[ERROR] "+msg)
}

func (j *Job) Finish(res *JobResult) {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	j.Status = StatusDone
	j.Result = res
	j.Progress = 100
	j.appendLog("Import completed.")
}

// Snapshot is a copy of the job state that is safe to hand to templates and
// JSON encoders.
type Snapshot struct {
	ID       string     `json:"id"`
	Status   JobStatus  `json:"status"`
	Logs     []string   `json:"logs"`
	Progress int        `json:"progress"`
	Error    string     `json:"error,omitempty"`
	Result   *JobResult `json:"result,omitempty"`
}

func (j *Job) Snapshot() Snapshot {
	j.Mutex.RLock()
	defer j.Mutex.RUnlock()
	logs := make([]string, len(j.Logs))
	copy(logs, j.Logs)
	return Snapshot{
		ID:       j.ID,
		Status:   j.Status,
		Logs:     logs,
		Progress: j.Progress,
		Error:    j.Error,
		Result:   j.Result,
	}
}

// JobStore keeps every job of the running process and remembers the most
// recent successful import for the dashboard.
type JobStore struct {
	mu     sync.RWMutex
	jobs   map[string]*Job
	latest string
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

func (s *JobStore) Add(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j
}

func (s *JobStore) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

func (s *JobStore) MarkLatest(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = id
}

// Latest returns the last job that finished successfully, or nil.
func (s *JobStore) Latest() *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == "" {
		return nil
	}
	return s.jobs[s.latest]
}
