package cron

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/openclaw/admin-ui/pkg/docstore"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrExists    = errors.New("job with this id already exists")
	ErrMissingID = errors.New("job must have an id")
)

// Job is one raw entry of the jobs document. Fields the dashboard does not
// model are carried through edits untouched.
type Job map[string]any

// ID returns the job's id, or "" when it is missing or not a string.
func (j Job) ID() string {
	id, _ := j["id"].(string)
	return id
}

// Typed decodes the raw job into a CronJob.
func (j Job) Typed() (CronJob, error) {
	var c CronJob
	data, err := json.Marshal(j)
	if err != nil {
		return c, err
	}
	err = json.Unmarshal(data, &c)
	return c, err
}

// Store reads and edits the gateway's jobs document ({version, jobs}).
type Store struct {
	Path string
}

// NewStore returns a store for the jobs document at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// document keeps unknown top-level keys next to the jobs list.
type document struct {
	rest map[string]json.RawMessage
	jobs []Job
}

func decodeDocument(data []byte) (*document, error) {
	doc := &document{rest: map[string]json.RawMessage{}, jobs: []Job{}}
	if data == nil {
		doc.rest["version"] = json.RawMessage("1")
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc.rest); err != nil {
		return nil, fmt.Errorf("parse jobs document: %w", err)
	}
	if raw, ok := doc.rest["jobs"]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&doc.jobs); err != nil {
			return nil, fmt.Errorf("parse jobs list: %w", err)
		}
	}
	delete(doc.rest, "jobs")
	return doc, nil
}

func (d *document) encode() ([]byte, error) {
	out := make(map[string]any, len(d.rest)+1)
	for k, v := range d.rest {
		out[k] = v
	}
	out["jobs"] = d.jobs
	return docstore.Marshal(out)
}

func (d *document) index(id string) int {
	for i, j := range d.jobs {
		if j.ID() == id {
			return i
		}
	}
	return -1
}

func (s *Store) read() (*document, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return decodeDocument(nil)
	}
	if err != nil {
		return nil, err
	}
	return decodeDocument(data)
}

func (s *Store) update(fn func(doc *document) error) error {
	return docstore.Update(s.Path, func(current []byte) ([]byte, error) {
		doc, err := decodeDocument(current)
		if err != nil {
			return nil, err
		}
		if err := fn(doc); err != nil {
			return nil, err
		}
		return doc.encode()
	})
}

// List returns the raw jobs. A missing document is an empty list.
func (s *Store) List() ([]Job, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.jobs, nil
}

// Jobs returns the typed view of every job. Entries that do not decode
// are skipped.
func (s *Store) Jobs() ([]CronJob, error) {
	raw, err := s.List()
	if err != nil {
		return nil, err
	}
	jobs := make([]CronJob, 0, len(raw))
	for _, r := range raw {
		if j, err := r.Typed(); err == nil {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

// Get returns the raw job with id.
func (s *Store) Get(id string) (Job, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if i := doc.index(id); i >= 0 {
		return doc.jobs[i], nil
	}
	return nil, ErrNotFound
}

// Create appends job. It must carry an id not already in use.
func (s *Store) Create(job Job) (Job, error) {
	if job.ID() == "" {
		return nil, ErrMissingID
	}
	err := s.update(func(doc *document) error {
		if doc.index(job.ID()) >= 0 {
			return ErrExists
		}
		doc.jobs = append(doc.jobs, job)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Update shallow-merges patch into the job with id. The id itself cannot be
// changed.
func (s *Store) Update(id string, patch Job) (Job, error) {
	var merged Job
	err := s.update(func(doc *document) error {
		i := doc.index(id)
		if i < 0 {
			return ErrNotFound
		}
		merged = make(Job, len(doc.jobs[i])+len(patch))
		for k, v := range doc.jobs[i] {
			merged[k] = v
		}
		for k, v := range patch {
			merged[k] = v
		}
		merged["id"] = id
		doc.jobs[i] = merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// Delete removes the job with id and returns it.
func (s *Store) Delete(id string) (Job, error) {
	var removed Job
	err := s.update(func(doc *document) error {
		i := doc.index(id)
		if i < 0 {
			return ErrNotFound
		}
		removed = doc.jobs[i]
		doc.jobs = append(doc.jobs[:i], doc.jobs[i+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
