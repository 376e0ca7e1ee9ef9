package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openclaw/admin-ui/pkg/cron"
	"github.com/openclaw/admin-ui/pkg/logtail"
)

var timezones = cron.NewEvaluator()

// withScheduleText copies a raw job and adds its human-readable schedule.
func withScheduleText(job cron.Job) cron.Job {
	typed, err := job.Typed()
	if err != nil {
		return job
	}
	out := make(cron.Job, len(job)+1)
	for k, v := range job {
		out[k] = v
	}
	loc, _ := timezones.Location(typed.Schedule.Timezone())
	out["scheduleText"] = cron.ScheduleToHuman(typed.Schedule, loc)
	return out
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.List()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	out := make([]cron.Job, 0, len(jobs))
	typed := make([]cron.CronJob, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, withScheduleText(j))
		if t, err := j.Typed(); err == nil {
			typed = append(typed, t)
		}
	}
	recordJobs(typed)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var job cron.Job
	if err := decodeJSON(r, &job); err != nil {
		writeErr(w, r, err, "")
		return
	}
	created, err := s.jobs.Create(job)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	s.logger.Info("cron job created", "job", created.ID())
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateJob(w http.ResponseWriter, r *http.Request) {
	var patch cron.Job
	if err := decodeJSON(r, &patch); err != nil {
		writeErr(w, r, err, "")
		return
	}
	id := chi.URLParam(r, "id")
	job, err := s.jobs.Update(id, patch)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	s.logger.Info("cron job updated", "job", id)
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := s.jobs.Delete(id)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	s.logger.Info("cron job deleted", "job", id)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "removed": removed})
}

func (s *Server) runJob(w http.ResponseWriter, r *http.Request) {
	raw, err := s.jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	job, err := raw.Typed()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	res, err := s.trigger.Run(r.Context(), job)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) jobRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20, 100)
	runs, err := cron.RunHistory(s.paths.CronRunsDir, chi.URLParam(r, "id"), limit)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) typedJobs(w http.ResponseWriter, r *http.Request) ([]cron.CronJob, bool) {
	jobs, err := s.jobs.Jobs()
	if err != nil {
		writeErr(w, r, err, "")
		return nil, false
	}
	return jobs, true
}

func (s *Server) scheduleMap(w http.ResponseWriter, r *http.Request) {
	jobs, ok := s.typedJobs(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": cron.ScheduleMap(jobs, s.now())})
}

func (s *Server) nextUp(w http.ResponseWriter, r *http.Request) {
	jobs, ok := s.typedJobs(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cron.NextUp(jobs, s.now(), parseLimit(r, 10, 50)))
}

func (s *Server) gatewayStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gateway.Stats(s.now()))
}

func (s *Server) gatewaySessions(w http.ResponseWriter, r *http.Request) {
	names := map[string]string{}
	if jobs, err := s.jobs.Jobs(); err == nil {
		for _, j := range jobs {
			names[j.ID] = j.Name
		}
	}
	writeJSON(w, http.StatusOK, s.sessions.List(names))
}

func (s *Server) gatewayActivity(w http.ResponseWriter, r *http.Request) {
	events := s.gateway.Activity(parseLimit(r, 100, 500))
	if events == nil {
		events = []logtail.LogEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) gatewayErrors(w http.ResponseWriter, r *http.Request) {
	errs := s.gateway.Errors(parseLimit(r, 50, 200))
	if errs == nil {
		errs = []logtail.ErrorEntry{}
	}
	writeJSON(w, http.StatusOK, errs)
}
