package cron

// DefaultTimezone applies to cron schedules without a tz.
const DefaultTimezone = "America/Los_Angeles"

// DefaultAgent owns jobs without an agentId.
const DefaultAgent = "main"

// Schedule kinds.
const (
	KindCron  = "cron"
	KindAt    = "at"
	KindEvery = "every"
)

// Payload kinds.
const (
	PayloadAgentTurn   = "agentTurn"
	PayloadSystemEvent = "systemEvent"
)

// CronSchedule definition.
type CronSchedule struct {
	Kind    string `json:"kind"` // at, every, cron
	AtMs    int64  `json:"atMs,omitempty"`
	EveryMs int64  `json:"everyMs,omitempty"`
	Expr    string `json:"expr,omitempty"`
	Tz      string `json:"tz,omitempty"`
}

// Timezone returns the schedule's tz or the default.
func (s CronSchedule) Timezone() string {
	if s.Tz == "" {
		return DefaultTimezone
	}
	return s.Tz
}

// CronPayload is what the gateway does when the job fires.
type CronPayload struct {
	Kind    string `json:"kind"` // agentTurn, systemEvent
	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`
	Deliver bool   `json:"deliver,omitempty"`
	Channel string `json:"channel,omitempty"`
	To      string `json:"to,omitempty"`
}

// Delivers reports whether the payload names an explicit delivery target.
func (p CronPayload) Delivers() bool {
	return p.Deliver && p.Channel != "" && p.To != ""
}

// CronJobState is written by the gateway scheduler.
type CronJobState struct {
	NextRunAtMs    int64  `json:"nextRunAtMs,omitempty"`
	LastRunAtMs    int64  `json:"lastRunAtMs,omitempty"`
	LastStatus     string `json:"lastStatus,omitempty"` // ok, error, skipped
	LastError      string `json:"lastError,omitempty"`
	LastDurationMs int64  `json:"lastDurationMs,omitempty"`
}

// CronJob is the typed view of one entry in the jobs document.
type CronJob struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	AgentID        string       `json:"agentId,omitempty"`
	Enabled        bool         `json:"enabled"`
	Schedule       CronSchedule `json:"schedule"`
	Payload        CronPayload  `json:"payload"`
	State          CronJobState `json:"state"`
	CreatedAtMs    int64        `json:"createdAtMs,omitempty"`
	UpdatedAtMs    int64        `json:"updatedAtMs,omitempty"`
	DeleteAfterRun bool         `json:"deleteAfterRun,omitempty"`
}

// Agent returns the job's agent or the default.
func (j CronJob) Agent() string {
	if j.AgentID == "" {
		return DefaultAgent
	}
	return j.AgentID
}

// ScheduleEntry is one row of the 24-hour schedule grid.
type ScheduleEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	AgentID string `json:"agentId"`
	Expr    string `json:"expr"`
	Tz      string `json:"tz"`
	Hours   []int  `json:"hours"`
}

// NextUpEntry is one upcoming job fire.
type NextUpEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	AgentID        string `json:"agentId"`
	NextRunAtMs    int64  `json:"nextRunAtMs"`
	ScheduleKind   string `json:"scheduleKind"`
	Expr           string `json:"expr,omitempty"`
	LastStatus     string `json:"lastStatus,omitempty"`
	LastDurationMs int64  `json:"lastDurationMs,omitempty"`
}
