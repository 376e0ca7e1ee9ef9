package cron

import (
	"encoding/json"

	"github.com/openclaw/admin-ui/pkg/logtail"
	"github.com/openclaw/admin-ui/pkg/utils"
)

// RunHistory returns up to limit entries of <runsDir>/<jobID>.jsonl,
// newest first. Entries are passed through as raw JSON; malformed lines and
// a missing file are skipped.
func RunHistory(runsDir, jobID string, limit int) ([]json.RawMessage, error) {
	runs := make([]json.RawMessage, 0)
	if err := utils.PlainName(jobID); err != nil {
		return runs, err
	}
	path, err := utils.SafeJoin(runsDir, jobID+".jsonl")
	if err != nil {
		return runs, err
	}

	lines := logtail.Lines(logtail.ReadTail(path, logtail.RunsTailBytes))
	for i := len(lines) - 1; i >= 0 && len(runs) < limit; i-- {
		if json.Valid([]byte(lines[i])) {
			runs = append(runs, json.RawMessage(lines[i]))
		}
	}
	return runs, nil
}
