// Package gateway summarises the gateway's logs and sessions for the
// dashboard.
package gateway

import (
	"fmt"
	"strconv"
	"time"

	"github.com/openclaw/admin-ui/pkg/logtail"
	"github.com/openclaw/admin-ui/pkg/session"
)

// Stats is the gateway overview.
type Stats struct {
	TotalSessions   int    `json:"totalSessions"`
	TotalTokens     int64  `json:"totalTokens"`
	FormattedTokens string `json:"formattedTokens"`
	DeliveriesToday int    `json:"deliveriesToday"`
	ErrorsToday     int    `json:"errorsToday"`
	Model           string `json:"model"`
}

// Service reads gateway.log, gateway.err.log and the session indexes.
type Service struct {
	LogFile    string
	ErrLogFile string
	Sessions   *session.Manager
}

// New returns a Service.
func New(logFile, errLogFile string, sessions *session.Manager) *Service {
	return &Service{LogFile: logFile, ErrLogFile: errLogFile, Sessions: sessions}
}

// Stats counts sessions and tokens, and today's deliveries and errors by
// UTC date prefix.
func (s *Service) Stats(now time.Time) Stats {
	count, tokens, model := s.Sessions.TotalTokens()
	today := now.UTC().Format("2006-01-02")

	return Stats{
		TotalSessions:   count,
		TotalTokens:     tokens,
		FormattedTokens: FormatTokens(tokens),
		DeliveriesToday: logtail.CountToday(logtail.ReadTail(s.LogFile, logtail.GatewayTailBytes), today, "delivered"),
		ErrorsToday:     logtail.CountToday(logtail.ReadTail(s.ErrLogFile, logtail.ErrorTailBytes), today, ""),
		Model:           model,
	}
}

// Activity returns recent structured events, newest first.
func (s *Service) Activity(limit int) []logtail.LogEvent {
	return logtail.Activity(logtail.ReadTail(s.LogFile, logtail.GatewayTailBytes), limit)
}

// Errors returns recent deduplicated errors, newest first.
func (s *Service) Errors(limit int) []logtail.ErrorEntry {
	return logtail.ParseErrors(logtail.ReadTail(s.ErrLogFile, logtail.ErrorTailBytes), limit)
}

// FormatTokens renders a token count as 1.2M, 3.4K or the plain number.
func FormatTokens(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return strconv.FormatInt(n, 10)
}
