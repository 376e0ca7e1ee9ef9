package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/openclaw/admin-ui/pkg/cron"
)

var nextUpLimit int

var nextUpCmd = &cobra.Command{
	Use:   "next-up",
	Short: "List the next scheduled cron runs",
	RunE:  runNextUp,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print today's hourly grid of cron fires",
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(nextUpCmd, scheduleCmd)
	nextUpCmd.Flags().IntVarP(&nextUpLimit, "limit", "n", 10, "Number of runs to show (max 50)")
}

func loadJobs() ([]cron.CronJob, error) {
	cfg, _, closer, err := loadConfig()
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return cron.NewStore(cfg.Paths().JobsFile).Jobs()
}

func runNextUp(cmd *cobra.Command, args []string) error {
	jobs, err := loadJobs()
	if err != nil {
		return err
	}
	limit := min(max(nextUpLimit, 1), 50)

	now := time.Now()
	entries := cron.NextUp(jobs, now, limit)
	if len(entries) == 0 {
		fmt.Println("No upcoming runs.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tAT\tJOB\tAGENT\tLAST")
	for _, e := range entries {
		at := time.UnixMilli(e.NextRunAtMs)
		last := e.LastStatus
		if e.LastDurationMs > 0 {
			last += " (" + cron.FormatDuration(e.LastDurationMs) + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			cron.FormatCountdown(e.NextRunAtMs, now),
			humanize.Time(at),
			e.Name,
			e.AgentID,
			last,
		)
	}
	return tw.Flush()
}

func runSchedule(cmd *cobra.Command, args []string) error {
	jobs, err := loadJobs()
	if err != nil {
		return err
	}
	entries := cron.ScheduleMap(jobs, time.Now())
	if len(entries) == 0 {
		fmt.Println("No enabled cron jobs.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	var header strings.Builder
	for h := 0; h < 24; h++ {
		header.WriteByte("0123456789"[h%10])
	}
	fmt.Fprintf(tw, "JOB\tTZ\t%s\n", header.String())
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Tz, hourRow(e.Hours))
	}
	return tw.Flush()
}

// hourRow marks the firing hours of a day: '#' fires, '.' idle.
func hourRow(hours []int) string {
	row := []byte(strings.Repeat(".", 24))
	for _, h := range hours {
		if h >= 0 && h < 24 {
			row[h] = '#'
		}
	}
	return string(row)
}
