package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/NamanBalaji/mcfetch/internal/engine"
	"github.com/NamanBalaji/mcfetch/internal/logger"
	"github.com/NamanBalaji/mcfetch/internal/progress"
	"github.com/NamanBalaji/mcfetch/internal/repository"
)

// watch polls the task until it is terminal, logging progress on every tick.
func watch(m *engine.Manager, id string, interval time.Duration) engine.Snapshot {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last progress.Progress

	for range ticker.C {
		snap, ok := m.GetTaskInfo(id)
		if !ok {
			return engine.Snapshot{ID: id}
		}

		if snap.Status.IsTerminal() {
			return snap
		}

		p := snap.Progress
		if p != last {
			logger.Infof("%s %s %.1f%% (%d/%d bytes)", progressBar(p.Percentage(), 30), snap.Name, p.Percentage(), p.Completed, p.Total)
			last = p
		}
	}

	return engine.Snapshot{ID: id}
}

func progressBar(percentage float64, width int) string {
	completed := min(int(percentage*float64(width)/100), width)

	return "[" + strings.Repeat("=", completed) + strings.Repeat(" ", width-completed) + "]"
}

func printHistory(w io.Writer, repo repository.Repository) error {
	records, err := repo.FindAll()
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tBYTES\tFINISHED\tERROR")

	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			r.ID, r.Name, r.Status, r.Completed, r.Total, r.FinishedAt.Format(time.RFC3339), r.Error)
	}

	return tw.Flush()
}
