package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/blogsync/internal/config"
	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Target string `short:"t" help:"Only show this target"`
	Limit  int    `short:"n" default:"10" help:"Number of runs to show"`
	JSON   bool   `name:"json" help:"Print JSON instead of a table"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return ferrors.ConfigError("deployment history is disabled").
			WithContext("hint", "set history.path").
			Build()
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(g.Ctx, h.Target, h.Limit)
	if err != nil {
		return err
	}
	if h.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []history.Record{}
		}
		return enc.Encode(records)
	}
	return printHistory(os.Stdout, records)
}

func printHistory(out io.Writer, records []history.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No deployments recorded")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tTARGET\tRESULT\tDURATION\tMESSAGE")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.Target,
			r.Kind,
			(time.Duration(r.DurationMS) * time.Millisecond).String(),
			r.Message)
	}
	return tw.Flush()
}
