package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/arbiter"
	"github.com/viant/arbiter/internal/clock"
	"github.com/viant/arbiter/internal/logging"
	"github.com/viant/arbiter/policy"
	"github.com/viant/arbiter/progress"
	"github.com/viant/arbiter/runtime/diner"
)

// loadConfig merges the optional config document with command line flags
func loadConfig(c *cli.Context) (*arbiter.Config, error) {
	cfg := arbiter.DefaultConfig()
	if URL := c.String("config"); URL != "" {
		var err error
		if cfg, err = arbiter.LoadConfig(c.Context, URL); err != nil {
			return nil, err
		}
	}
	if c.IsSet("agents") {
		cfg.Agents = c.Int("agents")
	}
	if c.IsSet("threshold") || c.IsSet("max-wait-rounds") {
		p := cfg.Policy
		if p == nil {
			p = policy.ToConfig(policy.Default(cfg.Agents))
		}
		if c.IsSet("threshold") {
			p.Threshold = c.Int("threshold")
		}
		if c.IsSet("max-wait-rounds") {
			p.MaxWaitRounds = c.Int("max-wait-rounds")
		}
		cfg.Policy = p
	}
	if c.IsSet("rounds") {
		cfg.Driver.Rounds = c.Int("rounds")
	}
	if c.IsSet("think-time") {
		cfg.Driver.ThinkTime = c.Duration("think-time")
	}
	if c.IsSet("use-time") {
		cfg.Driver.UseTime = c.Duration("use-time")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.Bool("log-json") {
		cfg.Log.JSON = true
	}
	if c.Bool("trace") || c.IsSet("trace-output") {
		cfg.Tracing.Enabled = true
		cfg.Tracing.Output = c.String("trace-output")
	}
	return cfg, cfg.Validate()
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	srv, err := arbiter.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	log := logging.New("run").WithField("arbiter", srv.ID())
	table, err := diner.New(srv, cfg.Driver, diner.WithLogger(logging.New("diner").WithField("arbiter", srv.ID())))
	if err != nil {
		return err
	}
	srv.Progress().OnChange(roundLogger(log, cfg.Agents))
	log.WithField("agents", cfg.Agents).WithField("rounds", cfg.Driver.Rounds).Info("starting")
	if err = table.Run(progress.WithTracker(c.Context, srv.Progress())); err != nil {
		return err
	}

	summary := srv.Progress().Snapshot()
	log.WithFields(map[string]interface{}{
		"requests":  summary.Requests,
		"grants":    summary.Grants,
		"releases":  summary.Releases,
		"withdrawn": summary.Withdrawn,
		"maxHunger": summary.MaxHunger,
		"elapsed":   clock.Since(summary.StartedAt),
		"uses":      table.Uses(),
		"retries":   table.Retries(),
	}).Info("finished")

	if URL := c.String("report"); URL != "" {
		// the run context is already cancelled when the table was interrupted
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()
		if err = upload(ctx, URL, newReport(summary, table)); err != nil {
			return err
		}
		log.WithField("report", URL).Info("report uploaded")
	}
	return nil
}

// roundLogger returns a progress callback logging every time the grant count
// completes another multiple of the ring size
func roundLogger(log logging.Logger, agents int) func(progress.Progress) {
	var logged int64
	return func(p progress.Progress) {
		if p.Grants == 0 || p.Grants%agents != 0 {
			return
		}
		if atomic.SwapInt64(&logged, int64(p.Grants)) == int64(p.Grants) {
			return
		}
		log.WithField("grants", p.Grants).WithField("waiting", p.Waiting).Debug("round completed")
	}
}

const reportTimeout = 30 * time.Second

// Report is the final run summary
type Report struct {
	Progress progress.Progress `json:"progress"`
	Uses     []int             `json:"uses"`
	Retries  []int             `json:"retries"`
}

func newReport(summary progress.Progress, table *diner.Table) *Report {
	return &Report{Progress: summary, Uses: table.Uses(), Retries: table.Retries()}
}

func upload(ctx context.Context, URL string, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fs := afs.New()
	if err = fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to upload report %v: %w", URL, err)
	}
	return nil
}
