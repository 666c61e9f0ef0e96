package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/iudanet/finkeeper/internal/client/sync"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")

	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}

	svc, err := c.newSyncService(cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()

	result, err := svc.Tick(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	if !result.Success {
		switch result.Reason {
		case sync.ReasonRateLimited:
			return fmt.Errorf("relay rate limit is active, try again later")
		case sync.ReasonOffline:
			return fmt.Errorf("device is offline")
		default:
			return fmt.Errorf("synchronization skipped: %s", result.Reason)
		}
	}

	c.io.Println()
	c.io.Println("✓ Synchronization completed")
	c.io.Println()
	c.io.Printf("Pushed:    %d change(s)\n", result.RecordsPushed)
	c.io.Printf("Pulled:    %d message(s)\n", result.RecordsPulled)
	if result.Conflicts > 0 {
		c.io.Printf("Conflicts: %d resolved by master\n", result.Conflicts)
	}
	c.io.Printf("Duration:  %s\n", result.Duration.Round(time.Millisecond))

	return nil
}

// runPeriodic крутит цикл синхронизации до отмены контекста
func (c *Cli) runPeriodic(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	interval := flags.Duration("interval", 30*time.Second, "Interval between sync cycles")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}

	svc, err := c.newSyncService(cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()

	svc.OnRateLimited(func(e sync.RateLimitEvent) {
		c.io.Printf("Rate limited by relay until %s\n", e.Until.Format(time.RFC3339))
	})
	svc.OnDataChanged(func(e sync.DataChange) {
		c.io.Printf("Applied %s %s/%s\n", e.Status, e.Store, e.RecordID)
	})

	c.io.Printf("Syncing every %s, press Ctrl+C to stop\n", interval)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		if _, err := svc.Tick(ctx); err != nil {
			c.io.Printf("Sync failed: %v\n", err)
		}

		select {
		case <-ctx.Done():
			c.io.Println("Stopping...")
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Cli) runBootstrap(ctx context.Context) error {
	c.io.Println("=== Initial Replication ===")
	c.io.Println()
	c.io.Println("WARNING: local data will be replaced with the master's state.")

	confirm, err := c.io.ReadInput("Continue? [y/N]: ")
	if err != nil {
		return err
	}
	if confirm != "y" && confirm != "Y" {
		c.io.Println("Aborted.")
		return nil
	}

	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}

	svc, err := c.newSyncService(cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()

	svc.OnBootstrapProgress(func(e sync.BootstrapProgress) {
		switch e.Event {
		case sync.BootstrapStageStarted:
			c.io.Printf("Stage %s started\n", e.Stage)
		case sync.BootstrapBatchApplied:
			if e.TotalBatches > 0 {
				c.io.Printf("Stage %s: batch %d/%d applied (%d records)\n",
					e.Stage, e.BatchesApplied, e.TotalBatches, e.RecordsApplied)
			}
		case sync.BootstrapStageCompleted:
			c.io.Printf("Stage %s completed: %d records\n", e.Stage, e.RecordsApplied)
		}
	})

	if err := svc.RequestInitialSync(ctx); err != nil {
		return fmt.Errorf("initial replication failed: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Initial replication completed")

	return nil
}
