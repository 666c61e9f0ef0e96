package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/models"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Device Status ===")
	c.io.Println()

	cfg, err := c.config.GetConfig(ctx)
	if err != nil {
		if err == storage.ErrConfigNotFound {
			c.io.Println("Status: Not paired")
			c.io.Println()
			c.io.Println("Run 'finkeeper pair master' or 'finkeeper pair slave' first.")
			return nil
		}
		return fmt.Errorf("failed to load device config: %w", err)
	}

	c.io.Println("Status: Paired")
	c.io.Printf("Device ID: %s\n", cfg.DeviceID)
	c.io.Printf("Role:      %s\n", cfg.Role)
	if cfg.Role == models.RoleSlave {
		c.io.Printf("Master:    %s\n", cfg.MasterID)
	}
	c.io.Printf("Relay:     %s\n", cfg.APIURL)

	pending, err := c.queue.QueueSize(ctx)
	if err != nil {
		c.io.Printf("\nWarning: failed to get pending sync count: %v\n", err)
	} else {
		c.io.Println()
		if pending > 0 {
			c.io.Printf("⚠️  Pending sync: %d change(s) waiting for confirmation\n", pending)
			c.io.Println("Run 'finkeeper sync' to synchronize.")
		} else {
			c.io.Println("✓ All local changes confirmed")
		}
	}

	logs, err := c.syncLog.GetRecentLogs(ctx, 1)
	if err == nil && len(logs) > 0 {
		last := logs[0]
		c.io.Println()
		c.io.Printf("Last sync: %s (%s)\n", last.Timestamp.Format(time.RFC3339), last.Type)
		if last.Type == models.SyncLogError && last.Error != "" {
			c.io.Printf("Last error: %s\n", last.Error)
		}
	}

	return nil
}

func (c *Cli) runLog(ctx context.Context, args []string) error {
	limit := 20
	if len(args) >= 2 && args[0] == "-n" {
		if _, err := fmt.Sscanf(args[1], "%d", &limit); err != nil {
			return fmt.Errorf("invalid log count %q", args[1])
		}
	}

	logs, err := c.syncLog.GetRecentLogs(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read sync log: %w", err)
	}

	if len(logs) == 0 {
		c.io.Println("Sync log is empty.")
		return nil
	}

	for _, entry := range logs {
		if entry.Type == models.SyncLogSuccess {
			c.io.Printf("%s  %s  pushed=%d pulled=%d conflicts=%d (%s)\n",
				entry.Timestamp.Format(time.RFC3339),
				entry.Type,
				entry.ItemsPushed,
				entry.ItemsPulled,
				entry.Conflicts,
				entry.Duration.Round(time.Millisecond))
		} else {
			c.io.Printf("%s  %s  %s\n",
				entry.Timestamp.Format(time.RFC3339),
				entry.Type,
				entry.Error)
		}
	}

	return nil
}
