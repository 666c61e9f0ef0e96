package cli

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	httpClient "github.com/iudanet/finkeeper/internal/client/api"
	"github.com/iudanet/finkeeper/internal/crypto"
	"github.com/iudanet/finkeeper/internal/models"
	"github.com/iudanet/finkeeper/pkg/api"
)

// runPair регистрирует устройство в кластере.
// Мастер создает кластер и печатает pairing-код (соль деривации),
// slave вводит тот же код и ту же фразу и получает идентичный ключ -
// секреты через relay не передаются.
func (c *Cli) runPair(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: finkeeper pair master|slave")
	}

	if _, err := c.config.GetConfig(ctx); err == nil {
		return fmt.Errorf("device is already paired")
	}

	switch args[0] {
	case "master":
		return c.runPairMaster(ctx)
	case "slave":
		return c.runPairSlave(ctx)
	default:
		return fmt.Errorf("unknown pair role %q, want master or slave", args[0])
	}
}

func (c *Cli) runPairMaster(ctx context.Context) error {
	c.io.Println("=== Pair Master Device ===")
	c.io.Println()

	passphrase, err := c.readNewPassphrase()
	if err != nil {
		return err
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate pairing salt: %w", err)
	}

	key, err := crypto.DeriveClusterKey(passphrase, salt)
	if err != nil {
		return fmt.Errorf("failed to derive cluster key: %w", err)
	}

	deviceID := uuid.New().String()

	resp, err := httpClient.Register(ctx, c.apiURL, api.RegisterRequest{
		DeviceID: deviceID,
		Role:     string(models.RoleMaster),
	})
	if err != nil {
		return fmt.Errorf("failed to register master device: %w", err)
	}

	cfg := &models.SyncConfig{
		DeviceID:      resp.DeviceID,
		DeviceToken:   resp.DeviceToken,
		Role:          models.RoleMaster,
		EncryptionKey: crypto.ExportKey(key),
		APIURL:        c.apiURL,
		SchemaVersion: models.SchemaVersion,
	}
	if err := c.config.SaveConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save device config: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Master device registered")
	c.io.Println()
	c.io.Printf("Device ID:    %s\n", cfg.DeviceID)
	c.io.Printf("Pairing code: %s\n", base64.StdEncoding.EncodeToString(salt))
	c.io.Println()
	c.io.Println("To pair a slave device, run 'finkeeper pair slave' on it and")
	c.io.Println("enter the same passphrase together with this device ID and pairing code.")

	return nil
}

func (c *Cli) runPairSlave(ctx context.Context) error {
	c.io.Println("=== Pair Slave Device ===")
	c.io.Println()

	masterID, err := c.io.ReadInput("Master device ID: ")
	if err != nil {
		return fmt.Errorf("failed to read master device ID: %w", err)
	}
	if masterID == "" {
		return fmt.Errorf("master device ID cannot be empty")
	}

	pairingCode, err := c.io.ReadInput("Pairing code: ")
	if err != nil {
		return fmt.Errorf("failed to read pairing code: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(pairingCode)
	if err != nil {
		return fmt.Errorf("invalid pairing code: %w", err)
	}

	passphrase, err := c.io.ReadPassword("Cluster passphrase: ")
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}

	key, err := crypto.DeriveClusterKey(passphrase, salt)
	if err != nil {
		return fmt.Errorf("failed to derive cluster key: %w", err)
	}

	deviceID := uuid.New().String()

	resp, err := httpClient.Register(ctx, c.apiURL, api.RegisterRequest{
		DeviceID: deviceID,
		Role:     string(models.RoleSlave),
		MasterID: masterID,
	})
	if err != nil {
		return fmt.Errorf("failed to register slave device: %w", err)
	}

	cfg := &models.SyncConfig{
		DeviceID:      resp.DeviceID,
		DeviceToken:   resp.DeviceToken,
		Role:          models.RoleSlave,
		MasterID:      masterID,
		EncryptionKey: crypto.ExportKey(key),
		APIURL:        c.apiURL,
		SchemaVersion: models.SchemaVersion,
	}
	if err := c.config.SaveConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save device config: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Slave device registered")
	c.io.Printf("Device ID: %s\n", cfg.DeviceID)
	c.io.Println()
	c.io.Println("Run 'finkeeper bootstrap' to replicate data from the master.")

	return nil
}

// readNewPassphrase запрашивает фразу дважды
func (c *Cli) readNewPassphrase() (string, error) {
	passphrase, err := c.io.ReadPassword("Cluster passphrase: ")
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	if passphrase == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}

	confirm, err := c.io.ReadPassword("Confirm passphrase: ")
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase confirmation: %w", err)
	}
	if passphrase != confirm {
		return "", fmt.Errorf("passphrases do not match")
	}

	return passphrase, nil
}
