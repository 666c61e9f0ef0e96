package api

import (
	"context"

	"github.com/iudanet/finkeeper/pkg/api"
)

//go:generate go tool moq -out transport_mock.go . Transport

// Transport defines the authenticated relay operations the sync engine needs.
// The relay is an untrusted store-and-forward pipe: payloads are ciphertext.
type Transport interface {
	// Push delivers an encrypted payload to the recipient's mailbox
	Push(ctx context.Context, recipientID, payload string) error

	// Pull drains this device's mailbox
	Pull(ctx context.Context) ([]api.RelayMessage, error)

	// Heartbeat reports liveness and returns the cluster status
	Heartbeat(ctx context.Context) (*api.HeartbeatResponse, error)
}
