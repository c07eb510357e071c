// Package state persists the bridge's single forwarding binding: the LINE
// conversation that receives messages relayed from Telegram.
//
// Exactly one Binding exists at a time. Save overwrites it atomically and
// Load never observes a partially written record. A record that cannot be
// decoded is reported as absent together with ErrCorruptBinding so callers
// fail closed to "no destination" rather than to a stale one.
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tinyland-inc/picobridge/pkg/config"
	"github.com/tinyland-inc/picobridge/pkg/utils"
)

var (
	// ErrInvalidBinding is returned by Save for a binding without a usable destination.
	ErrInvalidBinding = errors.New("invalid binding")
	// ErrCorruptBinding is returned by Load when the stored record cannot be decoded.
	ErrCorruptBinding = errors.New("corrupt binding record")
)

// Origin records how a binding was established.
type Origin string

const (
	OriginJoin Origin = "join"
	OriginSeed Origin = "seed"
	OriginCLI  Origin = "cli"
)

// Binding is the LINE destination (group, room or user id) for messages
// forwarded from Telegram.
type Binding struct {
	DestinationID string    `json:"destination_id"`
	Origin        Origin    `json:"origin,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks that the binding names a usable destination.
func (b Binding) Validate() error {
	if err := utils.ValidateIdentifier(b.DestinationID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBinding, err)
	}
	return nil
}

// Store is a durable single-slot holder for the current Binding.
type Store interface {
	// Load returns the current binding. ok is false when none has been
	// saved, when the backing storage is missing, or when the record is
	// corrupt (err is then non-nil).
	Load(ctx context.Context) (b Binding, ok bool, err error)
	// Save atomically replaces the current binding. On failure the previous
	// binding remains in place.
	Save(ctx context.Context, b Binding) error
	Close() error
}

// Open builds the Store selected by cfg.Driver.
func Open(cfg config.StateConfig) (Store, error) {
	switch cfg.Driver {
	case "", config.StateDriverFile:
		return NewFileStore(cfg.BindingPath()), nil
	case config.StateDriverRedis:
		return NewRedisStore(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		})
	default:
		return nil, fmt.Errorf("unknown state driver %q", cfg.Driver)
	}
}
