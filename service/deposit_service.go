package service

import (
	"context"
	"fmt"
	"strings"

	"layledger/events"
	"layledger/models"
)

type depositService struct {
	uowFactory UnitOfWorkFactory
}

// NewDepositService creates a new deposit rotation service
func NewDepositService(uowFactory UnitOfWorkFactory) DepositService {
	return &depositService{
		uowFactory: uowFactory,
	}
}

// NextAddress hands out the address under the cursor and advances it, wrapping to the
// first address after the last. The rotation row lock serializes concurrent callers.
func (s *depositService) NextAddress(ctx context.Context) (*models.DepositAddress, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.DepositRepository()

	rotation, err := repo.GetRotationForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock deposit rotation: %w", err)
	}
	if rotation == nil {
		return nil, NewNotFoundError(ReasonPoolExhausted, "deposit rotation is not initialized")
	}

	maxIndex, err := repo.MaxIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read deposit pool size: %w", err)
	}
	if maxIndex == 0 {
		return nil, NewNotFoundError(ReasonPoolExhausted, "no deposit addresses seeded")
	}

	address, err := repo.GetAddressByIndex(ctx, rotation.CurrentIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit address: %w", err)
	}
	if address == nil {
		return nil, NewNotFoundError(ReasonPoolExhausted, "no deposit address at index %d", rotation.CurrentIndex)
	}

	if err := repo.UpdateRotation(ctx, rotation.Advance(maxIndex)); err != nil {
		return nil, fmt.Errorf("failed to advance deposit rotation: %w", err)
	}
	if err := repo.RecordIssue(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to record deposit issue: %w", err)
	}

	uow.EventBus().Publish(events.DepositAddressIssuedEvent{
		Address: address.Address,
		Index:   address.Index,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return address, nil
}

// SeedAddresses replaces the pool with addresses indexed from 1 and resets the cursor
func (s *depositService) SeedAddresses(ctx context.Context, addresses []string) error {
	if len(addresses) == 0 {
		return NewValidationError(ReasonInvalidInput, "at least one deposit address is required")
	}
	seen := make(map[string]bool, len(addresses))
	for i, address := range addresses {
		if strings.TrimSpace(address) == "" {
			return NewValidationError(ReasonInvalidInput, "deposit address %d is empty", i+1)
		}
		if seen[address] {
			return NewValidationError(ReasonInvalidInput, "deposit address %q is duplicated", address)
		}
		seen[address] = true
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.DepositRepository().ReplacePool(ctx, addresses); err != nil {
		return fmt.Errorf("failed to replace deposit pool: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DefaultDepositAddresses returns count placeholder addresses named Deposit_Address_{i}
func DefaultDepositAddresses(count int) []string {
	addresses := make([]string, count)
	for i := range addresses {
		addresses[i] = fmt.Sprintf("Deposit_Address_%d", i+1)
	}
	return addresses
}
