package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
)

// TaskError accumulates multiple errors produced during a bulk refresh.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BalanceProvider is the connector collaborator that knows a source's real
// balance. Production wires actual e-wallet and bank connectors here.
type BalanceProvider interface {
	CurrentBalance(ctx context.Context, src domain.FundingSource) (decimal.Decimal, error)
}

// BalanceRefresher re-syncs cached balances for a user's linked sources
// using a worker pool. The resolvers only ever see cached balances; this is
// the sync job that keeps the cache honest.
type BalanceRefresher struct {
	store    FundingStore
	provider BalanceProvider
	workers  int
}

// NewBalanceRefresher creates a refresher with the provided concurrency.
func NewBalanceRefresher(store FundingStore, provider BalanceProvider, workers int) *BalanceRefresher {
	if workers <= 0 {
		workers = 4
	}
	return &BalanceRefresher{
		store:    store,
		provider: provider,
		workers:  workers,
	}
}

// Refresh fetches current balances for every linked source of the user and
// writes them back to the store. Individual failures are collected; a
// context cancellation aborts the run and is returned as-is.
func (r *BalanceRefresher) Refresh(ctx context.Context, userID string) error {
	sources, err := r.store.SourcesByUser(ctx, userID)
	if err != nil {
		return err
	}

	var linked []domain.FundingSource
	for _, src := range sources {
		if src.IsLinked {
			linked = append(linked, src)
		}
	}
	if len(linked) == 0 {
		return nil
	}

	srcCh := make(chan domain.FundingSource)
	errCh := make(chan error, len(linked))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for src := range srcCh {
			balance, err := r.provider.CurrentBalance(ctx, src)
			if err == nil {
				err = r.store.UpdateBalance(ctx, src.ID, balance)
			}
			if err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for _, src := range linked {
		select {
		case srcCh <- src:
		case <-ctx.Done():
			break Loop
		}
	}
	close(srcCh)
	wg.Wait()
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
