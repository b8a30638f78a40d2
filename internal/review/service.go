// Package review implements the staging/approval lifecycle for proposed
// matches: staged candidates are created idempotently and consumed by
// exactly one approve or reject decision.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mintvault/catalog-cli/internal/model"
	"github.com/mintvault/catalog-cli/internal/store"
)

// Decision is the structured outcome of an approve or reject call.
type Decision struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service governs staged candidates. Approval writes the proposed code
// and verification flag onto the catalog entry and then removes the
// staged row; rejection removes the row without touching the catalog.
type Service struct {
	store store.Store
	log   *zap.Logger
}

// New creates a review service backed by the given store.
func New(st store.Store) *Service {
	return &Service{
		store: st,
		log:   zap.L().With(zap.String("component", "review")),
	}
}

// Create stages a proposed match. It is idempotent on the
// (catalog entry, code) pair: re-encountering an already-staged pair is
// a no-op, reported via created=false.
func (s *Service) Create(ctx context.Context, sc model.StagedCandidate) (created bool, err error) {
	if sc.EntryID == "" || sc.Code == "" || sc.ScrapedName == "" {
		return false, eris.New("review: create requires catalog entry id, code and scraped name")
	}
	if !sc.Marketplace.Valid() {
		return false, eris.Errorf("review: unknown marketplace %q", sc.Marketplace)
	}

	exists, err := s.store.StagedExists(ctx, sc.EntryID, sc.Code)
	if err != nil {
		return false, eris.Wrap(err, "review: check existing staged candidate")
	}
	if exists {
		s.log.Debug("staged candidate already exists",
			zap.String("entry_id", sc.EntryID),
			zap.String("code", sc.Code),
		)
		return false, nil
	}

	if _, err := s.store.CreateStaged(ctx, sc); err != nil {
		return false, eris.Wrap(err, "review: create staged candidate")
	}
	return true, nil
}

// Approve consumes a staged candidate: it writes the staged code and
// sets the verification flag on the referenced catalog entry, then
// deletes the staged row. The catalog write and the delete form one
// logical unit — if the catalog update fails the staged row is kept so
// the approval can be retried.
func (s *Service) Approve(ctx context.Context, stagingID string) (Decision, error) {
	if stagingID == "" {
		return Decision{Success: false, Message: "staging id is required"}, nil
	}

	sc, err := s.store.GetStaged(ctx, stagingID)
	if errors.Is(err, store.ErrNotFound) {
		return Decision{Success: false, Message: fmt.Sprintf("staged candidate %s not found", stagingID)}, nil
	}
	if err != nil {
		return Decision{}, eris.Wrap(err, "review: load staged candidate")
	}

	if err := s.store.SetExternalID(ctx, sc.EntryID, sc.Marketplace, sc.Code, true); err != nil {
		// Staged row deliberately left in place for retry.
		return Decision{}, eris.Wrapf(err, "review: apply %s match to entry %s", sc.Marketplace, sc.EntryID)
	}

	if err := s.store.DeleteStaged(ctx, stagingID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return Decision{}, eris.Wrap(err, "review: delete approved staged candidate")
	}

	s.log.Info("staged candidate approved",
		zap.String("staging_id", stagingID),
		zap.String("entry_id", sc.EntryID),
		zap.String("marketplace", string(sc.Marketplace)),
		zap.String("code", sc.Code),
	)
	return Decision{Success: true, Message: fmt.Sprintf("approved: entry %s verified for %s", sc.EntryID, sc.Marketplace)}, nil
}

// Reject consumes a staged candidate without mutating the catalog.
func (s *Service) Reject(ctx context.Context, stagingID string) (Decision, error) {
	if stagingID == "" {
		return Decision{Success: false, Message: "staging id is required"}, nil
	}

	err := s.store.DeleteStaged(ctx, stagingID)
	if errors.Is(err, store.ErrNotFound) {
		return Decision{Success: false, Message: fmt.Sprintf("staged candidate %s not found", stagingID)}, nil
	}
	if err != nil {
		return Decision{}, eris.Wrap(err, "review: delete rejected staged candidate")
	}

	s.log.Info("staged candidate rejected", zap.String("staging_id", stagingID))
	return Decision{Success: true, Message: fmt.Sprintf("rejected: staged candidate %s removed", stagingID)}, nil
}
