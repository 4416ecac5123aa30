package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
	"github.com/boardflow/boardflow-api/internal/position"
	"github.com/boardflow/boardflow-api/internal/store"
)

// CreateCardParams are the inputs for creating a card.
type CreateCardParams struct {
	ColumnID uuid.UUID
	ActorID  uuid.UUID
	Title    string
	Content  json.RawMessage
	Deadline *time.Time
}

// MoveCardParams are the inputs for moving a card. BeforeID and AfterID
// identify the neighbors the card should land between in the target column;
// either or both may be nil. ExpectedVersion is the version the caller last
// read; a mismatch aborts the move with store.ErrVersionConflict.
type MoveCardParams struct {
	CardID          uuid.UUID
	ActorID         uuid.UUID
	ToColumnID      uuid.UUID
	BeforeID        *uuid.UUID
	AfterID         *uuid.UUID
	ExpectedVersion int64
}

// UpdateCardParams are the inputs for updating a card's content fields.
type UpdateCardParams struct {
	CardID          uuid.UUID
	ActorID         uuid.UUID
	Title           string
	Content         json.RawMessage
	Deadline        *time.Time
	ExpectedVersion int64
}

// CardService provides card operations, including the position-sensitive
// move and rebalance paths.
type CardService interface {
	// CreateCard appends a new card to the end of a column.
	CreateCard(ctx context.Context, params CreateCardParams) (*domain.Card, error)

	// GetCard retrieves a card the user may see.
	GetCard(ctx context.Context, cardID, userID uuid.UUID) (*domain.Card, error)

	// ListCards retrieves a column's cards in display order.
	ListCards(ctx context.Context, columnID, userID uuid.UUID) ([]*domain.Card, error)

	// MoveCard places a card between two neighbors in the target column.
	// The whole read-compute-write runs in one transaction holding row locks
	// on the target column, and the write is guarded by the optimistic
	// version check. Returns the card as it stands after the move.
	MoveCard(ctx context.Context, params MoveCardParams) (*domain.Card, error)

	// UpdateCard modifies a card's title, content and deadline under the
	// optimistic version check. A deadline change reschedules the card's
	// reminders.
	UpdateCard(ctx context.Context, params UpdateCardParams) (*domain.Card, error)

	// DeleteCard removes a card.
	DeleteCard(ctx context.Context, cardID, userID uuid.UUID) error

	// RebalanceColumn rewrites the column's positions to consecutive
	// integers, restoring midpoint headroom. Runs under the column lock.
	RebalanceColumn(ctx context.Context, columnID, userID uuid.UUID) error
}

// DeadlineObserver is notified when a card's deadline changes so dependent
// schedules can be recomputed.
type DeadlineObserver interface {
	OnDeadlineChanged(ctx context.Context, cardID uuid.UUID)
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	db          *sql.DB
	cardStore   store.CardStore
	columnStore store.ColumnStore
	boards      BoardService
	recorder    ActivityRecorder
	observer    DeadlineObserver
	logger      *slog.Logger
}

// NewCardService creates a new CardService.
// The observer may be nil when no reminder scheduling is wired.
func NewCardService(
	db *sql.DB,
	cardStore store.CardStore,
	columnStore store.ColumnStore,
	boards BoardService,
	recorder ActivityRecorder,
	observer DeadlineObserver,
	logger *slog.Logger,
) (CardService, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db cannot be nil", domain.ErrValidation)
	}
	if cardStore == nil {
		return nil, fmt.Errorf("%w: cardStore cannot be nil", domain.ErrValidation)
	}
	if columnStore == nil {
		return nil, fmt.Errorf("%w: columnStore cannot be nil", domain.ErrValidation)
	}
	if boards == nil {
		return nil, fmt.Errorf("%w: boards cannot be nil", domain.ErrValidation)
	}
	if recorder == nil {
		return nil, fmt.Errorf("%w: recorder cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		db:          db,
		cardStore:   cardStore,
		columnStore: columnStore,
		boards:      boards,
		recorder:    recorder,
		observer:    observer,
		logger:      logger.With(slog.String("component", "card_service")),
	}, nil
}

var _ CardService = (*cardServiceImpl)(nil)

// CreateCard implements CardService.CreateCard
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	params CreateCardParams,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	column, err := s.columnStore.GetByID(ctx, params.ColumnID)
	if err != nil {
		return nil, err
	}

	if err := s.boards.RequireMembership(ctx, column.BoardID, params.ActorID); err != nil {
		return nil, err
	}

	var card *domain.Card
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := s.cardStore.WithTx(tx)

		// The lock serializes appends against concurrent moves; the max is
		// read from the locked snapshot.
		locked, err := txCards.ListByColumnForUpdate(ctx, params.ColumnID)
		if err != nil {
			return err
		}

		var max *decimal.Decimal
		if len(locked) > 0 {
			max = maxPosition(locked)
		}

		card, err = domain.NewCard(
			column.BoardID,
			params.ColumnID,
			params.Title,
			params.Content,
			position.Next(max),
		)
		if err != nil {
			return err
		}
		card.Deadline = params.Deadline

		return txCards.Create(ctx, card)
	})
	if err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("column_id", params.ColumnID.String()))
		return nil, err
	}

	s.recorder.RecordActivity(ctx, ActivityParams{
		Type:     domain.EventTypeCardCreated,
		ActorID:  params.ActorID,
		BoardID:  column.BoardID,
		ColumnID: &params.ColumnID,
		CardID:   &card.ID,
		Subject:  card.Title,
	})

	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("column_id", params.ColumnID.String()))
	return card, nil
}

// GetCard implements CardService.GetCard
func (s *cardServiceImpl) GetCard(
	ctx context.Context,
	cardID, userID uuid.UUID,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if err := s.boards.RequireMembership(ctx, card.BoardID, userID); err != nil {
		return nil, err
	}

	return card, nil
}

// ListCards implements CardService.ListCards
func (s *cardServiceImpl) ListCards(
	ctx context.Context,
	columnID, userID uuid.UUID,
) ([]*domain.Card, error) {
	column, err := s.columnStore.GetByID(ctx, columnID)
	if err != nil {
		return nil, err
	}

	if err := s.boards.RequireMembership(ctx, column.BoardID, userID); err != nil {
		return nil, err
	}

	return s.cardStore.ListByColumn(ctx, columnID)
}

// MoveCard implements CardService.MoveCard
func (s *cardServiceImpl) MoveCard(
	ctx context.Context,
	params MoveCardParams,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cardStore.GetByID(ctx, params.CardID)
	if err != nil {
		return nil, err
	}

	if err := s.boards.RequireMembership(ctx, card.BoardID, params.ActorID); err != nil {
		return nil, err
	}

	targetColumn, err := s.columnStore.GetByID(ctx, params.ToColumnID)
	if err != nil {
		return nil, err
	}
	if targetColumn.BoardID != card.BoardID {
		return nil, ErrColumnMismatch
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := s.cardStore.WithTx(tx)

		// Lock the target column's rows for the read-compute-write span.
		// Concurrent moves into the same column queue up here.
		locked, err := txCards.ListByColumnForUpdate(ctx, params.ToColumnID)
		if err != nil {
			return err
		}

		before, err := anchorPosition(locked, params.BeforeID, params.CardID)
		if err != nil {
			return err
		}
		after, err := anchorPosition(locked, params.AfterID, params.CardID)
		if err != nil {
			return err
		}

		var max *decimal.Decimal
		if len(locked) > 0 {
			max = maxPosition(locked)
		}

		pos := position.Between(before, after, max)

		return txCards.Move(ctx, params.CardID, params.ToColumnID, pos, params.ExpectedVersion)
	})
	if err != nil {
		log.Warn("card move failed",
			slog.String("error", err.Error()),
			slog.String("card_id", params.CardID.String()),
			slog.Int64("expected_version", params.ExpectedVersion))
		return nil, err
	}

	s.recorder.RecordActivity(ctx, ActivityParams{
		Type:     domain.EventTypeCardMoved,
		ActorID:  params.ActorID,
		BoardID:  card.BoardID,
		ColumnID: &params.ToColumnID,
		CardID:   &params.CardID,
		Subject:  card.Title,
	})

	return s.cardStore.GetByID(ctx, params.CardID)
}

// UpdateCard implements CardService.UpdateCard
func (s *cardServiceImpl) UpdateCard(
	ctx context.Context,
	params UpdateCardParams,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, params.CardID)
	if err != nil {
		return nil, err
	}

	if err := s.boards.RequireMembership(ctx, card.BoardID, params.ActorID); err != nil {
		return nil, err
	}

	deadlineChanged := !equalDeadlines(card.Deadline, params.Deadline)

	err = s.cardStore.Update(
		ctx,
		params.CardID,
		params.Title,
		params.Content,
		params.Deadline,
		params.ExpectedVersion,
	)
	if err != nil {
		return nil, err
	}

	if deadlineChanged && s.observer != nil {
		s.observer.OnDeadlineChanged(ctx, params.CardID)
	}

	s.recorder.RecordActivity(ctx, ActivityParams{
		Type:     domain.EventTypeCardUpdated,
		ActorID:  params.ActorID,
		BoardID:  card.BoardID,
		ColumnID: &card.ColumnID,
		CardID:   &params.CardID,
		Subject:  params.Title,
	})

	return s.cardStore.GetByID(ctx, params.CardID)
}

// DeleteCard implements CardService.DeleteCard
func (s *cardServiceImpl) DeleteCard(ctx context.Context, cardID, userID uuid.UUID) error {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return err
	}

	if err := s.boards.RequireMembership(ctx, card.BoardID, userID); err != nil {
		return err
	}

	if err := s.cardStore.Delete(ctx, cardID); err != nil {
		return err
	}

	s.recorder.RecordActivity(ctx, ActivityParams{
		Type:     domain.EventTypeCardDeleted,
		ActorID:  userID,
		BoardID:  card.BoardID,
		ColumnID: &card.ColumnID,
		CardID:   &cardID,
		Subject:  card.Title,
	})

	return nil
}

// RebalanceColumn implements CardService.RebalanceColumn
func (s *cardServiceImpl) RebalanceColumn(
	ctx context.Context,
	columnID, userID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	column, err := s.columnStore.GetByID(ctx, columnID)
	if err != nil {
		return err
	}

	if err := s.boards.RequireMembership(ctx, column.BoardID, userID); err != nil {
		return err
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := s.cardStore.WithTx(tx)

		locked, err := txCards.ListByColumnForUpdate(ctx, columnID)
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return nil
		}

		entries := make([]position.Entry, len(locked))
		for i, card := range locked {
			entries[i] = position.Entry{
				ID:        card.ID,
				Position:  card.Position,
				CreatedAt: card.CreatedAt,
			}
		}

		log.Info("rebalancing column positions",
			slog.String("column_id", columnID.String()),
			slog.Int("card_count", len(entries)))

		return txCards.UpdatePositions(ctx, position.Rebalance(entries))
	})
}

// anchorPosition resolves an anchor card ID to its position within the
// locked column snapshot. The card being moved is not a valid anchor for
// itself. A nil anchor resolves to nil.
func anchorPosition(
	locked []*domain.Card,
	anchorID *uuid.UUID,
	movingID uuid.UUID,
) (*decimal.Decimal, error) {
	if anchorID == nil {
		return nil, nil
	}
	if *anchorID == movingID {
		return nil, ErrColumnMismatch
	}

	for _, card := range locked {
		if card.ID == *anchorID {
			pos := card.Position
			return &pos, nil
		}
	}

	return nil, ErrColumnMismatch
}

// maxPosition returns the highest position in the snapshot. The slice is
// ordered by position, so it is the last element's.
func maxPosition(cards []*domain.Card) *decimal.Decimal {
	pos := cards[len(cards)-1].Position
	return &pos
}

func equalDeadlines(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
