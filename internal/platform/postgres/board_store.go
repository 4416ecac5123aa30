package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
	"github.com/boardflow/boardflow-api/internal/store"
)

// PostgresBoardStore implements the store.BoardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBoardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBoardStore creates a new PostgreSQL implementation of the
// BoardStore interface.
func NewPostgresBoardStore(db store.DBTX, logger *slog.Logger) *PostgresBoardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBoardStore{
		db:     db,
		logger: logger.With(slog.String("component", "board_store")),
	}
}

// Ensure PostgresBoardStore implements store.BoardStore interface
var _ store.BoardStore = (*PostgresBoardStore)(nil)

// Create implements store.BoardStore.Create
// The owner's membership row is written alongside the board; run within a
// transaction when atomicity with other writes matters.
func (s *PostgresBoardStore) Create(ctx context.Context, board *domain.Board) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := board.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO boards (id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(
		ctx,
		query,
		board.ID,
		board.OwnerID,
		board.Name,
		board.CreatedAt,
		board.UpdatedAt,
	); err != nil {
		log.Error("failed to create board",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID.String()))
		return MapError(err)
	}

	memberQuery := `
		INSERT INTO board_members (board_id, user_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (board_id, user_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(
		ctx,
		memberQuery,
		board.ID,
		board.OwnerID,
		board.CreatedAt,
	); err != nil {
		log.Error("failed to create owner membership",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID.String()))
		return MapError(err)
	}

	log.Info("board created successfully",
		slog.String("board_id", board.ID.String()),
		slog.String("owner_id", board.OwnerID.String()))
	return nil
}

// GetByID implements store.BoardStore.GetByID
func (s *PostgresBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM boards
		WHERE id = $1
	`

	var board domain.Board
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&board.ID,
		&board.OwnerID,
		&board.Name,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBoardNotFound
		}
		return nil, MapError(err)
	}

	return &board, nil
}

// ListByMember implements store.BoardStore.ListByMember
func (s *PostgresBoardStore) ListByMember(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Board, error) {
	query := `
		SELECT b.id, b.owner_id, b.name, b.created_at, b.updated_at
		FROM boards b
		JOIN board_members m ON m.board_id = b.id
		WHERE m.user_id = $1
		ORDER BY b.created_at, b.id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var boards []*domain.Board
	for rows.Next() {
		var board domain.Board
		if err := rows.Scan(
			&board.ID,
			&board.OwnerID,
			&board.Name,
			&board.CreatedAt,
			&board.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		boards = append(boards, &board)
	}

	return boards, rows.Err()
}

// AddMember implements store.BoardStore.AddMember
func (s *PostgresBoardStore) AddMember(ctx context.Context, member *domain.BoardMember) error {
	query := `
		INSERT INTO board_members (board_id, user_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (board_id, user_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(
		ctx,
		query,
		member.BoardID,
		member.UserID,
		member.AddedAt,
	); err != nil {
		return MapError(err)
	}

	return nil
}

// ListMemberIDs implements store.BoardStore.ListMemberIDs
func (s *PostgresBoardStore) ListMemberIDs(
	ctx context.Context,
	boardID uuid.UUID,
) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM board_members
		WHERE board_id = $1
		ORDER BY added_at, user_id
	`

	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// IsMember implements store.BoardStore.IsMember
func (s *PostgresBoardStore) IsMember(
	ctx context.Context,
	boardID, userID uuid.UUID,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM board_members WHERE board_id = $1 AND user_id = $2
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, boardID, userID).Scan(&exists); err != nil {
		return false, MapError(err)
	}

	return exists, nil
}

// Delete implements store.BoardStore.Delete
// Columns, cards and memberships are removed via ON DELETE CASCADE
// constraints in the schema.
func (s *PostgresBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "board")
}

// WithTx implements store.BoardStore.WithTx
func (s *PostgresBoardStore) WithTx(tx *sql.Tx) store.BoardStore {
	return &PostgresBoardStore{
		db:     tx,
		logger: s.logger,
	}
}
