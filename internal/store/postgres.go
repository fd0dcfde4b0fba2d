package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Placements ---

func (s *PostgresStore) CreatePlacement(ctx context.Context, p *models.Placement) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO placements (id, job_id, group_name, source_path, destination_path, description, copied, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.JobID, p.GroupName, p.SourcePath, p.DestinationPath, p.Description, p.Copied, p.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create placement: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPlacementsByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Placement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, group_name, source_path, destination_path, description, copied, created_at
		 FROM placements WHERE job_id = $1 ORDER BY group_name, destination_path`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()

	placements := []*models.Placement{}
	for rows.Next() {
		var p models.Placement
		if err := rows.Scan(&p.ID, &p.JobID, &p.GroupName, &p.SourcePath, &p.DestinationPath,
			&p.Description, &p.Copied, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		placements = append(placements, &p)
	}
	return placements, rows.Err()
}

func (s *PostgresStore) CountPlacementsByGroup(ctx context.Context, jobID uuid.UUID) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT group_name, COUNT(*) FROM placements WHERE job_id = $1 GROUP BY group_name`, jobID)
	if err != nil {
		return nil, fmt.Errorf("count placements: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan placement count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
