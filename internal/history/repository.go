package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daywook/stockpilot/internal/contracts"
)

// RunRecord is one persisted run summary.
// 분석 코어 자체는 아무것도 저장하지 않는다 - 호출 계층(API)의 이력 기능이다.
type RunRecord struct {
	ID             int64     `json:"id"`
	RunAt          time.Time `json:"run_at"`
	Style          string    `json:"style"`
	CandidateCount int       `json:"candidate_count"`
	PassedCount    int       `json:"passed_count"`
	TopPick        string    `json:"top_pick"`
	TopScore       int       `json:"top_score"`
	Summary        string    `json:"summary"`
}

// Repository persists run summaries to PostgreSQL
// ⭐ SSOT: run_history 테이블 접근은 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a run history repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the run_history table if missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS run_history (
			id              BIGSERIAL PRIMARY KEY,
			run_at          TIMESTAMPTZ NOT NULL,
			style           TEXT NOT NULL,
			candidate_count INT NOT NULL,
			passed_count    INT NOT NULL,
			top_pick        TEXT NOT NULL DEFAULT '',
			top_score       INT NOT NULL DEFAULT 0,
			summary         TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("create run_history table: %w", err)
	}
	return nil
}

// SaveRun stores one recommendation result summary
func (r *Repository) SaveRun(ctx context.Context, result *contracts.RecommendationResult) error {
	passed := 0
	for _, c := range result.Candidates {
		if c.PassedAllFilters {
			passed++
		}
	}

	topPick := ""
	topScore := 0
	if result.TopPick != nil {
		topPick = result.TopPick.Company.Name
		topScore = result.TopPick.Score
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO run_history (run_at, style, candidate_count, passed_count, top_pick, top_score, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		result.GeneratedAt,
		string(result.Style),
		len(result.Candidates),
		passed,
		topPick,
		topScore,
		result.Summary,
	)
	if err != nil {
		return fmt.Errorf("insert run history: %w", err)
	}
	return nil
}

// ListRecent returns the latest run summaries, newest first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, run_at, style, candidate_count, passed_count, top_pick, top_score, summary
		FROM run_history
		ORDER BY run_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.ID, &rec.RunAt, &rec.Style,
			&rec.CandidateCount, &rec.PassedCount,
			&rec.TopPick, &rec.TopScore, &rec.Summary,
		); err != nil {
			return nil, fmt.Errorf("scan run history row: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
