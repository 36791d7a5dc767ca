package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/go-shorty/shorty/internal/database"
	"github.com/go-shorty/shorty/internal/models"
)

type linkRecord struct {
	ID          int64     `db:"id"`
	ShortCode   string    `db:"short_code"`
	OriginalURL string    `db:"original_url"`
	Clicks      int64     `db:"clicks"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *linkRecord) ToLink() *models.Link {
	return &models.Link{
		ID:          r.ID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		Clicks:      r.Clicks,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type clickRecord struct {
	ID         int64     `db:"id"`
	LinkID     int64     `db:"link_id"`
	OccurredAt time.Time `db:"occurred_at"`
	UserAgent  string    `db:"user_agent"`
	IP         string    `db:"ip"`
	Referer    string    `db:"referer"`
}

func (r *clickRecord) ToClickEvent() models.ClickEvent {
	return models.ClickEvent{
		Timestamp: r.OccurredAt,
		UserAgent: r.UserAgent,
		IP:        r.IP,
		Referer:   r.Referer,
	}
}

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

// Create inserts a new link record. The unique index on short_code rejects
// concurrent inserts of the same code, which surfaces as ErrShortCodeExists.
func (r *LinkRepository) Create(ctx context.Context, shortCode, originalURL string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Create"

	rec := new(linkRecord)
	query := `INSERT INTO links(short_code, original_url)
		VALUES ($1, $2)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode, originalURL)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

// GetByShortCode retrieves a link together with its click history.
func (r *LinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.GetByShortCode"

	rec := new(linkRecord)
	query := `SELECT * FROM links WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	link := rec.ToLink()

	if err := r.attachClickHistory(ctx, []*models.Link{link}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return link, nil
}

// Update applies a partial change to a link. A nil patch field leaves the
// corresponding column untouched. Renaming to a taken code fails with
// ErrShortCodeExists and the record stays unchanged.
func (r *LinkRepository) Update(ctx context.Context, shortCode string, patch models.LinkPatch) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Update"

	rec := new(linkRecord)
	query := `UPDATE links
		SET original_url = COALESCE($1, original_url),
			short_code = COALESCE($2, short_code),
			updated_at = now()
		WHERE short_code = $3
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, patch.OriginalURL, patch.ShortCode, shortCode)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update link record: %w", op, err)
	}

	link := rec.ToLink()

	if err := r.attachClickHistory(ctx, []*models.Link{link}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return link, nil
}

// Delete removes a link. Its click history goes with it via ON DELETE CASCADE.
func (r *LinkRepository) Delete(ctx context.Context, shortCode string) error {
	const op = "database.postgres.LinkRepository.Delete"

	query := `DELETE FROM links WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to delete link record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get rows affected: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return nil
}

// List returns links ordered by the given sort key, newest or most clicked
// first. A non-positive limit returns all records.
func (r *LinkRepository) List(ctx context.Context, sortBy database.SortKey, limit int) ([]models.Link, error) {
	const op = "database.postgres.LinkRepository.List"

	var orderBy string
	switch sortBy {
	case database.SortByClicks:
		orderBy = "clicks DESC, created_at DESC"
	case database.SortByCreatedAt:
		orderBy = "created_at DESC"
	default:
		return nil, fmt.Errorf("%s: unsupported sort key: %q", op, sortBy)
	}

	query := fmt.Sprintf(`SELECT * FROM links ORDER BY %s`, orderBy)
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var recs []linkRecord
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to list link records: %w", op, err)
	}

	links := make([]models.Link, 0, len(recs))
	refs := make([]*models.Link, 0, len(recs))
	for i := range recs {
		links = append(links, *recs[i].ToLink())
		refs = append(refs, &links[len(links)-1])
	}

	if err := r.attachClickHistory(ctx, refs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return links, nil
}

// Count returns the total number of links.
func (r *LinkRepository) Count(ctx context.Context) (int64, error) {
	const op = "database.postgres.LinkRepository.Count"

	var count int64
	query := `SELECT COUNT(*) FROM links`

	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("%s: failed to count link records: %w", op, err)
	}

	return count, nil
}

// SumClicks returns the total number of recorded clicks across all links.
func (r *LinkRepository) SumClicks(ctx context.Context) (int64, error) {
	const op = "database.postgres.LinkRepository.SumClicks"

	var sum int64
	query := `SELECT COALESCE(SUM(clicks), 0) FROM links`

	if err := r.db.GetContext(ctx, &sum, query); err != nil {
		return 0, fmt.Errorf("%s: failed to sum clicks: %w", op, err)
	}

	return sum, nil
}

// RecordClick increments the counter and appends the event in a single
// transaction. The row lock taken by the UPDATE serializes concurrent
// recorders, so clicks always equals the number of history rows for every
// committed state.
func (r *LinkRepository) RecordClick(ctx context.Context, shortCode string, event models.ClickEvent) error {
	const op = "database.postgres.LinkRepository.RecordClick"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var linkID int64
	query := `UPDATE links
		SET clicks = clicks + 1, updated_at = now()
		WHERE short_code = $1
		RETURNING id`

	err = tx.GetContext(ctx, &linkID, query, shortCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return fmt.Errorf("%s: failed to increment clicks: %w", op, err)
	}

	query = `INSERT INTO link_clicks(link_id, occurred_at, user_agent, ip, referer)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := tx.ExecContext(ctx, query, linkID, event.Timestamp, event.UserAgent, event.IP, event.Referer); err != nil {
		return fmt.Errorf("%s: failed to insert click event: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return nil
}

// ClickEvents returns every recorded click event ordered by time of
// occurrence, for aggregation.
func (r *LinkRepository) ClickEvents(ctx context.Context) ([]models.ClickEvent, error) {
	const op = "database.postgres.LinkRepository.ClickEvents"

	var recs []clickRecord
	query := `SELECT id, link_id, occurred_at, user_agent, ip, referer
		FROM link_clicks
		ORDER BY occurred_at, id`

	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("%s: failed to list click events: %w", op, err)
	}

	events := make([]models.ClickEvent, 0, len(recs))
	for i := range recs {
		events = append(events, recs[i].ToClickEvent())
	}

	return events, nil
}

func (r *LinkRepository) attachClickHistory(ctx context.Context, links []*models.Link) error {
	const op = "database.postgres.LinkRepository.attachClickHistory"

	if len(links) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Link, len(links))
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		link.ClickHistory = []models.ClickEvent{}
		byID[link.ID] = link
		ids = append(ids, link.ID)
	}

	query, args, err := sqlx.In(`SELECT id, link_id, occurred_at, user_agent, ip, referer
		FROM link_clicks
		WHERE link_id IN (?)
		ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("%s: failed to build history query: %w", op, err)
	}

	var recs []clickRecord
	if err := r.db.SelectContext(ctx, &recs, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("%s: failed to load click history: %w", op, err)
	}

	for i := range recs {
		if link, ok := byID[recs[i].LinkID]; ok {
			link.ClickHistory = append(link.ClickHistory, recs[i].ToClickEvent())
		}
	}

	return nil
}
