package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-shorty/shorty/internal/database"
	"github.com/go-shorty/shorty/internal/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// shortCodeAlphabet is the fixed 62-symbol alphabet short codes are drawn from.
const shortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxShortenAttempts bounds the generate-then-insert loop so a pathological
// store or an exhausted code space surfaces as an error instead of a spin.
const maxShortenAttempts = 10

// ErrMaxRetriesExceeded is returned when the maximum number of attempts for
// generating an unused short code is exceeded.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

// LinkRepository defines the interface for working with links at the business logic layer.
type LinkRepository interface {
	// Create inserts a new link. Returns database.ErrShortCodeExists when
	// the short code is already taken.
	Create(ctx context.Context, shortCode, originalURL string) (*models.Link, error)

	// GetByShortCode retrieves a link and its click history by short code.
	GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error)

	// Update applies a partial change to a link identified by short code.
	Update(ctx context.Context, shortCode string, patch models.LinkPatch) (*models.Link, error)

	// Delete removes a link and its click history by short code.
	Delete(ctx context.Context, shortCode string) error

	// List returns links ordered by the given sort key, descending.
	// A non-positive limit returns all records.
	List(ctx context.Context, sortBy database.SortKey, limit int) ([]models.Link, error)

	// Count returns the total number of links.
	Count(ctx context.Context) (int64, error)

	// SumClicks returns the total number of recorded clicks.
	SumClicks(ctx context.Context) (int64, error)

	// RecordClick atomically increments the click counter and appends the
	// event to the link's history.
	RecordClick(ctx context.Context, shortCode string, event models.ClickEvent) error

	// ClickEvents returns all recorded click events ordered by occurrence.
	ClickEvents(ctx context.Context) ([]models.ClickEvent, error)
}

// LinkService implements the shortening, redirect and analytics operations
// on top of a LinkRepository. All coordination happens in the store; the
// service holds no mutable link state of its own.
type LinkService struct {
	repo            LinkRepository
	logger          *slog.Logger
	shortCodeLength int
}

// NewLinkService creates a new LinkService with the provided repository,
// logger and short code length.
func NewLinkService(repo LinkRepository, logger *slog.Logger, shortCodeLength int) *LinkService {
	return &LinkService{
		repo:            repo,
		logger:          logger,
		shortCodeLength: shortCodeLength,
	}
}

// ShortenLink creates a link for originalURL. With a custom code the insert
// is attempted exactly once and a taken code surfaces as
// database.ErrShortCodeExists. Otherwise random codes are generated and
// inserted until one is free, bounded by maxShortenAttempts; the unique
// index on insertion is the authoritative uniqueness guard, not the loop.
func (s *LinkService) ShortenLink(ctx context.Context, originalURL, customCode string) (*models.Link, error) {
	const op = "service.LinkService.ShortenLink"

	if customCode != "" {
		link, err := s.repo.Create(ctx, customCode, originalURL)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return link, nil
	}

	for i := 0; i < maxShortenAttempts; i++ {
		shortCode, err := gonanoid.Generate(shortCodeAlphabet, s.shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		link, err := s.repo.Create(ctx, shortCode, originalURL)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return link, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveLink looks up a link for the redirect path and records the visit.
// Once the link is found a recording failure is logged and swallowed, so a
// transient analytics problem never blocks the visitor-facing redirect.
func (s *LinkService) ResolveLink(ctx context.Context, shortCode string, event models.ClickEvent) (*models.Link, error) {
	const op = "service.LinkService.ResolveLink"

	link, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Referer == "" {
		event.Referer = models.DirectReferer
	}

	if err := s.repo.RecordClick(ctx, shortCode, event); err != nil {
		s.logger.Warn(
			"failed to record click",
			slog.String("op", op),
			slog.String("short_code", shortCode),
			slog.Any("err", err),
		)
	}

	return link, nil
}

// GetLink retrieves a link and its click history without recording a visit.
func (s *LinkService) GetLink(ctx context.Context, shortCode string) (*models.Link, error) {
	const op = "service.LinkService.GetLink"

	link, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link: %w", op, err)
	}

	return link, nil
}

// ListLinks returns all links, newest first, with click history attached.
func (s *LinkService) ListLinks(ctx context.Context) ([]models.Link, error) {
	const op = "service.LinkService.ListLinks"

	links, err := s.repo.List(ctx, database.SortByCreatedAt, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	return links, nil
}

// ModifyLink applies an admin edit to the original URL and/or the short
// code. Renaming to a taken code fails with database.ErrShortCodeExists
// and leaves the record untouched.
func (s *LinkService) ModifyLink(ctx context.Context, shortCode string, patch models.LinkPatch) (*models.Link, error) {
	const op = "service.LinkService.ModifyLink"

	link, err := s.repo.Update(ctx, shortCode, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to modify link: %w", op, err)
	}

	return link, nil
}

// RemoveLink deletes a link and its click history.
func (s *LinkService) RemoveLink(ctx context.Context, shortCode string) error {
	const op = "service.LinkService.RemoveLink"

	if err := s.repo.Delete(ctx, shortCode); err != nil {
		return fmt.Errorf("%s: failed to remove link: %w", op, err)
	}

	return nil
}
