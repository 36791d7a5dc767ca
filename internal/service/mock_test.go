package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/go-shorty/shorty/internal/database"
	"github.com/go-shorty/shorty/internal/models"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockLinkRepository struct {
	mock.Mock
}

func (r *MockLinkRepository) Create(ctx context.Context, shortCode, originalURL string) (*models.Link, error) {
	args := r.Called(ctx, shortCode, originalURL)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	args := r.Called(ctx, shortCode)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) Update(ctx context.Context, shortCode string, patch models.LinkPatch) (*models.Link, error) {
	args := r.Called(ctx, shortCode, patch)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) Delete(ctx context.Context, shortCode string) error {
	args := r.Called(ctx, shortCode)
	return args.Error(0)
}

func (r *MockLinkRepository) List(ctx context.Context, sortBy database.SortKey, limit int) ([]models.Link, error) {
	args := r.Called(ctx, sortBy, limit)
	links, _ := args.Get(0).([]models.Link)
	return links, args.Error(1)
}

func (r *MockLinkRepository) Count(ctx context.Context) (int64, error) {
	args := r.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (r *MockLinkRepository) SumClicks(ctx context.Context) (int64, error) {
	args := r.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (r *MockLinkRepository) RecordClick(ctx context.Context, shortCode string, event models.ClickEvent) error {
	args := r.Called(ctx, shortCode, event)
	return args.Error(0)
}

func (r *MockLinkRepository) ClickEvents(ctx context.Context) ([]models.ClickEvent, error) {
	args := r.Called(ctx)
	events, _ := args.Get(0).([]models.ClickEvent)
	return events, args.Error(1)
}
