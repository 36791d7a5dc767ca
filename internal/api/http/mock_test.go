package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/go-shorty/shorty/internal/models"
)

type MockLinkService struct {
	mock.Mock
}

func (s *MockLinkService) ShortenLink(ctx context.Context, originalURL, customCode string) (*models.Link, error) {
	args := s.Called(ctx, originalURL, customCode)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (s *MockLinkService) ResolveLink(ctx context.Context, shortCode string, event models.ClickEvent) (*models.Link, error) {
	args := s.Called(ctx, shortCode, event)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (s *MockLinkService) GetLink(ctx context.Context, shortCode string) (*models.Link, error) {
	args := s.Called(ctx, shortCode)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (s *MockLinkService) ListLinks(ctx context.Context) ([]models.Link, error) {
	args := s.Called(ctx)
	links, _ := args.Get(0).([]models.Link)
	return links, args.Error(1)
}

func (s *MockLinkService) ModifyLink(ctx context.Context, shortCode string, patch models.LinkPatch) (*models.Link, error) {
	args := s.Called(ctx, shortCode, patch)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (s *MockLinkService) RemoveLink(ctx context.Context, shortCode string) error {
	args := s.Called(ctx, shortCode)
	return args.Error(0)
}

func (s *MockLinkService) Stats(ctx context.Context) (*models.Summary, error) {
	args := s.Called(ctx)
	summary, _ := args.Get(0).(*models.Summary)
	return summary, args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (p *MockPinger) PingContext(ctx context.Context) error {
	args := p.Called(ctx)
	return args.Error(0)
}
