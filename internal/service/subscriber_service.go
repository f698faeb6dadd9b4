package service

import (
	"context"

	"creatorhub/internal/models"
	"creatorhub/internal/repository"
	"creatorhub/pkg/errs"
)

type SubscriberService interface {
	List(ctx context.Context, creatorID int64, platform string) ([]*models.Subscriber, error)
	Stats(ctx context.Context, creatorID int64) (*SubscriberStats, error)
}

type SubscriberStats struct {
	Total      int64   `json:"total"`
	Active     int64   `json:"active"`
	TotalSpent float64 `json:"total_spent"`
}

type subscriberService struct {
	sub repository.SubscriberRepository
}

func NewSubscriberService(sub repository.SubscriberRepository) SubscriberService {
	return &subscriberService{sub: sub}
}

func (s *subscriberService) List(ctx context.Context, creatorID int64, platform string) ([]*models.Subscriber, error) {
	subscribers, err := s.sub.ListByCreatorID(ctx, creatorID, platform)
	if err != nil {
		return nil, errs.Persistence("listing subscribers", err)
	}
	return subscribers, nil
}

func (s *subscriberService) Stats(ctx context.Context, creatorID int64) (*SubscriberStats, error) {
	subscribers, err := s.sub.ListByCreatorID(ctx, creatorID, "")
	if err != nil {
		return nil, errs.Persistence("listing subscribers", err)
	}

	active, err := s.sub.CountActive(ctx, creatorID)
	if err != nil {
		return nil, errs.Persistence("counting subscribers", err)
	}

	stats := SubscriberStats{
		Total:  int64(len(subscribers)),
		Active: active,
	}
	for _, sub := range subscribers {
		stats.TotalSpent += sub.TotalSpent
	}

	return &stats, nil
}
