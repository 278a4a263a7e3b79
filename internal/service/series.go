package service

import (
	"context"
	"time"

	"github.com/guttosm/sthpulse/internal/domain/models"
	"github.com/guttosm/sthpulse/internal/storage"
)

// SeriesService defines business logic for reading the metric series.
type SeriesService interface {
	GetSeries(ctx context.Context, start *time.Time, end *time.Time) ([]models.MetricPoint, error)
	GetLatest(ctx context.Context) (*models.MetricPoint, error)
}

type seriesService struct {
	repo storage.SeriesRepository
}

func NewSeriesService(repo storage.SeriesRepository) SeriesService {
	return &seriesService{repo: repo}
}

func (s *seriesService) GetSeries(ctx context.Context, start *time.Time, end *time.Time) ([]models.MetricPoint, error) {
	return s.repo.GetSeries(start, end)
}

func (s *seriesService) GetLatest(ctx context.Context) (*models.MetricPoint, error) {
	return s.repo.GetLatest()
}
