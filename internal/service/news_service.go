package service

import (
	"errors"
	"fmt"

	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"gorm.io/gorm"
)

// NewsService 资讯与技术参数维护
type NewsService struct {
	repo *repository.NewsRepository
}

func NewNewsService(repo *repository.NewsRepository) *NewsService {
	return &NewsService{repo: repo}
}

type NewsInput struct {
	Title       string `json:"title" binding:"required"`
	Summary     string `json:"summary"`
	Content     string `json:"content" binding:"required"`
	ImageURL    string `json:"image_url"`
	IsPublished *bool  `json:"is_published"`
}

func (s *NewsService) Create(in NewsInput) (*entity.News, error) {
	n := &entity.News{
		Title:       in.Title,
		Summary:     in.Summary,
		Content:     in.Content,
		ImageURL:    in.ImageURL,
		IsPublished: true,
	}
	if in.IsPublished != nil {
		n.IsPublished = *in.IsPublished
	}
	if err := s.repo.Create(n); err != nil {
		return nil, fmt.Errorf("创建资讯失败: %w", err)
	}
	return n, nil
}

func (s *NewsService) Get(id string) (*entity.News, error) {
	n, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *NewsService) Update(id string, in NewsInput) (*entity.News, error) {
	n, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n.Title = in.Title
	n.Summary = in.Summary
	n.Content = in.Content
	n.ImageURL = in.ImageURL
	if in.IsPublished != nil {
		n.IsPublished = *in.IsPublished
	}
	if err := s.repo.Update(n); err != nil {
		return nil, fmt.Errorf("更新资讯失败: %w", err)
	}
	return n, nil
}

func (s *NewsService) Delete(id string) error {
	return s.repo.Delete(id)
}

func (s *NewsService) ListPublished(page, size int) ([]entity.News, int64, error) {
	return s.repo.ListPublished(page, size)
}

type SpecInput struct {
	Model         string `json:"model" binding:"required"`
	Category      string `json:"category"`
	StandardParam string `json:"standard_param"`
	ActualParam   string `json:"actual_param"`
	Feature       string `json:"feature"`
}

func (s *NewsService) CreateSpec(in SpecInput) (*entity.TechnicalSpec, error) {
	spec := &entity.TechnicalSpec{
		Model:         in.Model,
		Category:      in.Category,
		StandardParam: in.StandardParam,
		ActualParam:   in.ActualParam,
		Feature:       in.Feature,
	}
	if err := s.repo.CreateSpec(spec); err != nil {
		return nil, fmt.Errorf("创建技术参数失败: %w", err)
	}
	return spec, nil
}

func (s *NewsService) UpdateSpec(id string, in SpecInput) (*entity.TechnicalSpec, error) {
	spec, err := s.repo.GetSpecByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	spec.Model = in.Model
	spec.Category = in.Category
	spec.StandardParam = in.StandardParam
	spec.ActualParam = in.ActualParam
	spec.Feature = in.Feature
	if err := s.repo.UpdateSpec(spec); err != nil {
		return nil, fmt.Errorf("更新技术参数失败: %w", err)
	}
	return spec, nil
}

func (s *NewsService) DeleteSpec(id string) error {
	return s.repo.DeleteSpec(id)
}

func (s *NewsService) ListSpecs(params repository.SpecListParams) ([]entity.TechnicalSpec, int64, error) {
	return s.repo.ListSpecs(params)
}
