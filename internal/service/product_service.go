package service

import (
	"context"
	"fmt"
	"time"

	"furliva/internal/domain"
	"furliva/internal/repository"

	"github.com/google/uuid"
)

// ProductInput carries the fields of a product create/update
type ProductInput struct {
	Name        string
	Category    string
	Subcategory string
	Description string
	Price       float64
	Quantity    int
	ImageURL    string
}

// ProductList is a paginated product listing
type ProductList struct {
	Products   []*domain.Product `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ProductService exposes the product catalog
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, category *string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) (*ProductList, error)
	Search(ctx context.Context, query string, page, pageSize int) (*ProductList, error)
}

type productService struct {
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo, now: time.Now}
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		ImageURL:    input.ImageURL,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		ID:          id,
		Name:        input.Name,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		ImageURL:    input.ImageURL,
		UpdatedAt:   s.now(),
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *productService) List(ctx context.Context, category *string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) (*ProductList, error) {
	products, total, err := s.productRepo.List(ctx, category, page, pageSize, sortBy, sortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return paginate(products, total, page, pageSize), nil
}

func (s *productService) Search(ctx context.Context, query string, page, pageSize int) (*ProductList, error) {
	products, total, err := s.productRepo.Search(ctx, query, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return paginate(products, total, page, pageSize), nil
}

func paginate(products []*domain.Product, total, page, pageSize int) *ProductList {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return &ProductList{
		Products:   products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
