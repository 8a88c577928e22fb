package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"storefront/internal/assets"
	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// homeSections are the backend /api/home/* resources.
var homeSections = map[string]bool{
	"sliders":    true,
	"categories": true,
	"featured":   true,
	"offers":     true,
	"brands":     true,
	"latest":     true,
}

// productService implements ProductService.
type productService struct {
	client   Caller
	resolver assets.Resolver
	logger   zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(client Caller, resolver assets.Resolver, logger zerolog.Logger) ProductService {
	return &productService{
		client:   client,
		resolver: resolver,
		logger:   logger.With().Str("service", "product").Logger(),
	}
}

// List returns one page of products.
func (s *productService) List(ctx context.Context, sess *model.Session, q model.ProductQuery) (model.Result[model.ProductPage], error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}

	resp, err := s.client.Call(ctx, "/api/products", gateway.Request{Token: token(sess), Query: query})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list products")
		return model.Fail[model.ProductPage](model.GenericErrorMessage, 0), nil
	}
	if resp.Failed() {
		return model.Fail[model.ProductPage](resp.Error, resp.Status), nil
	}

	page, err := decodeProductPage(resp.Data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("unexpected products payload")
		return model.Fail[model.ProductPage](model.GenericErrorMessage, resp.Status), nil
	}
	for i := range page.Products {
		s.resolveProduct(ctx, &page.Products[i])
	}
	return model.OK(page, resp.Status), nil
}

// GetByID returns a single product.
func (s *productService) GetByID(ctx context.Context, sess *model.Session, id int64) (model.Result[model.Product], error) {
	if id <= 0 {
		return model.Result[model.Product]{}, model.NewValidationError("id", "product id is required")
	}

	res := call[model.Product](ctx, s.client, s.logger, fmt.Sprintf("/api/products/%d", id), gateway.Request{Token: token(sess)})
	if res.Data != nil {
		s.resolveProduct(ctx, res.Data)
	}
	return res, nil
}

// Home returns a home page section as the backend shaped it.
func (s *productService) Home(ctx context.Context, sess *model.Session, section string) (model.Result[json.RawMessage], error) {
	if !homeSections[section] {
		return model.Result[json.RawMessage]{}, model.NewValidationError("section", "unknown home section")
	}
	return call[json.RawMessage](ctx, s.client, s.logger, "/api/home/"+section, gateway.Request{Token: token(sess)}), nil
}

func (s *productService) resolveProduct(ctx context.Context, p *model.Product) {
	if s.resolver == nil {
		return
	}
	resolveSummary(ctx, s.resolver, &p.ProductSummary)
	for i, img := range p.Images {
		p.Images[i] = s.resolver.Resolve(ctx, img)
	}
}

// resolveSummary rewrites the product image into a loadable URL.
func resolveSummary(ctx context.Context, resolver assets.Resolver, p *model.ProductSummary) {
	if resolver == nil {
		return
	}
	p.Image = resolver.Resolve(ctx, p.Image)
}

// decodeProductPage accepts a bare product array or a paginated wrapper.
func decodeProductPage(raw json.RawMessage) (*model.ProductPage, error) {
	raw = bytes.TrimSpace(raw)
	page := &model.ProductPage{Products: []model.Product{}}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return page, nil
	}

	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &page.Products); err != nil {
			return nil, err
		}
		return page, nil
	}

	var wrapper struct {
		Data []model.Product   `json:"data"`
		Meta *model.Pagination `json:"meta"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Data != nil {
		page.Products = wrapper.Data
	}
	page.Pagination = wrapper.Meta
	return page, nil
}
