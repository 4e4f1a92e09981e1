package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/metrics"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/repo"
)

type SearchResult struct {
	Items  []models.Document
	Source string
}

// Search asks the index first and falls back to a database LIKE query.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}

	if s.Index != nil {
		docs, err := s.Index.Search(ctx, query, limit)
		if err == nil {
			return &SearchResult{Items: docs, Source: "index"}, nil
		}
		metrics.SideEffectErrorsTotal.WithLabelValues("search").Inc()
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	products, err := s.Repo.SearchProducts(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	equipment, err := s.Repo.SearchEquipment(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0, len(products)+len(equipment))
	for i := range products {
		docs = append(docs, models.ProductDocument(&products[i]))
	}
	for i := range equipment {
		docs = append(docs, models.EquipmentDocument(&equipment[i]))
	}
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return &SearchResult{Items: docs, Source: "database"}, nil
}

// Reindex pushes every catalog row into the index. Used on startup when the index is empty.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	const batch = 100
	n := 0
	for offset := 0; ; offset += batch {
		_, products, err := s.Repo.GetProducts(ctx, listAll(offset, batch))
		if err != nil {
			return n, err
		}
		for i := range products {
			if err := s.Index.Put(ctx, models.ProductDocument(&products[i])); err != nil {
				return n, err
			}
			n++
		}
		if len(products) < batch {
			break
		}
	}
	for offset := 0; ; offset += batch {
		_, equipment, err := s.Repo.ListEquipment(ctx, listAll(offset, batch))
		if err != nil {
			return n, err
		}
		for i := range equipment {
			if err := s.Index.Put(ctx, models.EquipmentDocument(&equipment[i])); err != nil {
				return n, err
			}
			n++
		}
		if len(equipment) < batch {
			break
		}
	}
	return n, nil
}

func listAll(offset, limit int) repo.ListFilter {
	return repo.ListFilter{Offset: offset, Limit: limit}
}
