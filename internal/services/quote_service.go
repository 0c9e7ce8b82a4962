package services

import (
	"context"
	"strings"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
)

type QuoteInput struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type QuoteService struct {
	quotes store.QuoteStore
}

func NewQuoteService(quotes store.QuoteStore) *QuoteService {
	return &QuoteService{quotes: quotes}
}

// Random picks one stored quote.
func (s *QuoteService) Random(ctx context.Context) (*models.Quote, error) {
	return s.quotes.Random(ctx)
}

func (s *QuoteService) Add(ctx context.Context, in QuoteInput) (*models.Quote, error) {
	text, author := strings.TrimSpace(in.Text), strings.TrimSpace(in.Author)
	if text == "" || author == "" {
		return nil, apperr.Validation("Text and author are required")
	}
	return s.quotes.Create(ctx, &models.Quote{Text: text, Author: author})
}

// Seed bulk-loads quotes, optionally clearing the collection first. Entries
// missing text or author are skipped.
func (s *QuoteService) Seed(ctx context.Context, quotes []*models.Quote, drop bool) (int, error) {
	if drop {
		if err := s.quotes.DeleteAll(ctx); err != nil {
			return 0, err
		}
	}
	valid := make([]*models.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q == nil {
			continue
		}
		q.Text, q.Author = strings.TrimSpace(q.Text), strings.TrimSpace(q.Author)
		if q.Text == "" || q.Author == "" {
			continue
		}
		valid = append(valid, q)
	}
	return s.quotes.InsertMany(ctx, valid)
}
