package handlers

import (
	"net/http"

	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/services"
)

type quoteResponse struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

type addQuoteResponse struct {
	Message string        `json:"message"`
	Data    *models.Quote `json:"data"`
}

// GetRandomQuote returns one quote picked at random
func (h *Handler) GetRandomQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.quotes.Random(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{Quote: q.Text, Author: q.Author})
}

func (h *Handler) AddQuote(w http.ResponseWriter, r *http.Request) {
	var req services.QuoteInput
	if !h.decode(w, r, &req) {
		return
	}

	q, err := h.quotes.Add(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, addQuoteResponse{Message: "Quote added successfully", Data: q})
}
