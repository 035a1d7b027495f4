package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"portfolio/internal/core"
)

// otherCategory is the select value that switches to the free-text
// category field.
const otherCategory = "__other__"

type entryPage struct {
	Categories []string
	Error      string
	Success    string
}

// handleEntryForm renders the product addition form (page 3).
func (s *Server) handleEntryForm(w http.ResponseWriter, r *http.Request) {
	user, _ := sessionUser(r)

	_, categories, err := s.analysis.Options(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list error", "error", err)
	}

	s.render(w, r, "entry_form.html", entryPage{Categories: categories})
}

// handleCreateEntry stores one product entry (page 3 submit).
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	user, _ := sessionUser(r)

	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		s.renderEntryError(w, r, user.ID, "Invalid request format")
		return
	}

	category := sanitizeInput(r.Form.Get("category"))
	if category == otherCategory {
		category = sanitizeInput(r.Form.Get("new_category"))
	}

	amount, err := core.ParseAmount(r.Form.Get("product_amount"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderEntryError(w, r, user.ID, "Invalid product amount")
		return
	}

	year, err := strconv.Atoi(sanitizeInput(r.Form.Get("product_year")))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderEntryError(w, r, user.ID, "Invalid product year")
		return
	}

	entry := core.Entry{
		UserID:   user.ID,
		Name:     sanitizeInput(r.Form.Get("product_name")),
		Category: category,
		Amount:   amount,
		Year:     year,
		Month:    sanitizeInput(r.Form.Get("product_month")),
	}

	if _, err := s.entries.Create(r.Context(), entry); err != nil {
		slog.ErrorContext(r.Context(), "Entry create error", "error", err,
			"product_name", entry.Name, "product_category", entry.Category)
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderEntryError(w, r, user.ID, "Error adding product: "+err.Error())
		return
	}

	_, categories, err := s.analysis.Options(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list error", "error", err)
	}
	s.render(w, r, "entry_form.html", entryPage{
		Categories: categories,
		Success:    "Product added successfully.",
	})
}

func (s *Server) renderEntryError(w http.ResponseWriter, r *http.Request, userID int64, msg string) {
	_, categories, err := s.analysis.Options(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list error", "error", err)
	}
	s.render(w, r, "entry_form.html", entryPage{Categories: categories, Error: msg})
}
