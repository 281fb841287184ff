package handlers

import (
	"net/http"

	"github.com/msvee3/Interview-prep/internal/catalog"
	"github.com/msvee3/Interview-prep/internal/utils"
)

type QuestionHandler struct {
	catalog *catalog.Catalog
}

func NewQuestionHandler(c *catalog.Catalog) *QuestionHandler {
	return &QuestionHandler{catalog: c}
}

// ListHandler serves the catalog filtered by the optional category and
// difficulty query parameters. No authentication is required.
func (h *QuestionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	utils.JSON(w, http.StatusOK, h.catalog.List(q.Get("category"), q.Get("difficulty")))
}
