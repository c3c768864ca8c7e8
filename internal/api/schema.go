package api

import (
	"net/http"

	"github.com/erazemk/regali/internal/structure"
)

// StructureSchema handles GET /api/schema/structure.
func StructureSchema(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, structure.Schema())
}
