/*
handlers.go - HTTP API handlers for the mortgage calculation service

PURPOSE:
  Exposes the calculation engine via REST API. Handles HTTP
  request/response, JSON serialization, caching, audit persistence, and
  delegates all rule evaluation to the engine package.

ENDPOINTS:
  Calculators:
    POST   /api/calculations/eligibility  Eligibility profile
    POST   /api/calculations/compliance   Compliance snapshot
    POST   /api/calculations/refinance    Refinance outlook

  History:
    GET    /api/calculations              List audit records
    GET    /api/calculations/{id}         Get one audit record

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/{id}/run        Run a demo scenario

REQUEST FLOW:
  1. Decode request body
  2. Convert DTO to engine input
  3. Serve from cache when an identical input was computed before,
     otherwise run the calculator and cache the result
  4. Append an audit record (every request, cached or not)
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, engine validation errors
  - 404: Record or scenario not found
  - 500: Storage failures

CACHE FAILURES:
  The cache is an optimization, never a dependency. A failed Get is a
  miss; a failed Set is logged and forgotten.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario definitions
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meridian/mortgage-engine/cache"
	"github.com/meridian/mortgage-engine/engine"
	"github.com/meridian/mortgage-engine/store/sqlite"
)

// resultTTL bounds how long a cached result can outlive the rule tables
// that produced it.
const resultTTL = 24 * time.Hour

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Cache cache.Cache
}

// NewHandler creates a new handler with the given store and cache.
func NewHandler(store *sqlite.Store, resultCache cache.Cache) *Handler {
	return &Handler{Store: store, Cache: resultCache}
}

// =============================================================================
// CALCULATOR HANDLERS
// =============================================================================

// CalculateEligibility runs the eligibility profile calculator.
// POST /api/calculations/eligibility
func (h *Handler) CalculateEligibility(w http.ResponseWriter, r *http.Request) {
	var req EligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input := req.toEngineInput()
	dto := EligibilityResultDTO{}
	hit := h.cachedResult(r, sqlite.KindEligibility, input, &dto)
	if !hit {
		result, err := engine.CalculateEligibility(input)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		dto = toEligibilityDTO(result)
		h.cacheResult(r, sqlite.KindEligibility, input, dto)
	}
	id, ok := h.audit(w, r, sqlite.KindEligibility, input, dto, dto.LimitingFactor, dto.ReasonCodes)
	if !ok {
		return
	}
	dto.CalculationID = id
	dto.Cached = hit
	writeJSON(w, http.StatusOK, dto)
}

// CalculateCompliance runs the compliance snapshot calculator.
// POST /api/calculations/compliance
func (h *Handler) CalculateCompliance(w http.ResponseWriter, r *http.Request) {
	var req ComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input := req.toEngineInput()
	dto := ComplianceResultDTO{}
	hit := h.cachedResult(r, sqlite.KindCompliance, input, &dto)
	if !hit {
		result, err := engine.CalculateCompliance(input)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		dto = toComplianceDTO(result)
		h.cacheResult(r, sqlite.KindCompliance, input, dto)
	}
	id, ok := h.audit(w, r, sqlite.KindCompliance, input, dto, dto.LimitingFactor, dto.ReasonCodes)
	if !ok {
		return
	}
	dto.CalculationID = id
	dto.Cached = hit
	writeJSON(w, http.StatusOK, dto)
}

// CalculateRefinance runs the refinance outlook calculator.
// POST /api/calculations/refinance
func (h *Handler) CalculateRefinance(w http.ResponseWriter, r *http.Request) {
	var req RefinanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input := req.toEngineInput()
	dto := RefinanceResultDTO{}
	hit := h.cachedResult(r, sqlite.KindRefinance, input, &dto)
	if !hit {
		result, err := engine.CalculateRefinanceOutlook(input)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		dto = toRefinanceDTO(result)
		h.cacheResult(r, sqlite.KindRefinance, input, dto)
	}
	id, ok := h.audit(w, r, sqlite.KindRefinance, input, dto, "", dto.ReasonCodes)
	if !ok {
		return
	}
	dto.CalculationID = id
	dto.Cached = hit
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// GetCalculation returns one audit record.
// GET /api/calculations/{id}
func (h *Handler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetCalculation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get calculation", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Calculation not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toRecordDTO(*rec))
}

// ListCalculations returns audit records, newest first.
// GET /api/calculations?kind=&limiting_factor=&limit=
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	filter := sqlite.ListFilter{
		Kind:           r.URL.Query().Get("kind"),
		LimitingFactor: r.URL.Query().Get("limiting_factor"),
		Limit:          50,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		filter.Limit = n
	}

	records, err := h.Store.ListCalculations(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calculations", err)
		return
	}

	dtos := make([]CalculationRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SHARED PLUMBING
// =============================================================================

// cachedResult loads a previously computed result into out. Any cache
// failure is a miss.
func (h *Handler) cachedResult(r *http.Request, kind string, input any, out any) bool {
	if h.Cache == nil {
		return false
	}
	key, err := cache.Key(kind, input)
	if err != nil {
		return false
	}
	payload, ok, err := h.Cache.Get(r.Context(), key)
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal(payload, out) == nil
}

// cacheResult stores a freshly computed result. Failures are logged only.
func (h *Handler) cacheResult(r *http.Request, kind string, input any, result any) {
	if h.Cache == nil {
		return
	}
	key, err := cache.Key(kind, input)
	if err != nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := h.Cache.Set(r.Context(), key, payload, resultTTL); err != nil {
		log.Printf("cache set failed for %s: %v", kind, err)
	}
}

// audit appends the immutable record for one calculator run and returns its
// ID. On failure the error response has already been written.
func (h *Handler) audit(w http.ResponseWriter, r *http.Request, kind string, input, output any, limiting string, codes []string) (string, bool) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode input", err)
		return "", false
	}
	outputJSON, err := json.Marshal(output)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode output", err)
		return "", false
	}

	rec := sqlite.CalculationRecord{
		ID:             uuid.New().String(),
		Kind:           kind,
		InputJSON:      string(inputJSON),
		OutputJSON:     string(outputJSON),
		LimitingFactor: limiting,
		ReasonCodes:    codes,
	}
	if err := h.Store.SaveCalculation(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record calculation", err)
		return "", false
	}
	return rec.ID, true
}

func writeEngineError(w http.ResponseWriter, err error) {
	if engine.IsValidationError(err) {
		resp := ErrorResponse{Error: "Validation failed", Code: "invalid_input", Details: err.Error()}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}
	writeError(w, http.StatusInternalServerError, "Calculation failed", err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// rawOrString re-embeds stored JSON verbatim, falling back to a plain
// string when a record predates the current encoding.
func rawOrString(stored string) any {
	if json.Valid([]byte(stored)) {
		return json.RawMessage(stored)
	}
	return stored
}
