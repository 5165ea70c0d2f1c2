// Package admission contains all HTTP handlers for the admission
// record resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature
//
//	func(http.ResponseWriter, *http.Request)
//
// which has no room for extra parameters like the service. Each
// factory below accepts its dependency once at route-registration time
// and returns a handler that closes over it:
//
//	router.HandleFunc("POST /api/admissions", admission.New(svc))
//
// Handlers decode the body into a plain map rather than a struct: the
// validation package needs the raw payload to coerce numeric strings,
// distinguish absent from zero-valued fields on partial updates, and
// ignore unknown keys deliberately.
package admission

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/admissions-api/internal/service"
	"github.com/aanand-mishra/admissions-api/internal/utils/response"
	"github.com/aanand-mishra/admissions-api/internal/validation"
)

// Home handles GET / with a welcome message.
func Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "Student Admission Management System API"})
	}
}

// About handles GET /about.
func About() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "A fully functional API to manage your student admission records"})
	}
}

// New handles POST /api/admissions.
// Creates a record from the JSON body; the body carries the
// caller-assigned "id" alongside the record fields.
//
// Success response (201 Created):
//
//	{ "message": "admission record created successfully", "record": {...} }
//
// Error responses:
//
//	400 — empty body, malformed JSON, missing/non-string id, validation failure
//	409 — id already exists
func New(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating an admission record")

		payload, err := decodeBody(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		id, err := idField(payload)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		rec, err := svc.Create(id, payload)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, response.Message{
			Message: "admission record created successfully",
			Record:  rec,
		})
	}
}

// GetList handles GET /api/admissions.
// Returns a JSON array of every record, [] (not null) when empty.
func GetList(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing admission records")

		records, err := svc.List()
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// GetByID handles GET /api/admissions/{id}.
func GetByID(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting an admission record", slog.String("id", id))

		rec, err := svc.GetByID(id)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, rec)
	}
}

// GetByName handles GET /api/admissions/by-name/{name}.
// The name is the full "first last" name, matched exactly but
// case-insensitively. 404 when nothing matches.
func GetByName(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		slog.Info("searching admission records by name", slog.String("name", name))

		records, err := svc.GetByName(name)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// Sort handles GET /api/admissions/sort?sort_by=...&order=...
//
//	sort_by — height_cm, weight_kg or bmi (required)
//	order   — asc (default) or desc
//
// 400 on an invalid key or order.
func Sort(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sortBy := r.URL.Query().Get("sort_by")
		order := r.URL.Query().Get("order")
		if order == "" {
			order = "asc"
		}

		slog.Info("sorting admission records",
			slog.String("sort_by", sortBy),
			slog.String("order", order))

		records, err := svc.Sort(sortBy, order)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// Update handles PUT /api/admissions/{id}.
// The body is a PARTIAL payload: only the supplied fields change,
// nested address fields merge independently, and bmi/verdict are
// recomputed on the merged result.
//
// Success response (200 OK):
//
//	{ "message": "admission record updated successfully", "record": {...} }
func Update(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating an admission record", slog.String("id", id))

		patch, err := decodeBody(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		rec, err := svc.Update(id, patch)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Message{
			Message: "admission record updated successfully",
			Record:  rec,
		})
	}
}

// Delete handles DELETE /api/admissions/{id}.
//
// Success response (200 OK):
//
//	{ "message": "admission record deleted successfully" }
func Delete(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting an admission record", slog.String("id", id))

		if err := svc.Delete(id); err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Message{
			Message: "admission record deleted successfully",
		})
	}
}

// decodeBody reads the request body into a raw payload map. Numbers
// are kept as json.Number so the validation package decides how to
// coerce them.
func decodeBody(r *http.Request) (map[string]any, error) {
	var payload map[string]any

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	err := dec.Decode(&payload)
	if errors.Is(err, io.EOF) {
		return nil, errors.New("request body is empty")
	}
	if err != nil {
		return nil, errors.New("request body is not valid JSON")
	}

	return payload, nil
}

// idField extracts the caller-assigned id from a create payload.
func idField(payload map[string]any) (string, error) {
	raw, ok := payload["id"]
	if !ok {
		return "", errors.New("field id is required")
	}
	id, ok := raw.(string)
	if !ok {
		return "", errors.New("field id must be a string")
	}
	return id, nil
}

// writeError maps a service/validation error onto the right HTTP
// status and the {detail} envelope. Unexpected errors are logged and
// masked as a plain 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var vErr *validation.Error

	switch {
	case errors.As(err, &vErr):
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(vErr))
	case errors.Is(err, service.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
	case errors.Is(err, service.ErrConflict):
		response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
	case errors.Is(err, service.ErrBadRequest):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError,
			response.GeneralError(errors.New("internal server error")))
	}
}
