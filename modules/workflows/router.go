package workflows

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docflowhq/docflow/pkg/statemachine"
)

// Router exposes the workflow service over HTTP. It is a thin consumer of
// the binding layer and owns no business rules: guard messages pass through
// verbatim, internal failures are rendered generically.
//
//	r := chi.NewRouter()
//	r.Mount("/workflows", workflows.Router(svc))
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Post("/{docType}", openRecord(svc))
	r.Get("/definitions/{docType}/visualization", definitionVisualization(svc))

	r.Route("/records/{recordID}", func(rr chi.Router) {
		rr.Get("/", recordState(svc))
		rr.Post("/events/{event}", sendEvent(svc))
		rr.Get("/visualization", recordVisualization(svc))
		rr.Delete("/", closeRecord(svc))
	})

	return r
}

type recordResponse struct {
	RecordID    string   `json:"record_id"`
	State       string   `json:"state"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Done        bool     `json:"done"`
	Events      []string `json:"events"`
}

type transitionResponse struct {
	recordResponse
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func snapshotRecord(id string, b *statemachine.Binding) recordResponse {
	return recordResponse{
		RecordID:    id,
		State:       b.State(),
		Label:       b.Label(),
		Description: b.Description(),
		Done:        b.Done(),
		Events:      b.Events(),
	}
}

func openRecord(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docType := chi.URLParam(r, "docType")

		var overrides statemachine.Context
		if r.Body != nil {
			// An empty body opens the record with the definition's seed
			// context.
			_ = json.NewDecoder(r.Body).Decode(&overrides)
		}

		id, binding, err := svc.Open(docType, overrides)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusCreated, snapshotRecord(id, binding))
	}
}

func recordState(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "recordID")
		binding, ok := svc.Get(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
			return
		}
		writeJSON(w, http.StatusOK, snapshotRecord(id, binding))
	}
}

func sendEvent(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "recordID")
		event := chi.URLParam(r, "event")

		binding, ok := svc.Get(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
			return
		}

		var payload map[string]any
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&payload)
		}

		success := binding.Send(r.Context(), event, payload)

		resp := transitionResponse{
			recordResponse: snapshotRecord(id, binding),
			Success:        success,
		}
		status := http.StatusOK
		if !success {
			resp.Error = binding.ErrorMessage()
			status = http.StatusConflict
		}
		writeJSON(w, status, resp)
	}
}

func recordVisualization(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "recordID")
		binding, ok := svc.Get(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
			return
		}
		writeJSON(w, http.StatusOK, binding.Machine().Visualization())
	}
}

func definitionVisualization(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docType := chi.URLParam(r, "docType")
		def, ok := svc.Definition(docType)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown document type"})
			return
		}
		writeJSON(w, http.StatusOK, def.Visualization())
	}
}

func closeRecord(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.CloseRecord(chi.URLParam(r, "recordID"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
