package http

import (
	"bytes"
	"net/http"

	"wrapped/internal/log"
	"wrapped/internal/view"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil || s.source == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleIndex renders the dashboard shell. The shell only shows the loading
// placeholder and pulls the partial, so it never waits on the backend.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Página no encontrada").Write(w)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		MethodNotAllowedError("GET, HEAD").Write(w)
		return
	}
	if s.renderer == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	q, err := ParseQuery(r.URL.Query(), s.defaults)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	var buf bytes.Buffer
	page := view.Page{Query: q, PartialURL: "/ui/wrapped?" + EncodeQuery(q).Encode()}
	if err := s.renderer.RenderPage(&buf, page); err != nil {
		s.structured.LogError(r.Context(), "Index template execution failed", err, log.OpRender, nil)
		InternalServerError("Error al generar la página").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.String()).Write(w)
}

// handleWrappedPartial mounts the session for the query and renders the
// dashboard body.
func (s *Server) handleWrappedPartial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	if s.renderer == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	q, err := ParseQuery(r.URL.Query(), s.defaults)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	m := s.model(r.Context(), q)

	var buf bytes.Buffer
	if err := s.renderer.RenderPartial(&buf, q, m); err != nil {
		s.structured.LogError(r.Context(), "Partial template execution failed", err, log.OpRender, nil)
		InternalServerError("Error al generar el resumen").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.String()).Write(w)
}

func (s *Server) handleWrappedJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	q, err := ParseQuery(r.URL.Query(), s.defaults)
	if err != nil {
		JSONError(http.StatusBadRequest, err.Error()).Write(w)
		return
	}
	NewHTMXResponse().JSON(s.model(r.Context(), q)).Write(w)
}

func (s *Server) handleWrappedText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	q, err := ParseQuery(r.URL.Query(), s.defaults)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := view.WriteText(&buf, s.model(r.Context(), q)); err != nil {
		s.structured.LogError(r.Context(), "Text rendering failed", err, log.OpRender, nil)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	NewHTMXResponse().
		Header("Content-Type", "text/plain; charset=utf-8").
		Body(buf.Bytes()).
		Write(w)
}

// handleRefresh drops the cached session for the query and queues a
// background refresh so the archive catches up.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}
	q, err := ParseQuery(r.Form, s.defaults)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	s.sessions.Delete(q.Key())

	if s.publisher == nil {
		NewHTMXResponse().
			TriggerWrappedRefresh(q).
			TriggerSuccessNotification("Resumen actualizado").
			Status(http.StatusOK).
			Write(w)
		return
	}

	if err := s.publisher.PublishRefresh(r.Context(), q); err != nil {
		s.structured.LogError(r.Context(), "Failed to queue refresh", err, log.OpRefresh, nil)
		ServiceUnavailableError("No se pudo programar la actualización").
			TriggerErrorNotification("No se pudo programar la actualización").
			Write(w)
		return
	}

	NewHTMXResponse().
		Status(http.StatusAccepted).
		TriggerWrappedRefresh(q).
		TriggerSuccessNotification("Actualización programada").
		Write(w)
}

func (s *Server) handleWrappedPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	q, err := ParseQuery(r.URL.Query(), s.defaults)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := view.WritePDF(&buf, s.model(r.Context(), q)); err != nil {
		s.structured.LogError(r.Context(), "PDF rendering failed", err, log.OpRender, nil)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	NewHTMXResponse().
		Header("Content-Type", "application/pdf").
		Header("Content-Disposition", `inline; filename="wrapped-`+q.Desde+`-`+q.Hasta+`.pdf"`).
		Body(buf.Bytes()).
		Write(w)
}
