package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"healthscreen/internal/capture"
	"healthscreen/internal/patient"
	"healthscreen/internal/report"
	"healthscreen/pkg/logger"
)

type Handler struct {
	svc      Service
	letters  *report.Service
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandler(svc Service, letters *report.Service, log *logger.Logger) *Handler {
	return &Handler{
		svc:      svc,
		letters:  letters,
		validate: validator.New(),
		log:      log,
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/session", h.CreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Post("/view", h.SelectView)
		r.Post("/chat", h.SubmitText)
		r.Post("/image", h.SubmitImage)
		r.Get("/files/{fileID}", h.ServeFile)
		r.Post("/capture/start", h.StartCapture)
		r.Post("/capture/chunk", h.PushChunk)
		r.Post("/capture/stop", h.StopCapture)
		r.Post("/location", h.GrantLocation)
		r.Get("/facilities", h.SearchFacilities)
		r.Get("/history", h.History)
		r.Post("/history/{recordID}/email", h.EmailRecord)
		r.Patch("/history/{recordID}", h.ResolveRecord)
		r.Post("/letter", h.GenerateLetter)
	})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.svc.CreateSession(r.Context())
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	sess, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.svc.CloseSession(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectViewRequest struct {
	View       string `json:"view" validate:"required"`
	CategoryID string `json:"category_id"`
}

func (h *Handler) SelectView(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req selectViewRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	sel := ViewSelection{View: View(req.View), CategoryID: req.CategoryID}
	if err := h.svc.SelectView(r.Context(), id, sel); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

type submitTextRequest struct {
	Text string `json:"text"`
}

func (h *Handler) SubmitText(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req submitTextRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	msg, err := h.svc.SubmitText(r.Context(), id, req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, msg)
}

func (h *Handler) SubmitImage(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Bound the body before parsing; the extra MiB leaves room for the
	// multipart framing around an image at the limit.
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(MaxImageBytes + 1<<20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, ErrImageTooLarge)
			return
		}
		h.writeError(w, errors.Wrap(errInvalidRequest, err.Error()))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, errors.Wrap(errInvalidRequest, "missing image form field"))
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.writeError(w, err)
		return
	}

	msg, err := h.svc.SubmitImage(r.Context(), id, ImageUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        buf.Bytes(),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, msg)
}

func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	fileID, err := uuid.Parse(chi.URLParam(r, "fileID"))
	if err != nil {
		h.writeError(w, ErrFileNotFound)
		return
	}

	sess, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	_, contentType, data, err := sess.File(fileID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func (h *Handler) StartCapture(w http.ResponseWriter, r *http.Request) {
	h.captureAction(w, r, h.svc.StartCapture)
}

func (h *Handler) StopCapture(w http.ResponseWriter, r *http.Request) {
	h.captureAction(w, r, h.svc.StopCapture)
}

func (h *Handler) PushChunk(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	chunk, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.svc.PushChunk(r.Context(), id, chunk); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type grantLocationRequest struct {
	Granted   *bool   `json:"granted" validate:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *Handler) GrantLocation(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req grantLocationRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	var pos *capture.Position
	if *req.Granted {
		pos = &capture.Position{Latitude: req.Latitude, Longitude: req.Longitude}
	}
	if err := h.svc.GrantLocation(r.Context(), id, *req.Granted, pos); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SearchFacilities(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	facilities, err := h.svc.SearchFacilities(r.Context(), id, r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facilities)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	all := r.URL.Query().Get("all") == "true"
	records, err := h.svc.History(r.Context(), id, all)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) EmailRecord(w http.ResponseWriter, r *http.Request) {
	id, recordID, err := sessionAndRecordID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	confirmation, err := h.svc.EmailRecord(r.Context(), id, recordID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"confirmation": confirmation})
}

func (h *Handler) ResolveRecord(w http.ResponseWriter, r *http.Request) {
	id, recordID, err := sessionAndRecordID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	record, err := h.svc.ResolveRecord(r.Context(), id, recordID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type letterRequest struct {
	AdditionalNotes string `json:"additional_notes"`
}

func (h *Handler) GenerateLetter(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// The body is optional; an absent body means no additional notes.
	var req letterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.writeError(w, errors.Wrap(errInvalidRequest, err.Error()))
		return
	}

	sess, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	profile := sess.Profile()
	letter := report.BuildLetter(profile, profile.LatestRecord(), req.AdditionalNotes)
	pdf, err := h.letters.Render(letter)
	if err != nil {
		h.log.Error(err, "letter rendering failed", "session_id", id.String())
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="medical_letter.pdf"`)
	w.Write(pdf)
}

func (h *Handler) captureAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id uuid.UUID) error) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := action(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errInvalidRequest, err.Error())
	}
	if err := h.validate.Struct(v); err != nil {
		return errors.Wrap(errInvalidRequest, err.Error())
	}
	return nil
}

var errInvalidRequest = errors.New("invalid request")

func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	return id, nil
}

func sessionAndRecordID(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	id, err := sessionID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	recordID, err := uuid.Parse(chi.URLParam(r, "recordID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, patient.ErrRecordNotFound
	}
	return id, recordID, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError converts pipeline errors into the user-facing notification the
// client displays. Nothing propagates further; every failure is local.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrFileNotFound),
		errors.Is(err, ErrUnknownCategory),
		errors.Is(err, patient.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrNotAnImage),
		errors.Is(err, ErrImageTooLarge),
		errors.Is(err, ErrUnknownView),
		errors.Is(err, errInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, capture.ErrMicrophoneDenied),
		errors.Is(err, capture.ErrLocationDenied),
		errors.Is(err, ErrLocationRequired):
		status = http.StatusForbidden
	case errors.Is(err, ErrAlreadyRecording),
		errors.Is(err, ErrNotRecording):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
