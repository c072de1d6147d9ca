package screening

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
	"github.com/synaptica-ai/obesity-check/pkg/questionnaire"
)

type HTTPHandler struct {
	service *Service
	form    questionnaire.Form
	maxBody int64
}

func NewHTTPHandler(service *Service, catalog questionnaire.Catalog, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, form: catalog.Form(), maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/questionnaire", h.handleQuestionnaire).Methods(http.MethodGet)
	router.HandleFunc("/predict", h.handlePredict).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.form)
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	raw, err := decodeSubmission(r)
	if err != nil {
		logger.Log.WithError(err).Warn("invalid prediction payload")
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	assessment, err := h.service.Assess(r.Context(), raw)
	if err != nil {
		writeJSON(w, statusFor(err), models.ErrorResponse{Error: UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

// decodeSubmission accepts either a JSON body or an urlencoded form.
func decodeSubmission(r *http.Request) (models.RawSubmission, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return models.RawSubmission{}, err
		}
		values := make(map[string]string, len(r.PostForm))
		for key := range r.PostForm {
			values[key] = r.PostForm.Get(key)
		}
		return models.SubmissionFromValues(values), nil
	default:
		var raw models.RawSubmission
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return models.RawSubmission{}, err
		}
		return raw, nil
	}
}

func statusFor(err error) int {
	var numeric *NumericParseError
	switch {
	case IsValidationError(err):
		return http.StatusBadRequest
	case errors.As(err, &numeric):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Warn("failed to write response")
	}
}
