package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/i18n"
	"github.com/abhisek/learnhub/internal/logging"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// stage tells the error mapper what kind of call failed. InvalidShape is
// the client's fault on a submission but the model's fault on generation.
type stage int

const (
	stageRead stage = iota
	stageGenerate
	stageSubmit
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger().WithError(err).Warn("failed to encode response")
	}
}

// writeMessage writes a localized error body for an explicit message ID.
func writeMessage(w http.ResponseWriter, r *http.Request, status int, kind apperr.Kind, msgID string) {
	JSON(w, status, errorBody{Error: i18n.T(r.Context(), msgID), Code: kind.String()})
}

func writeNotFound(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusNotFound, errorBody{Error: i18n.T(r.Context(), i18n.MsgNotFound), Code: "not_found"})
}

// writeError maps err to a status code and localized body.
func writeError(w http.ResponseWriter, r *http.Request, st stage, err error) {
	kind := apperr.KindOf(err)
	status, msgID := statusFor(kind, st)

	log := logging.WithContext(r.Context()).WithError(err).WithField("code", kind.String())
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Info("request rejected")
	}

	code := kind.String()
	if kind == apperr.KindUnknown {
		code = "internal"
	}
	JSON(w, status, errorBody{Error: i18n.T(r.Context(), msgID), Code: code})
}

func statusFor(kind apperr.Kind, st stage) (int, string) {
	switch kind {
	case apperr.InvalidInput:
		return http.StatusBadRequest, i18n.MsgInvalidInput
	case apperr.Unauthorized:
		return http.StatusUnauthorized, i18n.MsgUnauthorized
	case apperr.InvalidShape:
		if st == stageSubmit {
			return http.StatusUnprocessableEntity, i18n.MsgInvalidShape
		}
		return http.StatusBadGateway, i18n.MsgInvalidShape
	case apperr.GenerationFailed:
		return http.StatusBadGateway, i18n.MsgGenerationFailed
	case apperr.PayloadNotFound:
		return http.StatusBadGateway, i18n.MsgPayloadNotFound
	case apperr.MalformedPayload:
		return http.StatusBadGateway, i18n.MsgMalformedPayload
	case apperr.StorageFailure:
		return http.StatusInternalServerError, i18n.MsgStorageFailure
	}
	return http.StatusInternalServerError, i18n.MsgInternal
}

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// decode reads a JSON body into v. It writes a 400 and returns false on
// failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeMessage(w, r, http.StatusRequestEntityTooLarge, apperr.InvalidInput, i18n.MsgBadBody)
			return false
		}
		logging.WithContext(r.Context()).WithError(err).Debug("bad request body")
		writeMessage(w, r, http.StatusBadRequest, apperr.InvalidInput, i18n.MsgBadBody)
		return false
	}
	return true
}
