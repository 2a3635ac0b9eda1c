package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mailvet/mailvet/cmd/web/mvhttp"
	"github.com/mailvet/mailvet/cmd/web/mvhttp/handlers"
	"github.com/mailvet/mailvet/cmd/web/services"
	"github.com/mailvet/mailvet/validator"
)

const (
	failedRequestError  = "Request failed, unable to parse request body. Expected JSON."
	failedResponseError = "Generating response failed."
)

// NewCheckHandler constructs the HTTP handler dealing with single address verification requests.
// checkMX and checkDomain come from the configuration and cap what a request may probe, a client
// can skip an enabled probe but can't enable a disabled one.
func NewCheckHandler(logger logrus.FieldLogger, svc *services.CheckSvc, maxBodySize int64, checkMX, checkDomain bool) http.HandlerFunc {
	logger = logger.WithField("handler", "check")
	return func(w http.ResponseWriter, r *http.Request) {
		var req mvhttp.CheckRequest

		logger := logger.WithField(handlers.RequestID.String(), r.Context().Value(handlers.RequestID))

		defer deferClose(r.Body, logger)

		body, err := mvhttp.GetBodyFromHTTPRequest(r, maxBodySize)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"error":          err,
				"content_length": r.ContentLength,
			}).Error("Error handling request")

			w.WriteHeader(http.StatusBadRequest)

			// err is expected to be safe to expose to the client
			writeErrorJSONResponse(logger, w, &mvhttp.CheckResponse{Error: err.Error()})
			return
		}

		if err = json.Unmarshal(body, &req); err != nil {
			logger.WithError(err).Error("Error handling request body")

			w.WriteHeader(http.StatusBadRequest)
			writeErrorJSONResponse(logger, w, &mvhttp.CheckResponse{Error: failedRequestError})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
		defer cancel()

		checkResult, err := svc.HandleCheckRequest(ctx, validator.Request{
			Email:       req.Email,
			CheckMX:     checkMX && !req.SkipMX,
			CheckDomain: checkDomain && !req.SkipDomain,
		}, req.Alternatives)

		if err != nil {
			logger.WithFields(logrus.Fields{
				"result": checkResult,
				"error":  err,
			}).Error("Failed to check e-mail address")

			w.WriteHeader(http.StatusInternalServerError)
			writeErrorJSONResponse(logger, w, &mvhttp.CheckResponse{Error: failedResponseError})
			return
		}

		response := mvhttp.CheckResponse{
			Email:        checkResult.Result.Email,
			ValidFormat:  checkResult.Result.ValidFormat,
			HasMX:        checkResult.Result.HasMX,
			DomainExists: checkResult.Result.DomainExists,
			Status:       checkResult.Result.Status,
			Alternative:  checkResult.Alternative,
			CacheHitTTL:  int64(checkResult.CacheHitTTL.Seconds()),
		}

		payload, err := json.Marshal(response)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"response": response,
				"error":    err,
			}).Error("Failed to marshal the response")

			w.WriteHeader(http.StatusInternalServerError)
			writeErrorJSONResponse(logger, w, &mvhttp.CheckResponse{Error: failedResponseError})
			return
		}

		logger.WithFields(logrus.Fields{
			"cache_ttl_sec": response.CacheHitTTL,
			"status":        response.Status,
		}).Debug("Done performing check")

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

// NewExtractHandler constructs the HTTP handler that pulls addresses out of free-form text
func NewExtractHandler(logger logrus.FieldLogger, maxBodySize int64) http.HandlerFunc {
	logger = logger.WithField("handler", "extract")
	return func(w http.ResponseWriter, r *http.Request) {
		var req mvhttp.ExtractRequest

		logger := logger.WithField(handlers.RequestID.String(), r.Context().Value(handlers.RequestID))

		defer deferClose(r.Body, logger)

		body, err := mvhttp.GetBodyFromHTTPRequest(r, maxBodySize)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"error":          err,
				"content_length": r.ContentLength,
			}).Error("Error handling request")

			w.WriteHeader(http.StatusBadRequest)
			writeErrorJSONResponse(logger, w, &mvhttp.ExtractResponse{Error: err.Error()})
			return
		}

		if err = json.Unmarshal(body, &req); err != nil {
			logger.WithError(err).Error("Error handling request body")

			w.WriteHeader(http.StatusBadRequest)
			writeErrorJSONResponse(logger, w, &mvhttp.ExtractResponse{Error: failedRequestError})
			return
		}

		emails := validator.ExtractAddresses(req.Text)

		response := mvhttp.ExtractResponse{Emails: emails}
		response.PrepareResponse()

		payload, err := json.Marshal(response)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"response": response,
				"error":    err,
			}).Error("Failed to marshal the response")

			w.WriteHeader(http.StatusInternalServerError)
			writeErrorJSONResponse(logger, w, &mvhttp.ExtractResponse{Error: failedResponseError})
			return
		}

		logger.WithField("extracted", len(emails)).Debug("Done extracting")

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

func NewHealthHandler(logger logrus.FieldLogger) http.HandlerFunc {
	logger = logger.WithField("handler", "health")
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logger.WithField(handlers.RequestID.String(), r.Context().Value(handlers.RequestID))

		w.Header().Set("content-type", "text/plain")
		w.WriteHeader(http.StatusOK)

		_, err := w.Write([]byte("OK"))
		if err != nil {
			logger.WithError(err).Error("failed to write in health handler")
		}
	}
}

func writeErrorJSONResponse(logger logrus.FieldLogger, w http.ResponseWriter, response mvhttp.Response) {
	response.PrepareResponse()

	payload, err := json.Marshal(response)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal error response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(payload); err != nil {
		logger.WithError(err).Error("Failed to write response")
	}
}
