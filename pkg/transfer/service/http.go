package service

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/bridge-submitter/pkg/app/errors"
	apphttp "github.com/chainsafe/bridge-submitter/pkg/app/http"
	"github.com/chainsafe/bridge-submitter/pkg/auth"
	"github.com/chainsafe/bridge-submitter/pkg/transfer"
)

// maxBodySize limits request bodies to 1MB
const maxBodySize = 1 << 20

// HTTP handles transfer requests
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// ListResponse is the body of GET /transfers
type ListResponse struct {
	Transfers []*transfer.Transfer `json:"transfers"`
}

// RegisterRoutes registers the transfer endpoints on r
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/transfers", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.start))
		r.Get("/", apphttp.HandleError(h.list))
		r.Get("/{id}", apphttp.HandleError(h.get))
		r.Delete("/{id}", apphttp.HandleError(h.cancel))
	})
	r.Post("/quotes", apphttp.HandleError(h.quote))
}

func (h *HTTP) decode(w http.ResponseWriter, r *http.Request) (*transfer.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req transfer.Request
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (h *HTTP) start(w http.ResponseWriter, r *http.Request) error {
	req, err := h.decode(w, r)
	if err != nil {
		return err
	}

	subject, _ := auth.SubjectFromContext(r.Context())
	t, err := h.service.StartTransfer(r.Context(), req, subject)
	if err != nil {
		return err
	}
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+t.ID)
	return apphttp.WriteJSON(w, http.StatusAccepted, t)
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	transfers, err := h.service.ListTransfers(r.Context())
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, &ListResponse{Transfers: transfers})
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if id == "" {
		return apperrors.BadRequestError(nil, "transfer id is required")
	}
	t, err := h.service.GetTransfer(r.Context(), id)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, t)
}

func (h *HTTP) cancel(w http.ResponseWriter, r *http.Request) error {
	t, err := h.service.CancelTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, t)
}

func (h *HTTP) quote(w http.ResponseWriter, r *http.Request) error {
	req, err := h.decode(w, r)
	if err != nil {
		return err
	}
	q, err := h.service.Quote(r.Context(), req)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, q)
}
