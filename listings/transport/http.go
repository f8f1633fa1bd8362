package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"

	"github.com/marketd/marketd"
	"github.com/marketd/marketd/kit/platform"
	"github.com/marketd/marketd/kit/platform/errors"
	kithttp "github.com/marketd/marketd/kit/transport/http"
)

const prefixListings = "/api/v1/listings"

var (
	errBadID = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "listing ID is invalid",
	}

	errBadSortOrder = &errors.Error{
		Code: errors.EInvalid,
		Msg:  `sortOrder must be "asc" or "desc"`,
	}
)

// ListingHandler is the handler for the listing service.
type ListingHandler struct {
	chi.Router

	api *kithttp.API
	log *zap.Logger

	listingService marketd.ListingService
}

func NewListingHandler(log *zap.Logger, svc marketd.ListingService) *ListingHandler {
	h := &ListingHandler{
		log:            log,
		api:            kithttp.NewAPI(kithttp.WithLog(log)),
		listingService: svc,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.RealIP,
	)

	r.Route("/", func(r chi.Router) {
		r.Get("/", h.handleGetListings)
		r.Post("/", h.handlePostListing)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetListing)
			r.Patch("/", h.handlePatchListing)
			r.Delete("/", h.handleDeleteListing)
		})
	})

	h.Router = r
	return h
}

func (h *ListingHandler) Prefix() string {
	return prefixListings
}

func (h *ListingHandler) handleGetListings(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	filter := marketd.ListingFilter{
		Search: r.URL.Query().Get("search"),
	}

	page, err := h.listingService.FindListings(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, page)
}

func (h *ListingHandler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, err := idFromReq(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	l, err := h.listingService.FindListingByID(r.Context(), *id)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, l)
}

func (h *ListingHandler) handlePostListing(w http.ResponseWriter, r *http.Request) {
	var create marketd.ListingCreate
	if err := h.api.DecodeJSON(r.Body, &create); err != nil {
		h.api.Err(w, r, err)
		return
	}

	l, err := h.listingService.CreateListing(r.Context(), create)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusCreated, l)
}

func (h *ListingHandler) handlePatchListing(w http.ResponseWriter, r *http.Request) {
	id, err := idFromReq(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd marketd.ListingUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}

	l, err := h.listingService.UpdateListing(r.Context(), *id, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, l)
}

func (h *ListingHandler) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id, err := idFromReq(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.listingService.DeleteListing(r.Context(), *id); err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusNoContent, nil)
}

// decodeFindOptions returns the FindOptions decoded from the request query
// string. Missing or non-numeric page and limit values fall back to the
// defaults; out-of-range values are rejected downstream rather than clamped.
func decodeFindOptions(r *http.Request) (*marketd.FindOptions, error) {
	opts := marketd.DefaultFindOptions()
	qp := r.URL.Query()

	if page := qp.Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			opts.Page = p
		}
	}

	if limit := qp.Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			opts.Limit = l
		}
	}

	if sortBy := qp.Get("sortBy"); sortBy != "" {
		opts.SortBy = sortBy
	}

	switch qp.Get("sortOrder") {
	case "":
	case "asc":
		opts.Descending = false
	case "desc":
		opts.Descending = true
	default:
		return nil, errBadSortOrder
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &opts, nil
}

func idFromReq(r *http.Request) (*platform.ID, error) {
	id, err := platform.IDFromString(chi.URLParam(r, "id"))
	if err != nil {
		return nil, errBadID
	}
	return id, nil
}
