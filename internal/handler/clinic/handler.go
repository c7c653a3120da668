package clinic

import (
	"context"
	"math"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	"github.com/jwalitptl/shadowing-api/internal/geo"
	"github.com/jwalitptl/shadowing-api/internal/model"
	clinicService "github.com/jwalitptl/shadowing-api/internal/service/clinic"
	"github.com/jwalitptl/shadowing-api/pkg/errors"
	"github.com/jwalitptl/shadowing-api/pkg/httputil"
)

// ZipLocator resolves a postal code to a map point.
type ZipLocator interface {
	PostalCode(ctx context.Context, code string) (geo.Point, bool, error)
}

type Handler struct {
	service clinicService.ClinicServicer
	zips    ZipLocator
}

// NewHandler builds the clinic endpoints. zips may be nil, in which case a
// radius filter without coordinates is centered on the default point.
func NewHandler(service clinicService.ClinicServicer, zips ZipLocator) *Handler {
	return &Handler{service: service, zips: zips}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinics")
	{
		clinics.GET("", h.ListClinics)
		clinics.POST("", h.CreateClinic)
		clinics.PUT("/:id", h.UpdateClinic)
	}
}

type clinicRequest struct {
	Name            string   `json:"name" binding:"required"`
	Address         string   `json:"address" binding:"required"`
	Phone           string   `json:"phone"`
	Lat             *float64 `json:"lat" binding:"required"`
	Lng             *float64 `json:"lng" binding:"required"`
	Zip             string   `json:"zip"`
	ShadowingStatus string   `json:"shadowingStatus" binding:"omitempty,oneof=available mixed unavailable pending"`
	Notes           string   `json:"notes"`
}

func (r *clinicRequest) toModel(id string) *model.Clinic {
	return &model.Clinic{
		ID:              id,
		Name:            r.Name,
		Address:         r.Address,
		Phone:           r.Phone,
		Lat:             *r.Lat,
		Lng:             *r.Lng,
		Zip:             r.Zip,
		ShadowingStatus: r.ShadowingStatus,
		Notes:           r.Notes,
	}
}

type listQuery struct {
	Status string `form:"status"`
	Zip    string `form:"zip"`
	Miles  string `form:"miles"`
	Lat    string `form:"lat"`
	Lng    string `form:"lng"`
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req clinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	clinic := req.toModel("")
	if err := h.service.CreateClinic(c.Request.Context(), clinic); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	log.Info().Str("clinic_id", clinic.ID).Msg("clinic created")
	httputil.RespondCreated(c, clinic.ID)
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	var req clinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	if err := h.service.UpdateClinic(c.Request.Context(), req.toModel(c.Param("id"))); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondOK(c)
}

func (h *Handler) ListClinics(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	filter, err := h.buildFilter(c.Request.Context(), q)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	clinics, err := h.service.ListClinics(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, clinics)
}

func (h *Handler) buildFilter(ctx context.Context, q listQuery) (model.ClinicFilter, error) {
	filter := model.ClinicFilter{
		Status:    strings.TrimSpace(q.Status),
		ZipPrefix: strings.TrimSpace(q.Zip),
	}

	miles := strings.TrimSpace(q.Miles)
	if miles == "" || miles == model.FilterAll {
		return filter, nil
	}
	radius, err := cast.ToFloat64E(miles)
	if err != nil || math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return filter, errors.Validation("miles must be a non-negative number")
	}
	filter.RadiusMiles = &radius

	if q.Lat != "" || q.Lng != "" {
		lat, latErr := cast.ToFloat64E(q.Lat)
		lng, lngErr := cast.ToFloat64E(q.Lng)
		filter.Center = geo.Point{Lat: lat, Lng: lng}
		if latErr != nil || lngErr != nil || !filter.Center.Valid() {
			return filter, errors.Validation("lat and lng must be numbers")
		}
		return filter, nil
	}

	filter.Center = h.center(ctx, filter.ZipPrefix)
	return filter, nil
}

// center resolves the radius origin from zip, falling back to the default
// point when the zip is empty, unknown, or the lookup fails.
func (h *Handler) center(ctx context.Context, zip string) geo.Point {
	if zip == "" || h.zips == nil {
		return geo.DefaultCenter
	}
	point, found, err := h.zips.PostalCode(ctx, zip)
	if err != nil {
		log.Debug().Err(err).Str("zip", zip).Msg("zip lookup failed, using default center")
		return geo.DefaultCenter
	}
	if !found {
		return geo.DefaultCenter
	}
	return point
}
