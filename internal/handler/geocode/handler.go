package geocode

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/shadowing-api/internal/geo"
	"github.com/jwalitptl/shadowing-api/pkg/geocode"
	"github.com/jwalitptl/shadowing-api/pkg/httputil"
)

const defaultCenterLabel = "UW Tacoma"

type Geocoder interface {
	Search(ctx context.Context, q string) ([]geocode.Suggestion, error)
	PostalCode(ctx context.Context, code string) (geo.Point, bool, error)
}

// Handler proxies place lookups used to prefill forms. Upstream failures never
// surface as errors; the caller falls back to manual entry.
type Handler struct {
	geocoder Geocoder
}

func NewHandler(geocoder Geocoder) *Handler {
	return &Handler{geocoder: geocoder}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/geocode")
	{
		g.GET("/search", h.Search)
		g.GET("/zip/:code", h.Zip)
	}
}

type ZipResponse struct {
	Found   bool    `json:"found"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Label   string  `json:"label"`
	Message string  `json:"message"`
}

func (h *Handler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		httputil.RespondWithSuccess(c, []geocode.Suggestion{})
		return
	}

	suggestions, err := h.geocoder.Search(c.Request.Context(), q)
	if err != nil {
		log.Debug().Err(err).Str("q", q).Msg("geocode search unavailable")
		httputil.RespondWithSuccess(c, []geocode.Suggestion{})
		return
	}

	httputil.RespondWithSuccess(c, suggestions)
}

func (h *Handler) Zip(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))

	point, found, err := h.geocoder.PostalCode(c.Request.Context(), code)
	switch {
	case err != nil:
		log.Debug().Err(err).Str("zip", code).Msg("zip lookup unavailable")
		httputil.RespondWithSuccess(c, fallback("Could not locate ZIP. Using UW Tacoma as center."))
	case !found:
		httputil.RespondWithSuccess(c, fallback("ZIP code not found. Using UW Tacoma as center."))
	default:
		httputil.RespondWithSuccess(c, ZipResponse{
			Found: true,
			Lat:   point.Lat,
			Lng:   point.Lng,
			Label: fmt.Sprintf("ZIP %s", code),
		})
	}
}

func fallback(message string) ZipResponse {
	return ZipResponse{
		Lat:     geo.DefaultCenter.Lat,
		Lng:     geo.DefaultCenter.Lng,
		Label:   defaultCenterLabel,
		Message: message,
	}
}
