package experience

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	"github.com/jwalitptl/shadowing-api/internal/model"
	experienceService "github.com/jwalitptl/shadowing-api/internal/service/experience"
	"github.com/jwalitptl/shadowing-api/pkg/errors"
	"github.com/jwalitptl/shadowing-api/pkg/httputil"
)

type Handler struct {
	service experienceService.ExperienceServicer
}

func NewHandler(service experienceService.ExperienceServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	experiences := r.Group("/experiences")
	{
		experiences.GET("", h.ListExperiences)
		experiences.GET("/summary", h.Summary)
		experiences.POST("", h.CreateExperience)
		experiences.PUT("/:id", h.UpdateExperience)
		experiences.DELETE("/:id", h.DeleteExperience)
	}
}

// experienceRequest accepts hours and the weekly inputs as JSON numbers or
// numeric strings.
type experienceRequest struct {
	ExperienceType      string      `json:"experienceType" binding:"omitempty,oneof=dental_shadowing_in_person dental_shadowing_virtual volunteer employment research other"`
	OrganizationName    string      `json:"organizationName" binding:"required"`
	Address             string      `json:"address"`
	Address2            string      `json:"address2"`
	City                string      `json:"city"`
	StateProvince       string      `json:"stateProvince"`
	Country             string      `json:"country"`
	Zip                 string      `json:"zip"`
	SupervisorFirstName string      `json:"supervisorFirstName"`
	SupervisorLastName  string      `json:"supervisorLastName"`
	SupervisorTitle     string      `json:"supervisorTitle"`
	SupervisorPhone     string      `json:"supervisorPhone"`
	SupervisorEmail     string      `json:"supervisorEmail"`
	Hours               interface{} `json:"hours"`
	DateStart           string      `json:"dateStart"`
	DateEnd             string      `json:"dateEnd"`
	Notes               string      `json:"notes"`
	Description         string      `json:"description"`
	AvgWeeklyHours      interface{} `json:"avgWeeklyHours"`
	NumberOfWeeks       interface{} `json:"numberOfWeeks"`
	CurrentExperience   bool        `json:"currentExperience"`
	Status              string      `json:"status"`
	Title               string      `json:"title"`
	TypeCompensated     bool        `json:"typeCompensated"`
	TypeAcademicCredit  bool        `json:"typeAcademicCredit"`
	TypeVolunteer       bool        `json:"typeVolunteer"`
}

func (r *experienceRequest) toModel(id string) (*model.Experience, error) {
	avgWeekly, err := toOptionalNumber(r.AvgWeeklyHours)
	if err != nil {
		return nil, errors.Validation("avgWeeklyHours must be a number")
	}
	weeks, err := toOptionalNumber(r.NumberOfWeeks)
	if err != nil {
		return nil, errors.Validation("numberOfWeeks must be a number")
	}

	// Without hours, both weekly inputs are needed to derive them.
	var hours float64
	switch {
	case r.Hours != nil:
		if hours, err = toNumber(r.Hours); err != nil {
			return nil, errors.Validation("hours must be a non-negative number")
		}
	case avgWeekly != nil && weeks != nil:
		hours = model.DeriveHours(avgWeekly, weeks, 0)
	default:
		return nil, errors.Validation("hours is required")
	}

	return &model.Experience{
		ID:                  id,
		ExperienceType:      r.ExperienceType,
		OrganizationName:    r.OrganizationName,
		Address:             r.Address,
		Address2:            r.Address2,
		City:                r.City,
		StateProvince:       r.StateProvince,
		Country:             r.Country,
		Zip:                 r.Zip,
		SupervisorFirstName: r.SupervisorFirstName,
		SupervisorLastName:  r.SupervisorLastName,
		SupervisorTitle:     r.SupervisorTitle,
		SupervisorPhone:     r.SupervisorPhone,
		SupervisorEmail:     r.SupervisorEmail,
		Hours:               hours,
		DateStart:           r.DateStart,
		DateEnd:             r.DateEnd,
		Notes:               r.Notes,
		Description:         r.Description,
		AvgWeeklyHours:      avgWeekly,
		NumberOfWeeks:       weeks,
		CurrentExperience:   r.CurrentExperience,
		Status:              r.Status,
		Title:               r.Title,
		TypeCompensated:     r.TypeCompensated,
		TypeAcademicCredit:  r.TypeAcademicCredit,
		TypeVolunteer:       r.TypeVolunteer,
	}, nil
}

func toNumber(v interface{}) (float64, error) {
	switch v.(type) {
	case float64, string:
		return cast.ToFloat64E(v)
	default:
		return 0, errors.Validation("not a number")
	}
}

func toOptionalNumber(v interface{}) (*float64, error) {
	if v == nil || v == "" {
		return nil, nil
	}
	f, err := toNumber(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (h *Handler) CreateExperience(c *gin.Context) {
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	experience, err := req.toModel("")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.CreateExperience(c.Request.Context(), experience); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	log.Info().Str("experience_id", experience.ID).Msg("experience created")
	httputil.RespondCreated(c, experience.ID)
}

func (h *Handler) UpdateExperience(c *gin.Context) {
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	experience, err := req.toModel(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.UpdateExperience(c.Request.Context(), experience); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondOK(c)
}

func (h *Handler) DeleteExperience(c *gin.Context) {
	if err := h.service.DeleteExperience(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondOK(c)
}

func (h *Handler) ListExperiences(c *gin.Context) {
	var filter model.ExperienceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	experiences, err := h.service.ListExperiences(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, experiences)
}

func (h *Handler) Summary(c *gin.Context) {
	var filter model.ExperienceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, summary)
}
