package model

// Experience types.
const (
	TypeShadowingInPerson = "dental_shadowing_in_person"
	TypeShadowingVirtual  = "dental_shadowing_virtual"
	TypeVolunteer         = "volunteer"
	TypeEmployment        = "employment"
	TypeResearch          = "research"
	TypeOther             = "other"
)

var ExperienceTypes = []string{
	TypeShadowingInPerson,
	TypeShadowingVirtual,
	TypeVolunteer,
	TypeEmployment,
	TypeResearch,
	TypeOther,
}

// Experience progress values. Status is free text; these are the ones the UI offers.
const (
	ProgressCompleted  = "completed"
	ProgressInProgress = "in_progress"
	ProgressPlanned    = "planned"
)

type Experience struct {
	ID                  string   `db:"id" json:"id"`
	ExperienceType      string   `db:"experience_type" json:"experienceType"`
	OrganizationName    string   `db:"organization_name" json:"organizationName"`
	Address             string   `db:"address" json:"address"`
	Address2            string   `db:"address2" json:"address2"`
	City                string   `db:"city" json:"city"`
	StateProvince       string   `db:"state_province" json:"stateProvince"`
	Country             string   `db:"country" json:"country"`
	Zip                 string   `db:"zip" json:"zip"`
	SupervisorFirstName string   `db:"supervisor_first_name" json:"supervisorFirstName"`
	SupervisorLastName  string   `db:"supervisor_last_name" json:"supervisorLastName"`
	SupervisorTitle     string   `db:"supervisor_title" json:"supervisorTitle"`
	SupervisorPhone     string   `db:"supervisor_phone" json:"supervisorPhone"`
	SupervisorEmail     string   `db:"supervisor_email" json:"supervisorEmail"`
	Hours               float64  `db:"hours" json:"hours"`
	DateStart           string   `db:"date_start" json:"dateStart"`
	DateEnd             string   `db:"date_end" json:"dateEnd"`
	Notes               string   `db:"notes" json:"notes"`
	Description         string   `db:"description" json:"description"`
	AvgWeeklyHours      *float64 `db:"avg_weekly_hours" json:"avgWeeklyHours"`
	NumberOfWeeks       *float64 `db:"number_of_weeks" json:"numberOfWeeks"`
	CurrentExperience   bool     `db:"current_experience" json:"currentExperience"`
	Status              string   `db:"status" json:"status"`
	Title               string   `db:"title" json:"title"`
	TypeCompensated     bool     `db:"type_compensated" json:"typeCompensated"`
	TypeAcademicCredit  bool     `db:"type_academic_credit" json:"typeAcademicCredit"`
	TypeVolunteer       bool     `db:"type_volunteer" json:"typeVolunteer"`
	CreatedAt           string   `db:"created_at" json:"createdAt"`
}

// IsExperienceType reports whether s is one of ExperienceTypes.
func IsExperienceType(s string) bool {
	for _, t := range ExperienceTypes {
		if s == t {
			return true
		}
	}
	return false
}

// DeriveHours returns avgWeekly × weeks when both are known, otherwise manual.
// The store keeps whatever hours it is given.
func DeriveHours(avgWeekly, weeks *float64, manual float64) float64 {
	if avgWeekly != nil && weeks != nil {
		return *avgWeekly * *weeks
	}
	return manual
}

// ExperienceFilter narrows the experience list. All fields are optional and
// AND-combined; Type is an exact match, the rest are substring matches.
type ExperienceFilter struct {
	Clinic     string `form:"clinic"`
	Supervisor string `form:"supervisor"`
	Phone      string `form:"phone"`
	Email      string `form:"email"`
	Type       string `form:"type"`
}

// HoursSummary totals hours over a set of experiences.
type HoursSummary struct {
	Count          int                `json:"count"`
	Total          float64            `json:"total"`
	ByType         map[string]float64 `json:"byType"`
	ByOrganization map[string]float64 `json:"byOrganization"`
}

// Summarize totals hours by type and organization.
func Summarize(experiences []*Experience) *HoursSummary {
	s := &HoursSummary{
		ByType:         make(map[string]float64),
		ByOrganization: make(map[string]float64),
	}
	for _, e := range experiences {
		s.Count++
		s.Total += e.Hours
		s.ByType[e.ExperienceType] += e.Hours
		s.ByOrganization[e.OrganizationName] += e.Hours
	}
	return s
}
