// Package seed loads the Tacoma-area demo clinics into an empty database.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/shadowing-api/internal/model"
	"github.com/jwalitptl/shadowing-api/internal/repository"
)

// Clinics are inserted with their recorded verification dates, not today's.
var Clinics = []model.Clinic{
	{
		Name:            "Tacoma Smiles Dental",
		Address:         "1107 Martin Luther King Jr Way, Tacoma, WA",
		Phone:           "(253) 555-0131",
		Lat:             47.2478,
		Lng:             -122.4362,
		Zip:             "98405",
		ShadowingStatus: model.StatusAvailable,
		Notes:           "Welcomes pre-dental students on Friday mornings.",
		LastVerifiedAt:  "2025-12-10",
	},
	{
		Name:            "Foss Dental Group",
		Address:         "3212 N 26th St, Tacoma, WA",
		Phone:           "(253) 555-0198",
		Lat:             47.2729,
		Lng:             -122.4714,
		Zip:             "98407",
		ShadowingStatus: model.StatusMixed,
		Notes:           "Availability changes each quarter; call ahead.",
		LastVerifiedAt:  "2025-11-22",
	},
	{
		Name:            "Ruston Family Dentistry",
		Address:         "5005 N Pearl St, Ruston, WA",
		Phone:           "(253) 555-0174",
		Lat:             47.3094,
		Lng:             -122.5191,
		Zip:             "98407",
		ShadowingStatus: model.StatusUnavailable,
		Notes:           "Currently not accepting shadowing students.",
		LastVerifiedAt:  "2025-09-05",
	},
	{
		Name:            "Hilltop Oral Health Center",
		Address:         "1202 S L St, Tacoma, WA",
		Phone:           "(253) 555-0145",
		Lat:             47.2492,
		Lng:             -122.4532,
		Zip:             "98405",
		ShadowingStatus: model.StatusAvailable,
		Notes:           "Shadowing offered Mon-Wed, 8am-12pm.",
		LastVerifiedAt:  "2025-12-01",
	},
	{
		Name:            "Stadium Dental Studio",
		Address:         "3102 N 30th St, Tacoma, WA",
		Phone:           "(253) 555-0116",
		Lat:             47.2732,
		Lng:             -122.4729,
		Zip:             "98407",
		ShadowingStatus: model.StatusMixed,
		Notes:           "Usually accepts 1 student per month.",
		LastVerifiedAt:  "2025-10-18",
	},
	{
		Name:            "Lakewood Family Dental",
		Address:         "5100 100th St SW, Lakewood, WA",
		Phone:           "(253) 555-0127",
		Lat:             47.1659,
		Lng:             -122.5091,
		Zip:             "98499",
		ShadowingStatus: model.StatusAvailable,
		Notes:           "Prefers 2+ week notice.",
		LastVerifiedAt:  "2025-12-07",
	},
}

// Run inserts Clinics when the clinics table is empty and returns how many
// rows it wrote. A populated table is left untouched.
func Run(ctx context.Context, repo repository.ClinicRepository) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count clinics: %w", err)
	}
	if count > 0 {
		log.Info().Int("existing", count).Msg("seed skipped: clinics table already has data")
		return 0, nil
	}

	for i := range Clinics {
		clinic := Clinics[i]
		clinic.ID = uuid.New().String()
		if err := repo.Create(ctx, &clinic); err != nil {
			return i, fmt.Errorf("failed to seed clinic %q: %w", clinic.Name, err)
		}
	}

	log.Info().Int("inserted", len(Clinics)).Msg("seed complete")
	return len(Clinics), nil
}
