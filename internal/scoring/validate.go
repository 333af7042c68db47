package scoring

import (
	"fmt"
	"strings"

	"esports-scoreboard/internal/constants"
	"esports-scoreboard/internal/domain"

	"go.uber.org/multierr"
)

// ValidateResultSet checks a whole result sheet and returns every issue it
// finds, combined with multierr. It never stops at the first problem and has
// no side effects.
func ValidateResultSet(results []domain.ResultEntry) error {
	if len(results) == 0 {
		return domain.NewValidationError(domain.ErrCodeEmptyResultSet, "match results must be a non-empty list")
	}

	var errs error
	placements := make(map[int]int, len(results))
	names := make(map[string]int, len(results))

	for i, r := range results {
		errs = multierr.Append(errs, ValidateResult(i, r))

		if r.Placement >= constants.MinPlacement && r.Placement <= constants.MaxPlacement {
			if first, seen := placements[r.Placement]; seen {
				errs = multierr.Append(errs, domain.NewEntryError(domain.ErrCodeDuplicatePlacement, i,
					fmt.Sprintf("placement %d already used by entry %d", r.Placement, first)))
			} else {
				placements[r.Placement] = i
			}
		}

		if strings.TrimSpace(r.TeamName) != "" {
			key := domain.NameKey(r.TeamName)
			if first, seen := names[key]; seen {
				errs = multierr.Append(errs, domain.NewEntryError(domain.ErrCodeDuplicateTeamName, i,
					fmt.Sprintf("team %q already appears in entry %d", strings.TrimSpace(r.TeamName), first)))
			} else {
				names[key] = i
			}
		}
	}

	return errs
}

// ValidateResult checks a single entry's fields.
func ValidateResult(index int, r domain.ResultEntry) error {
	var errs error
	if strings.TrimSpace(r.TeamName) == "" {
		errs = multierr.Append(errs, domain.NewEntryError(domain.ErrCodeMissingTeamName, index, "team name is required"))
	}
	if r.Kills < 0 {
		errs = multierr.Append(errs, domain.NewEntryError(domain.ErrCodeInvalidKills, index,
			fmt.Sprintf("kills must be a non-negative number, got %d", r.Kills)))
	}
	if r.Placement < constants.MinPlacement || r.Placement > constants.MaxPlacement {
		errs = multierr.Append(errs, domain.NewEntryError(domain.ErrCodeInvalidPlacement, index,
			fmt.Sprintf("placement must be between %d and %d, got %d", constants.MinPlacement, constants.MaxPlacement, r.Placement)))
	}
	return errs
}
