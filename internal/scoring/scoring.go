// Package scoring turns a team's placement and kills in one match into
// points and validates submitted result sheets.
package scoring

import (
	"fmt"

	"esports-scoreboard/internal/constants"
	"esports-scoreboard/internal/domain"
)

// placementTable is indexed by placement; index 0 is unused.
var placementTable = [constants.MaxPlacement + 1]int{
	0,
	10, 6, 5, 4, 3, 2, 1, 1,
	0, 0, 0, 0, 0, 0, 0, 0,
}

func PlacementPoints(placement int) (int, error) {
	if placement < constants.MinPlacement || placement > constants.MaxPlacement {
		return 0, domain.NewValidationError(domain.ErrCodeInvalidPlacement,
			fmt.Sprintf("placement must be between %d and %d, got %d", constants.MinPlacement, constants.MaxPlacement, placement))
	}
	return placementTable[placement], nil
}

func KillPoints(kills int) (int, error) {
	if kills < 0 {
		return 0, domain.NewValidationError(domain.ErrCodeInvalidKillCount,
			fmt.Sprintf("kills cannot be negative, got %d", kills))
	}
	return kills * constants.KillPointsPerKill, nil
}

func MatchPoints(placement, kills int) (domain.MatchPoints, error) {
	pp, err := PlacementPoints(placement)
	if err != nil {
		return domain.MatchPoints{}, err
	}
	kp, err := KillPoints(kills)
	if err != nil {
		return domain.MatchPoints{}, err
	}
	return domain.MatchPoints{PlacementPoints: pp, KillPoints: kp, Total: pp + kp}, nil
}
