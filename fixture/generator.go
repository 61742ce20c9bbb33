package fixture

import (
	"errors"
	"time"
)

var (
	ErrNotEnoughPlayers   = errors.New("round robin requires at least 2 players")
	ErrDuplicatePlayer    = errors.New("player ids must be unique")
	ErrInvalidRoundLength = errors.New("round length must be at least 1 day")
)

// Pairing is one match of a round. Order carries no home/away meaning.
type Pairing struct {
	Player1ID int
	Player2ID int
}

// Round is a generated round before it is persisted.
type Round struct {
	Number      int // 1-based
	PeriodStart time.Time
	PeriodEnd   time.Time
	Pairings    []Pairing
}

// Generate builds the full single round-robin fixture for playerIDs, with
// contiguous play windows starting at startDate. A window stretched from the
// 30th to the 31st pushes every later start back one day, so round r starts
// at startDate + r*roundLengthDays only while no stretch has happened.
func Generate(playerIDs []int, startDate time.Time, roundLengthDays int) ([]Round, error) {
	if roundLengthDays < 1 {
		return nil, ErrInvalidRoundLength
	}
	pairings, err := RoundRobinPairings(playerIDs)
	if err != nil {
		return nil, err
	}

	rounds := make([]Round, 0, len(pairings))
	start := DateOf(startDate)
	for i, roundPairings := range pairings {
		end := WindowEnd(start, roundLengthDays)
		rounds = append(rounds, Round{
			Number:      i + 1,
			PeriodStart: start,
			PeriodEnd:   end,
			Pairings:    roundPairings,
		})
		// Следующая фаза начинается на следующий день после конца текущей,
		// поэтому окна не пересекаются даже после продления до 31-го числа.
		start = AddDays(end, 1)
	}
	return rounds, nil
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func AddDays(date time.Time, days int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, time.UTC)
}

// WindowEnd returns the inclusive last day of a window of lengthDays starting
// at start. A window ending on the 30th of a 31-day month is stretched to the
// 31st; no other month end is adjusted.
func WindowEnd(start time.Time, lengthDays int) time.Time {
	end := AddDays(start, lengthDays-1)
	if end.Day() == 30 && daysIn(end.Month(), end.Year()) == 31 {
		end = AddDays(end, 1)
	}
	return end
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
