// Package standings folds match outcomes into a ranked category table.
package standings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/league-system/models"
)

// Skip describes a match left out of the table because it references data
// that does not fit the category.
type Skip struct {
	MatchID int
	Reason  string
}

// Table is the result of Compute.
type Table struct {
	Rows    []*models.Standing // ranked, Position is 1-based
	Skipped []Skip
	Decided int // matches with a recorded winner that were counted
}

// tally is the per-player accumulator. It is a value type, contributions are
// merged with add.
type tally struct {
	played, won, lost   int
	wonByWO, lostByWO   int
	notReported         int
	points              int
	setsWon, setsLost   int
	gamesWon, gamesLost int
}

func (t tally) add(o tally) tally {
	return tally{
		played:      t.played + o.played,
		won:         t.won + o.won,
		lost:        t.lost + o.lost,
		wonByWO:     t.wonByWO + o.wonByWO,
		lostByWO:    t.lostByWO + o.lostByWO,
		notReported: t.notReported + o.notReported,
		points:      t.points + o.points,
		setsWon:     t.setsWon + o.setsWon,
		setsLost:    t.setsLost + o.setsLost,
		gamesWon:    t.gamesWon + o.gamesWon,
		gamesLost:   t.gamesLost + o.gamesLost,
	}
}

// contribution is what one match adds to each of its two players.
type contribution struct {
	player1, player2 tally
	decided          bool
}

// Compute rebuilds the table of a category from scratch. Every player in
// players gets a row, even with no matches. Matches are folded in any order;
// the result does not depend on it.
func Compute(categoryID int, players []*models.Player, matches []*models.Match, pointsPerWin int) Table {
	acc := make(map[int]tally, len(players))
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		acc[p.ID] = tally{}
		byID[p.ID] = p
	}

	var table Table
	for _, m := range matches {
		c, err := contributionOf(m, pointsPerWin)
		if err != nil {
			table.Skipped = append(table.Skipped, Skip{MatchID: m.ID, Reason: err.Error()})
			continue
		}
		if c == nil {
			continue
		}
		if _, ok := acc[m.Player1ID]; !ok {
			table.Skipped = append(table.Skipped, Skip{MatchID: m.ID, Reason: fmt.Sprintf("player %d is not in category %d", m.Player1ID, categoryID)})
			continue
		}
		if _, ok := acc[m.Player2ID]; !ok {
			table.Skipped = append(table.Skipped, Skip{MatchID: m.ID, Reason: fmt.Sprintf("player %d is not in category %d", m.Player2ID, categoryID)})
			continue
		}
		acc[m.Player1ID] = acc[m.Player1ID].add(c.player1)
		acc[m.Player2ID] = acc[m.Player2ID].add(c.player2)
		if c.decided {
			table.Decided++
		}
	}

	table.Rows = make([]*models.Standing, 0, len(players))
	for _, p := range players {
		t := acc[p.ID]
		table.Rows = append(table.Rows, &models.Standing{
			CategoryID:            categoryID,
			PlayerID:              p.ID,
			Points:                t.points,
			MatchesPlayed:         t.played,
			MatchesWon:            t.won,
			MatchesLost:           t.lost,
			MatchesWonByWalkover:  t.wonByWO,
			MatchesLostByWalkover: t.lostByWO,
			MatchesNotReported:    t.notReported,
			SetsWon:               t.setsWon,
			SetsLost:              t.setsLost,
			GamesWon:              t.gamesWon,
			GamesLost:             t.gamesLost,
			Player:                byID[p.ID],
		})
	}
	Rank(table.Rows)
	return table
}

// contributionOf returns nil for undecided matches.
func contributionOf(m *models.Match, pointsPerWin int) (*contribution, error) {
	switch o := m.CurrentOutcome().(type) {
	case models.Undecided:
		return nil, nil

	case models.Unreported:
		// Оба игрока наказаны: матч сыгран, очков нет.
		penalty := tally{played: 1, notReported: 1}
		return &contribution{player1: penalty, player2: penalty}, nil

	case models.Walkover:
		if !m.HasPlayer(o.WinnerID) {
			return nil, fmt.Errorf("winner %d is not a participant", o.WinnerID)
		}
		winner := tally{played: 1, won: 1, wonByWO: 1, points: pointsPerWin}
		loser := tally{played: 1, lost: 1, lostByWO: 1}
		if o.WinnerID == m.Player1ID {
			return &contribution{player1: winner, player2: loser, decided: true}, nil
		}
		return &contribution{player1: loser, player2: winner, decided: true}, nil

	case models.Decisive:
		if len(o.Sets) < 2 || len(o.Sets) > 3 {
			return nil, fmt.Errorf("decisive match has %d sets", len(o.Sets))
		}
		var p1, p2 tally
		for _, set := range o.Sets {
			if set.Player1Won() {
				p1.setsWon++
				p2.setsLost++
			} else {
				p2.setsWon++
				p1.setsLost++
			}
			p1.gamesWon += set.Player1Games
			p1.gamesLost += set.Player2Games
			p2.gamesWon += set.Player2Games
			p2.gamesLost += set.Player1Games
		}
		p1.played, p2.played = 1, 1
		switch o.WinnerID {
		case m.Player1ID:
			p1.won, p1.points = 1, pointsPerWin
			p2.lost = 1
		case m.Player2ID:
			p2.won, p2.points = 1, pointsPerWin
			p1.lost = 1
		default:
			return nil, fmt.Errorf("winner %d is not a participant", o.WinnerID)
		}
		return &contribution{player1: p1, player2: p2, decided: true}, nil

	default:
		return nil, fmt.Errorf("unknown outcome %T", o)
	}
}

// Rank sorts rows by points, set difference, game difference, then last and
// first name (case-insensitive), and assigns 1-based positions. Rows for the
// same name fall back to player id, so no two rows compare equal.
func Rank(rows []*models.Standing) {
	sort.SliceStable(rows, func(i, j int) bool {
		return Less(rows[i], rows[j])
	})
	for i, row := range rows {
		row.Position = i + 1
	}
}

// Less reports whether a ranks above b.
func Less(a, b *models.Standing) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.SetDifference() != b.SetDifference() {
		return a.SetDifference() > b.SetDifference()
	}
	if a.GameDifference() != b.GameDifference() {
		return a.GameDifference() > b.GameDifference()
	}
	if c := strings.Compare(sortName(a), sortName(b)); c != 0 {
		return c < 0
	}
	return a.PlayerID < b.PlayerID
}

func sortName(s *models.Standing) string {
	if s.Player == nil {
		return ""
	}
	return strings.ToLower(s.Player.LastName) + "\x00" + strings.ToLower(s.Player.FirstName)
}
