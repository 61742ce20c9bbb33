package fixture

import "fmt"

// RoundRobinPairings returns, for each round, the pairings of the circle
// method: slot 0 stays fixed and meets the slot rotated into the round,
// the remaining slots rotate one position per round. With an odd number of
// players a bye slot is appended; pairings against it are dropped, so that
// player sits the round out.
//
// Every unordered pair of players meets exactly once across the result.
func RoundRobinPairings(playerIDs []int) ([][]Pairing, error) {
	if len(playerIDs) < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrNotEnoughPlayers, len(playerIDs))
	}
	seen := make(map[int]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}

	n := len(playerIDs)
	bye := -1
	if n%2 == 1 {
		bye = n
		n++
	}
	numRounds := n - 1
	perRound := n / 2

	rounds := make([][]Pairing, 0, numRounds)
	for round := 0; round < numRounds; round++ {
		pairings := make([]Pairing, 0, perRound)
		for slot := 0; slot < perRound; slot++ {
			var home, away int
			if slot == 0 {
				home = 0
				away = round + 1
			} else {
				home = (round-slot+numRounds)%numRounds + 1
				away = (round+slot)%numRounds + 1
			}
			if home == bye || away == bye {
				continue
			}
			pairings = append(pairings, Pairing{
				Player1ID: playerIDs[home],
				Player2ID: playerIDs[away],
			})
		}
		rounds = append(rounds, pairings)
	}
	return rounds, nil
}
