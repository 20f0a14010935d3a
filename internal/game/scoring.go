package game

import "github.com/google/uuid"

// GameResult is derived once a player empties their hand.
type GameResult struct {
	WinnerID uuid.UUID `json:"winner_id"`

	// ScoresByPlayer credits the winner with the value of every other hand; everyone else scores 0.
	ScoresByPlayer map[uuid.UUID]int `json:"scores_by_player"`

	// HandPoints is the value each player was left holding.
	HandPoints map[uuid.UUID]int `json:"hand_points"`
}

// ComputeResult scores a finished game. The winner is the player with an
// empty hand; if there is none the result has a nil winner.
func ComputeResult(s *GameState) GameResult {
	res := GameResult{
		ScoresByPlayer: make(map[uuid.UUID]int, len(s.Players)),
		HandPoints:     make(map[uuid.UUID]int, len(s.Players)),
	}
	total := 0
	for _, p := range s.Players {
		h := s.Hands[p]
		pts := h.Points()
		res.HandPoints[p] = pts
		res.ScoresByPlayer[p] = 0
		if h.Size() == 0 && res.WinnerID == uuid.Nil {
			res.WinnerID = p
			continue
		}
		total += pts
	}
	if res.WinnerID != uuid.Nil {
		res.ScoresByPlayer[res.WinnerID] = total
	}
	return res
}

func (r GameResult) clone() GameResult {
	out := GameResult{
		WinnerID:       r.WinnerID,
		ScoresByPlayer: make(map[uuid.UUID]int, len(r.ScoresByPlayer)),
		HandPoints:     make(map[uuid.UUID]int, len(r.HandPoints)),
	}
	for k, v := range r.ScoresByPlayer {
		out.ScoresByPlayer[k] = v
	}
	for k, v := range r.HandPoints {
		out.HandPoints[k] = v
	}
	return out
}
