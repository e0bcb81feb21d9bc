package account

import (
	"encoding/json"
	"time"
)

// Public es la vista sin credenciales que exponen /api/users y el leaderboard.
type Public struct {
	ID         string    `json:"id"`
	Nickname   string    `json:"nickname"`
	Score      int64     `json:"score"`
	Experience int64     `json:"experience"`
	Platforms  []string  `json:"platforms"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (a *Account) Public() Public {
	platforms := make([]string, 0, len(Platforms))
	for _, p := range Platforms {
		if a.HasPlatform(p) {
			platforms = append(platforms, p)
		}
	}
	return Public{
		ID:         a.ID,
		Nickname:   a.Profile.Nickname.Value,
		Score:      a.Profile.Score,
		Experience: a.Profile.Experience,
		Platforms:  platforms,
		CreatedAt:  a.CreatedAt,
	}
}

// Clone devuelve una copia profunda sin el dirty flag.
func (a *Account) Clone() (*Account, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var out Account
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
