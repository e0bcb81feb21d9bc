// Package game expone las operaciones de juego sobre el perfil: clicks,
// score, experiencia y leaderboard.
package game

import (
	"context"
	"fmt"
	"sort"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
)

// Entry es una fila del leaderboard.
type Entry struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

type Service struct {
	repo repository.AccountRepository
}

func NewService(repo repository.AccountRepository) *Service {
	return &Service{repo: repo}
}

// Leaderboard ordena por score descendente; los empates mantienen el orden del repositorio.
func (s *Service) Leaderboard(ctx context.Context) ([]Entry, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]Entry, 0, len(all))
	for _, a := range all {
		out = append(out, Entry{Name: a.Profile.Nickname.Value, Score: a.Profile.Score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// Users devuelve la vista pública de todas las cuentas.
func (s *Service) Users(ctx context.Context) ([]account.Public, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]account.Public, 0, len(all))
	for _, a := range all {
		out = append(out, a.Public())
	}
	return out, nil
}

// Click suma un click y persiste.
func (s *Service) Click(ctx context.Context, a *account.Account) (int64, error) {
	n := a.Click()
	if err := s.repo.Save(ctx, a); err != nil {
		return 0, fmt.Errorf("save account: %w", err)
	}
	return n, nil
}

func (s *Service) AddScore(ctx context.Context, a *account.Account, delta int64) error {
	if err := a.AddScore(delta); err != nil {
		return err
	}
	return s.repo.Save(ctx, a)
}

func (s *Service) AddExperience(ctx context.Context, a *account.Account, delta int64) error {
	if err := a.AddExperience(delta); err != nil {
		return err
	}
	return s.repo.Save(ctx, a)
}
