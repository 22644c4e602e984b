package app

import (
	"context"

	"safelearn-service/internal/domain"
)

// Dashboard is the composed view behind the learner's landing page:
// their own profile summary, the per-hazard module progress blocks, and
// the current leaderboard snapshot.
type Dashboard struct {
	Profile     domain.UserProfile      `json:"profile"`
	Modules     []domain.ModuleProgress `json:"modules"`
	Leaderboard domain.Leaderboard      `json:"leaderboard"`
}

// hazardModules is the fixed preparedness curriculum. Lesson tracking
// lives outside the quiz engine, so completion counts are static for now.
// TODO: derive Completed from per-module lesson records once those exist.
var hazardModules = []domain.ModuleProgress{
	{Name: "Earthquake", Completed: 17, Total: 20, Percent: 85},
	{Name: "Flood", Completed: 12, Total: 20, Percent: 60},
	{Name: "Fire", Completed: 8, Total: 20, Percent: 40},
	{Name: "Cyclone", Completed: 5, Total: 20, Percent: 25},
}

// Dashboard assembles the landing-page view for the learner.
func (s *QuizService) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	profile, err := s.profiles.FetchProfile(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	lb, err := s.Leaderboard(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	modules := make([]domain.ModuleProgress, len(hazardModules))
	copy(modules, hazardModules)
	return Dashboard{
		Profile:     profile,
		Modules:     modules,
		Leaderboard: lb,
	}, nil
}
