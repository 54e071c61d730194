package internal

import (
	"context"
	"log"

	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/repository"
)

// InitSystemProfiles seeds the built-in ramp profiles on first start. The
// seed is skipped as soon as any system profile exists, so operator edits to
// custom profiles are never touched.
func InitSystemProfiles(r *repository.Repositories) error {
	ctx := context.Background()

	existing, err := r.WarmupProfileRepository.List(ctx)
	if err != nil {
		return err
	}
	for _, profile := range existing {
		if profile.IsSystem {
			return nil
		}
	}

	profiles := []*models.WarmupProfile{
		{
			Name:        "Conservative",
			Description: "Slow and safe warmup over 45 days. Best for new domains.",
			IsSystem:    true,
			Phase1Days:  10, Phase1MinEmails: 1, Phase1MaxEmails: 3,
			Phase2Days: 10, Phase2MinEmails: 3, Phase2MaxEmails: 8,
			Phase3Days: 10, Phase3MinEmails: 8, Phase3MaxEmails: 15,
			Phase4Days: 15, Phase4MinEmails: 15, Phase4MaxEmails: 25,
		},
		{
			Name:        "Standard",
			Description: "Balanced warmup over 30 days. Recommended for most use cases.",
			IsSystem:    true,
			IsDefault:   true,
			Phase1Days:  7, Phase1MinEmails: 2, Phase1MaxEmails: 5,
			Phase2Days: 7, Phase2MinEmails: 5, Phase2MaxEmails: 15,
			Phase3Days: 7, Phase3MinEmails: 15, Phase3MaxEmails: 25,
			Phase4Days: 9, Phase4MinEmails: 25, Phase4MaxEmails: 35,
		},
		{
			Name:        "Aggressive",
			Description: "Fast warmup over 20 days. For established domains with good reputation.",
			IsSystem:    true,
			Phase1Days:  5, Phase1MinEmails: 3, Phase1MaxEmails: 8,
			Phase2Days: 5, Phase2MinEmails: 8, Phase2MaxEmails: 20,
			Phase3Days: 5, Phase3MinEmails: 20, Phase3MaxEmails: 35,
			Phase4Days: 5, Phase4MinEmails: 35, Phase4MaxEmails: 50,
		},
	}

	for _, profile := range profiles {
		if err := r.WarmupProfileRepository.Create(ctx, profile); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d system warmup profiles", len(profiles))
	return nil
}
