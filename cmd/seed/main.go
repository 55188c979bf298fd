package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/nutriplan/backend/config"
	"github.com/pageza/nutriplan/backend/internal/database"
	"github.com/pageza/nutriplan/backend/internal/logging"
	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/repository"
)

var (
	email    string
	password string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo account",
	Long: `Create a demo account with one completed and one pending diet plan.

Running it again leaves the account alone and rewrites the two plans.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, "nutriplan-seed")
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		db, err := database.Open(cfg, logger)
		if err != nil {
			return err
		}
		if err := database.RunMigrations(db, logger); err != nil {
			return err
		}

		user, err := seedDemo(cmd.Context(), db, email, password, logger)
		if err != nil {
			return err
		}
		cmd.Printf("demo account %s ready (id %s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&email, "email", "demo@nutriplan.app", "demo account email")
	rootCmd.Flags().StringVar(&password, "password", "demo-password", "demo account password")
}

var completedPlanData = map[string]string{
	"nutritional_requirements": "- **Calories**: 1,900 kcal per day\n- **Protein**: 120g\n- **Fiber**: 30g",
	"medical_considerations":   "No conditions reported. Keep sodium under 2,300mg.",
	"meal_plan":                "**Breakfast**: Greek yogurt with berries\n**Lunch**: Quinoa salad with chickpeas\n**Dinner**: Baked salmon with vegetables",
	"grocery_list":             "- Greek yogurt\n- Berries\n- Quinoa\n- Chickpeas\n- Salmon\n- Broccoli",
}

// planID is stable per account so reseeding updates the same rows.
func planID(userID uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(userID, []byte(name))
}

func seedDemo(ctx context.Context, db *gorm.DB, email, password string, log *zap.Logger) (*models.User, error) {
	users := repository.NewUserRepository(db)
	plans := repository.NewPlanRepository(db)

	user, err := users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		first, last := "Demo", "User"
		user = &models.User{Email: email, PasswordHash: string(hash)}
		if err := users.CreateWithProfile(ctx, user, &first, &last); err != nil {
			return nil, err
		}
		log.Info("created demo account", zap.String("email", user.Email))
	case err != nil:
		return nil, err
	default:
		log.Info("demo account exists", zap.String("email", user.Email))
	}

	raw, err := json.Marshal(completedPlanData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan data: %w", err)
	}
	data := datatypes.JSON(raw)
	restrictions := "Vegetarian on weekdays"
	now := time.Now()

	seeded := []*models.DietPlan{
		{
			ID:                  planID(user.ID, "completed"),
			UserID:              user.ID,
			Goal:                "weight-loss",
			Status:              models.PlanCompleted,
			PlanData:            &data,
			DietaryRestrictions: &restrictions,
			CreatedAt:           now.Add(-48 * time.Hour),
		},
		{
			ID:        planID(user.ID, "pending"),
			UserID:    user.ID,
			Goal:      "muscle-gain",
			Status:    models.PlanPending,
			CreatedAt: now,
		},
	}
	for _, p := range seeded {
		if err := plans.Upsert(ctx, p); err != nil {
			return nil, err
		}
	}
	log.Info("seeded diet plans", zap.Int("count", len(seeded)))
	return user, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
