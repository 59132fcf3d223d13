package services

import (
	"context"
	"fmt"
	"log"
	"time"
	"tripsplit-backend/config"
	"tripsplit-backend/database"
	"tripsplit-backend/ledger"
	"tripsplit-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StartRecurringScheduler runs the recurring-expense sweep on a fixed
// interval until the process exits. Call it in a goroutine from main.
func StartRecurringScheduler() {
	interval, err := time.ParseDuration(config.AppConfig.SchedulerInterval)
	if err != nil || interval <= 0 {
		log.Printf("⚠️  Invalid SCHEDULER_INTERVAL %q, defaulting to 1h", config.AppConfig.SchedulerInterval)
		interval = time.Hour
	}

	log.Printf("✅ Recurring expense scheduler started (every %s)", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		generated, err := ProcessDueRecurringOnce(time.Now())
		if err != nil {
			log.Printf("❌ Recurring sweep failed: %v", err)
			continue
		}
		if generated > 0 {
			log.Printf("✅ Recurring sweep generated %d expense(s)", generated)
		}
	}
}

// ProcessDueRecurringOnce runs a single scheduler sweep: it loads every
// active template that is due, lets the ledger decide what to materialize,
// and persists the results. Each template's schedule advance and its
// generated expense commit in one transaction, compare-and-swapped on the
// stored next_occurrence: two concurrent instances cannot both insert an
// expense for the same period, and a crash mid-template cannot advance the
// schedule without its expense.
func ProcessDueRecurringOnce(now time.Time) (int, error) {
	var templates []models.RecurringExpense
	if err := database.DB.
		Where("is_active = ? AND next_occurrence <= ?", true, now).
		Find(&templates).Error; err != nil {
		return 0, err
	}

	if len(templates) == 0 {
		return 0, nil
	}

	previous := make(map[uuid.UUID]time.Time, len(templates))
	for _, tpl := range templates {
		previous[tpl.ID] = tpl.NextOccurrence
	}

	result := ledger.ProcessDueRecurring(templates, now)

	expenseByTemplate := make(map[uuid.UUID]models.Expense, len(result.Materialized))
	for _, expense := range result.Materialized {
		expenseByTemplate[*expense.RecurringID] = expense
	}

	generated := 0
	for _, tpl := range result.Updated {
		if !tpl.IsActive {
			// End date passed: switch the template off. Guarded so a
			// concurrent sweep deactivates it exactly once.
			database.DB.Model(&models.RecurringExpense{}).
				Where("id = ? AND is_active = ?", tpl.ID, true).
				Update("is_active", false)
			continue
		}

		expense, materialized := expenseByTemplate[tpl.ID]
		inserted := false

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			swap := tx.Model(&models.RecurringExpense{}).
				Where("id = ? AND next_occurrence = ?", tpl.ID, previous[tpl.ID]).
				Updates(map[string]interface{}{
					"next_occurrence": tpl.NextOccurrence,
					"last_generated":  tpl.LastGenerated,
				})
			if swap.Error != nil {
				return swap.Error
			}
			if swap.RowsAffected == 0 {
				// Another instance already advanced this template.
				return nil
			}
			if !materialized {
				return nil
			}

			if err := tx.Create(&expense).Error; err != nil {
				return err
			}
			inserted = true

			var payer models.User
			tx.First(&payer, expense.PaidBy)
			return tx.Create(&models.Activity{
				TripID:      expense.TripID,
				UserID:      expense.PaidBy,
				Type:        "expense_added",
				ReferenceID: expense.ID,
				Description: fmt.Sprintf("Recurring expense \"%s\" (%s %.2f) was added for %s", expense.Description, expense.Currency, expense.Amount, payer.Name),
			}).Error
		})
		if err != nil {
			log.Printf("❌ Failed to materialize recurring template %s: %v", tpl.ID, err)
			continue
		}
		if !inserted {
			continue
		}

		generated++
		invalidateTripBalanceCache(expense.TripID)
	}

	return generated, nil
}

// invalidateTripBalanceCache mirrors the handlers' cache invalidation for
// writes that happen outside a request, using the same key layout.
func invalidateTripBalanceCache(tripID uuid.UUID) {
	var members []models.TripMember
	database.DB.Where("trip_id = ?", tripID).Find(&members)

	keys := make([]string, 0, len(members))
	for _, m := range members {
		keys = append(keys, "balances:trip:"+tripID.String()+":"+m.UserID.String())
	}
	database.CacheDelete(context.Background(), keys...)
}
