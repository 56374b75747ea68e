// Package backfill rewrites legacy contact phone values into stored form.
package backfill

import (
	"context"
	"fmt"
	"strings"

	"crm_backend/internal/contacts/repository"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"

	"github.com/google/uuid"
)

// DefaultBatchSize is the number of contacts processed per query.
const DefaultBatchSize = 100

// Options controls a backfill run.
type Options struct {
	BatchSize int
	// Region is used to read values without a calling code. Empty disables it.
	Region string
	DryRun bool
}

// Stats summarizes a backfill run.
type Stats struct {
	Scanned int
	Updated int
	Skipped int
}

// Runner canonicalizes stored phones batch by batch.
type Runner struct {
	store     repository.PhoneBackfiller
	formatter *phone.Formatter
	log       *logger.Logger
}

// New creates a backfill runner.
func New(store repository.PhoneBackfiller, formatter *phone.Formatter, log *logger.Logger) *Runner {
	return &Runner{store: store, formatter: formatter, log: log}
}

// Run walks every contact with a non-canonical phone in ID order. Values that
// cannot be resolved are left untouched and counted as skipped.
func (r *Runner) Run(ctx context.Context, opts Options) (Stats, error) {
	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	var stats Stats
	after := uuid.Nil
	for {
		records, err := r.store.ListNonCanonicalPhones(ctx, after, batchSize)
		if err != nil {
			return stats, fmt.Errorf("list batch after %s: %w", after, err)
		}
		if len(records) == 0 {
			return stats, nil
		}

		for _, rec := range records {
			after = rec.ID
			stats.Scanned++

			newPhone, phoneChanged := r.resolve(rec.Phone, opts.Region)
			newWhatsApp, whatsappChanged := r.resolve(rec.WhatsApp, opts.Region)
			if !phoneChanged && !whatsappChanged {
				r.log.Info("skipping unresolvable phone", "contactId", rec.ID)
				stats.Skipped++
				continue
			}

			if opts.DryRun {
				r.log.Info("would update contact phones", "contactId", rec.ID, "phone", deref(newPhone), "whatsapp", deref(newWhatsApp))
				stats.Updated++
				continue
			}

			if err := r.store.UpdatePhones(ctx, rec.ID, newPhone, newWhatsApp); err != nil {
				return stats, fmt.Errorf("update contact %s: %w", rec.ID, err)
			}
			r.log.Info("contact phones canonicalized", "contactId", rec.ID)
			stats.Updated++
		}

		if len(records) < batchSize {
			return stats, nil
		}
	}
}

// resolve returns the stored form of value and whether it differs from the
// original. Blank values resolve to nil.
func (r *Runner) resolve(value *string, region string) (*string, bool) {
	if value == nil {
		return nil, false
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, true
	}

	candidate := ""
	if strings.HasPrefix(trimmed, "+") {
		candidate = r.formatter.Canonicalize(trimmed)
	} else if region != "" {
		candidate = phone.NormalizeE164(trimmed, region)
	}
	if !isStoredForm(candidate) {
		return value, false
	}
	return &candidate, candidate != *value
}

func isStoredForm(v string) bool {
	if len(v) < 2 || v[0] != '+' {
		return false
	}
	return phone.StripToDigits(v[1:]) == v[1:]
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
