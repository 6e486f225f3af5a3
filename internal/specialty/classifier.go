// Package specialty maps free-text symptom descriptions to the clinic's
// medical department labels.
package specialty

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// GeneralMedicine is the department every unclassifiable symptom falls back to.
const GeneralMedicine = "Đa khoa"

// Classifier determines the department a symptom description belongs to.
type Classifier interface {
	Classify(ctx context.Context, symptom string) (string, error)
}

type keywordRule struct {
	keywords []string
	label    string
}

// Ordered, first match wins. Keywords are matched as lower-case substrings.
var keywordRules = []keywordRule{
	{keywords: []string{"tim", "huyết áp"}, label: "Tim mạch"},
	{keywords: []string{"xương", "khớp", "đau lưng"}, label: "Cơ xương khớp"},
	{keywords: []string{"tai", "mũi", "họng"}, label: "Tai mũi họng"},
	{keywords: []string{"da", "ngứa"}, label: "Da liễu"},
	{keywords: []string{"răng", "nướu"}, label: "Răng hàm mặt"},
}

// KeywordClassifier is the deterministic fallback. It never returns an error.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, symptom string) (string, error) {
	text := strings.ToLower(strings.TrimSpace(symptom))
	if text == "" {
		return GeneralMedicine, nil
	}

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.label, nil
			}
		}
	}

	return GeneralMedicine, nil
}

// Degrading composes a best-effort primary classifier with a deterministic
// fallback. A primary error, timeout or blank result switches to the
// fallback, so Classify never fails as long as the fallback cannot fail.
type Degrading struct {
	primary  Classifier
	fallback Classifier
	timeout  time.Duration
	logger   *slog.Logger
}

// NewDegrading builds the two-tier classifier. primary may be nil, in which
// case only the fallback is consulted. timeout bounds each primary call so a
// hanging external service cannot block a booking.
func NewDegrading(primary, fallback Classifier, timeout time.Duration, logger *slog.Logger) *Degrading {
	if logger == nil {
		logger = slog.Default()
	}
	return &Degrading{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
	}
}

func (c *Degrading) Classify(ctx context.Context, symptom string) (string, error) {
	if c.primary != nil {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		label, err := c.primary.Classify(callCtx, symptom)
		if err == nil {
			label = strings.TrimSpace(label)
			if label != "" {
				return label, nil
			}
			c.logger.Warn("primary specialty classifier returned empty result, using keyword rules")
		} else {
			c.logger.Warn("primary specialty classifier failed, using keyword rules",
				"error", err.Error(),
			)
		}
	}

	return c.fallback.Classify(ctx, symptom)
}
