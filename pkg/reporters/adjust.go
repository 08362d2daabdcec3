package reporters

import (
	"go.uber.org/zap"

	"github.com/coolbeans/lexcite/pkg/citation"
	"github.com/coolbeans/lexcite/pkg/pattern"
)

// AdjustConfig weights the confidence adjustment. The zero value means
// defaults.
type AdjustConfig struct {
	// UniqueBoost is added when exactly one series matches.
	UniqueBoost float64 `yaml:"unique_boost" json:"unique_boost"`

	// MissPenalty is subtracted when no series matches.
	MissPenalty float64 `yaml:"miss_penalty" json:"miss_penalty"`

	// AmbiguityPenalty is subtracted per matching series beyond the
	// first.
	AmbiguityPenalty float64 `yaml:"ambiguity_penalty" json:"ambiguity_penalty"`
}

// DefaultAdjustConfig returns the standard adjustment weights.
func DefaultAdjustConfig() AdjustConfig {
	return AdjustConfig{
		UniqueBoost:      0.10,
		MissPenalty:      0.10,
		AmbiguityPenalty: 0.05,
	}
}

func (c AdjustConfig) withDefaults() AdjustConfig {
	defaults := DefaultAdjustConfig()
	if c.UniqueBoost <= 0 {
		c.UniqueBoost = defaults.UniqueBoost
	}
	if c.MissPenalty <= 0 {
		c.MissPenalty = defaults.MissPenalty
	}
	if c.AmbiguityPenalty <= 0 {
		c.AmbiguityPenalty = defaults.AmbiguityPenalty
	}
	return c
}

// Adjust rescores case citations in place against the database. A
// unique reporter match raises confidence, a miss lowers it, and an
// ambiguous abbreviation lowers it per extra candidate; the result is
// clamped to [0, 1]. Blank-page citations keep their fixed confidence.
// Other citation types never consult the database.
//
// A nil db disables adjustment: the pass logs once and leaves every
// citation untouched.
func Adjust(citations []*citation.Citation, db *DB, cfg AdjustConfig, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if db == nil {
		logger.Info("no reporter database; skipping confidence adjustment")
		return
	}
	cfg = cfg.withDefaults()

	for _, cit := range citations {
		if cit.Type != pattern.TypeCase || cit.Case == nil {
			continue
		}
		if cit.Case.HasBlankPage {
			continue
		}

		conf := cit.Confidence
		switch matches := db.Lookup(cit.Case.Reporter); len(matches) {
		case 0:
			conf -= cfg.MissPenalty
		case 1:
			conf += cfg.UniqueBoost
		default:
			conf -= cfg.AmbiguityPenalty * float64(len(matches)-1)
		}

		if conf < 0 {
			conf = 0
		} else if conf > 1 {
			conf = 1
		}
		cit.Confidence = conf
	}
}
