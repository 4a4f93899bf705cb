package episode

import "fmt"

// Budget modes.
const (
	BudgetFixed     = "fixed"
	BudgetAdaptive  = "adaptive"
	BudgetUnlimited = "unlimited"
)

// BudgetSpec is the tick budget policy.
type BudgetSpec struct {
	Mode  string `yaml:"mode"`
	Fixed int    `yaml:"fixed"`
	Base  int    `yaml:"base"`
	Step  int    `yaml:"step"`
	Every int    `yaml:"every"`
}

// Budget returns the tick budget for a generation. Zero means no cap.
// The adaptive schedule grows by Step every Every generations.
func (b BudgetSpec) Budget(generation int) int {
	switch b.Mode {
	case BudgetAdaptive:
		if b.Every <= 0 {
			return b.Base
		}
		return b.Base + (generation/b.Every)*b.Step
	case BudgetUnlimited:
		return 0
	default:
		return b.Fixed
	}
}

// Validate checks the mode and the parameters it uses.
func (b BudgetSpec) Validate() error {
	switch b.Mode {
	case BudgetFixed:
		if b.Fixed <= 0 {
			return fmt.Errorf("fixed budget %d must be positive", b.Fixed)
		}
	case BudgetAdaptive:
		if b.Base <= 0 || b.Every <= 0 || b.Step < 0 {
			return fmt.Errorf("adaptive budget needs base > 0, every > 0, step >= 0 (got %d, %d, %d)", b.Base, b.Every, b.Step)
		}
	case BudgetUnlimited:
	default:
		return fmt.Errorf("unknown budget mode %q", b.Mode)
	}
	return nil
}
