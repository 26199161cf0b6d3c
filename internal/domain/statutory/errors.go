package statutory

import "errors"

var (
	ErrNoRuleSetForPeriod    = errors.New("no statutory rule set effective for period")
	ErrUnsupportedVersion    = errors.New("statutory rules: unsupported file version")
	ErrEmptyTable            = errors.New("statutory rules: no rule sets defined")
	ErrInvalidRate           = errors.New("statutory rules: rate must be between 0 and 1")
	ErrInvalidCeiling        = errors.New("statutory rules: ssb ceiling must be positive")
	ErrInvalidBrackets       = errors.New("statutory rules: brackets must start at 0 and increase strictly")
	ErrDuplicateEffectiveDay = errors.New("statutory rules: two rule sets share an effective date")
)
