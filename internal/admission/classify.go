package admission

import "errors"

func isNoCredits(err error) bool {
	return errors.Is(err, ErrNoCredits)
}

func isMonthlyLimit(err error) bool {
	var limitErr *MonthlyLimitError
	return errors.As(err, &limitErr)
}

// IsTierRequired extracts the typed tier denial, if any.
func IsTierRequired(err error) (*TierRequiredError, bool) {
	var tierErr *TierRequiredError
	if errors.As(err, &tierErr) {
		return tierErr, true
	}
	return nil, false
}

// IsMonthlyLimit extracts the typed queue-full denial, if any.
func IsMonthlyLimit(err error) (*MonthlyLimitError, bool) {
	var limitErr *MonthlyLimitError
	if errors.As(err, &limitErr) {
		return limitErr, true
	}
	return nil, false
}
