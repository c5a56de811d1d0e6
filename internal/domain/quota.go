package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSizeExceeded       = errors.New("paste size limit exceeded")
	ErrDailyLimitExceeded = errors.New("daily paste limit exceeded")
)

// SizeExceededError carries the limit, in KB, for display.
type SizeExceededError struct {
	LimitKB int
	Size    int
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("Paste size exceeds the maximum limit of %dKB", e.LimitKB)
}

func (e *SizeExceededError) Is(target error) bool { return target == ErrSizeExceeded }

// DailyLimitExceededError carries the daily paste limit for display.
type DailyLimitExceededError struct {
	Limit int
}

func (e *DailyLimitExceededError) Error() string {
	return fmt.Sprintf("You have reached your daily limit of %d pastes", e.Limit)
}

func (e *DailyLimitExceededError) Is(target error) bool { return target == ErrDailyLimitExceeded }
