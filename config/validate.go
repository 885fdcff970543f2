package config

import (
	"errors"
	"fmt"

	"market-quoter-go/quoting"
)

// Validate 基础一致性检查；报价参数必须能安全交给引擎。
func Validate(cfg AppConfig) error {
	if cfg.Venue.TickSize <= 0 {
		return errors.New("venue.tickSize must be positive")
	}
	if cfg.Venue.Symbol == "" {
		return errors.New("venue.symbol required")
	}
	return validateQuoting(cfg.Quoting)
}

func validateQuoting(q QuotingConfig) error {
	if _, err := quoting.ParseMode(q.Mode); err != nil {
		return err
	}
	if q.Width <= 0 {
		return fmt.Errorf("quoting.width must be positive, got %v", q.Width)
	}
	if q.Size <= 0 {
		return fmt.Errorf("quoting.size must be positive, got %v", q.Size)
	}
	if q.StepOverSize < 0 {
		return fmt.Errorf("quoting.stepOverSize must not be negative, got %v", q.StepOverSize)
	}
	if q.PositionDivergence < 0 {
		return fmt.Errorf("quoting.positionDivergence must not be negative, got %v", q.PositionDivergence)
	}
	if q.AggressivePositionRebalancing && q.APRMultiplier <= 0 {
		return errors.New("quoting.aprMultiplier must be positive when aggressive rebalancing is on")
	}
	if q.TradesPerMinute < 0 {
		return fmt.Errorf("quoting.tradesPerMinute must not be negative, got %v", q.TradesPerMinute)
	}
	return nil
}
