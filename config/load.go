// Package config YAML 配置加载、校验与热更新。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"market-quoter-go/infrastructure/logger"
	"market-quoter-go/quoting"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env     string        `yaml:"env"`
	Logger  logger.Config `yaml:"logger"`
	Metrics MetricsConfig `yaml:"metrics"`
	Venue   VenueConfig   `yaml:"venue"`
	Quoting QuotingConfig `yaml:"quoting"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // 留空则不启动 metrics 服务
}

// VenueConfig 场所接入配置。
type VenueConfig struct {
	WSEndpoint string  `yaml:"wsEndpoint"`
	Symbol     string  `yaml:"symbol"`
	TickSize   float64 `yaml:"tickSize"`
}

// QuotingConfig 报价参数的配置文件形态。
type QuotingConfig struct {
	Mode                          string  `yaml:"mode"`
	Width                         float64 `yaml:"width"`
	Size                          float64 `yaml:"size"`
	StepOverSize                  float64 `yaml:"stepOverSize"`
	PositionDivergence            float64 `yaml:"positionDivergence"`
	AggressivePositionRebalancing bool    `yaml:"aggressivePositionRebalancing"`
	APRMultiplier                 float64 `yaml:"aprMultiplier"`
	EwmaProtection                bool    `yaml:"ewmaProtection"`
	EwmaAlpha                     float64 `yaml:"ewmaAlpha"`
	TradesPerMinute               float64 `yaml:"tradesPerMinute"`
	TargetBasePosition            float64 `yaml:"targetBasePosition"`
}

// ToParameters 转换为引擎使用的参数快照。
func (q QuotingConfig) ToParameters() (quoting.QuotingParameters, error) {
	mode, err := quoting.ParseMode(q.Mode)
	if err != nil {
		return quoting.QuotingParameters{}, err
	}
	return quoting.QuotingParameters{
		Mode:                          mode,
		Width:                         q.Width,
		Size:                          q.Size,
		StepOverSize:                  q.StepOverSize,
		PositionDivergence:            q.PositionDivergence,
		AggressivePositionRebalancing: q.AggressivePositionRebalancing,
		APRMultiplier:                 q.APRMultiplier,
		EwmaProtection:                q.EwmaProtection,
		TradesPerMinute:               q.TradesPerMinute,
		TargetBasePosition:            q.TargetBasePosition,
	}, nil
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
