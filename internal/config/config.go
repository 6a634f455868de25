// Package config loads the simulation's tunables via viper: an
// "obelisksim.yaml" file in the usual search paths, overridable by
// OBELISKSIM_-prefixed environment variables, both layered over the
// defaults below (which mirror the original program's compile-time
// constants).
package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/obelisklab/obelisksim/internal/logging"
)

const (
	defaultStepsPerSecond = 20 // scales the step-count defaults only; wall-clock pacing is simulation.StepPeriod
	defaultStepsPer100ms  = defaultStepsPerSecond / 10
)

var defaults = map[string]interface{}{
	"verbose":             false,
	"nodes":               50,
	"peers-per-node":      3,
	"quorum-numerator":    9,
	"quorum-denominator":  10,
	"observer-fraction":   5, // 1/5 of nodes are observers
	"block-time-steps":    defaultStepsPerSecond * 10,
	"tx-steps-min":        defaultStepsPer100ms * 10,
	"tx-steps-max":        defaultStepsPer100ms * 20,
	"latency-min":         defaultStepsPer100ms,
	"latency-max":         defaultStepsPer100ms * 4,
}

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// Config holds the resolved simulation parameters.
type Config struct {
	Seed           int64
	Nodes          int
	PeersPerNode   int
	Quorum         int
	ObserverCount  int
	BlockTimeSteps int64
	TxStepsMin     int64
	TxStepsMax     int64
	LatencyMin     int64
	LatencyMax     int64
}

// Load reads configuration from "obelisksim.yaml" (searched in
// /etc/obelisksim/, $HOME/.obelisksim, and the working directory),
// environment variables, and the defaults above, and resolves it
// against seed. Environment variables take precedence over the file,
// and the file over the defaults.
func Load(seed int64) (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("obelisksim")
	viper.AddConfigPath("/etc/obelisksim/")
	viper.AddConfigPath("$HOME/.obelisksim")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("OBELISKSIM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.Entry().Debug("no config file found, using defaults and environment")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	n := viper.GetInt("nodes")
	c := &Config{
		Seed:           seed,
		Nodes:          n,
		PeersPerNode:   viper.GetInt("peers-per-node"),
		Quorum:         n * viper.GetInt("quorum-numerator") / viper.GetInt("quorum-denominator"),
		ObserverCount:  n / viper.GetInt("observer-fraction"),
		BlockTimeSteps: int64(viper.GetInt("block-time-steps")),
		TxStepsMin:     int64(viper.GetInt("tx-steps-min")),
		TxStepsMax:     int64(viper.GetInt("tx-steps-max")),
		LatencyMin:     int64(viper.GetInt("latency-min")),
		LatencyMax:     int64(viper.GetInt("latency-max")),
	}

	if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
		logging.SetLevel(logrus.DebugLevel)
	}

	return c, nil
}
