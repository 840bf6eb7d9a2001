//go:build !linux

package loader

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type loader struct {
	log logrus.FieldLogger
	cfg *Config
}

// New creates a Loader for the given configuration.
// On non-Linux platforms, this returns a stub that errors on Run.
func New(log logrus.FieldLogger, cfg *Config) Loader {
	return &loader{
		log: log.WithField("component", "loader"),
		cfg: cfg,
	}
}

func (l *loader) Run() (Result, error) {
	return Result{}, fmt.Errorf("BPF loading requires Linux")
}
