// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package recall

import (
	"log/slog"
	"runtime"

	"github.com/poiesic/almanac/config"
	"github.com/poiesic/almanac/noise"
)

type settings struct {
	tuning     config.Tuning
	classifier *noise.Classifier
	poolSize   int
	logger     *slog.Logger
}

func defaultSettings() settings {
	return settings{
		tuning:   config.DefaultTuning(),
		poolSize: max(runtime.NumCPU()/2, 1),
		logger:   slog.Default(),
	}
}

func (s *settings) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}
	if s.classifier == nil {
		s.classifier = noise.NewClassifier(s.tuning.Strictness())
	}
	return nil
}

// Option configures a Matcher or an Assembler.
type Option func(*settings) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithTuning replaces the default tolerance, dedup prefix and caps.
func WithTuning(tuning config.Tuning) Option {
	return func(s *settings) error {
		if err := tuning.Validate(); err != nil {
			return err
		}
		s.tuning = tuning
		return nil
	}
}

// WithClassifier sets the noise classifier used by the Assembler.
// Default follows the tuning's strictness.
func WithClassifier(classifier *noise.Classifier) Option {
	return func(s *settings) error {
		s.classifier = classifier
		return nil
	}
}

// WithPoolSize sets how many years the Assembler matches concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *settings) error {
		s.poolSize = max(size, 1)
		return nil
	}
}
