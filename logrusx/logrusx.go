// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package logrusx

import (
	"io"

	"github.com/sirupsen/logrus"
)

type Option func(*options)

type options struct {
	level         *logrus.Level
	formatter     logrus.Formatter
	output        io.Writer
	leakSensitive bool
	redactionText string
	hooks         []logrus.Hook
}

// ForceLevel overrides the default info level.
func ForceLevel(level logrus.Level) Option {
	return func(o *options) {
		o.level = &level
	}
}

// ForceFormatter overrides the default JSON formatter.
func ForceFormatter(formatter logrus.Formatter) Option {
	return func(o *options) {
		o.formatter = formatter
	}
}

func WithOutput(output io.Writer) Option {
	return func(o *options) {
		o.output = output
	}
}

// LeakSensitive disables redaction of sensitive log values.
func LeakSensitive() Option {
	return func(o *options) {
		o.leakSensitive = true
	}
}

func RedactionText(text string) Option {
	return func(o *options) {
		o.redactionText = text
	}
}

func WithHook(hook logrus.Hook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hook)
	}
}

func newLogger(o *options) *logrus.Logger {
	l := logrus.New()

	if o.output != nil {
		l.SetOutput(o.output)
	}

	if o.level != nil {
		l.SetLevel(*o.level)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}

	if o.formatter != nil {
		l.SetFormatter(o.formatter)
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	for _, hook := range o.hooks {
		l.AddHook(hook)
	}

	l.SetReportCaller(false)

	return l
}

// New creates a new Logger with the given name and version attached to every
// entry.
func New(name string, version string, opts ...Option) *Logger {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	redactionText := `Value is sensitive and has been redacted. To see the value set config key "log.leak_sensitive_values = true" or environment variable "LOG_LEAK_SENSITIVE_VALUES=true".`
	if o.redactionText != "" {
		redactionText = o.redactionText
	}

	return &Logger{
		opts:          opts,
		name:          name,
		version:       version,
		leakSensitive: o.leakSensitive,
		redactionText: redactionText,
		Entry: newLogger(o).WithFields(logrus.Fields{
			"audience": "application", "service_name": name, "service_version": version,
		}),
	}
}
