package settings

import (
	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
)

const (
	DefaultTemperature     = 0.2
	DefaultPresencePenalty = -0.1
)

// CompletionOptions are the tuning knobs passed with every completion call.
type CompletionOptions struct {
	Temperature     float64 `yaml:"temperature" json:"temperature" mapstructure:"temperature"`
	Stream          bool    `yaml:"stream" json:"stream" mapstructure:"stream"`
	PresencePenalty float64 `yaml:"presence_penalty" json:"presence_penalty" mapstructure:"presence_penalty"`
}

type CompletionOption func(*CompletionOptions)

func WithTemperature(temperature float64) CompletionOption {
	return func(o *CompletionOptions) {
		o.Temperature = temperature
	}
}

func WithStream(stream bool) CompletionOption {
	return func(o *CompletionOptions) {
		o.Stream = stream
	}
}

func WithPresencePenalty(penalty float64) CompletionOption {
	return func(o *CompletionOptions) {
		o.PresencePenalty = penalty
	}
}

func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		Temperature:     DefaultTemperature,
		Stream:          false,
		PresencePenalty: DefaultPresencePenalty,
	}
}

// NewCompletionOptions applies options on top of the defaults and validates the result.
func NewCompletionOptions(options ...CompletionOption) (*CompletionOptions, error) {
	ret := DefaultCompletionOptions()
	for _, option := range options {
		option(&ret)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (o *CompletionOptions) Validate() error {
	if o.Temperature < 0 || o.Temperature > 2 {
		return errors.Errorf("temperature %.2f out of range [0, 2]", o.Temperature)
	}
	if o.PresencePenalty < -2 || o.PresencePenalty > 2 {
		return errors.Errorf("presence penalty %.2f out of range [-2, 2]", o.PresencePenalty)
	}
	return nil
}

// With returns a copy with options applied. The receiver is left untouched.
func (o *CompletionOptions) With(options ...CompletionOption) *CompletionOptions {
	ret := o.Clone()
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (o *CompletionOptions) Clone() *CompletionOptions {
	return clone.Clone(o).(*CompletionOptions)
}
