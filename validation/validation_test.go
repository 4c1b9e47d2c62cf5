package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/routekit/errors"
)

type innerConfig struct {
	Mode     string        `mapstructure:"mode" validate:"oneof=poll notify"`
	Interval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
}

type outerConfig struct {
	Name   string      `mapstructure:"name" validate:"required"`
	Driver innerConfig `mapstructure:"driver"`
	NoTag  int         `validate:"gte=1"`
}

func TestValidateStructValid(t *testing.T) {
	cfg := outerConfig{
		Name:   "svc",
		Driver: innerConfig{Mode: "poll", Interval: time.Millisecond},
		NoTag:  1,
	}
	if err := ValidateStruct(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructReportsEveryField(t *testing.T) {
	cfg := outerConfig{Driver: innerConfig{Mode: "spin"}}
	err := ValidateStruct(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}

	msg := err.Error()
	for _, want := range []string{
		"name: is required",
		"driver.mode: must be one of: poll notify",
		"driver.poll_interval: must be greater than 0",
		"no_tag: must be at least 1",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}

	appErr, _ := errors.As(err)
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 4 {
		t.Errorf("expected 4 field errors in details, got %v", appErr.Details["fields"])
	}
}

func TestValidatorCheck(t *testing.T) {
	v := New()
	v.Check(true, "a", "fine").Check(false, "b", "is broken")
	if !v.HasErrors() {
		t.Fatal("expected errors")
	}
	if len(v.Errors()) != 1 || v.Errors()[0].Field != "b" {
		t.Errorf("unexpected errors %v", v.Errors())
	}
}

func TestValidatorErrNil(t *testing.T) {
	if err := New().Err(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestValidatorWithCode(t *testing.T) {
	v := NewWithCode(errors.ErrCodeInvalidTopology)
	v.AddError("", "cycle detected")
	v.AddError("queue q1", "has 2 consumers")

	err := v.Err()
	if !errors.HasCode(err, errors.ErrCodeInvalidTopology) {
		t.Errorf("expected INVALID_TOPOLOGY, got %v", err)
	}
	if !strings.Contains(err.Error(), "cycle detected; queue q1: has 2 consumers") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":         "name",
		"PollInterval": "poll_interval",
		"OnError":      "on_error",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
