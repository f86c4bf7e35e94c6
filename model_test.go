package boxblur

import (
	"errors"
	"testing"
)

func TestModelString(t *testing.T) {
	tests := []struct {
		model Model
		want  string
	}{
		{ModelShared, "shared"},
		{ModelDistributed, "distributed"},
		{Model(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.model.String(); got != tt.want {
			t.Errorf("Model(%d).String() = %q, want %q", int(tt.model), got, tt.want)
		}
	}
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		in   string
		want Model
	}{
		{"shared", ModelShared},
		{"Shared", ModelShared},
		{"threads", ModelShared},
		{"distributed", ModelDistributed},
		{" mpi ", ModelDistributed},
	}
	for _, tt := range tests {
		got, err := ParseModel(tt.in)
		if err != nil {
			t.Errorf("ParseModel(%q) = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseModel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseModel("gpu"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParseModel(gpu) error = %v, want ErrInvalidConfig", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.iterations != DefaultIterations {
		t.Errorf("iterations = %d, want %d", o.iterations, DefaultIterations)
	}
	if o.workers < 1 {
		t.Errorf("workers = %d, want >= 1", o.workers)
	}
	if o.model != ModelShared {
		t.Errorf("model = %v, want shared", o.model)
	}
	if err := o.validate(); err != nil {
		t.Errorf("default options invalid: %v", err)
	}
}
