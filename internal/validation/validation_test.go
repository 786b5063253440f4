package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "blockchain", true},
		{"with spaces", "machine learning", true},
		{"punctuation", "C++ (programming language)", true},
		{"unicode", "réseaux de neurones", true},
		{"max length", strings.Repeat("a", MaxNameLength), true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", MaxNameLength+1), false},
		{"newline", "machine\nlearning", false},
		{"nul", "a\x00b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("keyword", tt.input)
			if (err == nil) != tt.valid {
				t.Errorf("ValidateName(%q) error = %v, want valid = %v", tt.input, err, tt.valid)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("ValidateName(%q) error does not wrap ErrInvalid", tt.input)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  machine learning ", "machine learning"},
		{"Blockchain", "Blockchain"},
		{"\t\n", ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.input); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateYearRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		valid      bool
	}{
		{"full range", 1980, 2020, true},
		{"single year", 2015, 2015, true},
		{"reversed", 2020, 1980, false},
		{"negative", -1, 2000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateYearRange(tt.start, tt.end)
			if (err == nil) != tt.valid {
				t.Errorf("ValidateYearRange(%d, %d) error = %v, want valid = %v", tt.start, tt.end, err, tt.valid)
			}
		})
	}
}

func TestStruct(t *testing.T) {
	type request struct {
		Keyword  string   `validate:"required,name"`
		Keywords []string `validate:"max=3,dive,name"`
	}

	if err := Struct(&request{Keyword: "robotics", Keywords: []string{"a", "b"}}); err != nil {
		t.Errorf("Struct() valid request error = %v", err)
	}

	err := Struct(&request{Keyword: ""})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Struct() error = %v, want ErrInvalid", err)
	}
	if !strings.Contains(err.Error(), "keyword is required") {
		t.Errorf("Struct() error = %q, want mention of keyword", err)
	}

	err = Struct(&request{Keyword: "ok", Keywords: []string{"a", "b", "c", "d"}})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Struct() too many keywords error = %v, want ErrInvalid", err)
	}

	err = Struct(&request{Keyword: "ok", Keywords: []string{"bad\x01"}})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Struct() control character error = %v, want ErrInvalid", err)
	}
}
