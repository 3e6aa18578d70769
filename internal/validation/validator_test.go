// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return the same non-nil instance")
	}
}

type scheduleFixture struct {
	Spec string `validate:"required,cronspec"`
}

type rankingQuery struct {
	Period string `validate:"required,period"`
	Count  int    `validate:"min=1,max=50"`
}

func TestValidateStruct_Cronspec(t *testing.T) {
	tests := []struct {
		spec  string
		valid bool
	}{
		{spec: "0 0 3,15 * * *", valid: true},
		{spec: "0 30 4 * * *", valid: true},
		{spec: "@every 1h", valid: true},
		{spec: "0 3 * * *", valid: false},
		{spec: "not a schedule", valid: false},
		{spec: "", valid: false},
	}
	for _, tt := range tests {
		err := ValidateStruct(&scheduleFixture{Spec: tt.spec})
		if (err == nil) != tt.valid {
			t.Errorf("spec %q: expected valid=%v, got %v", tt.spec, tt.valid, err)
		}
	}
}

func TestValidateStruct_Period(t *testing.T) {
	if err := ValidateStruct(&rankingQuery{Period: "week", Count: 10}); err != nil {
		t.Errorf("expected lowercase week to pass, got %v", err)
	}
	err := ValidateStruct(&rankingQuery{Period: "DAY", Count: 10})
	if err == nil {
		t.Fatal("expected DAY to fail")
	}
	if !strings.Contains(err.Error(), "WEEK or MONTH") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&rankingQuery{Period: "WEEK", Count: 0})
	if single == nil {
		t.Fatal("expected count failure")
	}
	apiErr := single.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if apiErr.Details["tag"] != "min" {
		t.Errorf("expected min tag in details, got %v", apiErr.Details)
	}

	multi := ValidateStruct(&rankingQuery{Period: "", Count: 99}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", multi.Details)
	}
	if !strings.Contains(multi.Message, "rankingQuery.Count") {
		t.Errorf("expected namespaced field in message, got %q", multi.Message)
	}
}
