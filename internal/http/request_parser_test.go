package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func parsePayloadFromBody(t *testing.T, contentType, body string) (entryPayload, error) {
	t.Helper()
	req := httptest.NewRequest("POST", "/entries", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return parseEntryPayload(httptest.NewRecorder(), req)
}

func TestParseEntryPayloadFormAndJSONAgree(t *testing.T) {
	form := "project_id=1&task_id=3&activity=wireframes&hours=7.5&overtime=1.5&date=2026-01-07"
	jsonBody := `{"project_id":1,"task_id":3,"activity":"wireframes","hours":7.5,"overtime":"1.5","date":"2026-01-07"}`

	fromForm, err := parsePayloadFromBody(t, "application/x-www-form-urlencoded", form)
	if err != nil {
		t.Fatalf("form parse: %v", err)
	}
	fromJSON, err := parsePayloadFromBody(t, "application/json", jsonBody)
	if err != nil {
		t.Fatalf("json parse: %v", err)
	}

	if fromForm != fromJSON {
		t.Fatalf("form and JSON should parse identically:\n%+v\n%+v", fromForm, fromJSON)
	}
}

func TestParseEntryPayloadNumericOvertime(t *testing.T) {
	body := `{"project_id":1,"task_id":3,"hours":7.5,"overtime":1.5,"date":"2026-01-07"}`

	p, err := parsePayloadFromBody(t, "application/json", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	e, err := p.toEntry(9)
	if err != nil {
		t.Fatalf("toEntry: %v", err)
	}
	if !e.Overtime.Valid || e.Overtime.Hours != 1.5 {
		t.Fatalf("bare-number overtime should parse, got %+v", e.Overtime)
	}
}

func TestParseEntryPayloadBodyTooLarge(t *testing.T) {
	body := `{"description":"` + strings.Repeat("x", maxBodyBytes+1) + `"}`

	_, err := parsePayloadFromBody(t, "application/json", body)
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected body size error, got %v", err)
	}
}

func TestParseEntryPayloadValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing project", "task_id=3&hours=8&date=2026-01-07&project_id=0"},
		{"hours above cap", "project_id=1&task_id=3&hours=25&date=2026-01-07"},
		{"bad date format", "project_id=1&task_id=3&hours=8&date=07-01-2026"},
		{"missing date", "project_id=1&task_id=3&hours=8&date="},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parsePayloadFromBody(t, "application/x-www-form-urlencoded", tc.body)
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				t.Fatalf("expected validation errors, got %v", err)
			}
		})
	}
}

func TestParseEntryPayloadSanitizesText(t *testing.T) {
	body := "project_id=1&task_id=3&hours=8&date=2026-01-07&activity=%20wireframes%00%20&description=notes%07"
	p, err := parsePayloadFromBody(t, "application/x-www-form-urlencoded", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Activity != "wireframes" {
		t.Fatalf("activity should be trimmed and stripped, got %q", p.Activity)
	}
	if p.Description != "notes" {
		t.Fatalf("description should drop control characters, got %q", p.Description)
	}
}

func TestEntryPayloadToEntry(t *testing.T) {
	p := entryPayload{
		ProjectID: 1,
		TaskID:    3,
		Hours:     7.5,
		Overtime:  "1.5",
		Date:      "2026-01-07",
	}

	e, err := p.toEntry(9)
	if err != nil {
		t.Fatalf("toEntry: %v", err)
	}
	if e.UserID != 9 || !e.Overtime.Valid || e.Overtime.Hours != 1.5 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.EffectiveHours() != 9 {
		t.Fatalf("expected 9 effective hours, got %v", e.EffectiveHours())
	}

	p.Overtime = ""
	e, err = p.toEntry(9)
	if err != nil {
		t.Fatalf("toEntry without overtime: %v", err)
	}
	if e.Overtime.Valid {
		t.Fatalf("blank overtime should be absent, got %+v", e.Overtime)
	}

	p.Overtime = "-2"
	if _, err := p.toEntry(9); err == nil {
		t.Fatal("negative overtime should be rejected")
	}
}
