package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"tempo/internal/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// maxBodyBytes caps entry payload bodies; a timesheet row is tiny.
const maxBodyBytes = 1 << 20

// entryPayload carries the add/update entry fields before they become a
// core.Entry. Both the HTML form and the JSON API funnel through it.
type entryPayload struct {
	ProjectID int64   `json:"project_id" validate:"required,gt=0"`
	TaskID    int64   `json:"task_id" validate:"required,gt=0"`
	Activity  string  `json:"activity" validate:"max=200"`
	Hours     float64 `json:"hours" validate:"gte=0,lte=24"`
	// json.Number accepts both a bare number and a numeric string, so the
	// JSON API and the HTML form share one optional overtime field.
	Overtime    json.Number `json:"overtime" validate:"omitempty"`
	Description string      `json:"description" validate:"max=500"`
	Date        string      `json:"date" validate:"required,datetime=2006-01-02"`
}

// toEntry converts the payload into a validated core entry for the user.
func (p entryPayload) toEntry(userID int64) (core.Entry, error) {
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Entry{}, err
	}

	overtime := core.NoOvertime()
	if raw := strings.TrimSpace(p.Overtime.String()); raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return core.Entry{}, err
		}
		overtime = core.SomeOvertime(hours)
	}

	e := core.Entry{
		UserID:      userID,
		ProjectID:   p.ProjectID,
		TaskID:      p.TaskID,
		Activity:    p.Activity,
		Hours:       p.Hours,
		Overtime:    overtime,
		Description: p.Description,
		Date:        date,
	}
	return e, e.Validate()
}

// parseEntryPayload reads the entry fields from a JSON body or an HTML form
// and runs struct-tag validation. The body is capped at maxBodyBytes.
func parseEntryPayload(w http.ResponseWriter, r *http.Request) (entryPayload, error) {
	var p entryPayload

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return p, err
	}

	if len(body) > 0 && (body[0] == '{' || body[0] == '[') {
		if err := json.Unmarshal(body, &p); err != nil {
			return p, err
		}
	} else {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return p, err
		}
		p, err = payloadFromForm(form)
		if err != nil {
			return p, err
		}
	}

	p.Activity = sanitizeInput(p.Activity)
	p.Description = sanitizeInput(p.Description)
	p.Date = strings.TrimSpace(p.Date)
	p.Overtime = json.Number(strings.TrimSpace(p.Overtime.String()))

	return p, validate.Struct(p)
}

func payloadFromForm(form url.Values) (entryPayload, error) {
	var p entryPayload

	projectID, err := strconv.ParseInt(strings.TrimSpace(form.Get("project_id")), 10, 64)
	if err != nil {
		return p, err
	}
	taskID, err := strconv.ParseInt(strings.TrimSpace(form.Get("task_id")), 10, 64)
	if err != nil {
		return p, err
	}
	hours, err := strconv.ParseFloat(strings.TrimSpace(form.Get("hours")), 64)
	if err != nil {
		return p, err
	}

	p.ProjectID = projectID
	p.TaskID = taskID
	p.Hours = hours
	p.Activity = form.Get("activity")
	p.Overtime = json.Number(form.Get("overtime"))
	p.Description = form.Get("description")
	p.Date = form.Get("date")
	return p, nil
}

// credentialsPayload carries the login form fields.
type credentialsPayload struct {
	Username string `validate:"required,min=3,max=50"`
	Password string `validate:"required,min=8,max=72"`
}

// signupPayload extends credentials with the profile fields.
type signupPayload struct {
	credentialsPayload
	FirstName string `validate:"max=100"`
	LastName  string `validate:"max=100"`
	ContactNo string `validate:"max=30"`
	Email     string `validate:"omitempty,email,max=200"`
}

func parseCredentials(r *http.Request) (credentialsPayload, error) {
	if err := r.ParseForm(); err != nil {
		return credentialsPayload{}, err
	}
	p := credentialsPayload{
		Username: sanitizeInput(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	return p, validate.Struct(p)
}

func parseSignup(r *http.Request) (signupPayload, error) {
	if err := r.ParseForm(); err != nil {
		return signupPayload{}, err
	}
	p := signupPayload{
		credentialsPayload: credentialsPayload{
			Username: sanitizeInput(r.PostFormValue("username")),
			Password: r.PostFormValue("password"),
		},
		FirstName: sanitizeInput(r.PostFormValue("first_name")),
		LastName:  sanitizeInput(r.PostFormValue("last_name")),
		ContactNo: sanitizeInput(r.PostFormValue("contact_no")),
		Email:     sanitizeInput(r.PostFormValue("email")),
	}
	return p, validate.Struct(p)
}
