package models

import (
	"strconv"

	"github.com/Houeta/staff-directory/internal/datewindow"
	"github.com/Houeta/staff-directory/internal/normalize"
)

// Employee is the typed view of a Record used for display and filtering.
type Employee struct {
	ID               string
	Name             string
	Email            string
	Role             string
	OtherRole        string
	Cluster          string
	Location         string
	CurrentProject   string
	AvailabilityText string
	Status           Status
	HoursPerDay      float64
	From             *datewindow.Date
	To               *datewindow.Date
	Skills           []string
	Interests        []string
	PreviousProjects []string
	UpdatedAt        string
}

// EmployeeFromRecord builds the typed view. List-shaped fields go through the normalizer;
// dates that cannot be parsed are treated as absent.
func EmployeeFromRecord(rec Record, observe normalize.Observer) Employee {
	emp := Employee{
		ID:               rec.ID(),
		Name:             rec.String(KeyName),
		Email:            rec.String(KeyEmail),
		Role:             rec.String(KeyRole),
		OtherRole:        rec.String(KeyOtherRole, KeyOtherRoleSnake),
		Cluster:          rec.String(KeyCluster),
		Location:         rec.String(KeyLocation),
		CurrentProject:   rec.String(KeyCurrentProject, KeyCurrentProjectCC),
		AvailabilityText: rec.String(KeyAvailability),
		UpdatedAt:        rec.String(KeyUpdatedAt, KeyUpdatedAtCC),
	}
	emp.Status = ParseStatus(emp.AvailabilityText)

	if hours, err := strconv.ParseFloat(rec.String(KeyHours, KeyHoursCC), 64); err == nil {
		emp.HoursPerDay = hours
	}
	if from, err := datewindow.ParseDate(rec.String(KeyFromDate, KeyFromDateCC)); err == nil {
		emp.From = &from
	}
	if to, err := datewindow.ParseDate(rec.String(KeyToDate, KeyToDateCC)); err == nil {
		emp.To = &to
	}

	emp.Skills = listField(rec, observe, KeySkills, KeySkillsCC)
	emp.Interests = listField(rec, observe, KeyInterests)
	emp.PreviousProjects = listField(rec, observe, KeyPrevious, KeyPreviousCC)

	return emp
}

func listField(rec Record, observe normalize.Observer, aliases ...string) []string {
	raw, _ := rec.Lookup(aliases...)
	return normalize.ListObserved(raw, observe)
}

// Window returns the declared availability window, or nil when either end is missing.
// A window whose ends are inverted is returned as-is; callers decide how to treat it.
func (e Employee) Window() *datewindow.Window {
	if e.From == nil || e.To == nil {
		return nil
	}
	return &datewindow.Window{From: *e.From, To: *e.To}
}

// DisplayName falls back to "Unknown" the way the directory cards do.
func (e Employee) DisplayName() string {
	if e.Name == "" {
		return "Unknown"
	}
	return e.Name
}
