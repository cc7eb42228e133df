package session

import (
	"math"
	"strconv"
	"strings"

	"github.com/Houeta/staff-directory/internal/models"
)

// RoleOther is the role that makes OtherRole mandatory.
const RoleOther = "Other"

// Clusters the profile form accepts.
var Clusters = []string{"MEBM", "M&T", "S&PS"}

// ProfileForm is what the user typed on the profile form.
type ProfileForm struct {
	Name      string `json:"name"      validate:"required"`
	EmpID     string `json:"empid"     validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Role      string `json:"role"      validate:"required"`
	OtherRole string `json:"otherRole" validate:"required_if=Role Other"`
	Cluster   string `json:"cluster"   validate:"required,oneof=MEBM M&T S&PS"`
	Location  string `json:"location"`
}

func (f ProfileForm) trimmed() ProfileForm {
	return ProfileForm{
		Name:      strings.TrimSpace(f.Name),
		EmpID:     strings.TrimSpace(f.EmpID),
		Email:     strings.TrimSpace(f.Email),
		Role:      strings.TrimSpace(f.Role),
		OtherRole: strings.TrimSpace(f.OtherRole),
		Cluster:   strings.TrimSpace(f.Cluster),
		Location:  strings.TrimSpace(f.Location),
	}
}

// payload renders the form as sent to the store. A custom role travels in both role and otherRole.
func (f ProfileForm) payload() models.Record {
	role, otherRole := f.Role, ""
	if f.Role == RoleOther {
		role, otherRole = f.OtherRole, f.OtherRole
	}

	rec := models.Record{}
	_ = rec.Set(models.KeyName, f.Name)
	_ = rec.Set(models.KeyEmpID, f.EmpID)
	_ = rec.Set(models.KeyEmail, f.Email)
	_ = rec.Set(models.KeyRole, role)
	_ = rec.Set(models.KeyOtherRole, otherRole)
	_ = rec.Set(models.KeyCluster, f.Cluster)
	_ = rec.Set(models.KeyLocation, f.Location)
	return rec
}

// DetailsForm is what the user typed on the details form.
// Interests are comma separated, previous projects one per line.
type DetailsForm struct {
	CurrentProject   string
	NoCurrentProject bool
	Availability     string
	HoursAvailable   string
	FromDate         string
	ToDate           string
	Skills           []string
	Interests        string
	PreviousProjects string
}

// EffectiveAvailability is "Available" whenever the employee has no current project.
func (f DetailsForm) EffectiveAvailability() string {
	if f.NoCurrentProject {
		return string(models.StatusAvailable)
	}
	return strings.TrimSpace(f.Availability)
}

// payload renders the form as sent to the store. Hours and the window are only sent for a
// partially available employee and are null otherwise.
func (f DetailsForm) payload() models.Record {
	availability := f.EffectiveAvailability()
	partial := models.ParseStatus(availability) == models.StatusPartiallyAvailable

	project := strings.TrimSpace(f.CurrentProject)
	if f.NoCurrentProject {
		project = ""
	}

	rec := models.Record{}
	_ = rec.Set(models.KeyCurrentProject, project)
	_ = rec.Set(models.KeyAvailability, availability)
	_ = rec.Set(models.KeyHours, nil)
	_ = rec.Set(models.KeyFromDate, nil)
	_ = rec.Set(models.KeyToDate, nil)

	if partial {
		hours := strings.TrimSpace(f.HoursAvailable)
		if n, err := strconv.ParseFloat(hours, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			_ = rec.Set(models.KeyHours, n)
		} else if hours != "" {
			// left as text so validation names the field
			_ = rec.Set(models.KeyHours, hours)
		}
		if from := strings.TrimSpace(f.FromDate); from != "" {
			_ = rec.Set(models.KeyFromDate, from)
		}
		if to := strings.TrimSpace(f.ToDate); to != "" {
			_ = rec.Set(models.KeyToDate, to)
		}
	}

	_ = rec.Set(models.KeySkills, dedupe(splitNonEmpty(strings.Join(f.Skills, "\n"), "\n")))
	_ = rec.Set(models.KeyInterests, splitNonEmpty(f.Interests, ","))
	_ = rec.Set(models.KeyPrevious, splitNonEmpty(f.PreviousProjects, "\n"))
	return rec
}

func splitNonEmpty(text, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(text, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// dedupe drops repeated entries, keeping the first occurrence.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
