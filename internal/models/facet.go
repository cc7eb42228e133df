package models

import "encoding/json"

// Facet names a disjoint subset of record fields that is written and cached independently.
type Facet string

const (
	FacetProfile Facet = "profile"
	FacetDetails Facet = "details"
)

// ProfileKeys are the identity fields written by the profile flow.
var ProfileKeys = []string{KeyEmpID, KeyName, KeyEmail, KeyRole, KeyOtherRole, KeyCluster, KeyLocation}

// DetailKeys are the availability fields written by the details flow.
var DetailKeys = []string{
	KeyCurrentProject, KeyAvailability, KeyHours, KeyFromDate, KeyToDate, KeySkills, KeyInterests, KeyPrevious,
}

type facetField struct {
	key      string
	aliases  []string
	fallback json.RawMessage
}

var profileFields = []facetField{
	{key: KeyEmpID, aliases: []string{KeyEmpID, "emp_id"}, fallback: jsonEmptyString},
	{key: KeyName, aliases: []string{KeyName}, fallback: jsonEmptyString},
	{key: KeyEmail, aliases: []string{KeyEmail}, fallback: jsonEmptyString},
	{key: KeyRole, aliases: []string{KeyRole}, fallback: jsonEmptyString},
	{key: KeyOtherRole, aliases: []string{KeyOtherRole, KeyOtherRoleSnake}, fallback: jsonEmptyString},
	{key: KeyCluster, aliases: []string{KeyCluster}, fallback: jsonEmptyString},
	{key: KeyLocation, aliases: []string{KeyLocation}, fallback: jsonEmptyString},
}

var detailFields = []facetField{
	{key: KeyCurrentProject, aliases: []string{KeyCurrentProject, KeyCurrentProjectCC}, fallback: jsonEmptyString},
	{key: KeyAvailability, aliases: []string{KeyAvailability}, fallback: jsonEmptyString},
	{key: KeyHours, aliases: []string{KeyHours, KeyHoursCC}, fallback: jsonNull},
	{key: KeyFromDate, aliases: []string{KeyFromDate, KeyFromDateCC}, fallback: jsonNull},
	{key: KeyToDate, aliases: []string{KeyToDate, KeyToDateCC}, fallback: jsonNull},
	{key: KeySkills, aliases: []string{KeySkills, KeySkillsCC}, fallback: jsonEmptyList},
	{key: KeyInterests, aliases: []string{KeyInterests}, fallback: jsonEmptyList},
	{key: KeyPrevious, aliases: []string{KeyPrevious, KeyPreviousCC}, fallback: jsonEmptyList},
}

// Keys returns the canonical keys belonging to the facet.
func (f Facet) Keys() []string {
	switch f {
	case FacetProfile:
		return ProfileKeys
	case FacetDetails:
		return DetailKeys
	default:
		return nil
	}
}

// Project extracts the facet from an authoritative server record, resolving aliases and
// filling absent values with the facet defaults. Every facet key is present in the result.
func (f Facet) Project(server Record) Record {
	var fields []facetField
	switch f {
	case FacetProfile:
		fields = profileFields
	case FacetDetails:
		fields = detailFields
	default:
		return Record{}
	}

	out := make(Record, len(fields))
	for _, field := range fields {
		if value, ok := server.Lookup(field.aliases...); ok {
			out[field.key] = append(json.RawMessage(nil), value...)
			continue
		}
		out[field.key] = append(json.RawMessage(nil), field.fallback...)
	}

	// the profile facet always carries the identity, whichever alias the server used
	if f == FacetProfile && server.ID() != "" && out.IsEmpty(KeyEmpID) {
		_ = out.Set(KeyEmpID, server.ID())
	}

	return out
}

// ProfileFacet is FacetProfile.Project.
func ProfileFacet(server Record) Record { return FacetProfile.Project(server) }

// DetailFacet is FacetDetails.Project.
func DetailFacet(server Record) Record { return FacetDetails.Project(server) }
