package models

// Crisis is a financial or economic crisis record served read-only by the API.
type Crisis struct {
	ID                    string   `db:"id"                     json:"id"`
	Name                  string   `db:"name"                   json:"name"`
	Type                  string   `db:"type"                   json:"type"`
	Category              string   `db:"category"               json:"category"`
	Origin                string   `db:"origin"                 json:"origin"`
	StartDate             string   `db:"start_date"             json:"startDate"`
	EndDate               string   `db:"end_date"               json:"endDate"`
	DurationInMonths      *int     `db:"duration_in_months"     json:"durationInMonths,omitempty"`
	GeographicalExtension string   `db:"geographical_extension" json:"geographicalExtension"`
	Causes                []string `db:"causes"                 json:"causes"`
	Consequences          []string `db:"consequences"           json:"consequences"`
	Resolutions           []string `db:"resolutions"            json:"resolutions"`
	References            []string `db:"references"             json:"references"`
}
