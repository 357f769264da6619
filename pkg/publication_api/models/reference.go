package models

// Location is court/tribunal reference data, importable from CSV.
type Location struct {
	LocationID   string `gorm:"column:location_id;primaryKey" json:"locationId" csv:"location_id"`
	Name         string `gorm:"column:name" json:"name" csv:"name"`
	WelshName    string `gorm:"column:welsh_name" json:"welshName,omitempty" csv:"welsh_name"`
	Region       string `gorm:"column:region" json:"region,omitempty" csv:"region"`
	Jurisdiction string `gorm:"column:jurisdiction" json:"jurisdiction,omitempty" csv:"jurisdiction"`
}

type LocationParams struct {
	LocationID string `path:"locationId" validate:"required"`
}

// ListTypeSummary is the external view of a configured list type.
type ListTypeSummary struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	FriendlyName       string   `json:"friendlyName"`
	WelshFriendlyName  string   `json:"welshFriendlyName,omitempty"`
	AllowedProvenances []string `json:"allowedProvenances,omitempty"`
}
