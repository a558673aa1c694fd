package models

// Experience is a bookable travel experience from the static catalog.
// Price stays free text ("$45", "JPY 8,000"); parsing happens at
// submission time in the pricing package.
type Experience struct {
	ID        int64  `yaml:"id" json:"id"`
	Title     string `yaml:"title" json:"title"`
	Location  string `yaml:"location" json:"location"`
	Duration  string `yaml:"duration" json:"duration"`
	GroupSize string `yaml:"group_size" json:"group_size"`
	Price     string `yaml:"price" json:"price"`
	Image     string `yaml:"image" json:"image"`
}
