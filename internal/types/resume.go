package types

// Experience is a work-history section.
type Experience struct {
	ID        string   `json:"id"`
	Company   string   `json:"company"`
	Role      string   `json:"role"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Bullets   []Bullet `json:"bullets" validate:"dive"`
}

// Education is an education section.
type Education struct {
	ID        string   `json:"id"`
	School    string   `json:"school"`
	Degree    string   `json:"degree,omitempty"`
	Field     string   `json:"field,omitempty"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Bullets   []Bullet `json:"bullets" validate:"dive"`
}

// Project is a project section.
type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Bullets      []Bullet `json:"bullets" validate:"dive"`
}

// CustomSection is a free-form section such as awards or publications.
type CustomSection struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Bullets  []Bullet `json:"bullets" validate:"dive"`
}

// StructuredResume is the full candidate resume grouped by section kind.
type StructuredResume struct {
	Experiences    []Experience    `json:"experiences" validate:"dive"`
	Education      []Education     `json:"education" validate:"dive"`
	Projects       []Project       `json:"projects" validate:"dive"`
	CustomSections []CustomSection `json:"customSections" validate:"dive"`
}

// SelectedExperience mirrors Experience with the chosen bullets.
type SelectedExperience struct {
	ID              string           `json:"id"`
	Company         string           `json:"company"`
	Role            string           `json:"role"`
	StartDate       string           `json:"startDate,omitempty"`
	EndDate         string           `json:"endDate,omitempty"`
	SelectedBullets []SelectedBullet `json:"selectedBullets"`
}

// SelectedEducation mirrors Education with the chosen bullets.
type SelectedEducation struct {
	ID              string           `json:"id"`
	School          string           `json:"school"`
	Degree          string           `json:"degree,omitempty"`
	Field           string           `json:"field,omitempty"`
	StartDate       string           `json:"startDate,omitempty"`
	EndDate         string           `json:"endDate,omitempty"`
	SelectedBullets []SelectedBullet `json:"selectedBullets"`
}

// SelectedProject mirrors Project with the chosen bullets.
type SelectedProject struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Technologies    []string         `json:"technologies,omitempty"`
	StartDate       string           `json:"startDate,omitempty"`
	EndDate         string           `json:"endDate,omitempty"`
	SelectedBullets []SelectedBullet `json:"selectedBullets"`
}

// SelectedCustomSection mirrors CustomSection with the chosen bullets.
type SelectedCustomSection struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Subtitle        string           `json:"subtitle,omitempty"`
	SelectedBullets []SelectedBullet `json:"selectedBullets"`
}

// SelectedResume is the tailored resume produced by selection or optimization.
type SelectedResume struct {
	Experiences    []SelectedExperience    `json:"experiences"`
	Education      []SelectedEducation     `json:"education"`
	Projects       []SelectedProject       `json:"projects"`
	CustomSections []SelectedCustomSection `json:"customSections"`
}

// BulletGroups returns the selected bullets of every section in resume order:
// experiences, education, projects, then custom sections.
func (r *SelectedResume) BulletGroups() [][]SelectedBullet {
	groups := make([][]SelectedBullet, 0,
		len(r.Experiences)+len(r.Education)+len(r.Projects)+len(r.CustomSections))
	for _, s := range r.Experiences {
		groups = append(groups, s.SelectedBullets)
	}
	for _, s := range r.Education {
		groups = append(groups, s.SelectedBullets)
	}
	for _, s := range r.Projects {
		groups = append(groups, s.SelectedBullets)
	}
	for _, s := range r.CustomSections {
		groups = append(groups, s.SelectedBullets)
	}
	return groups
}
