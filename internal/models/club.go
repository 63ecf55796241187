package models

// ClubProfile is the static site content loaded from YAML.
type ClubProfile struct {
	Name        string       `yaml:"name" json:"name"`
	ShortName   string       `yaml:"short_name" json:"short_name"`
	Founded     int          `yaml:"founded" json:"founded"`
	Motto       string       `yaml:"motto" json:"motto,omitempty"`
	Colours     []string     `yaml:"colours" json:"colours"`
	Ground      ClubGround   `yaml:"ground" json:"ground"`
	Contact     ClubContact  `yaml:"contact" json:"contact"`
	Socials     []SocialLink `yaml:"socials" json:"socials"`
	Sponsors    []Sponsor    `yaml:"sponsors" json:"sponsors"`
	Domain      string       `yaml:"domain" json:"domain,omitempty"`
	Description string       `yaml:"description" json:"description,omitempty"`
	Honours     []ClubHonour `yaml:"honours" json:"honours,omitempty"`
}

// ClubGround is the home ground.
type ClubGround struct {
	Name     string `yaml:"name" json:"name"`
	Address  string `yaml:"address" json:"address"`
	Capacity int    `yaml:"capacity" json:"capacity,omitempty"`
}

// ClubContact holds public contact details.
type ClubContact struct {
	Email string `yaml:"email" json:"email"`
	Phone string `yaml:"phone" json:"phone,omitempty"`
}

// SocialLink is a social network profile.
type SocialLink struct {
	Network string `yaml:"network" json:"network"`
	URL     string `yaml:"url" json:"url"`
}

// Sponsor is a club partner.
type Sponsor struct {
	Name    string `yaml:"name" json:"name"`
	Tier    string `yaml:"tier" json:"tier"`
	LogoURL string `yaml:"logo_url" json:"logo_url,omitempty"`
	Website string `yaml:"website" json:"website,omitempty"`
}

// ClubHonour is a trophy or title won.
type ClubHonour struct {
	Title  string `yaml:"title" json:"title"`
	Season string `yaml:"season" json:"season"`
}
