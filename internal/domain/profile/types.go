// Package profile models the child server's user profile: identity,
// display preferences, and the fixed permission capability set assigned
// wholesale from an admin or default preset.
package profile

import (
	"fmt"
	"regexp"
)

// Perm is the fixed capability set assigned to a user profile. Exactly one
// preset (AdminPerm or DefaultPerm) is ever assigned; there is no per-flag
// override surface.
type Perm struct {
	Admin    bool `json:"admin"`
	Execute  bool `json:"execute"`
	Create   bool `json:"create"`
	Rename   bool `json:"rename"`
	Modify   bool `json:"modify"`
	Delete   bool `json:"delete"`
	Share    bool `json:"share"`
	Download bool `json:"download"`
}

// AdminPerm returns the permission preset granted to administrators.
func AdminPerm() Perm {
	return Perm{Admin: true, Execute: true, Create: true, Rename: true, Modify: true, Delete: true, Share: true, Download: true}
}

// DefaultPerm returns the permission preset granted to non-admin users.
func DefaultPerm() Perm {
	return Perm{Admin: false, Execute: true, Create: true, Rename: false, Modify: false, Delete: false, Share: false, Download: true}
}

// Sorting describes the default listing order for a profile.
type Sorting struct {
	By  string `json:"by" yaml:"by"`
	Asc bool   `json:"asc" yaml:"asc"`
}

// DefaultSorting matches the child's own default: sort by name, ascending false.
func DefaultSorting() Sorting {
	return Sorting{By: "name", Asc: false}
}

// Authentication carries the raw username/password/admin flag supplied by
// the operator. Admin is transient: it drives preset selection and the
// non-admin scope/lock forcing below, and is never serialized as part of
// the nested "authentication" object in users.json — see ToUsersJSONRecord.
type Authentication struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password" validate:"required"`
	Admin    bool   `json:"admin" yaml:"admin"`
}

// complexitySymbol matches the same special-character class the child's
// own password strength checker requires.
var complexitySymbol = regexp.MustCompile(`[ !#$%&'()*+,\-./\[\\\]^_` + "`" + `{|}~"]`)
var complexityDigit = regexp.MustCompile(`\d`)
var complexityUpper = regexp.MustCompile(`[A-Z]`)
var complexityLower = regexp.MustCompile(`[a-z]`)

// ValidateComplexity enforces the minimum password strength: 8+ characters,
// at least one digit, one uppercase letter, one lowercase letter, and one
// symbol.
func ValidateComplexity(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if !complexityDigit.MatchString(password) {
		return fmt.Errorf("password must include a digit")
	}
	if !complexityUpper.MatchString(password) {
		return fmt.Errorf("password must include an uppercase letter")
	}
	if !complexityLower.MatchString(password) {
		return fmt.Errorf("password must include a lowercase letter")
	}
	if !complexitySymbol.MatchString(password) {
		return fmt.Errorf("password must include a special character")
	}
	return nil
}

// UserProfile is the full per-user settings record. Perm is resolved from
// Authentication.Admin at materialization time (see Resolve), never set
// directly by the operator.
type UserProfile struct {
	Authentication Authentication `json:"authentication" yaml:"authentication"`
	Scope          string         `json:"scope" yaml:"scope"`
	Locale         string         `json:"locale" yaml:"locale"`
	LockPassword   bool           `json:"lockPassword" yaml:"lockPassword"`
	ViewMode       string         `json:"viewMode" yaml:"viewMode"`
	SingleClick    bool           `json:"singleClick" yaml:"singleClick"`
	Perm           Perm           `json:"perm" yaml:"-"`
	Commands       []string       `json:"commands" yaml:"commands"`
	Sorting        Sorting        `json:"sorting" yaml:"sorting"`
	Rules          []string       `json:"rules" yaml:"rules"`
	HideDotfiles   bool           `json:"hideDotfiles" yaml:"hideDotfiles"`
	DateFormat     bool           `json:"dateFormat" yaml:"dateFormat"`

	// ScopeWarning is set by Resolve when a non-admin profile requests root
	// scope; it is never serialized, the supervisor logs it and continues.
	ScopeWarning string `json:"-" yaml:"-"`
}

// Resolve applies the preset permission map and the non-admin forcing
// rules. It must run before a profile is written to users.json.
func (p *UserProfile) Resolve() {
	if p.Scope == "" {
		p.Scope = "/"
	}
	if p.Authentication.Admin {
		p.Perm = AdminPerm()
		return
	}
	p.Perm = DefaultPerm()
	p.LockPassword = true
	p.HideDotfiles = true
	if p.Scope == "/" {
		p.ScopeWarning = fmt.Sprintf("non-admin user %q has root scope", p.Authentication.Username)
	}
}

// UsersJSONRecord is the flattened shape written into users.json: the
// admin flag is popped out of the nested authentication object and the
// remaining authentication fields plus a 1-based id sit alongside the
// profile fields at top level.
type UsersJSONRecord struct {
	ID             int      `json:"id"`
	Username       string   `json:"username"`
	Password       string   `json:"password"`
	Scope          string   `json:"scope"`
	Locale         string   `json:"locale"`
	LockPassword   bool     `json:"lockPassword"`
	ViewMode       string   `json:"viewMode"`
	SingleClick    bool     `json:"singleClick"`
	Perm           Perm     `json:"perm"`
	Commands       []string `json:"commands"`
	Sorting        Sorting  `json:"sorting"`
	Rules          []string `json:"rules"`
	HideDotfiles   bool     `json:"hideDotfiles"`
	DateFormat     bool     `json:"dateFormat"`
}

// ToUsersJSONRecord flattens the profile, assigning the given 1-based id.
// hashedPassword replaces the plaintext password; callers must hash it
// (via bcrypt) before calling this.
func (p *UserProfile) ToUsersJSONRecord(id int, hashedPassword string) UsersJSONRecord {
	return UsersJSONRecord{
		ID:           id,
		Username:     p.Authentication.Username,
		Password:     hashedPassword,
		Scope:        p.Scope,
		Locale:       p.Locale,
		LockPassword: p.LockPassword,
		ViewMode:     p.ViewMode,
		SingleClick:  p.SingleClick,
		Perm:         p.Perm,
		Commands:     p.Commands,
		Sorting:      p.Sorting,
		Rules:        p.Rules,
		HideDotfiles: p.HideDotfiles,
		DateFormat:   p.DateFormat,
	}
}
