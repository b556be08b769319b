// Package skills loads skill documents from a directory tree and ranks them
// against free-text task descriptions. A skill is either a directory holding
// a SKILL.md file or a loose markdown file, optionally prefixed with a YAML
// header block carrying its name and description.
package skills

// Skill represents a loaded skill document
type Skill struct {
	Name        string         // Name from the header block, or the file name without .md
	Description string         // Short summary, empty when the header has none
	Content     string         // Full original file text, header included
	Path        string         // Path of the file the skill was loaded from
	Metadata    map[string]any // Every key decoded from the header block
}

// Metadata represents the recognized keys of a skill header block
type Metadata struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Description string `mapstructure:"description" yaml:"description"`
}
