package profile

import (
	"regexp"
	"strings"
)

// Substitute applies p's text substitutions, in declared order, to the full
// text (§4.2 "Text substitution"). Each entry is either a literal
// replace-all or a full-text regex replace with back-references.
func Substitute(p *Profile, text string) (string, error) {
	for _, s := range p.Schema.TextSubstitutions {
		if !s.Regex {
			text = strings.ReplaceAll(text, s.Pattern, s.Replacement)
			continue
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return "", err
		}
		text = re.ReplaceAllString(text, s.Replacement)
	}
	return text, nil
}
