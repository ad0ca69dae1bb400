package introspection

import (
	"strings"
)

// ParseComment splits a catalog comment into smart tags and the remaining
// description. Leading lines of the form "@tag [value]" are tags; a tag that
// appears more than once accumulates values.
//
//	@omit filter,order
//	@name job_posting
//	Jobs we are hiring for.
func ParseComment(comment string) (Tags, string) {
	tags := Tags{}
	lines := strings.Split(comment, "\n")
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "@") {
			break
		}
		name, value, _ := strings.Cut(line[1:], " ")
		if name == "" {
			break
		}
		value = strings.TrimSpace(value)
		if value == "" {
			tags[name] = append(tags[name], "")
			continue
		}
		tags[name] = append(tags[name], value)
	}
	return tags, strings.TrimSpace(strings.Join(lines[i:], "\n"))
}

// Tagged is implemented by every catalog entity carrying smart tags.
type Tagged interface {
	SmartTags() Tags
}

func (n *Namespace) SmartTags() Tags  { return n.Tags }
func (c *Class) SmartTags() Tags      { return c.Tags }
func (a *Attribute) SmartTags() Tags  { return a.Tags }
func (p *Procedure) SmartTags() Tags  { return p.Tags }
func (c *Constraint) SmartTags() Tags { return c.Tags }

// Omit actions.
const (
	OmitRead   = "read"
	OmitFilter = "filter"
	OmitOrder  = "order"
	OmitAll    = "all"
)

// Omit reports whether the entity's @omit tag excludes action. A bare @omit
// excludes everything.
func Omit(e Tagged, action string) bool {
	values, ok := e.SmartTags()["omit"]
	if !ok {
		return false
	}
	for _, v := range values {
		if v == "" {
			return true
		}
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == action || part == OmitAll || part == "*" {
				return true
			}
		}
	}
	return false
}

// Tag returns the first value of a smart tag.
func Tag(e Tagged, name string) (string, bool) {
	values, ok := e.SmartTags()[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
