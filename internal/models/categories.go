package models

import "strings"

// CategorySet is the ordered list of category tags declared on an entry.
// It is stored as a comma-joined string; ParseCategories and String are the
// only conversions between the two forms.
type CategorySet []string

// ParseCategories splits a comma-joined category string. Blank items are
// dropped; duplicates are kept as stored.
func ParseCategories(s string) CategorySet {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make(CategorySet, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c CategorySet) String() string { return strings.Join(c, ",") }

func (c CategorySet) Contains(tag string) bool {
	for _, t := range c {
		if t == tag {
			return true
		}
	}
	return false
}

// Add returns the set with tag appended, or c unchanged if tag is already present.
func (c CategorySet) Add(tag string) CategorySet {
	if tag == "" || c.Contains(tag) {
		return c
	}
	return append(c.Clone(), tag)
}

// Unique returns the distinct tags in first-seen order.
func (c CategorySet) Unique() CategorySet {
	var out CategorySet
	for _, t := range c {
		out = out.Add(t)
	}
	return out
}

func (c CategorySet) Clone() CategorySet {
	if c == nil {
		return nil
	}
	return append(CategorySet(nil), c...)
}
