package core

import "strings"

// Label is a normalised classification value. The zero Label is the
// Unclassified sentinel; it never equals a label built from real text.
type Label struct {
	name string
}

// Unclassified groups every record whose label is blank or absent.
var Unclassified = Label{}

const unclassifiedName = "unclassified"

// ReservedSuffix marks a real label whose text matches a reserved name.
const ReservedSuffix = " (label)"

// NormalizeLabel trims raw. Empty and whitespace-only input both collapse
// to Unclassified.
func NormalizeLabel(raw string) Label {
	return Label{name: strings.TrimSpace(raw)}
}

func (l Label) IsUnclassified() bool {
	return l.name == ""
}

func (l Label) String() string {
	return l.Display(unclassifiedName)
}

// Display renders the label, using unclassified for the sentinel. A real
// label spelled like unclassified is marked so the two never collide.
func (l Label) Display(unclassified string) string {
	if l.IsUnclassified() {
		return unclassified
	}
	return l.DisplayReserved(unclassified)
}

// DisplayReserved renders the label, marking it when its text equals one of
// reserved.
func (l Label) DisplayReserved(reserved ...string) string {
	for _, name := range reserved {
		if l.name == name {
			return l.name + ReservedSuffix
		}
	}
	return l.name
}
