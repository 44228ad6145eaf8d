package document

import (
	"strconv"
	"strings"

	"github.com/jonathan/hash-resume/internal/types"
)

// Edit is a single string-valued field change addressed by path, the shape in
// which form inputs report their changes.
//
//	personalInfo.<field>   summary   skills (comma text)
//	<list>.<index>.<field> where list is experience, education or projects
type Edit struct {
	Path  string
	Value string
}

// Apply returns doc with the edit applied and whether the edit addressed an
// existing field. Unknown paths are errors; a well-formed entry path with an
// out of range index is a no-op that reports false, as for SetEntryField.
func Apply(doc types.ResumeDocument, edit Edit) (types.ResumeDocument, bool, error) {
	parts := strings.Split(edit.Path, ".")
	switch {
	case len(parts) == 1 && parts[0] == "summary":
		return SetSummary(doc, edit.Value), true, nil
	case len(parts) == 1 && parts[0] == "skills":
		return SetSkillsText(doc, edit.Value), true, nil
	case len(parts) == 2 && parts[0] == "personalInfo":
		next, err := SetPersonalField(doc, PersonalField(parts[1]), edit.Value)
		return next, err == nil, err
	case len(parts) == 3 && types.ListKind(parts[0]).Valid():
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			return doc, false, &FieldError{Path: edit.Path, Message: "entry index must be an integer"}
		}
		kind := types.ListKind(parts[0])
		next, err := SetEntryField(doc, kind, index, parts[2], edit.Value)
		if err != nil {
			return doc, false, err
		}
		return next, index >= 0 && index < Len(doc, kind), nil
	}
	return doc, false, &FieldError{Path: edit.Path, Message: "unknown path"}
}
