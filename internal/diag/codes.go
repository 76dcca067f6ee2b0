package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Code registry
	CodeInfo        Code = 1000
	CodeClash       Code = 1001
	CodeTooLong     Code = 1002
	CodeRootTooLong Code = 1003
	CodeLeafTooLong Code = 1004

	// Inclusion filter
	FltInfo          Code = 2000
	FltExcludedHook  Code = 2001
	FltExcludedPath  Code = 2002
	FltInfoOnly      Code = 2003
	FltWholeExcluded Code = 2004

	// Sibling classification / generation
	GenInfo        Code = 3000
	GenNoSpecMatch Code = 3001
	GenEmptyGroup  Code = 3002
	GenNoAgeSpec   Code = 3003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:      "Unknown error",
		CodeInfo:         "Code information",
		CodeClash:        "Code name clash",
		CodeTooLong:      "Code exceeds 50 characters",
		CodeRootTooLong:  "Enumeration root code exceeds 40 characters",
		CodeLeafTooLong:  "Enumerated value code exceeds 50 characters",
		FltInfo:          "Filter information",
		FltExcludedHook:  "Excluded by user procedure",
		FltExcludedPath:  "Excluded by questionnaire filter",
		FltInfoOnly:      "Information only question omitted",
		FltWholeExcluded: "Questionnaire excluded",
		GenInfo:          "Generation information",
		GenNoSpecMatch:   "Open question without matching enumeration; emitted as continuous",
		GenEmptyGroup:    "Sibling group is empty",
		GenNoAgeSpec:     "No AGE enumeration configured",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CODE%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("FLT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("GEN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
