package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Markdown structure
	MdInfo              Code = 1000
	MdUnterminatedFence Code = 1001
	MdMalformedLink     Code = 1002
	MdFrontMatter       Code = 1003

	// Demo sources
	DemoInfo          Code = 2000
	DemoSourceInvalid Code = 2001

	// Project / manifest
	PrjInfo            Code = 5000
	PrjManifestInvalid Code = 5001
	PrjDuplicatePage   Code = 5002
	PrjPageNotFound    Code = 5003

	// I/O
	IOLoadFileError Code = 4001

	// Defects: never expected for input that passed parsing
	InternalUnknownBlock  Code = 9001
	InternalDanglingDemo  Code = 9002
	InternalUnknownInline Code = 9003
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	MdInfo:                "Markdown information",
	MdUnterminatedFence:   "Unterminated code fence",
	MdMalformedLink:       "Malformed link",
	MdFrontMatter:         "Invalid front matter",
	DemoInfo:              "Demo information",
	DemoSourceInvalid:     "Demo source does not parse",
	PrjInfo:               "Project information",
	PrjManifestInvalid:    "Invalid project manifest",
	PrjDuplicatePage:      "Duplicate page name",
	PrjPageNotFound:       "Page source not found",
	IOLoadFileError:       "Failed to load file",
	InternalUnknownBlock:  "Unknown block type",
	InternalDanglingDemo:  "Demo reference without demo",
	InternalUnknownInline: "Unknown inline type",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("MD%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DEMO%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("INT%04d", ic)
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
