package characterizer

import (
	"github.com/tidwall/gjson"

	"github.com/yudduy/ira/internal/models"
)

// Section maps a nested analysis object to its output column prefix.
type Section struct {
	Path   string
	Prefix string
}

// Sections is the flattening schema, in column order.
var Sections = []Section{
	{Path: "change_analysis.lexical_change", Prefix: "lexical_"},
	{Path: "change_analysis.strategic_framing", Prefix: "framing_"},
	{Path: "change_analysis.target_audience", Prefix: "audience_"},
	{Path: "ira_alignment", Prefix: "ira_"},
	{Path: "overall_assessment", Prefix: "overall_"},
}

// Flatten applies Sections to a JSON analysis. Missing or non-object sections contribute
// nothing; null leaves come through as nil. Invalid JSON flattens to no fields.
func Flatten(raw string) models.Fields {
	return FlattenSections(raw, Sections)
}

// FlattenSections flattens the direct members of each section object under its prefix.
func FlattenSections(raw string, sections []Section) models.Fields {
	if !gjson.Valid(raw) {
		return models.Fields{}
	}

	fields := models.Fields{}

	for _, s := range sections {
		section := gjson.Get(raw, s.Path)
		if !section.IsObject() {
			continue
		}

		section.ForEach(func(key, value gjson.Result) bool {
			fields = append(fields, models.Field{Key: s.Prefix + key.String(), Value: value.Value()})

			return true
		})
	}

	return fields
}
