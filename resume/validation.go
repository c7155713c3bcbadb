package resume

import "fmt"

var (
	validTemplates  = map[Template]struct{}{TemplateCrimson: {}, TemplateModern: {}, TemplateClassic: {}}
	validThemes     = map[Theme]struct{}{ThemeLight: {}, ThemeDark: {}}
	validFonts      = map[Font]struct{}{FontInter: {}, FontRoboto: {}, FontCrimson: {}, FontMontserrat: {}}
	validLevels     = map[SkillLevel]struct{}{LevelBeginner: {}, LevelIntermediate: {}, LevelAdvanced: {}, LevelExpert: {}}
	validCategories = map[SkillCategory]struct{}{CategoryTechnical: {}, CategorySoft: {}, CategoryLanguage: {}, CategoryTool: {}}
)

// ValidateTemplate rejects unknown template names.
func ValidateTemplate(t Template) error {
	if _, ok := validTemplates[t]; !ok {
		return NewError(KindValidation, fmt.Sprintf("unknown template %q", t), nil)
	}
	return nil
}

// ValidateTheme rejects unknown themes.
func ValidateTheme(t Theme) error {
	if _, ok := validThemes[t]; !ok {
		return NewError(KindValidation, fmt.Sprintf("unknown theme %q", t), nil)
	}
	return nil
}

// ValidateFont rejects unknown fonts.
func ValidateFont(f Font) error {
	if _, ok := validFonts[f]; !ok {
		return NewError(KindValidation, fmt.Sprintf("unknown font %q", f), nil)
	}
	return nil
}

// normalizeSkill fills the form defaults and validates the enums.
func normalizeSkill(skill Skill) (Skill, error) {
	if skill.Name == "" {
		return Skill{}, NewError(KindValidation, "skill name is required", nil)
	}
	if skill.Level == "" {
		skill.Level = LevelIntermediate
	}
	if skill.Category == "" {
		skill.Category = CategoryTechnical
	}
	if _, ok := validLevels[skill.Level]; !ok {
		return Skill{}, NewError(KindValidation, fmt.Sprintf("unknown skill level %q", skill.Level), nil)
	}
	if _, ok := validCategories[skill.Category]; !ok {
		return Skill{}, NewError(KindValidation, fmt.Sprintf("unknown skill category %q", skill.Category), nil)
	}
	return skill, nil
}

// Normalize fills missing appearance fields and validates the enums of a
// loaded data graph.
func Normalize(data Data) (Data, error) {
	defaults := DefaultData()
	if data.Template == "" {
		data.Template = defaults.Template
	}
	if data.Theme == "" {
		data.Theme = defaults.Theme
	}
	if data.Font == "" {
		data.Font = defaults.Font
	}
	if data.Education == nil {
		data.Education = []Education{}
	}
	if data.Experience == nil {
		data.Experience = []Experience{}
	}
	if data.Skills == nil {
		data.Skills = []Skill{}
	}
	if err := ValidateTemplate(data.Template); err != nil {
		return Data{}, err
	}
	if err := ValidateTheme(data.Theme); err != nil {
		return Data{}, err
	}
	if err := ValidateFont(data.Font); err != nil {
		return Data{}, err
	}
	for i, skill := range data.Skills {
		normalized, err := normalizeSkill(skill)
		if err != nil {
			return Data{}, err
		}
		data.Skills[i] = normalized
	}
	return data, nil
}
