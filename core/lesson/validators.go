package lesson

import (
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/madrasah/darsplan/core"
)

var (
	subjectTag    = "subject"
	subjectTextEn = "invalid subject"
	subjectTextAr = "مادة غير صالحة"

	gradeTag    = "grade"
	gradeTextEn = "invalid grade level"
	gradeTextAr = "مستوى دراسي غير صالح"

	weekTag    = "week"
	weekTextEn = "invalid week"
	weekTextAr = "أسبوع غير صالح"
)

// InitValidators registers this package's custom validators and their
// translations on the shared validator.
func InitValidators(validate *validator.Validate, uni *ut.UniversalTranslator) {
	_ = validate.RegisterValidation(subjectTag, choiceValidation(Subjects))
	_ = validate.RegisterValidation(gradeTag, choiceValidation(Grades))
	_ = validate.RegisterValidation(weekTag, choiceValidation(Weeks))

	en, _ := uni.GetTranslator(core.LangEnglish)
	ar, _ := uni.GetTranslator(core.LangArabic)
	for _, t := range []struct {
		tag    string
		enText string
		arText string
	}{
		{subjectTag, subjectTextEn, subjectTextAr},
		{gradeTag, gradeTextEn, gradeTextAr},
		{weekTag, weekTextEn, weekTextAr},
	} {
		core.RegisterCustomTranslation(validate, en, t.tag, t.enText)
		core.RegisterCustomTranslation(validate, ar, t.tag, t.arText)
	}
}

// choiceValidation checks that a field value is one of the catalog choices.
// Empty values pass; pair with "required" to reject them.
func choiceValidation(choices []Choice) validator.Func {
	vals := choiceValues(choices)
	sort.Strings(vals)
	return func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		if val == "" {
			return true
		}
		if idx := sort.SearchStrings(vals, val); idx < len(vals) {
			return vals[idx] == val
		}
		return false
	}
}
