package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/ar"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ar_translations "github.com/go-playground/validator/v10/translations/ar"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

var (
	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredTextEn  = "this field is required"
	requiredTextAr  = "هذا الحقل مطلوب"
	eqFieldTag      = "eqfield"
	passwordMatchEn = "passwords do not match"
	passwordMatchAr = "كلمتا المرور غير متطابقتين"
)

// NewTranslator builds the universal translator holding both app locales,
// with English as the fallback.
func NewTranslator() *ut.UniversalTranslator {
	_en := en.New()
	return ut.New(_en, _en, ar.New())
}

// InitValidators instantiates the validator for use, registering the default
// and custom translations for every supported locale.
func InitValidators(validate *validator.Validate, uni *ut.UniversalTranslator) {
	enTrans, _ := uni.GetTranslator(LangEnglish)
	arTrans, _ := uni.GetTranslator(LangArabic)
	_ = en_translations.RegisterDefaultTranslations(validate, enTrans)
	_ = ar_translations.RegisterDefaultTranslations(validate, arTrans)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	RegisterCustomTranslation(validate, enTrans, requiredTag, requiredTextEn, true)
	RegisterCustomTranslation(validate, arTrans, requiredTag, requiredTextAr, true)
	RegisterCustomTranslation(validate, enTrans, requiredWithTag, requiredTextEn, true)
	RegisterCustomTranslation(validate, arTrans, requiredWithTag, requiredTextAr, true)
	RegisterCustomTranslation(validate, enTrans, eqFieldTag, passwordMatchEn, true)
	RegisterCustomTranslation(validate, arTrans, eqFieldTag, passwordMatchAr, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
