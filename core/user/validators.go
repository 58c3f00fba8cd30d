package user

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/madrasah/darsplan/core"
	appfs "github.com/madrasah/darsplan/fs"
)

var (
	roleTag    = "role"
	roleTextEn = "invalid role"
	roleTextAr = "دور غير صالح"

	// password policy
	pwdMinLen    = 8
	pwdMinLenTag = "pwdminlen"
	pwdMinLenEn  = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)
	pwdMinLenAr  = fmt.Sprintf("يجب أن تحتوي كلمة المرور على %d أحرف على الأقل", pwdMinLen)

	pwdNoSpaceTag = "pwdnospace"
	pwdNoSpaceEn  = "password must not contain whitespace"
	pwdNoSpaceAr  = "يجب ألا تحتوي كلمة المرور على مسافات"

	pwdNotAllNumTag = "pwdnotallnum"
	pwdNotAllNumEn  = "password cannot be entirely numeric"
	pwdNotAllNumAr  = "لا يمكن أن تكون كلمة المرور أرقامًا فقط"

	pwdComplexityTag = "pwdcplx"
	pwdComplexityEn  = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	pwdComplexityAr  = "يجب أن تحتوي كلمة المرور على حرف كبير وحرف صغير ورقم ورمز خاص على الأقل"
	specialRegex     = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim     = .7
	pwdAttrSimTag = "pwdtoosim"
	pwdAttrSimEn  = "password cannot be similar to user attributes"
	pwdAttrSimAr  = "لا يمكن أن تكون كلمة المرور مشابهة لبيانات المستخدم"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonEn   = "password is too common"
	pwdNoCommonAr   = "كلمة المرور شائعة جدًا"
	commonPasswords []string
)

// LoadCommonPasswords reads the embedded common password list into memory.
// Call once at startup before validating registrations.
func LoadCommonPasswords(logger core.Logger) {
	commonPasswords = commonPasswords[:0]

	file, err := appfs.FS.Open("assets/common-passwords.txt.gz")
	if err != nil {
		logger.Error("loading common passwords", errors.Wrap(err, "opening asset"))
		return
	}
	defer file.Close()

	gzRdr, err := gzip.NewReader(file)
	if err != nil {
		logger.Error("loading common passwords", errors.Wrap(err, "reading asset"))
		return
	}
	scanner := bufio.NewScanner(gzRdr)
	for scanner.Scan() {
		commonPasswords = append(commonPasswords, strings.TrimSpace(scanner.Text()))
	}
	sort.Strings(commonPasswords)
}

// InitValidators registers this package's custom validators and their
// translations on the shared validator.
func InitValidators(validate *validator.Validate, uni *ut.UniversalTranslator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)

	validate.RegisterStructValidation(userStructValidation, NewUser{})
	validate.RegisterStructValidation(userStructValidation, UpdateUser{})
	validate.RegisterStructValidation(resetPasswordStructValidation, ResetUserPassword{})

	en, _ := uni.GetTranslator(core.LangEnglish)
	ar, _ := uni.GetTranslator(core.LangArabic)
	for _, t := range []struct {
		tag    string
		enText string
		arText string
	}{
		{roleTag, roleTextEn, roleTextAr},
		{pwdMinLenTag, pwdMinLenEn, pwdMinLenAr},
		{pwdNoSpaceTag, pwdNoSpaceEn, pwdNoSpaceAr},
		{pwdNotAllNumTag, pwdNotAllNumEn, pwdNotAllNumAr},
		{pwdComplexityTag, pwdComplexityEn, pwdComplexityAr},
		{pwdAttrSimTag, pwdAttrSimEn, pwdAttrSimAr},
		{pwdNoCommonTag, pwdNoCommonEn, pwdNoCommonAr},
	} {
		core.RegisterCustomTranslation(validate, en, t.tag, t.enText)
		core.RegisterCustomTranslation(validate, ar, t.tag, t.arText)
	}
}

// Custom Validators

// roleValidation checks that a provided role is in AllRoles
func roleValidation(fl validator.FieldLevel) bool {
	role, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

// userStructValidation does struct level validation on NewUser and UpdateUser structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		validatePassword(usr.Password, usr.Name, usr.Email, sl)
	case UpdateUser:
		if usr.Password != "" {
			validatePassword(usr.Password, usr.Name, usr.Email, sl)
		}
	}
}

func resetPasswordStructValidation(sl validator.StructLevel) {
	if rp, ok := sl.Current().Interface().(ResetUserPassword); ok {
		validatePassword(rp.Password, "", "", sl)
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
// - no common password
func validatePassword(pwd, name, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount         int
		hasUpper, hasLower bool
	)

	// - minLen: 8
	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range []rune(pwd) {
		// - no whitespace
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	// - not all numeric
	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	// - complexity: 1 upper, 1 lower, 1 digit & 1 special
	if !(hasUpper && hasLower && digitCount > 0 && specialRegex.MatchString(pwd)) {
		reportErr(pwdComplexityTag)
		return
	}

	// - no user attrs similarity
	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	if getRatio(pwd, name) >= pwdMaxSim || getRatio(pwd, email) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
		return
	}

	// - no common passwords
	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) {
		if match := commonPasswords[idx]; lpwd == match {
			reportErr(pwdNoCommonTag)
			return
		}
	}
}
