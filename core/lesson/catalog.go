package lesson

import "fmt"

// The database always stores the canonical (English) value; labels exist
// for display only.
type Choice struct {
	Value   string `json:"value"`
	LabelEn string `json:"label_en"`
	LabelAr string `json:"label_ar"`
}

// Catalog is the full set of choices offered when composing a lesson plan.
type Catalog struct {
	Subjects []Choice `json:"subjects"`
	Grades   []Choice `json:"grades"`
	Weeks    []Choice `json:"weeks"`
}

var (
	Subjects = []Choice{
		{Value: "Quran", LabelEn: "Quran", LabelAr: "القرآن الكريم"},
		{Value: "Fiqh", LabelEn: "Fiqh", LabelAr: "الفقه"},
		{Value: "Tawheed", LabelEn: "Tawheed", LabelAr: "التوحيد"},
		{Value: "Hadith", LabelEn: "Hadith", LabelAr: "الحديث"},
		{Value: "Arabic", LabelEn: "Arabic", LabelAr: "اللغة العربية"},
		{Value: "Seerah", LabelEn: "Seerah", LabelAr: "السيرة"},
		{Value: "Huroof", LabelEn: "Huroof", LabelAr: "الحروف"},
		{Value: "Arqaam", LabelEn: "Arqaam", LabelAr: "الأرقام"},
		{Value: "Adhkar", LabelEn: "Adhkar", LabelAr: "الأذكار"},
		{Value: "`Ulumul-Quran", LabelEn: "`Ulumul-Quran", LabelAr: "علوم القرآن"},
		{Value: "`Ulumul-Hadith", LabelEn: "`Ulumul-Hadith", LabelAr: "علوم الحديث"},
		{Value: "Adaab", LabelEn: "Adaab", LabelAr: "الآداب"},
	}

	Grades = []Choice{
		{Value: "Hadanah", LabelEn: "Hadanah", LabelAr: "الحضانة"},
		{Value: "Raudah 1", LabelEn: "Raudah 1", LabelAr: "الروضة الأولى"},
		{Value: "Raudah 2", LabelEn: "Raudah 2", LabelAr: "الروضة الثانية"},
		{Value: "Raudah 3", LabelEn: "Raudah 3", LabelAr: "الروضة الثالثة"},
		{Value: "Primary 1", LabelEn: "Primary 1", LabelAr: "الأول الابتدائي"},
		{Value: "Primary 2", LabelEn: "Primary 2", LabelAr: "الثاني الابتدائي"},
		{Value: "Primary 3", LabelEn: "Primary 3", LabelAr: "الثالث الابتدائي"},
		{Value: "Primary 4", LabelEn: "Primary 4", LabelAr: "الرابع الابتدائي"},
		{Value: "Primary 5", LabelEn: "Primary 5", LabelAr: "الخامس الابتدائي"},
		{Value: "Primary 6", LabelEn: "Primary 6", LabelAr: "السادس الابتدائي"},
		{Value: "Tahfeez 1", LabelEn: "Tahfeez 1", LabelAr: "التحفيظ الأول"},
		{Value: "Tahfeez 2", LabelEn: "Tahfeez 2", LabelAr: "التحفيظ الثاني"},
		{Value: "Tahfeez 3", LabelEn: "Tahfeez 3", LabelAr: "التحفيظ الثالث"},
	}

	Weeks = makeWeeks(20)
)

// GetCatalog returns the choice lists offered to clients.
func GetCatalog() Catalog {
	return Catalog{Subjects: Subjects, Grades: Grades, Weeks: Weeks}
}

// makeWeeks builds "Week N" choices with Arabic-Indic numerals in the
// Arabic labels.
func makeWeeks(n int) []Choice {
	weeks := make([]Choice, 0, n)
	for i := 1; i <= n; i++ {
		en := fmt.Sprintf("Week %d", i)
		weeks = append(weeks, Choice{
			Value:   en,
			LabelEn: en,
			LabelAr: fmt.Sprintf("الأسبوع %s", arabicIndic(i)),
		})
	}
	return weeks
}

func arabicIndic(n int) string {
	digits := []rune("٠١٢٣٤٥٦٧٨٩")
	if n == 0 {
		return string(digits[0])
	}
	var out []rune
	for n > 0 {
		out = append([]rune{digits[n%10]}, out...)
		n /= 10
	}
	return string(out)
}

func choiceValues(choices []Choice) []string {
	vals := make([]string, len(choices))
	for i, c := range choices {
		vals[i] = c.Value
	}
	return vals
}
