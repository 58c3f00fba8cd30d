package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCatalog(t *testing.T) {
	cat := GetCatalog()

	assert.Len(t, cat.Subjects, 12)
	assert.Len(t, cat.Grades, 13)
	assert.Len(t, cat.Weeks, 20)

	// canonical values are English; labels are localized
	for _, c := range append(append(cat.Subjects, cat.Grades...), cat.Weeks...) {
		assert.Equal(t, c.Value, c.LabelEn)
		assert.NotEmpty(t, c.LabelAr)
	}
}

func TestMakeWeeks(t *testing.T) {
	weeks := makeWeeks(12)
	require.Len(t, weeks, 12)

	assert.Equal(t, "Week 1", weeks[0].Value)
	assert.Equal(t, "الأسبوع ١", weeks[0].LabelAr)
	assert.Equal(t, "Week 10", weeks[9].Value)
	assert.Equal(t, "الأسبوع ١٠", weeks[9].LabelAr)
	assert.Equal(t, "الأسبوع ١٢", weeks[11].LabelAr)
}

func TestArabicIndic(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "٠"},
		{7, "٧"},
		{10, "١٠"},
		{20, "٢٠"},
		{143, "١٤٣"},
	}
	for _, tt := range tests {
		if got := arabicIndic(tt.n); got != tt.want {
			t.Errorf("arabicIndic(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestTemplates(t *testing.T) {
	require.Len(t, Templates, 2)
	assert.Equal(t, "standard", Templates[0].Key)
	assert.Equal(t, "science_lab", Templates[1].Key)
	for _, tmpl := range Templates {
		assert.NotEmpty(t, tmpl.Name)
		assert.NotEmpty(t, tmpl.Content.Objectives)
	}
}
