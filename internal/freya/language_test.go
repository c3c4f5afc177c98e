package freya

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Which BYD trim should I get?", LangEnglish},
		{"", LangEnglish},
		{"1234 !!", LangEnglish},
		{"ما هي أفضل سيارة بي واي دي؟", LangArabic},
		{"比亚迪海豹怎么样？", LangChinese},
		// Mixed text with a dominant Latin share stays English
		{"My Jetour T2 shows رسالة once", LangEnglish},
	}
	for _, c := range cases {
		require.Equal(t, c.want, DetectLanguage(c.text), "text=%q", c.text)
	}
}

func TestLanguageName(t *testing.T) {
	require.Equal(t, "Arabic", languageName(LangArabic))
	require.Equal(t, "Chinese", languageName(LangChinese))
	require.Equal(t, "English", languageName(LangEnglish))
	require.Equal(t, "English", languageName("??"))
}
