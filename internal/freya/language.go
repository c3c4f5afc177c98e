package freya

// Lightweight script detection: enough to pick the reply language without a
// full language model. Counts Arabic and CJK runes against total letters.

const (
	LangEnglish = "en"
	LangArabic  = "ar"
	LangChinese = "zh"
)

func DetectLanguage(text string) string {
	var arabic, cjk, letters int
	for _, r := range text {
		switch {
		case r >= 0x0600 && r <= 0x06FF || r >= 0x0750 && r <= 0x077F:
			arabic++
			letters++
		case r >= 0x4E00 && r <= 0x9FFF || r >= 0x3400 && r <= 0x4DBF:
			cjk++
			letters++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		}
	}
	if letters == 0 {
		return LangEnglish
	}
	// A third of the letters in a foreign script is a strong enough signal.
	if arabic*3 >= letters {
		return LangArabic
	}
	if cjk*3 >= letters {
		return LangChinese
	}
	return LangEnglish
}

func languageName(lang string) string {
	switch lang {
	case LangArabic:
		return "Arabic"
	case LangChinese:
		return "Chinese"
	default:
		return "English"
	}
}
