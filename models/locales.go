package models

// Locales the frontend ships translations for. Event.Locale must be one of
// these when set.
var knownLocales = map[string]bool{
	"ar":     true,
	"bg":     true,
	"bn":     true,
	"bn-BD":  true,
	"bn-IN":  true,
	"ca":     true,
	"cs":     true,
	"cy":     true,
	"da":     true,
	"de":     true,
	"el":     true,
	"en":     true,
	"en-CA":  true,
	"en-GB":  true,
	"en-US":  true,
	"eo":     true,
	"es":     true,
	"es-AR":  true,
	"es-CL":  true,
	"es-MX":  true,
	"et":     true,
	"eu":     true,
	"fa":     true,
	"fi":     true,
	"fr":     true,
	"fy":     true,
	"ga":     true,
	"gl":     true,
	"he":     true,
	"hi":     true,
	"hi-IN":  true,
	"hr":     true,
	"hu":     true,
	"id":     true,
	"it":     true,
	"ja":     true,
	"ka":     true,
	"km":     true,
	"ko":     true,
	"lt":     true,
	"lv":     true,
	"mk":     true,
	"ml":     true,
	"ms":     true,
	"my":     true,
	"nb-NO":  true,
	"nl":     true,
	"nn-NO":  true,
	"pa":     true,
	"pl":     true,
	"pt":     true,
	"pt-BR":  true,
	"ro":     true,
	"ru":     true,
	"sk":     true,
	"sl":     true,
	"sq":     true,
	"sr":     true,
	"sv":     true,
	"sw":     true,
	"ta":     true,
	"te":     true,
	"th":     true,
	"tr":     true,
	"uk":     true,
	"ur":     true,
	"vi":     true,
	"zh-CN":  true,
	"zh-TW":  true,
	"zu":     true,
}

func IsKnownLocale(locale string) bool {
	return knownLocales[locale]
}
