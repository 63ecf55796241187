package calendar

import "strings"

// DefaultLocale is used when a request does not ask for a supported language.
const DefaultLocale = "en"

var labelText = map[string]map[string]string{
	"fr": {
		CapacityNoLimit:    "Sans limite",
		CapacityFull:       "Complet",
		CapacityAlmostFull: "Presque complet",
		CapacityAvailable:  "Disponible",
		StatusPast:         "Passé",
		StatusToday:        "Aujourd'hui",
		StatusUpcoming:     "À venir",
	},
	"es": {
		CapacityNoLimit:    "Sin límite",
		CapacityFull:       "Completo",
		CapacityAlmostFull: "Casi completo",
		CapacityAvailable:  "Disponible",
		StatusPast:         "Pasado",
		StatusToday:        "Hoy",
		StatusUpcoming:     "Próximo",
	},
}

// SupportedLocale reports whether labels can be translated into locale.
func SupportedLocale(locale string) bool {
	locale = strings.ToLower(locale)
	if locale == DefaultLocale {
		return true
	}
	_, ok := labelText[locale]
	return ok
}

// Translate returns the label in locale, or the label itself for English and unknown locales.
func Translate(locale, label string) string {
	if table, ok := labelText[strings.ToLower(locale)]; ok {
		if text, ok := table[label]; ok {
			return text
		}
	}
	return label
}
