package render

// Section headings and inline labels per language. Unknown languages fall
// back to English.
var labelSets = map[string]map[string]string{
	"en": {
		"summary":    "Summary",
		"contact":    "Contact",
		"links":      "Links",
		"skills":     "Skills",
		"experience": "Experience",
		"projects":   "Projects",
		"education":  "Education",
		"courses":    "Courses",
		"otros":      "Other",
		"tech":       "Tech",
		"tags":       "Tags",
		"hours":      "hours",
		"credential": "Credential",
	},
	"es": {
		"summary":    "Resumen",
		"contact":    "Contacto",
		"links":      "Enlaces",
		"skills":     "Habilidades",
		"experience": "Experiencia",
		"projects":   "Proyectos",
		"education":  "Educación",
		"courses":    "Cursos",
		"otros":      "Otros",
		"tech":       "Tecnologías",
		"tags":       "Etiquetas",
		"hours":      "horas",
		"credential": "Credencial",
	},
}

// DefaultLabels returns the English label set.
func DefaultLabels() map[string]string {
	return Labels("en")
}

// Labels returns a copy of the label set for lang.
func Labels(lang string) map[string]string {
	set, ok := labelSets[lang]
	if !ok {
		set = labelSets["en"]
	}
	out := make(map[string]string, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}
