// Package i18n holds the supported languages and the translations of the
// message codes returned by the JSON API.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

// Default is used when nothing better can be negotiated.
const Default = "fr"

// Supported lists the site languages, default first.
var Supported = []string{"fr", "en", "ar"}

var matcher = language.NewMatcher([]language.Tag{
	language.French,
	language.English,
	language.Arabic,
})

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// IsSupported reports whether lang is one of the site languages.
func IsSupported(lang string) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

// Dir returns the text direction of lang.
func Dir(lang string) string {
	if lang == "ar" {
		return "rtl"
	}
	return "ltr"
}

var messages = map[string]map[string]string{
	"fr": {
		"required":              "Requis",
		"invalid_email":         "Adresse e-mail invalide",
		"password_too_short":    "Le mot de passe doit contenir au moins 8 caractères",
		"password_needs_letter": "Le mot de passe doit contenir au moins une lettre",
		"password_needs_digit":  "Le mot de passe doit contenir au moins un chiffre",
		"password_mismatch":     "Les mots de passe ne correspondent pas",
		"invalid_type":          "Type de demande inconnu",
		"invalid_request":       "Requête invalide",
		"validation_failed":     "Certains champs sont invalides",
		"unauthorized":          "Authentification requise",
		"forbidden":             "Accès refusé",
		"not_found":             "Ressource introuvable",
		"devis_list_failed":     "Erreur lors de la récupération des demandes de devis",
		"upstream_unavailable":  "Service momentanément indisponible",
		"internal_error":        "Erreur interne du serveur",
		"logged_out":            "Déconnexion réussie",
	},
	"en": {
		"required":              "Required",
		"invalid_email":         "Invalid email address",
		"password_too_short":    "Password must be at least 8 characters long",
		"password_needs_letter": "Password must contain at least one letter",
		"password_needs_digit":  "Password must contain at least one digit",
		"password_mismatch":     "Passwords do not match",
		"invalid_type":          "Unknown request type",
		"invalid_request":       "Invalid request",
		"validation_failed":     "Some fields are invalid",
		"unauthorized":          "Authentication required",
		"forbidden":             "Access denied",
		"not_found":             "Resource not found",
		"devis_list_failed":     "Failed to fetch quote requests",
		"upstream_unavailable":  "Service temporarily unavailable",
		"internal_error":        "Internal server error",
		"logged_out":            "Logged out",
	},
	"ar": {
		"required":              "مطلوب",
		"invalid_email":         "بريد إلكتروني غير صالح",
		"password_too_short":    "يجب أن تتكون كلمة المرور من 8 أحرف على الأقل",
		"password_needs_letter": "يجب أن تحتوي كلمة المرور على حرف واحد على الأقل",
		"password_needs_digit":  "يجب أن تحتوي كلمة المرور على رقم واحد على الأقل",
		"password_mismatch":     "كلمتا المرور غير متطابقتين",
		"invalid_type":          "نوع الطلب غير معروف",
		"invalid_request":       "طلب غير صالح",
		"validation_failed":     "بعض الحقول غير صالحة",
		"unauthorized":          "يلزم تسجيل الدخول",
		"forbidden":             "تم رفض الوصول",
		"not_found":             "المورد غير موجود",
		"devis_list_failed":     "فشل في جلب طلبات عروض الأسعار",
		"upstream_unavailable":  "الخدمة غير متاحة مؤقتًا",
		"internal_error":        "خطأ داخلي في الخادم",
		"logged_out":            "تم تسجيل الخروج",
	},
}

// T translates code into lang, falling back to French then to the code.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

type ctxKey struct{}

// WithLang stores the negotiated language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the language stored in ctx, or Default.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return Default
}
