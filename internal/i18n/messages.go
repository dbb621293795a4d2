// Package i18n holds the user facing messages of the API. Indonesian is the
// primary language; English is served when the caller asks for it.
package i18n

import (
	"context"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MsgPromptRequired      = "prompt_required"
	MsgBucketMissing       = "bucket_missing"
	MsgModelMissing        = "model_missing"
	MsgImageCountTooMany   = "image_count_too_many"
	MsgImageCountInvalid   = "image_count_invalid"
	MsgInputSizeInvalid    = "input_size_invalid"
	MsgOutputFormatInvalid = "output_format_invalid"
	MsgPromptRefused       = "prompt_refused"
	MsgNoImageReturned     = "no_image_returned"
	MsgGeneratedImages     = "generated_images"
	MsgGeneratedImage      = "generated_image"
	MsgInvalidBody         = "invalid_body"
	MsgInternalError       = "internal_error"
	MsgServiceInfo         = "service_info"
)

const (
	LocaleID = "id"
	LocaleEN = "en"
)

var indonesian = map[string]string{
	MsgPromptRequired:      "Prompt tidak boleh kosong",
	MsgBucketMissing:       "AWS_BUCKET_NAME tidak ditemukan",
	MsgModelMissing:        "Model ID untuk %s tidak ditemukan",
	MsgImageCountTooMany:   "Maksimal jumlah gambar yang dapat di-generate adalah %d.",
	MsgImageCountInvalid:   "number_of_images minimal 1",
	MsgInputSizeInvalid:    "input_size harus 'landscape' atau 'portrait'",
	MsgOutputFormatInvalid: "output_format harus 'png' atau 'jpeg'",
	MsgPromptRefused:       "Maaf, Prompt yang anda gunakan melanggar kebijakan kami",
	MsgNoImageReturned:     "Maaf, layanan generate tidak mengembalikan gambar",
	MsgGeneratedImages:     "Berhasil generate %d image",
	MsgGeneratedImage:      "Berhasil generate image",
	MsgInvalidBody:         "Body request tidak valid",
	MsgInternalError:       "Internal server error",
	MsgServiceInfo:         "Imagen API - AI Image Generation Service",
}

var english = map[string]string{
	MsgPromptRequired:      "Prompt must not be empty",
	MsgBucketMissing:       "AWS_BUCKET_NAME not found",
	MsgModelMissing:        "Model ID for %s not found",
	MsgImageCountTooMany:   "At most %d images can be generated.",
	MsgImageCountInvalid:   "number_of_images must be at least 1",
	MsgInputSizeInvalid:    "input_size must be 'landscape' or 'portrait'",
	MsgOutputFormatInvalid: "output_format must be 'png' or 'jpeg'",
	MsgPromptRefused:       "Sorry, your prompt violates our content policy",
	MsgNoImageReturned:     "Sorry, the generation service returned no image",
	MsgGeneratedImages:     "Successfully generated %d image(s)",
	MsgGeneratedImage:      "Successfully generated image",
	MsgInvalidBody:         "Invalid request body",
	MsgInternalError:       "Internal server error",
	MsgServiceInfo:         "Imagen API - AI Image Generation Service",
}

var (
	supported = []language.Tag{language.Indonesian, language.English}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Indonesian))
	for key, msg := range indonesian {
		_ = b.SetString(language.Indonesian, key, msg)
	}
	for key, msg := range english {
		_ = b.SetString(language.English, key, msg)
	}
	return b
}

// Sprintf renders the message stored under key for the given locale.
func Sprintf(locale, key string, args ...any) string {
	p := message.NewPrinter(tagFor(locale), message.Catalog(messages))
	return p.Sprintf(key, args...)
}

// T renders the message for the locale stored in ctx.
func T(ctx context.Context, key string, args ...any) string {
	return Sprintf(FromContext(ctx), key, args...)
}

// Match picks the first supported locale from the given preference headers
// (X-Locale values or Accept-Language lists). Fallback is used when nothing matches.
func Match(fallback string, prefs ...string) string {
	for _, pref := range prefs {
		pref = strings.TrimSpace(pref)
		if pref == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := matcher.Match(tags...)
		if conf == language.No {
			continue
		}
		return supported[idx].String()
	}
	return Normalize(fallback)
}

// Normalize maps free-form locale codes onto a supported locale.
func Normalize(locale string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), LocaleEN) {
		return LocaleEN
	}
	return LocaleID
}

func tagFor(locale string) language.Tag {
	if Normalize(locale) == LocaleEN {
		return language.English
	}
	return language.Indonesian
}

type localeContextKey struct{}

// ContextWithLocale stores the negotiated locale on ctx.
func ContextWithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey{}, Normalize(locale))
}

// FromContext returns the negotiated locale, defaulting to Indonesian.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return LocaleID
	}
	if v, ok := ctx.Value(localeContextKey{}).(string); ok && v != "" {
		return v
	}
	return LocaleID
}
