package notify

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

type template struct {
	title       string
	description string
	variant     Variant
}

var supportedLocales = []language.Tag{language.English, language.Indonesian}

var catalogs = []map[Kind]template{
	// en
	{
		KindUploadSucceeded:    {"Image uploaded successfully", "%s is ready for processing", VariantDefault},
		KindFileTooLarge:       {"File too large", "Please select an image smaller than %dMB", VariantDestructive},
		KindInvalidType:        {"Invalid file type", "Please select a valid image file (%s)", VariantDestructive},
		KindUploadFailed:       {"Cloud upload failed", "%s could not be saved to the cloud. You can still process it locally.", VariantDestructive},
		KindProcessingComplete: {"Processing complete!", "Your image has been processed successfully.", VariantDefault},
		KindRelayError:         {"AI Error", "Failed to generate text. Please try again.", VariantDestructive},
		KindNetworkError:       {"AI Error", "Failed to connect to AI service.", VariantDestructive},
		KindDownloadStarted:    {"Download started", "Your processed image is being downloaded.", VariantDefault},
		KindToolNotFound:       {"Tool Not Found", "The selected tool does not exist. Go back to the tool catalog.", VariantDestructive},
	},
	// id
	{
		KindUploadSucceeded:    {"Gambar berhasil diunggah", "%s siap diproses", VariantDefault},
		KindFileTooLarge:       {"Ukuran file terlalu besar", "Pilih gambar yang lebih kecil dari %dMB", VariantDestructive},
		KindInvalidType:        {"Jenis file tidak valid", "Pilih file gambar yang valid (%s)", VariantDestructive},
		KindUploadFailed:       {"Gagal mengunggah ke cloud", "%s tidak dapat disimpan ke cloud. Anda tetap dapat memprosesnya secara lokal.", VariantDestructive},
		KindProcessingComplete: {"Pemrosesan selesai!", "Gambar Anda berhasil diproses.", VariantDefault},
		KindRelayError:         {"Kesalahan AI", "Gagal membuat teks. Silakan coba lagi.", VariantDestructive},
		KindNetworkError:       {"Kesalahan AI", "Gagal terhubung ke layanan AI.", VariantDestructive},
		KindDownloadStarted:    {"Unduhan dimulai", "Gambar hasil proses sedang diunduh.", VariantDefault},
		KindToolNotFound:       {"Alat Tidak Ditemukan", "Alat yang dipilih tidak tersedia. Kembali ke katalog alat.", VariantDestructive},
	},
}

// Messages builds localized notifications.
type Messages struct {
	matcher language.Matcher
	now     func() time.Time
}

func NewMessages() *Messages {
	return &Messages{matcher: language.NewMatcher(supportedLocales), now: time.Now}
}

// Build renders kind in the best match for locale. args fill the
// description's verbs (filename, size in MB, accepted formats).
func (m *Messages) Build(locale string, kind Kind, args ...any) Notification {
	_, idx := language.MatchStrings(m.matcher, locale)
	tpl, ok := catalogs[idx][kind]
	if !ok {
		tpl = template{title: string(kind), variant: VariantDefault}
	}
	desc := tpl.description
	if len(args) > 0 {
		desc = fmt.Sprintf(desc, args...)
	}
	return Notification{
		Kind:        kind,
		Variant:     tpl.variant,
		Title:       tpl.title,
		Description: desc,
		At:          m.now().UTC(),
	}
}

// Locale returns the canonical locale chosen for the given preference.
func (m *Messages) Locale(locale string) string {
	_, idx := language.MatchStrings(m.matcher, locale)
	base, _ := supportedLocales[idx].Base()
	return base.String()
}
