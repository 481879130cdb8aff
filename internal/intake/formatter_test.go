package intake

import (
	"testing"

	"github.com/yoockh/voiceintake/internal/models"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		accepted map[models.Field]string
		locale   Locale
		want     string
	}{
		{
			name: "capitalises names only",
			accepted: map[models.Field]string{
				models.FieldGivenName: "jOHN",
				models.FieldSurname:   "smith",
				models.FieldGender:    "male",
				models.FieldPhone:     "0812345678",
				models.FieldPlate:     "กข1234",
			},
			locale: LocaleEnglish,
			want:   "Your details\n\ngiven_name: John\nsurname: Smith\ngender: male\nphone: 0812345678\nplate: กข1234",
		},
		{
			name:     "placeholders for missing",
			accepted: map[models.Field]string{models.FieldGivenName: "สมชาย"},
			locale:   LocaleThai,
			want:     "ข้อมูลของคุณ\n\ngiven_name: สมชาย\nsurname: -\ngender: -\nphone: -\nplate: -",
		},
		{
			name:     "nil map",
			accepted: nil,
			locale:   LocaleEnglish,
			want:     "Your details\n\ngiven_name: -\nsurname: -\ngender: -\nphone: -\nplate: -",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.accepted, tt.locale); got != tt.want {
				t.Fatalf("Format =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestLocale(t *testing.T) {
	if LocaleFor("EN").Code != "en" || LocaleFor("en-US").Code != "en" {
		t.Fatal("english locale not selected")
	}
	if LocaleFor("").Code != "th" || LocaleFor("fr").Code != "th" {
		t.Fatal("thai must be the default")
	}

	if got := LocaleEnglish.MissingPrompt(nil); got != "" {
		t.Fatalf("prompt with nothing missing = %q", got)
	}
	got := LocaleEnglish.MissingPrompt([]models.Field{models.FieldGender, models.FieldPlate})
	if want := "Still missing gender, plate, please tell us more."; got != want {
		t.Fatalf("prompt = %q", got)
	}
	got = LocaleThai.MissingPrompt([]models.Field{models.FieldPhone})
	if want := "ยังขาดข้อมูล phone กรุณาพูดเพิ่มเติม"; got != want {
		t.Fatalf("thai prompt = %q", got)
	}
}
