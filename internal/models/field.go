package models

import "strings"

// Field is one of the identification keys collected during a voice session.
type Field string

const (
	FieldGivenName Field = "given_name"
	FieldSurname   Field = "surname"
	FieldGender    Field = "gender"
	FieldPhone     Field = "phone"
	FieldPlate     Field = "plate"
)

// Fields is the fixed declaration order. Prompts, summaries and the missing
// list all follow it.
var Fields = []Field{FieldGivenName, FieldSurname, FieldGender, FieldPhone, FieldPlate}

// Thai labels emitted by the original extraction prompt.
var fieldAliases = map[string]Field{
	"given_name":    FieldGivenName,
	"first_name":    FieldGivenName,
	"name":          FieldGivenName,
	"ชื่อ":          FieldGivenName,
	"surname":       FieldSurname,
	"last_name":     FieldSurname,
	"นามสกุล":       FieldSurname,
	"gender":        FieldGender,
	"sex":           FieldGender,
	"เพศ":           FieldGender,
	"phone":         FieldPhone,
	"phone_number":  FieldPhone,
	"เบอร์โทรศัพท์": FieldPhone,
	"เบอร์โทร":      FieldPhone,
	"plate":         FieldPlate,
	"license_plate": FieldPlate,
	"ทะเบียนรถ":     FieldPlate,
}

// ParseField maps an external field label onto a known Field.
func ParseField(s string) (Field, bool) {
	f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(s))]
	return f, ok
}

func (f Field) Valid() bool {
	for _, k := range Fields {
		if k == f {
			return true
		}
	}
	return false
}

// NameLike reports whether the field is rendered with capitalised casing.
func (f Field) NameLike() bool {
	return f == FieldGivenName || f == FieldSurname
}

func FieldStrings(fs []Field) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, string(f))
	}
	return out
}
