// Package sample provides the example school register shown before any data
// has been loaded.
package sample

import "office-stats/internal/table"

// Column labels of the school register, as they appear in uploaded files.
const (
	ColIndex     = "#"
	ColSchool    = "اسم المدرسة"
	ColStage     = "المرحلة"
	ColOffice    = "مكتب التعليم"
	ColGender    = "الجنس"
	ColLatitude  = "خط العرض"
	ColLongitude = "خط الطول"
)

type school struct {
	name, stage, office, gender string
	lat, lon                    float64
}

var schools = []school{
	{"مدرسة 1", "ابتدائية", "مكتب 1", "بنين", 21.50, 39.20},
	{"مدرسة 2", "متوسط", "مكتب 2 - بنين", "بنين", 21.55, 39.25},
	{"مدرسة 3", "ثانوي", "مكتب 1", "بنات", 21.60, 39.30},
}

// Get returns a fresh copy of the example table.
func Get() *table.Table {
	t := table.New(
		table.Column{Label: ColIndex, Role: table.RoleOther},
		table.Column{Label: ColSchool, Role: table.RoleIdentifier},
		table.Column{Label: ColStage, Role: table.RoleOther},
		table.Column{Label: ColOffice, Role: table.RoleOther},
		table.Column{Label: ColGender, Role: table.RoleOther},
		table.Column{Label: ColLatitude, Role: table.RoleLatitude},
		table.Column{Label: ColLongitude, Role: table.RoleLongitude},
	)
	for i, s := range schools {
		// The schema is fixed above, so Append cannot fail.
		_ = t.Append(s.name,
			table.Int(i+1),
			table.Text(s.name),
			table.Text(s.stage),
			table.Text(s.office),
			table.Text(s.gender),
			table.Float(s.lat),
			table.Float(s.lon),
		)
	}
	return t
}
