package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Hospital maps to the hospital table.
type Hospital struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Location    string    `db:"location" json:"location"`
	District    string    `db:"district" json:"district"`
	Specialties []string  `db:"specialties" json:"specialties"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Doctor maps to the doctor table. Availability holds the weekdays the
// doctor takes appointments, as short names ("Mon" .. "Sun"). An empty
// list means every day. DailyCapacity is the number of tokens per day;
// zero means unlimited.
type Doctor struct {
	ID            uuid.UUID `db:"id" json:"id"`
	HospitalID    uuid.UUID `db:"hospital_id" json:"hospital_id"`
	Name          string    `db:"name" json:"name"`
	Specialty     string    `db:"specialty" json:"specialty"`
	Availability  []string  `db:"availability" json:"availability"`
	DailyCapacity int       `db:"daily_capacity" json:"daily_capacity"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// AvailableOn reports whether the doctor takes appointments on the weekday
// of the given date.
func (d *Doctor) AvailableOn(date time.Time) bool {
	if len(d.Availability) == 0 {
		return true
	}
	day := date.Weekday().String()[:3]
	for _, w := range d.Availability {
		if w == day {
			return true
		}
	}
	return false
}
