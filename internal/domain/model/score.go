package model

// Upstream Score field names.
const (
	ScoreFieldExternalCode   = "externalCode"
	ScoreFieldExternalName   = "externalName"
	ScoreFieldScore          = "cust_Score"
	ScoreFieldStreak         = "cust_Streak"
	ScoreFieldRecordStatus   = "mdfSystemRecordStatus"
	ScoreFieldCreatedBy      = "createdBy"
	ScoreFieldCreatedAt      = "createdDateTime"
	ScoreFieldLastModifiedBy = "lastModifiedBy"
	ScoreFieldLastModifiedAt = "lastModifiedDateTime"
)

// ScoreLocalized lists fields whose writes need a locale header.
var ScoreLocalized = FieldSet{ScoreFieldExternalName}

// ScoreSelect returns the $select projection for score reads.
func ScoreSelect(withStreak bool) FieldSet {
	fs := FieldSet{
		ScoreFieldExternalCode,
		ScoreFieldExternalName,
		ScoreFieldScore,
		ScoreFieldRecordStatus,
		ScoreFieldCreatedBy,
		ScoreFieldCreatedAt,
		ScoreFieldLastModifiedBy,
		ScoreFieldLastModifiedAt,
	}
	if withStreak {
		fs = append(fs, ScoreFieldStreak)
	}
	return fs
}

// ScoreUpdatable returns the allow-list for score updates.
func ScoreUpdatable(withStreak bool) FieldSet {
	fs := FieldSet{ScoreFieldScore, ScoreFieldExternalName, ScoreFieldRecordStatus}
	if withStreak {
		fs = append(fs, ScoreFieldStreak)
	}
	return fs
}

// Score is the flat application shape of an upstream Score record.
type Score struct {
	ExternalCode   string   `json:"externalCode"`
	ExternalName   string   `json:"externalName"`
	Score          float64  `json:"score"`
	Streak         *float64 `json:"streak,omitempty"`
	RecordStatus   string   `json:"recordStatus"`
	CreatedBy      string   `json:"createdBy"`
	CreatedAt      string   `json:"createdAt"`
	LastModifiedBy string   `json:"lastModifiedBy"`
	LastModifiedAt string   `json:"lastModifiedAt"`

	// ModifiedMillis is the epoch-millisecond modification time used to
	// break ties between duplicates.
	ModifiedMillis int64 `json:"-"`
}

// StreakValue returns the streak, treating an absent one as 0.
func (s Score) StreakValue() float64 {
	if s.Streak == nil {
		return 0
	}
	return *s.Streak
}

// ScoreFromRecord flattens one upstream record. The streak is only read when
// withStreak is set and the record carries the field.
func ScoreFromRecord(rec map[string]any, withStreak bool) Score {
	s := Score{
		ExternalCode:   Text(rec[ScoreFieldExternalCode]),
		ExternalName:   Text(rec[ScoreFieldExternalName]),
		Score:          Number(rec[ScoreFieldScore]),
		RecordStatus:   Text(rec[ScoreFieldRecordStatus]),
		CreatedBy:      Text(rec[ScoreFieldCreatedBy]),
		CreatedAt:      Date(rec[ScoreFieldCreatedAt]),
		LastModifiedBy: Text(rec[ScoreFieldLastModifiedBy]),
		LastModifiedAt: Date(rec[ScoreFieldLastModifiedAt]),
		ModifiedMillis: EpochMillis(rec[ScoreFieldLastModifiedAt]),
	}
	if withStreak {
		if raw, ok := rec[ScoreFieldStreak]; ok {
			v := Number(raw)
			s.Streak = &v
		}
	}
	return s
}
