package model

// Upstream User field names.
const (
	UserFieldUserID             = "userId"
	UserFieldUsername           = "username"
	UserFieldDisplayName        = "displayName"
	UserFieldDefaultFullName    = "defaultFullName"
	UserFieldEmail              = "email"
	UserFieldStatus             = "status"
	UserFieldDivision           = "division"
	UserFieldDepartment         = "department"
	UserFieldLocation           = "location"
	UserFieldTimeZone           = "timeZone"
	UserFieldDefaultLocale      = "defaultLocale"
	UserFieldLastModified       = "lastModifiedDateTime"
	UserFieldLastModifiedWithTZ = "lastModifiedWithTZ"
	UserFieldAssignmentUUID     = "assignmentUUID"
)

// UserSelect is the $select projection used for every user read.
var UserSelect = FieldSet{
	UserFieldUserID,
	UserFieldUsername,
	UserFieldDisplayName,
	UserFieldDefaultFullName,
	UserFieldEmail,
	UserFieldStatus,
	UserFieldDivision,
	UserFieldDepartment,
	UserFieldLocation,
	UserFieldTimeZone,
	UserFieldDefaultLocale,
	UserFieldLastModified,
	UserFieldLastModifiedWithTZ,
	UserFieldAssignmentUUID,
}

// UserCreatable lists the fields a caller may send when creating a user.
var UserCreatable = UserSelect.Without(UserFieldLastModified, UserFieldLastModifiedWithTZ)

// UserUpdatable lists the fields a caller may change on an existing user.
var UserUpdatable = UserCreatable.Without(UserFieldUserID, UserFieldUsername)

// User is the flat application shape of an upstream User record.
type User struct {
	UserID             string `json:"userId"`
	Username           string `json:"username"`
	DisplayName        string `json:"displayName"`
	Email              string `json:"email"`
	Status             string `json:"status"`
	Division           string `json:"division"`
	Department         string `json:"department"`
	Location           string `json:"location"`
	TimeZone           string `json:"timeZone"`
	DefaultLocale      string `json:"defaultLocale"`
	LastModified       string `json:"lastModified"`
	LastModifiedWithTZ string `json:"lastModifiedWithTZ"`
	AssignmentUUID     string `json:"assignmentUUID"`
}

// UserFromRecord flattens one upstream record. The display name falls back
// to defaultFullName when displayName is absent.
func UserFromRecord(rec map[string]any) User {
	display := Text(rec[UserFieldDisplayName])
	if display == "" {
		display = Text(rec[UserFieldDefaultFullName])
	}
	return User{
		UserID:             Text(rec[UserFieldUserID]),
		Username:           Text(rec[UserFieldUsername]),
		DisplayName:        display,
		Email:              Text(rec[UserFieldEmail]),
		Status:             Text(rec[UserFieldStatus]),
		Division:           Text(rec[UserFieldDivision]),
		Department:         Text(rec[UserFieldDepartment]),
		Location:           Text(rec[UserFieldLocation]),
		TimeZone:           Text(rec[UserFieldTimeZone]),
		DefaultLocale:      Text(rec[UserFieldDefaultLocale]),
		LastModified:       Date(rec[UserFieldLastModified]),
		LastModifiedWithTZ: Date(rec[UserFieldLastModifiedWithTZ]),
		AssignmentUUID:     Text(rec[UserFieldAssignmentUUID]),
	}
}
