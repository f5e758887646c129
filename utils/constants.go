package utils

const (
	// Expense categories
	CategoryFood          = "food"
	CategoryAccommodation = "accommodation"
	CategoryEntertainment = "entertainment"
	CategoryTravel        = "travel"
	CategoryMiscellaneous = "miscellaneous"
	CategoryOther         = "other"

	// Member listing tags
	UserTypeMember  = "member"
	UserTypeInvited = "invited"

	// HTTP status messages
	ErrInvalidRequest    = "Invalid request"
	ErrTripNotFound      = "Trip not found"
	ErrUserNotFound      = "User not found"
	ErrInvitationInvalid = "Invitation not found"
	ErrFailedToStore     = "Failed to store data"
	ErrFailedToRetrieve  = "Failed to retrieve data"
	ErrUnauthorized      = "Unauthorized access"
	ErrCreatorOnly       = "Only the trip organiser can do this"
	ErrNotTripMember     = "You are not a member of this trip"

	// Date layout used for calendar dates in requests and reports
	DateLayout = "2006-01-02"

	// Money is rounded to this many decimal places when leaving the core
	MoneyPlaces = 2

	// Number of expenses shown in a trip's recent expense list
	RecentExpenseLimit = 5

	// Members returned by a member search without a search term
	DefaultMemberSearchLimit = 5
)

// ExpenseCategories lists every accepted expense category in sorted order.
var ExpenseCategories = []string{
	CategoryAccommodation,
	CategoryEntertainment,
	CategoryFood,
	CategoryMiscellaneous,
	CategoryOther,
	CategoryTravel,
}

// TravelTypes lists the accepted travel booking modes.
var TravelTypes = []string{"flight", "train", "cab", "others"}
