package api

// Endpoint describes one remote operation. BaseURL is normally empty so the
// builder's configured base URL applies. The encoding mode never changes.
type Endpoint struct {
	BaseURL   string
	Path      string
	Multipart bool
}

// Auth.
var (
	EndpointLogin         = Endpoint{Path: "login"}
	EndpointVerifyOTP     = Endpoint{Path: "verify-otp"}
	EndpointResendOTP     = Endpoint{Path: "resend-otp"}
	EndpointLogout        = Endpoint{Path: "logout"}
	EndpointDeleteAccount = Endpoint{Path: "delete-account"}
)

// Profile.
var (
	EndpointGetProfile    = Endpoint{Path: "get-profile"}
	EndpointUpdateProfile = Endpoint{Path: "edit-profile", Multipart: true}
)

// Notes.
var (
	EndpointNotes      = Endpoint{Path: "notes"}
	EndpointCreateNote = Endpoint{Path: "notes/create"}
	EndpointUpdateNote = Endpoint{Path: "notes/update"}
	EndpointDeleteNote = Endpoint{Path: "notes/delete"}
)

// Catalog and search.
var (
	EndpointCategories = Endpoint{Path: "categories"}
	EndpointSearch     = Endpoint{Path: "search"}
	EndpointProduct    = Endpoint{Path: "product"}
	EndpointAddRating  = Endpoint{Path: "rating/add", Multipart: true}
)

// Shopping list.
var (
	EndpointShoppingList      = Endpoint{Path: "shopping-list"}
	EndpointShoppingListAdd   = Endpoint{Path: "shopping-list/add"}
	EndpointShoppingListDel   = Endpoint{Path: "shopping-list/delete"}
	EndpointShoppingListClear = Endpoint{Path: "shopping-list/clear"}
)

// Notifications, support tickets, app metadata.
var (
	EndpointNotifications      = Endpoint{Path: "notifications"}
	EndpointNotificationToggle = Endpoint{Path: "notifications/status"}
	EndpointTickets            = Endpoint{Path: "tickets"}
	EndpointCreateTicket       = Endpoint{Path: "tickets/create"}
	EndpointAppVersion         = Endpoint{Path: "app-version"}
)
