package api

// Service accessors group Client methods by feature.
// Each service embeds *Client so helpers stay reachable from every feature.

type AuthService struct{ *Client }

type ProfileService struct{ *Client }

type NotesService struct{ *Client }

type CatalogService struct{ *Client }

type RatingsService struct{ *Client }

type ShoppingListService struct{ *Client }

type NotificationsService struct{ *Client }

type TicketsService struct{ *Client }

func (c *Client) Auth() AuthService {
	return AuthService{c}
}

func (c *Client) Profile() ProfileService {
	return ProfileService{c}
}

func (c *Client) Notes() NotesService {
	return NotesService{c}
}

func (c *Client) Catalog() CatalogService {
	return CatalogService{c}
}

func (c *Client) Ratings() RatingsService {
	return RatingsService{c}
}

func (c *Client) ShoppingList() ShoppingListService {
	return ShoppingListService{c}
}

func (c *Client) Notifications() NotificationsService {
	return NotificationsService{c}
}

func (c *Client) Tickets() TicketsService {
	return TicketsService{c}
}
