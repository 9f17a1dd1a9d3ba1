package models

// Profile is a Holidaze user.
type Profile struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Bio          string `json:"bio,omitempty"`
	Avatar       *Media `json:"avatar,omitempty"`
	Banner       *Media `json:"banner,omitempty"`
	VenueManager bool   `json:"venueManager"`
}

// AuthProfile is the login response: the profile plus its access token.
type AuthProfile struct {
	Profile
	AccessToken string `json:"accessToken"`
}

// Envelope wraps every successful API response.
type Envelope[T any] struct {
	Data T        `json:"data"`
	Meta PageMeta `json:"meta"`
}

// PageMeta is the pagination block of list responses.
type PageMeta struct {
	IsFirstPage  bool `json:"isFirstPage"`
	IsLastPage   bool `json:"isLastPage"`
	CurrentPage  int  `json:"currentPage"`
	PreviousPage *int `json:"previousPage"`
	NextPage     *int `json:"nextPage"`
	PageCount    int  `json:"pageCount"`
	TotalCount   int  `json:"totalCount"`
}
