package requests

// ListUploadsQuery represents the pagination query for the listing endpoint.
// Zero values fall back to the configured defaults.
type ListUploadsQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
