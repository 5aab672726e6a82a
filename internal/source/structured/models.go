package structured

// Response is the structured API envelope.
type Response struct {
	Meta  Meta      `json:"meta"`
	Data  []Item    `json:"data"`
	Error *APIError `json:"error,omitempty"`
}

type Meta struct {
	Found    int `json:"found"`
	Returned int `json:"returned"`
	Limit    int `json:"limit"`
	Page     int `json:"page"`
}

type Item struct {
	UUID        string   `json:"uuid"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Snippet     string   `json:"snippet"`
	Keywords    string   `json:"keywords"`
	URL         string   `json:"url"`
	ImageURL    string   `json:"image_url"`
	Language    string   `json:"language"`
	PublishedAt string   `json:"published_at"`
	Source      string   `json:"source"`
	Categories  []string `json:"categories"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
