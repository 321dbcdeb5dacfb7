package models

// Page is the result of fetching a single URL: extracted text content,
// title, and the outbound links found in the document.
type Page struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Links       []Link `json:"links"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
}

// Link is an outbound link with its anchor text.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}
