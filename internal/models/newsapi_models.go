package models

type NewsAPITopHeadlinesResponse = struct {
	Status       string            `json:"status"`
	Code         string            `json:"code,omitempty"`
	Message      string            `json:"message,omitempty"`
	TotalResults int               `json:"totalResults"`
	Articles     []NewsAPIArticles `json:"articles"`
}

type NewsAPIArticles = struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}
