package models

// RedditListing is the envelope of a subreddit listing.
type RedditListing struct {
	Data RedditListingData `json:"data"`
}

type RedditListingData struct {
	After    string        `json:"after"`
	Children []RedditChild `json:"children"`
}

type RedditChild struct {
	Data RedditPost `json:"data"`
}

type RedditPost struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Subreddit  string  `json:"subreddit"`
	Author     string  `json:"author"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Thumbnail  string  `json:"thumbnail"`
	IsSelf     bool    `json:"is_self"`
	Over18     bool    `json:"over_18"`
	Stickied   bool    `json:"stickied"`
	Ups        int     `json:"ups"`
	CreatedUTC float64 `json:"created_utc"`
}
