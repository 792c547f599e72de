package clients

import "github.com/spacesedan/paperboy/internal/models"

// TopicToFeeds lists the RSS/Atom feeds that make up each topic when the RSS
// fetch service is used.
var TopicToFeeds = map[models.Topic][]string{
	models.TopicGeneral: {
		"https://feeds.bbci.co.uk/news/rss.xml",
		"https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml",
	},
	models.TopicBusiness: {
		"https://feeds.bbci.co.uk/news/business/rss.xml",
		"https://rss.nytimes.com/services/xml/rss/nyt/Business.xml",
	},
	models.TopicTechnology: {
		"https://feeds.bbci.co.uk/news/technology/rss.xml",
		"https://rss.nytimes.com/services/xml/rss/nyt/Technology.xml",
		"https://feeds.arstechnica.com/arstechnica/index",
	},
	models.TopicEntertainment: {
		"https://feeds.bbci.co.uk/news/entertainment_and_arts/rss.xml",
		"https://rss.nytimes.com/services/xml/rss/nyt/Arts.xml",
	},
	models.TopicHealth: {
		"https://feeds.bbci.co.uk/news/health/rss.xml",
		"https://rss.nytimes.com/services/xml/rss/nyt/Health.xml",
	},
	models.TopicScience: {
		"https://feeds.bbci.co.uk/news/science_and_environment/rss.xml",
		"https://rss.nytimes.com/services/xml/rss/nyt/Science.xml",
	},
	models.TopicSports: {
		"https://feeds.bbci.co.uk/sport/rss.xml",
		"https://rss.nytimes.com/services/xml/rss/nyt/Sports.xml",
	},
}
