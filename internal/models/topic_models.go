package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTopic = errors.New("unknown topic")

// Topic is one of the fixed news categories shown in the topic strip.
type Topic string

const (
	TopicGeneral       Topic = "general"
	TopicBusiness      Topic = "business"
	TopicTechnology    Topic = "technology"
	TopicEntertainment Topic = "entertainment"
	TopicHealth        Topic = "health"
	TopicScience       Topic = "science"
	TopicSports        Topic = "sports"
)

// AllTopics is the topic strip in display order.
var AllTopics = []Topic{
	TopicGeneral,
	TopicBusiness,
	TopicTechnology,
	TopicEntertainment,
	TopicHealth,
	TopicScience,
	TopicSports,
}

func ParseTopic(s string) (Topic, error) {
	t := Topic(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllTopics {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTopic, s)
}

// Title is the label shown on the topic cell.
func (t Topic) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}
