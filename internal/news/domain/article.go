package domain

import "time"

type Topic string

const (
	TopicAI         Topic = "AI"
	TopicSecurity   Topic = "Security"
	TopicOpenSource Topic = "Open-Source"
	TopicSystems    Topic = "Systems"
)

func Topics() []Topic {
	return []Topic{TopicAI, TopicSecurity, TopicOpenSource, TopicSystems}
}

func ParseTopic(s string) (Topic, bool) {
	for _, t := range Topics() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Article is one normalized external news item. Source is the feed's
// title, Topic the keyword bucket the item matched.
type Article struct {
	Title       string
	URL         string
	Source      string
	Topic       Topic
	Summary     string
	PublishedAt time.Time
}
