package broker

import (
	"strconv"
	"strings"
)

// Topic identifies a notification channel. The first part is the resource
// kind; an optional second part narrows it to one entity.
type Topic []string

func NewTopic(parts ...string) Topic {
	return Topic(parts)
}

// CollectionTopic is the feed for every entity of a resource kind.
func CollectionTopic(resource string) Topic {
	return Topic{resource}
}

// EntityTopic is the feed for a single entity, nested under its collection.
func EntityTopic(resource string, id int) Topic {
	return Topic{resource, strconv.Itoa(id)}
}

// key is the registry key. Parts are joined with a unit separator so that
// ("a.b") and ("a", "b") never collide.
func (t Topic) key() string {
	return strings.Join(t, "\x1f")
}

func resourceOfKey(key string) string {
	return strings.SplitN(key, "\x1f", 2)[0]
}

func (t Topic) Resource() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Subject renders the topic as a dotted message bus subject.
func (t Topic) Subject(prefix string) string {
	if prefix == "" {
		return strings.Join(t, ".")
	}
	return prefix + "." + strings.Join(t, ".")
}

func (t Topic) String() string {
	return "(" + strings.Join(t, ", ") + ")"
}
