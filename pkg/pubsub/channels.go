package pubsub

import (
	"fmt"
	"strings"
)

// Room channels carry live events for one room each.
//
//	"codegram:room:user:42"      → private room of user 42
//	"codegram:room:content:abc"  → comment room of content abc
const (
	ChannelRoomPrefix = "codegram:room:"
	PatternAllRooms   = ChannelRoomPrefix + "*"
)

// RoomKinds lists the room kinds that have their own Kafka topic.
var RoomKinds = []string{"user", "content"}

// RoomChannel returns the bus channel for a room name such as "user:42".
func RoomChannel(room string) string {
	return ChannelRoomPrefix + room
}

// RoomFromChannel extracts the room name from a room channel.
func RoomFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, ChannelRoomPrefix) {
		return "", false
	}
	room := strings.TrimPrefix(channel, ChannelRoomPrefix)
	return room, room != ""
}

// channelToTopicAndKey converts a room channel to a Kafka topic and message key.
//
//	"codegram:room:user:42" → topic: "codegram-room-user", key: "42"
func channelToTopicAndKey(channel string) (topic, key string, err error) {
	room, ok := RoomFromChannel(channel)
	if !ok {
		return "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	kind, id, found := strings.Cut(room, ":")
	if !found || kind == "" || id == "" {
		return "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return kindTopic(kind), id, nil
}

// patternToTopics converts a subscribe pattern to the Kafka topics it covers.
//
//	"codegram:room:*"       → every room kind topic
//	"codegram:room:user:*"  → "codegram-room-user"
func patternToTopics(pattern string) ([]string, error) {
	if pattern == PatternAllRooms {
		topics := make([]string, 0, len(RoomKinds))
		for _, kind := range RoomKinds {
			topics = append(topics, kindTopic(kind))
		}
		return topics, nil
	}
	topic, _, err := channelToTopicAndKey(strings.ReplaceAll(pattern, "*", "_placeholder_"))
	if err != nil {
		return nil, err
	}
	return []string{topic}, nil
}

func kindTopic(kind string) string {
	return "codegram-room-" + kind
}
