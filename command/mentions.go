package command

import (
	"regexp"
	"strconv"
)

// User pairs a numeric identifier with a display name for mention expansion
type User struct {
	ID   uint64
	Name string
}

// NameLookup resolves an identifier to a display name within the guild a
// message came from. A nil lookup means the message has no guild context.
type NameLookup func(id uint64) (string, bool)

var (
	userMention    = regexp.MustCompile(`<@!?(\d+)>`)
	channelMention = regexp.MustCompile(`<#(\d+)>`)
	roleMention    = regexp.MustCompile(`<@&(\d+)>`)
	customEmoji    = regexp.MustCompile(`<a?:(\w+):(\d+)>`)
)

/*
ExpandMentions rewrites raw mention tokens into a readable equivalent: user
mentions become @name (or @id when the user isn't in the mention list),
channel and role mentions become #name / @name when resolvable and the
deleted-channel / deleted-role literals otherwise, and custom emoji collapse
to :name:. Categories are handled in that order; no replacement ever produces
a new token, so one pass per category reaches a fixed point.
*/
func ExpandMentions(text string, users []User, channels, roles NameLookup) string {
	byID := make(map[uint64]string, len(users))
	for _, u := range users {
		byID[u.ID] = u.Name
	}

	text = userMention.ReplaceAllStringFunc(text, func(token string) string {
		id := tokenID(userMention, token)
		if name, ok := byID[id]; ok {
			return "@" + name
		}
		return "@" + strconv.FormatUint(id, 10)
	})
	text = channelMention.ReplaceAllStringFunc(text, func(token string) string {
		if channels != nil {
			if name, ok := channels(tokenID(channelMention, token)); ok {
				return "#" + name
			}
		}
		return "#deleted-channel"
	})
	text = roleMention.ReplaceAllStringFunc(text, func(token string) string {
		if roles != nil {
			if name, ok := roles(tokenID(roleMention, token)); ok {
				return "@" + name
			}
		}
		return "@deleted-role"
	})
	text = customEmoji.ReplaceAllString(text, ":$1:")
	return text
}

func tokenID(pattern *regexp.Regexp, token string) uint64 {
	id, _ := strconv.ParseUint(pattern.FindStringSubmatch(token)[1], 10, 64)
	return id
}
