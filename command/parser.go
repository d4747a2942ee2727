package command

import (
	"fmt"
	"regexp"
)

// Command is one parsed instruction addressed to the bot. Entire is the full
// text after the addressing prefix, Trigger its first whitespace-delimited
// word and Argument everything after that. Entire is always Trigger followed
// by the original whitespace followed by Argument.
type Command struct {
	Entire   string
	Trigger  string
	Argument string
}

var dmPattern = regexp.MustCompile(`^(\S*)\s*((?s:.*))$`)

/*
Parse extracts a command from raw message content. A message is a command if
it opens with a mention of the bot (either mention form), or if it arrived in
a direct channel, in which case the whole content is the command. Anything
else returns nil. The trigger may be empty, e.g. for a bare mention.
*/
func Parse(botID *uint64, isDirectMessage bool, content string) *Command {
	if botID != nil {
		prefixed := regexp.MustCompile(fmt.Sprintf(`^<@!?%d>\s*(\S*)\s*((?s:.*))$`, *botID))
		if m := prefixed.FindStringSubmatchIndex(content); m != nil {
			// Entire starts at the trigger capture, so the whitespace
			// between the mention and the trigger is excluded
			return &Command{
				Entire:   content[m[2]:],
				Trigger:  content[m[2]:m[3]],
				Argument: content[m[4]:m[5]],
			}
		}
	}
	if isDirectMessage {
		if m := dmPattern.FindStringSubmatchIndex(content); m != nil {
			return &Command{
				Entire:   content,
				Trigger:  content[m[2]:m[3]],
				Argument: content[m[4]:m[5]],
			}
		}
	}
	return nil
}
