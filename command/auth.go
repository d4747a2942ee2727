package command

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

/*
HandleAuth processes the auth command. It is only honored in a direct channel
so the password never appears in a guild conversation; anywhere else it is
silently dropped. Failed attempts get no reply at all, only an info log.
*/
func HandleAuth(
	session *discordgo.Session,
	msg *discordgo.MessageCreate,
	cmd *Command,
	settings *Settings,
	isDirectMessage bool,
) error {
	if !isDirectMessage {
		return nil
	}
	userID, err := strconv.ParseUint(msg.Author.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("unparseable author ID %q: %w", msg.Author.ID, err)
	}

	already, ok := settings.Authorize(userID, cmd.Argument)
	if already {
		session.ChannelMessageSend(msg.ChannelID, "You are already authorized.")
	}
	if ok {
		log.Infof("User successfully authorized as admin: %s", msg.Author.String())
		session.ChannelMessageSend(msg.ChannelID, "Successfully authorized.")
	} else {
		log.Infof("User failed attempt to authorize as admin: %s", msg.Author.String())
	}
	return nil
}

// HandleQuit shuts the bot down if the sender has authorized as an admin.
// Anyone else gets no response, just like a non-command.
func HandleQuit(msg *discordgo.MessageCreate, settings *Settings, shutdown func()) error {
	userID, err := strconv.ParseUint(msg.Author.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("unparseable author ID %q: %w", msg.Author.ID, err)
	}
	if !settings.IsAdmin(userID) {
		log.Infof("Ignoring quit from unauthorized user: %s", msg.Author.String())
		return nil
	}
	log.Infof("User requested quit: %s", msg.Author.String())
	shutdown()
	return nil
}
