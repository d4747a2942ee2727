package main

import (
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"saybot/command"
	"saybot/config"
	"saybot/meme"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Bot carries the state shared by every handler: session settings, the
// template catalog and the shutdown signal the quit command fires.
type Bot struct {
	settings *command.Settings
	catalog  *meme.Catalog
	quit     chan struct{}
	stop     func()
}

func (b *Bot) ReadyHandler(session *discordgo.Session, ready *discordgo.Ready) {
	log.Infof("Connected as %s#%s", ready.User.Username, ready.User.Discriminator)
	id, err := strconv.ParseUint(ready.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Unparseable bot user ID %q: %s", ready.User.ID, err)
		return
	}
	b.settings.SetBotID(id)
}

func (b *Bot) MessageHandler(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	isDM := isDirectMessage(session, msg)
	cmd := command.Parse(b.settings.BotID(), isDM, msg.Content)
	if cmd == nil {
		return
	}
	log.Debugf("Received command; trigger: %q, argument: %q", cmd.Trigger, cmd.Argument)

	var err error
	switch strings.ToLower(cmd.Trigger) {
	case "auth":
		err = command.HandleAuth(session, msg, cmd, b.settings, isDM)
	case "quit":
		err = command.HandleQuit(msg, b.settings, b.stop)
	default:
		channels, roles := guildLookups(session, msg)
		err = command.HandleMeme(session, msg, cmd, b.catalog, mentionedUsers(msg), channels, roles)
	}
	if err != nil {
		session.ChannelMessageSend(msg.ChannelID, "Sorry, something went wrong! Maybe try again?")
		log.Warnf("Command %q failed: %s", cmd.Trigger, err)
	}
}

func isDirectMessage(session *discordgo.Session, msg *discordgo.MessageCreate) bool {
	channel, err := session.State.Channel(msg.ChannelID)
	if err != nil {
		channel, err = session.Channel(msg.ChannelID)
		if err != nil {
			log.Warnf("Failed to fetch channel %s: %s", msg.ChannelID, err)
			return false
		}
	}
	return channel.Type == discordgo.ChannelTypeDM
}

func mentionedUsers(msg *discordgo.MessageCreate) []command.User {
	users := make([]command.User, 0, len(msg.Mentions))
	for _, u := range msg.Mentions {
		id, err := strconv.ParseUint(u.ID, 10, 64)
		if err != nil {
			continue
		}
		users = append(users, command.User{ID: id, Name: u.Username})
	}
	return users
}

// Build channel and role resolvers scoped to the message's guild. DMs have
// no guild, so both lookups are nil and mention expansion degrades to the
// deleted-channel and deleted-role literals.
func guildLookups(session *discordgo.Session, msg *discordgo.MessageCreate) (channels, roles command.NameLookup) {
	if msg.GuildID == "" {
		return nil, nil
	}
	channels = func(id uint64) (string, bool) {
		channel, err := session.State.Channel(strconv.FormatUint(id, 10))
		if err != nil {
			return "", false
		}
		return channel.Name, true
	}
	roles = func(id uint64) (string, bool) {
		role, err := session.State.Role(msg.GuildID, strconv.FormatUint(id, 10))
		if err != nil {
			return "", false
		}
		return role.Name, true
	}
	return channels, roles
}

func Setup() *meme.Catalog {
	if err := config.LoadConfig(); err != nil {
		log.Fatalln(err)
	}
	if err := config.SetupLogging(); err != nil {
		log.Fatalf("Error setting up logging: %s", err)
	}
	catalog, err := meme.LoadCatalog(config.Cfg.MemeConfigPath, config.Cfg.AssetPath)
	if err != nil {
		log.Fatalf("Failed to load meme templates: %s", err)
	}
	// Created before any handler runs, so message handling never races on it
	command.CreateRenderCache()
	return catalog
}

// Main entry point: start discord-go client and wait for messages
func main() {
	catalog := Setup()

	discord, err := discordgo.New("Bot " + config.Cfg.DiscordToken)
	if err != nil {
		log.Fatalln("Failed to create discord client")
	}

	bot := &Bot{
		settings: command.NewSettings(config.Cfg.AdminPassword),
		catalog:  catalog,
		quit:     make(chan struct{}),
	}
	bot.stop = sync.OnceFunc(func() { close(bot.quit) })

	discord.AddHandler(bot.ReadyHandler)
	discord.AddHandler(bot.MessageHandler)

	log.Info("Connecting")
	if err := discord.Open(); err != nil {
		log.Fatalln("Failed to open connection to Discord")
	}

	log.Info("saybot is ready to rumble")

	// Wait for an OS signal or an admin quit before closing the main loop
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	select {
	case <-sc:
	case <-bot.quit:
	}
	discord.Close()
}
