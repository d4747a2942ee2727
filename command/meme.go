package command

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"saybot/meme"

	"github.com/bwmarrin/discordgo"
	"github.com/fogleman/gg"
	"github.com/jellydator/ttlcache/v3"
	log "github.com/sirupsen/logrus"
)

const sentFilename = "did_you_just_say.png"

const apology = "Sorry, something went wrong! Maybe try again?"

var (
	renders     *ttlcache.Cache[string, *image.RGBA]
	rendersOnce sync.Once
)

// CreateRenderCache sets up the cache of recently rendered memes so repeated
// identical captions skip layout and drawing. Safe to call from concurrent
// handlers; only the first call creates the cache.
func CreateRenderCache() {
	rendersOnce.Do(func() {
		renders = ttlcache.New(
			ttlcache.WithTTL[string, *image.RGBA](30 * time.Minute),
		)
		go renders.Start()
	})
}

// Caption builds the text drawn onto a template: the configured prefix and
// suffix around the uppercased command text, with mention tokens expanded
func Caption(tmpl *meme.Template, text string, users []User, channels, roles NameLookup) string {
	full := tmpl.TextPrefix + strings.ToUpper(text) + tmpl.TextSuffix
	return ExpandMentions(full, users, channels, roles)
}

/*
Draws the command's text onto the template bound to its trigger and posts the
result to the channel. When no template matches the trigger, the catalog's
default template gets the entire command text instead, so a bare mention
still produces the stock image.
*/
func HandleMeme(
	session *discordgo.Session,
	msg *discordgo.MessageCreate,
	cmd *Command,
	catalog *meme.Catalog,
	users []User,
	channels, roles NameLookup,
) error {
	CreateRenderCache()
	tmpl := catalog.ByTrigger(cmd.Trigger)
	text := cmd.Argument
	if tmpl == nil {
		tmpl = catalog.Default()
		text = cmd.Entire
	}
	if tmpl == nil {
		log.Debugf("No template matches trigger %q and no default configured", cmd.Trigger)
		return nil
	}
	font := catalog.FontFor(tmpl)
	if font == nil {
		log.Warnf("No usable font for template %q, refusing command", tmpl.Command)
		session.ChannelMessageSend(msg.ChannelID, apology)
		return nil
	}

	caption := Caption(tmpl, text, users, channels, roles)
	log.Infof("Creating image for string %q", caption)

	key := tmpl.Command + "\x00" + caption
	item := renders.Get(key)
	if item == nil {
		item = renders.Set(key, meme.Render(tmpl, font, caption), ttlcache.DefaultTTL)
	}

	outFilename, err := writeTemp(item.Value())
	if err != nil {
		return err
	}
	defer func() {
		if err := os.RemoveAll(filepath.Dir(outFilename)); err != nil {
			log.Warnf("Temporary file %s could not be deleted: %s", outFilename, err)
		}
	}()

	r, err := os.Open(outFilename)
	if err != nil {
		return err
	}
	defer r.Close()

	if _, err := session.ChannelFileSend(msg.ChannelID, sentFilename, r); err != nil {
		return fmt.Errorf("sending meme: %w", err)
	}
	return nil
}

// writeTemp saves the rendered image under its own temporary directory, so
// the fixed filename never collides across concurrent renders
func writeTemp(img image.Image) (string, error) {
	dir, err := os.MkdirTemp("", "saybot")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, sentFilename)
	if err := gg.SavePNG(path, img); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("saving meme: %w", err)
	}
	return path, nil
}
