package notification

import (
	"errors"
	"strconv"

	logx "mcnotify/pkg/logx"
)

// Direct sends bypass the event chain and the category settings. They still
// honour the player's opt-out.

// SendChatOnly writes plain text to p's chat.
func (e *Engine) SendChatOnly(p Player, key string, params ...string) error {
	if !e.UsesNotifications(p) {
		return nil
	}
	msg, err := e.Renderer.RenderPlain(key, params...)
	if err != nil {
		return err
	}
	return e.writeChat(p, PlainText(msg))
}

// SendChatOnlyPrefixed is SendChatOnly wrapped in the chat prefix template.
func (e *Engine) SendChatOnlyPrefixed(p Player, key string, params ...string) error {
	if !e.UsesNotifications(p) {
		return nil
	}
	msg, err := e.Renderer.RenderWrapped(KeyChatPrefix, key, params...)
	if err != nil {
		return err
	}
	return e.writeChat(p, PlainText(msg))
}

// SendUnlock tells p a sub-skill rank became available and plays the unlock sound.
func (e *Engine) SendUnlock(p Player, subSkill string, rank int) error {
	if !e.UsesNotifications(p) {
		return nil
	}
	t, err := e.Renderer.Render(KeySkillUnlocked, subSkill, strconv.Itoa(rank))
	if err != nil {
		return err
	}
	if err := e.writeChat(p, t); err != nil {
		return err
	}
	if e.sounds != nil {
		e.sounds.PlayUnlockSound(p)
	}
	return nil
}

// BroadcastTitle shows a title to every online player. It returns the number
// of players reached; zero when the transport cannot show titles.
func (e *Engine) BroadcastTitle(title, subtitle string, fadeIn, stay, fadeOut int) int {
	tw, ok := e.channels.(TitleWriter)
	if !ok || e.roster == nil {
		return 0
	}
	n := 0
	for _, p := range e.roster.Online() {
		err := tw.WriteTitle(p, title, subtitle, fadeIn, stay, fadeOut)
		switch {
		case err == nil:
			n++
		case errors.Is(err, ErrOffline):
		default:
			e.log.Debug("title write failed", logx.String("player", p.Name), logx.Err(err))
		}
	}
	return n
}

func (e *Engine) writeChat(p Player, t Text) error {
	if err := e.channels.WriteChat(p, t); err != nil && !errors.Is(err, ErrOffline) {
		return err
	}
	return nil
}
