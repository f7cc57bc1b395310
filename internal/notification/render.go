package notification

import (
	"errors"
	"fmt"
)

// Locale keys the engine itself depends on.
const (
	KeyAdminFormatOthers = "Notifications.Admin.Format.Others"
	KeyAdminFormatSelf   = "Notifications.Admin.Format.Self"
	KeyChatPrefix        = "mcMMO.Template.Prefix"
	KeyConsoleName       = "Server.ConsoleName"
	KeyLevelUp           = "Overhaul.Levelup"
	KeySkillUnlocked     = "JSON.SkillUnlockMessage"
)

var ErrNoLocale = errors.New("no locale resolver configured")

// Renderer turns a template key and ordered parameters into text.
// For a fixed locale snapshot the output is deterministic.
type Renderer struct {
	locale LocaleResolver
}

func NewRenderer(locale LocaleResolver) *Renderer {
	return &Renderer{locale: locale}
}

// Render resolves key and parses the result into styled text.
func (r *Renderer) Render(key string, params ...string) (Text, error) {
	s, err := r.RenderPlain(key, params...)
	if err != nil {
		return Text{}, err
	}
	return StyledText(s), nil
}

// RenderPlain resolves key without building a styled representation.
func (r *Renderer) RenderPlain(key string, params ...string) (string, error) {
	if r == nil || r.locale == nil {
		return "", ErrNoLocale
	}
	s, err := r.locale.Resolve(key, params...)
	if err != nil {
		return "", fmt.Errorf("render %q: %w", key, err)
	}
	return s, nil
}

// RenderWrapped renders key, then feeds the result as the only parameter of
// the wrapper template.
func (r *Renderer) RenderWrapped(wrapper, key string, params ...string) (string, error) {
	msg, err := r.RenderPlain(key, params...)
	if err != nil {
		return "", err
	}
	return r.RenderPlain(wrapper, msg)
}
