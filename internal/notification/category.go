package notification

import "strings"

// Category identifies what kind of event triggered a notification.
type Category string

const (
	CategoryXPGain                  Category = "xp_gain"
	CategoryHardcoreMode            Category = "hardcore_mode"
	CategoryRequirementsNotMet      Category = "requirements_not_met"
	CategoryLevelUp                 Category = "level_up_message"
	CategoryHoliday                 Category = "holiday"
	CategorySubSkillMessage         Category = "subskill_message"
	CategorySubSkillMessageFailed   Category = "subskill_message_failed"
	CategorySubSkillUnlocked        Category = "subskill_unlocked"
	CategorySuperAbility            Category = "super_ability"
	CategorySuperAbilityAlertOthers Category = "super_ability_alert_others"
	CategoryAbilityOff              Category = "ability_off"
	CategoryAbilityRefreshed        Category = "ability_refreshed"
	CategoryAbilityCooldown         Category = "ability_cooldown"
	CategoryItemMessage             Category = "item_message"
	CategoryNoPermission            Category = "no_permission"
	CategoryPartyMessage            Category = "party_message"
	CategoryToolReady               Category = "tool"
	CategoryGenericInfo             Category = "generic_info"
	CategoryAdminAction             Category = "admin_action"
)

var categories = []Category{
	CategoryXPGain,
	CategoryHardcoreMode,
	CategoryRequirementsNotMet,
	CategoryLevelUp,
	CategoryHoliday,
	CategorySubSkillMessage,
	CategorySubSkillMessageFailed,
	CategorySubSkillUnlocked,
	CategorySuperAbility,
	CategorySuperAbilityAlertOthers,
	CategoryAbilityOff,
	CategoryAbilityRefreshed,
	CategoryAbilityCooldown,
	CategoryItemMessage,
	CategoryNoPermission,
	CategoryPartyMessage,
	CategoryToolReady,
	CategoryGenericInfo,
	CategoryAdminAction,
}

// Categories returns every known category in declaration order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Known reports whether c belongs to the closed category set.
func (c Category) Known() bool {
	for _, k := range categories {
		if k == c {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }
