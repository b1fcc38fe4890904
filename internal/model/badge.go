package model

// Display modes a badge source can be configured with.
const (
	DisplayModeBadge  = "badge"
	DisplayModeCard   = "card"
	DisplayModePeriod = "period"
)

// Badge source collections.
const (
	BadgeSourceTab      = "tab"
	BadgeSourceFestival = "festival"
)

// BadgeSource is one entry of a tag collection: a label attached to a set of
// tours, optionally narrowed to specific departure periods.
type BadgeSource struct {
	TourIDs      []int64  `json:"tour_ids"`
	PeriodIDs    []int64  `json:"period_ids"`
	BadgeText    string   `json:"badge_text"`
	BadgeColor   string   `json:"badge_color"`
	BadgeIcon    string   `json:"badge_icon"`
	DisplayModes []string `json:"display_modes"`
}

// HasTour reports whether the source applies to tourID.
func (b *BadgeSource) HasTour(tourID int64) bool {
	return containsID(b.TourIDs, tourID)
}

// HasPeriod reports whether periodID is on the period allowlist.
func (b *BadgeSource) HasPeriod(periodID int64) bool {
	return containsID(b.PeriodIDs, periodID)
}

// HasMode reports whether the source is configured for the display mode.
func (b *BadgeSource) HasMode(mode string) bool {
	for _, m := range b.DisplayModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Info projects the source onto the label rendered on a card.
func (b *BadgeSource) Info() BadgeInfo {
	return BadgeInfo{Text: b.BadgeText, Color: b.BadgeColor, Icon: b.BadgeIcon}
}

// BadgeInfo is the derived, never persisted overlay label.
type BadgeInfo struct {
	Text  string `json:"text"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
