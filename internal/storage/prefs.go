package storage

import (
	"crypto/sha1"
	"encoding/hex"
)

// Preference keys.
const (
	PrefLastItemText        = "last_item_text"
	PrefScalePercent        = "scale_percent"
	PrefColorblindMode      = "colorblind_mode"
	PrefDelayProfile        = "delay_profile"
	PrefLogLevel            = "log_level"
	PrefMinimizeAfterSearch = "minimize_after_search"

	statSelectionPrefix = "stat_selected:"
)

func statKey(line string) string {
	sum := sha1.Sum([]byte(line))
	return statSelectionPrefix + hex.EncodeToString(sum[:8])
}

// StatSelected reports whether a stat line was left checked last time.
// Lines never seen before are selected.
func (d *DB) StatSelected(line string) (bool, error) {
	return d.GetBool(statKey(line), true)
}

func (d *DB) SetStatSelected(line string, selected bool) error {
	return d.SetBool(statKey(line), selected)
}
