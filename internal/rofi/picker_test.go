package rofi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exiled-search/internal/stats"
	"exiled-search/pkg/logger"
)

var preview = []stats.PreviewLine{
	{Text: "+55 to maximum Life", Status: stats.StatusMapped},
	{Text: "Allocates Deadly Force", Status: stats.StatusUnsupported},
	{Text: "+64% total to Lightning Resistance", Status: stats.StatusMapped},
	{Text: "Gain <3> Wonders", Status: stats.StatusUnmapped},
}

func fakePicker(out string, code int, err error, gotArgs *[]string, gotStdin *string) *StatPicker {
	p := NewStatPicker(false, logger.Nop())
	p.run = func(args []string, stdin string) (string, int, error) {
		*gotArgs, *gotStdin = args, stdin
		return out, code, err
	}
	return p
}

func TestPickSelected(t *testing.T) {
	var args []string
	var stdin string
	p := fakePicker("[2] +64% total to Lightning Resistance\n[0] +55 to maximum Life\n", 0, nil, &args, &stdin)

	got, err := p.Pick(preview)
	require.NoError(t, err)
	assert.Equal(t, []string{"+64% total to Lightning Resistance", "+55 to maximum Life"}, got)
	assert.Contains(t, args, "-multi-select")
	assert.Contains(t, args, "0,2")
	assert.Contains(t, stdin, "[3] <span foreground=\"#808080\">Gain &lt;3&gt; Wonders (unknown)</span>")
}

func TestPickExitCodes(t *testing.T) {
	var args []string
	var stdin string

	got, err := fakePicker("", exitMapped, nil, &args, &stdin).Pick(preview)
	require.NoError(t, err)
	assert.Equal(t, []string{"+55 to maximum Life", "+64% total to Lightning Resistance"}, got)

	_, err = fakePicker("", exitCancel, nil, &args, &stdin).Pick(preview)
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = fakePicker("garbage", 0, nil, &args, &stdin).Pick(preview)
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = fakePicker("", 0, errors.New("not found"), &args, &stdin).Pick(preview)
	assert.ErrorContains(t, err, "failed to run rofi")
}

func TestFormatLineColorblind(t *testing.T) {
	p := NewStatPicker(true, nil)
	assert.Equal(t, `[1] <span style="italic">Allocates Deadly Force (not searchable)</span>`, p.FormatLine(1, preview[1]))
	assert.Equal(t, "[0] +55 to maximum Life", p.FormatLine(0, preview[0]))
}
