package widget

import (
	"strings"

	"quiz-client/internal/event"
	"quiz-client/internal/ui"
)

// NicknameForm collects the player name once per session.
type NicknameForm struct {
	bus    *event.Bus
	region *ui.Region
	value  string
}

func NewNicknameForm(bus *event.Bus, region *ui.Region) *NicknameForm {
	f := &NicknameForm{bus: bus, region: region}
	f.render()
	return f
}

// Type sets the field content.
func (f *NicknameForm) Type(value string) {
	f.value = value
}

// Submit emits NicknameChosen with the trimmed value. Blank input is ignored.
func (f *NicknameForm) Submit() {
	nickname := strings.TrimSpace(f.value)
	if nickname == "" {
		return
	}
	f.bus.Emit(event.NicknameChosen{Nickname: nickname})
}

// Input handles one terminal line. An empty line submits a pre-filled value.
func (f *NicknameForm) Input(line string) {
	if strings.TrimSpace(line) != "" {
		f.Type(line)
	}
	f.Submit()
}

// Clear empties the field.
func (f *NicknameForm) Clear() {
	f.value = ""
	f.render()
}

func (f *NicknameForm) Value() string { return f.value }

// Prefill shows value as the suggested nickname.
func (f *NicknameForm) Prefill(value string) {
	f.value = value
	f.render()
}

func (f *NicknameForm) render() {
	lines := []string{"Welcome to the quiz!", "Enter your nickname and press Enter:"}
	if f.value != "" {
		lines = append(lines, "(press Enter to play as "+f.value+")")
	}
	f.region.Set(lines...)
}
