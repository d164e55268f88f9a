package widget

import (
	"fmt"
	"strconv"
	"strings"

	"quiz-client/internal/domain"
	"quiz-client/internal/event"
	"quiz-client/internal/ui"
)

// QuestionDisplay renders the current question and captures the answer.
// Correctness is never checked here; the quiz service decides.
type QuestionDisplay struct {
	bus    *event.Bus
	region *ui.Region

	question *domain.Question
	choice   bool
	keys     []string
	selected string
	text     string
}

// NewQuestionDisplay subscribes the display to QuestionSet.
func NewQuestionDisplay(bus *event.Bus, region *ui.Region) *QuestionDisplay {
	d := &QuestionDisplay{bus: bus, region: region}
	event.On(bus, func(e event.QuestionSet) {
		q := e.Question
		d.SetQuestion(&q)
	})
	return d
}

// SetQuestion replaces the rendered question. nil is ignored.
func (d *QuestionDisplay) SetQuestion(q *domain.Question) {
	if q == nil {
		return
	}
	d.Clear()
	d.question = q
	d.choice = q.IsChoice()
	if d.choice {
		d.keys = q.Keys()
	}
	d.render()
}

// Clear drops the current question and any pending answer.
func (d *QuestionDisplay) Clear() {
	d.question = nil
	d.choice = false
	d.keys = nil
	d.selected = ""
	d.text = ""
	d.region.Set()
}

// Notice appends a status line below the question.
func (d *QuestionDisplay) Notice(msg string) {
	lines := d.region.Lines()
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	d.region.Set(append(lines, msg)...)
}

// ChoiceMode reports whether the current question renders alternatives.
func (d *QuestionDisplay) ChoiceMode() bool { return d.choice }

// Choices returns the rendered alternative keys in order.
func (d *QuestionDisplay) Choices() []string { return append([]string(nil), d.keys...) }

// Select marks an alternative. Unknown keys and free-text mode are ignored.
func (d *QuestionDisplay) Select(key string) {
	if !d.choice {
		return
	}
	if _, ok := d.question.Alternatives[key]; ok {
		d.selected = key
	}
}

// Type sets the free-text field.
func (d *QuestionDisplay) Type(text string) {
	if d.question == nil || d.choice {
		return
	}
	d.text = text
}

// Submit emits AnswerSelected with the selected key or the trimmed text.
// Nothing is emitted when no alternative is selected.
func (d *QuestionDisplay) Submit() {
	if d.question == nil {
		return
	}
	if d.choice {
		if d.selected == "" {
			return
		}
		d.bus.Emit(event.AnswerSelected{Answer: d.selected})
		return
	}
	d.bus.Emit(event.AnswerSelected{Answer: strings.TrimSpace(d.text)})
}

// Input maps a terminal line onto the controls: an alternative key (or its
// 1-based position) in choice mode, the answer text followed by Enter in
// free-text mode.
func (d *QuestionDisplay) Input(line string) {
	if d.question == nil {
		return
	}
	if !d.choice {
		d.Type(line)
		d.Submit()
		return
	}
	key := strings.TrimSpace(line)
	if _, ok := d.question.Alternatives[key]; !ok {
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(d.keys) {
			key = d.keys[n-1]
		}
	}
	d.Select(key)
	d.Submit()
}

func (d *QuestionDisplay) render() {
	q := d.question
	var lines []string
	if msg := strings.TrimSpace(q.Message); msg != "" {
		lines = append(lines, msg, "")
	}
	lines = append(lines, q.Prompt, "")
	if d.choice {
		for i, key := range d.keys {
			lines = append(lines, fmt.Sprintf("  %d) [%s] %s", i+1, key, q.Alternatives[key]))
		}
		lines = append(lines, "", "Type an alternative and press Enter to submit.")
	} else {
		lines = append(lines, "Type your answer and press Enter to submit.")
	}
	d.region.Set(lines...)
}
