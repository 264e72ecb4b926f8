package input

import (
	"strings"
	"unicode"
)

var voiceWords = map[string]Command{
	"up":     TurnUp,
	"down":   TurnDown,
	"left":   TurnLeft,
	"right":  TurnRight,
	"start":  StartGame,
	"pause":  Pause,
	"resume": Resume,
	"end":    EndGame,
}

// Chinese phrases are matched as substrings, in table order.
var voicePhrases = []struct {
	phrase  string
	command Command
}{
	{"上", TurnUp},
	{"下", TurnDown},
	{"左", TurnLeft},
	{"右", TurnRight},
	{"开始", StartGame},
	{"暂停", Pause},
	{"继续", Resume},
	{"结束", EndGame},
}

// FromPhrase maps transcribed speech to a command. The first English command
// word in the text wins, case-insensitively; otherwise the first Chinese
// phrase contained in the text.
func FromPhrase(text string) (Command, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if c, ok := voiceWords[w]; ok {
			return c, true
		}
	}

	for _, p := range voicePhrases {
		if strings.Contains(text, p.phrase) {
			return p.command, true
		}
	}
	return 0, false
}
