package csvimport

import "strings"

// DefaultIcon is used when no keyword matches.
const DefaultIcon = "✅"

// DetectIcon picks an icon for a habit by case-insensitive keyword match
// against its text. Keywords are checked in order, more specific first.
func DetectIcon(text string) string {
	t := strings.ToLower(text)
	for _, k := range iconKeywords {
		if strings.Contains(t, k.keyword) {
			return k.icon
		}
	}
	return DefaultIcon
}

var iconKeywords = []struct {
	keyword string
	icon    string
}{
	// Mind
	{"meditat", "🧘"},
	{"journal", "📓"},
	{"read", "📚"},
	{"book", "📚"},
	{"study", "🎓"},
	{"learn", "🎓"},
	{"pray", "🙏"},
	{"gratitude", "🙏"},

	// Body
	{"water", "💧"},
	{"drink", "💧"},
	{"sleep", "😴"},
	{"bed", "😴"},
	{"run", "🏃"},
	{"walk", "🚶"},
	{"gym", "🏋️"},
	{"lift", "🏋️"},
	{"workout", "💪"},
	{"exercise", "💪"},
	{"stretch", "🤸"},
	{"yoga", "🧘"},
	{"vegetable", "🥗"},
	{"fruit", "🍎"},
	{"eat", "🍽️"},
	{"cook", "🍳"},

	// Vices
	{"smok", "🚭"},
	{"alcohol", "🍺"},
	{"beer", "🍺"},
	{"sugar", "🍬"},
	{"junk", "🍟"},
	{"social media", "📱"},
	{"phone", "📱"},
	{"scroll", "📱"},

	// Life
	{"money", "💰"},
	{"budget", "💰"},
	{"save", "💰"},
	{"clean", "🧹"},
	{"call", "📞"},
	{"friend", "👥"},
	{"family", "👨‍👩‍👧"},
	{"write", "✍️"},
	{"code", "💻"},
	{"work", "💼"},
}
