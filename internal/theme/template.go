package theme

// Section is one block of the public invitation page.
type Section struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Order   int    `json:"order"`
}

// Content holds the per-event-type labels shown on the invitation page.
type Content struct {
	CoverTitle        string `json:"cover_title"`
	HeroGreeting      string `json:"hero_greeting"`
	QuoteSection      bool   `json:"quote_section"`
	BrideGroomSection bool   `json:"bride_groom_section"`
	LoveStorySection  bool   `json:"love_story_section"`
	CountdownLabel    string `json:"countdown_label"`
	EventDetailsTitle string `json:"event_details_title"`
	GiftSectionTitle  string `json:"gift_section_title"`
}

type Template struct {
	EventType string    `json:"event_type"`
	Sections  []Section `json:"sections"`
	Content   Content   `json:"content"`
}

// Quote is the decorative quote block.
type Quote struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	Translation string `json:"translation,omitempty"`
	Source      string `json:"source,omitempty"`
	Icon        string `json:"icon"`
}

func sections(entries ...[2]string) []Section {
	out := make([]Section, len(entries))
	for i, e := range entries {
		out[i] = Section{ID: e[0], Name: e[1], Enabled: true, Order: i + 1}
	}
	return out
}

var templates = map[string]Template{
	"wedding": {
		EventType: "wedding",
		Sections: sections(
			[2]string{"cover", "Cover Page"},
			[2]string{"hero", "Hero Section"},
			[2]string{"quote", "Quote/Ayat Suci"},
			[2]string{"bride-groom", "Bride & Groom Profile"},
			[2]string{"love-story", "Love Story"},
			[2]string{"event-details", "Event Details & Countdown"},
			[2]string{"gallery", "Gallery"},
			[2]string{"rsvp", "RSVP"},
			[2]string{"wishes", "Buku Tamu"},
			[2]string{"gift", "Amplop Digital"},
			[2]string{"footer", "Footer"},
		),
		Content: Content{
			CoverTitle:        "THE WEDDING OF",
			HeroGreeting:      "بِسْمِ اللَّهِ الرَّحْمَنِ الرَّحِيم",
			QuoteSection:      true,
			BrideGroomSection: true,
			LoveStorySection:  true,
			CountdownLabel:    "Menghitung Hari",
			EventDetailsTitle: "Waktu & Tempat Acara",
			GiftSectionTitle:  "Amplop Digital",
		},
	},
	"birthday": {
		EventType: "birthday",
		Sections: sections(
			[2]string{"cover", "Cover Page"},
			[2]string{"hero", "Hero Section"},
			[2]string{"quote", "Birthday Wish"},
			[2]string{"event-details", "Event Details & Countdown"},
			[2]string{"gallery", "Gallery"},
			[2]string{"rsvp", "RSVP"},
			[2]string{"wishes", "Birthday Wishes"},
			[2]string{"gift", "Send Gift"},
			[2]string{"footer", "Footer"},
		),
		Content: Content{
			CoverTitle:        "BIRTHDAY CELEBRATION",
			HeroGreeting:      "Join us to celebrate",
			QuoteSection:      true,
			CountdownLabel:    "Countdown to the Party",
			EventDetailsTitle: "Party Details",
			GiftSectionTitle:  "Send a Gift",
		},
	},
	"graduation": {
		EventType: "graduation",
		Sections: sections(
			[2]string{"cover", "Cover Page"},
			[2]string{"hero", "Hero Section"},
			[2]string{"quote", "Inspirational Quote"},
			[2]string{"event-details", "Event Details & Countdown"},
			[2]string{"gallery", "Gallery"},
			[2]string{"rsvp", "RSVP"},
			[2]string{"wishes", "Congratulations"},
			[2]string{"footer", "Footer"},
		),
		Content: Content{
			CoverTitle:        "GRADUATION CEREMONY",
			HeroGreeting:      "You are cordially invited",
			QuoteSection:      true,
			CountdownLabel:    "Days Until Graduation",
			EventDetailsTitle: "Ceremony Details",
			GiftSectionTitle:  "Congratulatory Gift",
		},
	},
	"party": {
		EventType: "party",
		Sections: sections(
			[2]string{"cover", "Cover Page"},
			[2]string{"hero", "Hero Section"},
			[2]string{"event-details", "Event Details & Countdown"},
			[2]string{"gallery", "Gallery"},
			[2]string{"rsvp", "RSVP"},
			[2]string{"wishes", "Messages"},
			[2]string{"footer", "Footer"},
		),
		Content: Content{
			CoverTitle:        "YOU ARE INVITED",
			HeroGreeting:      "Join the celebration",
			CountdownLabel:    "Party Countdown",
			EventDetailsTitle: "Event Details",
			GiftSectionTitle:  "Bring a Gift",
		},
	},
}

var quotes = map[string]Quote{
	"wedding": {
		Title:       "Ayat Suci",
		Text:        "وَمِنْ ءَايَٰتِهِۦٓ أَنْ خَلَقَ لَكُم مِّنْ أَنفُسِكُمْ أَزْوَٰجًا لِّتَسْكُنُوٓا۟ إِلَيْهَا وَجَعَلَ بَيْنَكُم مَّوَدَّةً وَرَحْمَةً",
		Translation: "\"Dan di antara tanda-tanda (kebesaran)-Nya ialah Dia menciptakan pasangan-pasangan untukmu dari jenismu sendiri, agar kamu cenderung dan merasa tenteram kepadanya, dan Dia menjadikan di antaramu rasa kasih dan sayang.\"",
		Source:      "(QS. Ar-Rum: 21)",
		Icon:        "💍",
	},
	"birthday": {
		Title: "Birthday Wish",
		Text:  "\"Age is merely the number of years the world has been enjoying you. Cheers to another year of making wonderful memories!\"",
		Icon:  "🎂",
	},
	"graduation": {
		Title:       "Inspirational Words",
		Text:        "\"The future belongs to those who believe in the beauty of their dreams. Your hard work and dedication have brought you to this moment.\"",
		Translation: "\"Masa depan milik mereka yang percaya pada keindahan mimpi mereka. Kerja keras dan dedikasi Anda telah membawa Anda ke momen ini.\"",
		Source:      "- Eleanor Roosevelt",
		Icon:        "🎓",
	},
	"party": {
		Title: "Let's Celebrate",
		Text:  "\"Life is a party, dress like it! Let's make unforgettable memories together.\"",
		Icon:  "🎉",
	},
}

// ForEventType returns a copy of the template for eventType, falling back to
// the wedding template for unknown types.
func ForEventType(eventType string) *Template {
	t, ok := templates[eventType]
	if !ok {
		t = templates["wedding"]
	}
	t.Sections = append([]Section(nil), t.Sections...)
	return &t
}

// QuoteFor returns the quote block for eventType, or nil when the template
// has the quote section turned off.
func QuoteFor(eventType string) *Quote {
	t := ForEventType(eventType)
	if !t.Content.QuoteSection {
		return nil
	}
	q := quotes[t.EventType]
	return &q
}

// SectionEnabled reports whether the template shows the given section.
func (t *Template) SectionEnabled(id string) bool {
	for _, s := range t.Sections {
		if s.ID == id {
			return s.Enabled
		}
	}
	return false
}
