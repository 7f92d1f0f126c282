package domain

type EventTypeScope string

const (
	EventTypeScopePersonal EventTypeScope = "personal"
	EventTypeScopeTeam     EventTypeScope = "team"
)

// EventType - тип события из коллекции Cal.com (личной или командной)
type EventType struct {
	ID              int64  `json:"id"`
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	LengthInMinutes int    `json:"lengthInMinutes"`
}

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// EventTypeRef - разрешенный тип события с признаком владельца.
// Для командных типов заполняются TeamID и TeamSlug.
type EventTypeRef struct {
	ID              int64
	Slug            string
	Scope           EventTypeScope
	TeamID          int64
	TeamSlug        string
	LengthInMinutes int
}

func (r EventTypeRef) IsTeam() bool {
	return r.Scope == EventTypeScopeTeam
}
